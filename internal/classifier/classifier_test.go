package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAIP mimics the token and classification endpoints.
type fakeAIP struct {
	tokenStatus    int
	tokenBody      string
	classifyStatus int
	classifyBody   string

	tokenCalls    atomic.Int32
	classifyCalls atomic.Int32

	mu        sync.Mutex
	lastImage []byte
	lastToken string
}

func newFakeAIP() *fakeAIP {
	return &fakeAIP{
		tokenStatus:    http.StatusOK,
		tokenBody:      `{"access_token":"24.abc","expires_in":2592000}`,
		classifyStatus: http.StatusOK,
		classifyBody:   `{"log_id":1,"result_num":1,"result":[{"keyword":"T-shirt","score":0.91,"root":"apparel"}]}`,
	}
}

func (f *fakeAIP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case tokenPath:
		f.tokenCalls.Add(1)
		if r.Method != http.MethodGet ||
			r.URL.Query().Get("grant_type") != "client_credentials" ||
			r.URL.Query().Get("client_id") != "ak" ||
			r.URL.Query().Get("client_secret") != "sk" {
			http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
			return
		}
		w.WriteHeader(f.tokenStatus)
		_, _ = w.Write([]byte(f.tokenBody))
	case classifyPath:
		f.classifyCalls.Add(1)
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		img, _ := base64.StdEncoding.DecodeString(r.PostForm.Get("image"))
		f.mu.Lock()
		f.lastImage = img
		f.lastToken = r.URL.Query().Get("access_token")
		f.mu.Unlock()
		w.WriteHeader(f.classifyStatus)
		_, _ = w.Write([]byte(f.classifyBody))
	default:
		http.NotFound(w, r)
	}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestClassifier(t *testing.T, f *fakeAIP, ttl time.Duration) *Classifier {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return New("ak", "sk", Options{BaseURL: srv.URL, TokenTTL: ttl})
}

func TestClassifyReturnsFirstKeyword(t *testing.T) {
	f := newFakeAIP()
	c := newTestClassifier(t, f, time.Hour)

	label, err := c.Classify(context.Background(), testPNG(t))

	require.NoError(t, err)
	assert.Equal(t, "T-shirt", label)
	assert.Equal(t, "24.abc", f.lastToken)
}

func TestClassifySendsJPEG(t *testing.T) {
	f := newFakeAIP()
	c := newTestClassifier(t, f, time.Hour)

	_, err := c.Classify(context.Background(), testPNG(t))
	require.NoError(t, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	require.GreaterOrEqual(t, len(f.lastImage), 2)
	assert.Equal(t, []byte{0xFF, 0xD8}, f.lastImage[:2])
	assert.Equal(t, "image/jpeg", http.DetectContentType(f.lastImage))
}

func TestClassifyEmptyResult(t *testing.T) {
	f := newFakeAIP()
	f.classifyBody = `{"log_id":1,"result_num":0,"result":[]}`
	c := newTestClassifier(t, f, time.Hour)

	label, err := c.Classify(context.Background(), testPNG(t))

	require.NoError(t, err)
	assert.Equal(t, Unrecognized, label)
}

func TestClassifyNon200ReturnsRawBody(t *testing.T) {
	f := newFakeAIP()
	f.classifyStatus = http.StatusInternalServerError
	f.classifyBody = `upstream exploded`
	c := newTestClassifier(t, f, time.Hour)

	_, err := c.Classify(context.Background(), testPNG(t))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Body)
	assert.Contains(t, apiErr.Error(), "upstream exploded")
}

func TestClassifyErrorCodeIn200(t *testing.T) {
	f := newFakeAIP()
	f.classifyBody = `{"error_code":216201,"error_msg":"image format error"}`
	c := newTestClassifier(t, f, time.Hour)

	_, err := c.Classify(context.Background(), testPNG(t))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Body, "image format error")
}

func TestClassifyTokenFailureSkipsClassification(t *testing.T) {
	f := newFakeAIP()
	f.tokenStatus = http.StatusUnauthorized
	f.tokenBody = `{"error":"invalid_client","error_description":"unknown client id"}`
	c := newTestClassifier(t, f, time.Hour)

	_, err := c.Classify(context.Background(), testPNG(t))

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.Equal(t, int32(0), f.classifyCalls.Load())
}

func TestClassifyTokenWithoutAccessToken(t *testing.T) {
	f := newFakeAIP()
	f.tokenBody = `{"error":"invalid_client"}`
	c := newTestClassifier(t, f, time.Hour)

	_, err := c.Classify(context.Background(), testPNG(t))

	var authErr *AuthError
	assert.True(t, errors.As(err, &authErr))
	assert.Equal(t, int32(0), f.classifyCalls.Load())
}

func TestTokenIsCachedWithinTTL(t *testing.T) {
	f := newFakeAIP()
	c := newTestClassifier(t, f, time.Hour)

	for i := 0; i < 3; i++ {
		_, err := c.Classify(context.Background(), testPNG(t))
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), f.tokenCalls.Load())
	assert.Equal(t, int32(3), f.classifyCalls.Load())
}

func TestTokenIsNotFetchedBeforeFirstUse(t *testing.T) {
	f := newFakeAIP()
	_ = newTestClassifier(t, f, time.Hour)

	assert.Equal(t, int32(0), f.tokenCalls.Load())
}

func TestTokenRefreshedAfterExpiry(t *testing.T) {
	f := newFakeAIP()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	// Tokens issued two hours ago with a one hour lifetime are stale on arrival.
	stale := func() time.Time { return time.Now().Add(-2 * time.Hour) }
	c := newClassifier("ak", "sk", Options{BaseURL: srv.URL, TokenTTL: time.Hour}, stale)

	for i := 0; i < 2; i++ {
		_, err := c.Classify(context.Background(), testPNG(t))
		require.NoError(t, err)
	}

	assert.Equal(t, int32(2), f.tokenCalls.Load())
}

func TestTokenFetchUsesRequestContext(t *testing.T) {
	f := newFakeAIP()
	c := newTestClassifier(t, f, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Classify(ctx, testPNG(t))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), f.tokenCalls.Load())

	// A cancelled fetch leaves nothing cached; the next caller fetches.
	_, err = c.Classify(context.Background(), testPNG(t))
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.tokenCalls.Load())
}

func TestTokenConcurrentCallersShareOneFetch(t *testing.T) {
	f := newFakeAIP()
	c := newTestClassifier(t, f, time.Hour)
	img := testPNG(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Classify(context.Background(), img)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), f.tokenCalls.Load())
	assert.Equal(t, int32(10), f.classifyCalls.Load())
}

func TestServerExpiryShorterThanTTLWins(t *testing.T) {
	f := newFakeAIP()
	f.tokenBody = `{"access_token":"short","expires_in":60}`
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &tokenSource{
		ctx:       context.Background(),
		client:    srv.Client(),
		tokenURL:  srv.URL + tokenPath,
		apiKey:    "ak",
		secretKey: "sk",
		ttl:       time.Hour,
		now:       func() time.Time { return now },
	}

	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "short", tok.AccessToken)
	assert.Equal(t, now.Add(time.Minute), tok.Expiry)
}

func TestClassifyRejectsUndecodableImage(t *testing.T) {
	f := newFakeAIP()
	c := newTestClassifier(t, f, time.Hour)

	_, err := c.Classify(context.Background(), []byte("%PDF-1.4 not an image"))

	assert.Error(t, err)
	assert.Equal(t, int32(0), f.classifyCalls.Load())
}
