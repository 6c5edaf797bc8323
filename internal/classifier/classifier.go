// Package classifier recognises the piece of clothing in a photo using the
// Baidu AIP general image classification API.
package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL  = "https://aip.baidubce.com"
	DefaultTokenTTL = 6 * time.Hour

	tokenPath    = "/oauth/2.0/token"
	classifyPath = "/rest/2.0/image-classify/v2/advanced_general"
	jpegQuality  = 90
)

// Unrecognized is returned as the label when the service finds nothing.
const Unrecognized = "unrecognized clothing type"

// AuthError reports a failed token exchange. No classification request is
// made after it.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("classifier authentication failed: status %d: %s", e.StatusCode, e.Body)
}

// APIError reports a classification request the service rejected. Body holds
// the raw response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("classification API call failed: %s", e.Body)
}

type Options struct {
	BaseURL    string
	TokenTTL   time.Duration
	HTTPClient *http.Client
}

type Classifier struct {
	baseURL string
	client  *http.Client
	src     tokenSource

	mu     sync.Mutex
	cached *oauth2.Token
}

// New builds a classifier. The token is fetched lazily on the first Classify
// call and shared by all callers until it expires.
func New(apiKey, secretKey string, opts Options) *Classifier {
	return newClassifier(apiKey, secretKey, opts, time.Now)
}

func newClassifier(apiKey, secretKey string, opts Options, now func() time.Time) *Classifier {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")

	return &Classifier{
		baseURL: baseURL,
		client:  opts.HTTPClient,
		src: tokenSource{
			client:    opts.HTTPClient,
			tokenURL:  baseURL + tokenPath,
			apiKey:    apiKey,
			secretKey: secretKey,
			ttl:       opts.TokenTTL,
			now:       now,
		},
	}
}

// token returns the cached token, fetching a new one with ctx once it has
// expired. Callers wait on the mutex while a fetch is in flight.
func (c *Classifier) token(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	src := c.src
	src.ctx = ctx
	tok, err := oauth2.ReuseTokenSource(c.cached, &src).Token()
	if err != nil {
		return nil, err
	}
	c.cached = tok
	return tok, nil
}

type classifyResponse struct {
	ErrorCode int    `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
	Result    []struct {
		Keyword string  `json:"keyword"`
		Score   float64 `json:"score"`
		Root    string  `json:"root"`
	} `json:"result"`
}

// Classify returns the keyword of the best match, or Unrecognized when the
// result list is empty.
func (c *Classifier) Classify(ctx context.Context, imageData []byte) (string, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return "", err
	}

	jpegData, err := toJPEG(imageData)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("image", base64.StdEncoding.EncodeToString(jpegData))

	endpoint := c.baseURL + classifyPath + "?access_token=" + url.QueryEscape(tok.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call classifier: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close classifier response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read classifier response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var cr classifyResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", fmt.Errorf("failed to decode classifier response: %w", err)
	}
	if cr.ErrorCode != 0 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if len(cr.Result) == 0 {
		return Unrecognized, nil
	}
	return cr.Result[0].Keyword, nil
}

// toJPEG re-encodes any supported image as JPEG, the only format the
// classification request is sent in.
func toJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
