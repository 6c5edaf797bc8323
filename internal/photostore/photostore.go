package photostore

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("photo not found")

// PhotoStore keeps the clothing photos users upload alongside their history.
type PhotoStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}

// NewKey returns a fresh storage key of the form <prefix>_<uuid><ext>.
func NewKey(prefix, mimeType string) string {
	return prefix + "_" + uuid.NewString() + ExtForMIME(mimeType)
}

// OwnedBy reports whether key was produced by NewKey for exactly prefix.
// Prefixes may themselves contain '_', so the remainder must be a bare
// canonical UUID plus a known extension.
func OwnedBy(key, prefix string) bool {
	rest, ok := strings.CutPrefix(key, prefix+"_")
	if !ok {
		return false
	}
	id, ok := strings.CutSuffix(rest, ".jpg")
	if !ok {
		if id, ok = strings.CutSuffix(rest, ".png"); !ok {
			return false
		}
	}
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func ExtForMIME(mimeType string) string {
	if mimeType == "image/png" {
		return ".png"
	}
	return ".jpg"
}
