// Package history persists the outfit suggestions made for each user.
package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vbonduro/wardrobe/internal/domain"
)

// Store is an append-only log of entries per user. Load returns entries in
// the order they were appended and an empty slice for unknown users.
// Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, entry domain.HistoryEntry) error
	Load(ctx context.Context, userID string) ([]domain.HistoryEntry, error)
}

// Export renders a user's history as a pretty-printed JSON array.
func Export(ctx context.Context, s Store, userID string) ([]byte, error) {
	entries, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	return data, nil
}
