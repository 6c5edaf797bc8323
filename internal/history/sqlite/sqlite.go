// Package sqlite stores history in the history_entries table.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/vbonduro/wardrobe/internal/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Append(ctx context.Context, entry domain.HistoryEntry) error {
	if err := domain.ValidateUserID(entry.UserID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history_entries
			(user_id, occasion, weather, style, recommendation, clothing_type, photo_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.UserID, entry.Occasion, entry.Weather, entry.Style, entry.Recommendation,
		entry.ClothingType, entry.PhotoKey, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, occasion, weather, style, recommendation, clothing_type, photo_key, created_at
		FROM history_entries WHERE user_id = ? ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	entries := []domain.HistoryEntry{}
	for rows.Next() {
		var (
			e            domain.HistoryEntry
			clothingType sql.NullString
		)
		if err := rows.Scan(&e.UserID, &e.Occasion, &e.Weather, &e.Style, &e.Recommendation,
			&clothingType, &e.PhotoKey, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if clothingType.Valid {
			ct := clothingType.String
			e.ClothingType = &ct
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}
	return entries, nil
}
