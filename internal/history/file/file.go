// Package file stores history as one JSON-lines file per user.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/vbonduro/wardrobe/internal/domain"
)

// FileStore appends one JSON record per line to <dir>/<user>_history.jsonl.
// A legacy <dir>/<user>_history.json array, if present, is read before the
// log and never written.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) logPath(userID string) string {
	return filepath.Join(s.dir, userID+"_history.jsonl")
}

func (s *FileStore) legacyPath(userID string) string {
	return filepath.Join(s.dir, userID+"_history.json")
}

func (s *FileStore) Append(_ context.Context, entry domain.HistoryEntry) error {
	if err := domain.ValidateUserID(entry.UserID); err != nil {
		return err
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.logPath(entry.UserID), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append entry: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close history file: %w", err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, userID string) ([]domain.HistoryEntry, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.loadLegacy(userID)

	f, err := os.Open(s.logPath(userID))
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("failed to close history file", "user_id", userID, "error", err)
		}
	}()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e domain.HistoryEntry
		if err := json.Unmarshal(line, &e); err != nil {
			slog.Warn("skipping unreadable history line", "user_id", userID, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	return entries, nil
}

// loadLegacy treats a missing or unparsable legacy file as empty.
func (s *FileStore) loadLegacy(userID string) []domain.HistoryEntry {
	entries := []domain.HistoryEntry{}
	data, err := os.ReadFile(s.legacyPath(userID))
	if err != nil {
		return entries
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("ignoring unreadable legacy history file", "user_id", userID, "error", err)
		return []domain.HistoryEntry{}
	}
	return entries
}
