package domain

import (
	"errors"
	"fmt"
	"regexp"
)

// TimestampLayout is the layout of HistoryEntry.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	ErrInvalidOccasion = errors.New("invalid occasion")
	ErrInvalidWeather  = errors.New("invalid weather")
	ErrInvalidStyle    = errors.New("invalid style")
	ErrInvalidUserID   = errors.New("invalid user id")
)

// HistoryEntry is one persisted recommendation. Entries are never modified
// after they are written.
type HistoryEntry struct {
	UserID         string   `json:"user_id"`
	Occasion       Occasion `json:"occasion"`
	Weather        Weather  `json:"weather"`
	Style          Style    `json:"style"`
	Recommendation string   `json:"recommendation"`
	ClothingType   *string  `json:"clothing_type"`
	PhotoKey       string   `json:"photo_key,omitempty"`
	Timestamp      string   `json:"timestamp"`
}

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateUserID rejects identifiers that are unsafe to use as file names.
func ValidateUserID(id string) error {
	if !userIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidUserID, id)
	}
	return nil
}
