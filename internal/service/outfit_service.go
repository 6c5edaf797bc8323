package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vbonduro/wardrobe/internal/classifier"
	"github.com/vbonduro/wardrobe/internal/composer"
	"github.com/vbonduro/wardrobe/internal/domain"
	"github.com/vbonduro/wardrobe/internal/history"
	"github.com/vbonduro/wardrobe/internal/photostore"
)

// ErrClassifierUnavailable is returned for image requests when no classifier
// credentials are configured.
var ErrClassifierUnavailable = errors.New("image classification is not configured")

// ClothingClassifier is the subset of classifier.Classifier that OutfitService requires.
type ClothingClassifier interface {
	Classify(ctx context.Context, imageData []byte) (string, error)
}

// outfitComposer is the subset of composer.Composer that OutfitService requires.
type outfitComposer interface {
	Compose(ctx context.Context, req composer.Request) (string, error)
}

// Selection is the raw form input. Style may be empty.
type Selection struct {
	Occasion string
	Weather  string
	Style    string
}

type parsedSelection struct {
	occasion domain.Occasion
	weather  domain.Weather
	style    domain.Style
}

func (s Selection) parse() (parsedSelection, error) {
	occasion, err := domain.ParseOccasion(s.Occasion)
	if err != nil {
		return parsedSelection{}, err
	}
	weather, err := domain.ParseWeather(s.Weather)
	if err != nil {
		return parsedSelection{}, err
	}
	style, err := domain.ParseStyle(s.Style)
	if err != nil {
		return parsedSelection{}, err
	}
	return parsedSelection{occasion: occasion, weather: weather, style: style}, nil
}

type OutfitService struct {
	classifier ClothingClassifier
	composer   outfitComposer
	history    history.Store
	photoStg   photostore.PhotoStore
	logger     *slog.Logger
	now        func() time.Time
}

// NewOutfitService wires the service. cls may be nil, in which case image
// requests fail with ErrClassifierUnavailable.
func NewOutfitService(
	cls ClothingClassifier,
	comp outfitComposer,
	hist history.Store,
	photoStg photostore.PhotoStore,
	logger *slog.Logger,
) *OutfitService {
	return &OutfitService{
		classifier: cls,
		composer:   comp,
		history:    hist,
		photoStg:   photoStg,
		logger:     logger,
		now:        time.Now,
	}
}

// RecommendByText asks for a suggestion from the selections alone and records it.
func (s *OutfitService) RecommendByText(ctx context.Context, userID string, sel Selection) (*domain.HistoryEntry, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}
	p, err := sel.parse()
	if err != nil {
		return nil, err
	}

	s.logger.Info("text recommendation started", "user_id", userID, "occasion", p.occasion, "weather", p.weather, "style", p.style)
	rec, err := s.composer.Compose(ctx, composer.Request{Occasion: p.occasion, Weather: p.weather, Style: p.style})
	if err != nil {
		return nil, err
	}

	entry := s.newEntry(userID, p, rec)
	if err := s.record(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RecommendByImage classifies the uploaded photo, stores it, and asks for a
// suggestion built around the recognised clothing type.
//
// A failed token exchange aborts the request. A rejected classification call
// does not: its message is used as the clothing type.
func (s *OutfitService) RecommendByImage(ctx context.Context, userID string, sel Selection, imageData []byte, mimeType string) (*domain.HistoryEntry, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}
	p, err := sel.parse()
	if err != nil {
		return nil, err
	}
	if s.classifier == nil {
		return nil, ErrClassifierUnavailable
	}

	s.logger.Info("image recommendation started", "user_id", userID, "mime_type", mimeType, "bytes", len(imageData))

	label, err := s.classifier.Classify(ctx, imageData)
	if err != nil {
		var apiErr *classifier.APIError
		if !errors.As(err, &apiErr) {
			return nil, fmt.Errorf("failed to classify image: %w", err)
		}
		s.logger.Warn("classification rejected", "user_id", userID, "status", apiErr.StatusCode, "body", apiErr.Body)
		label = apiErr.Error()
	}
	s.logger.Info("classification complete", "user_id", userID, "clothing_type", label)

	storageKey, err := s.photoStg.Save(ctx, userID, mimeType, bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}
	s.logger.Debug("photo saved", "user_id", userID, "storage_key", storageKey)

	rec, err := s.composer.Compose(ctx, composer.Request{
		Occasion:     p.occasion,
		Weather:      p.weather,
		Style:        p.style,
		ClothingType: label,
	})
	if err != nil {
		if stgErr := s.photoStg.Delete(ctx, storageKey); stgErr != nil {
			s.logger.Error("failed to remove photo after generation error", "storage_key", storageKey, "error", stgErr)
		}
		return nil, err
	}

	entry := s.newEntry(userID, p, rec)
	entry.ClothingType = &label
	entry.PhotoKey = storageKey
	if err := s.record(ctx, entry); err != nil {
		if stgErr := s.photoStg.Delete(ctx, storageKey); stgErr != nil {
			s.logger.Error("failed to remove photo after history error", "storage_key", storageKey, "error", stgErr)
		}
		return nil, err
	}
	return entry, nil
}

func (s *OutfitService) History(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}
	return s.history.Load(ctx, userID)
}

func (s *OutfitService) ExportHistory(ctx context.Context, userID string) ([]byte, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}
	return history.Export(ctx, s.history, userID)
}

// Photo returns a photo uploaded by userID. Keys belonging to other users are
// reported as not found.
func (s *OutfitService) Photo(ctx context.Context, userID, storageKey string) (io.ReadCloser, string, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, "", err
	}
	if !photostore.OwnedBy(storageKey, userID) {
		return nil, "", photostore.ErrNotFound
	}
	return s.photoStg.Get(ctx, storageKey)
}

func (s *OutfitService) newEntry(userID string, p parsedSelection, rec string) *domain.HistoryEntry {
	return &domain.HistoryEntry{
		UserID:         userID,
		Occasion:       p.occasion,
		Weather:        p.weather,
		Style:          p.style,
		Recommendation: rec,
		Timestamp:      s.now().Format(domain.TimestampLayout),
	}
}

func (s *OutfitService) record(ctx context.Context, entry *domain.HistoryEntry) error {
	if err := s.history.Append(ctx, *entry); err != nil {
		s.logger.Error("failed to record history", "user_id", entry.UserID, "error", err)
		return fmt.Errorf("failed to record history: %w", err)
	}
	s.logger.Info("recommendation recorded", "user_id", entry.UserID, "bytes", len(entry.Recommendation))
	return nil
}
