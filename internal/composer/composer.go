// Package composer turns the user's selections into a prompt and asks a text
// generator for one outfit suggestion.
package composer

import (
	"context"
	"errors"
	"fmt"

	"github.com/vbonduro/wardrobe/internal/domain"
	"github.com/vbonduro/wardrobe/internal/textgen"
)

// ErrGeneration wraps every failure of the underlying generator.
var ErrGeneration = errors.New("text generation failed")

// Request holds the selections for one suggestion. ClothingType is set for
// image-based suggestions and takes the place of Style in the prompt.
type Request struct {
	Occasion     domain.Occasion
	Weather      domain.Weather
	Style        domain.Style
	ClothingType string
}

type Composer struct {
	gen       textgen.Generator
	maxTokens int
}

func New(gen textgen.Generator, maxTokens int) *Composer {
	return &Composer{gen: gen, maxTokens: maxTokens}
}

// TextPrompt builds the prompt for a suggestion from occasion, weather and an
// optional style.
func TextPrompt(occasion domain.Occasion, weather domain.Weather, style domain.Style) string {
	if style == "" {
		return fmt.Sprintf("Recommend an outfit for a %s occasion in %s weather:",
			occasion.Label(), weather.Label())
	}
	return fmt.Sprintf("Recommend a %s style outfit for a %s occasion in %s weather:",
		style.Label(), occasion.Label(), weather.Label())
}

// ImagePrompt builds the prompt for a suggestion built around a recognised
// piece of clothing.
func ImagePrompt(occasion domain.Occasion, weather domain.Weather, clothingType string) string {
	return fmt.Sprintf("For a %s occasion in %s weather, recommend an outfit that includes %s:",
		occasion.Label(), weather.Label(), clothingType)
}

// Prompt returns the prompt Compose sends for req.
func (r Request) Prompt() string {
	if r.ClothingType != "" {
		return ImagePrompt(r.Occasion, r.Weather, r.ClothingType)
	}
	return TextPrompt(r.Occasion, r.Weather, r.Style)
}

// Compose makes exactly one generation call. Its output is returned as is.
func (c *Composer) Compose(ctx context.Context, req Request) (string, error) {
	text, err := c.gen.Generate(ctx, req.Prompt(), textgen.Options{MaxTokens: c.maxTokens})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return text, nil
}
