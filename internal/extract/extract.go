package extract

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"reelchef/internal/apperr"
	"reelchef/internal/recipe"
)

// Generator sends a prompt to a text model and returns its raw answer.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Extractor turns free-text recipe descriptions into structured parts.
type Extractor struct {
	gen    Generator
	logger *zap.Logger
	newID  func() string
}

// New creates an Extractor. gen may be nil when no model is configured;
// Extract then fails with a configuration error for non-blank input.
func New(gen Generator, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{gen: gen, logger: logger, newID: recipe.NewID}
}

// Extract asks the model to structure description. Malformed fields are
// defaulted; only a failed call or an unparseable answer is an error.
func (e *Extractor) Extract(ctx context.Context, description string) (*recipe.ExtractedParts, error) {
	if strings.TrimSpace(description) == "" {
		e.logger.Debug("description is empty, skipping AI processing")
		return recipe.EmptyExtractedParts(), nil
	}
	if e.gen == nil {
		return nil, apperr.Configuration("AI client is not initialized. Set gemini_api_key in config.json or the GEMINI_API_KEY environment variable.")
	}

	raw, err := e.gen.GenerateText(ctx, BuildPrompt(description))
	if err != nil {
		e.logger.Error("AI text generation failed", zap.Error(err))
		return nil, apperr.AIProcessing(err, "Failed to extract recipe parts with AI: %v", err)
	}

	cleaned := Sanitize(raw)
	parts, err := decodeParts(cleaned, e.newID)
	if err != nil {
		e.logger.Error("failed to parse AI response",
			zap.String("raw", raw),
			zap.String("processed", cleaned),
			zap.Error(err),
		)
		return nil, apperr.AIProcessing(err, "Failed to extract recipe parts with AI: %v", err)
	}
	return parts, nil
}
