package recipe

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ingredient is one line of a recipe. Quantities are opaque text.
type Ingredient struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Quantity       string `json:"quantity"`
	QuantityMetric string `json:"quantityMetric"`
}

// Recipe is a saved catalog entry.
type Recipe struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Ingredients     []Ingredient `json:"ingredients"`
	Steps           []string     `json:"steps"`
	Notes           string       `json:"notes,omitempty"`
	ThumbnailURL    string       `json:"thumbnailUrl"`
	OriginalLink    string       `json:"originalLink"`
	CreatorUsername string       `json:"creatorUsername,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	Tags            []string     `json:"tags,omitempty"`
}

// ReelMetadata is what the reel backend knows about a post.
type ReelMetadata struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	CreatorUsername string `json:"creatorUsername"`
	ThumbnailURL    string `json:"thumbnailUrl"`
	OriginalLink    string `json:"originalLink"`
}

// ExtractedParts is the structured result of running a free-text description
// through the text-structuring model.
type ExtractedParts struct {
	Ingredients    []Ingredient `json:"ingredients"`
	Steps          []string     `json:"steps"`
	ExtractedNotes string       `json:"extractedNotes"`
	SuggestedTitle string       `json:"suggestedTitle"`
}

// EmptyExtractedParts returns a result with every field empty but non-nil.
func EmptyExtractedParts() *ExtractedParts {
	return &ExtractedParts{Ingredients: []Ingredient{}, Steps: []string{}}
}

// NewID returns a fresh identifier for a recipe or ingredient.
func NewID() string {
	return uuid.NewString()
}

// BlankIngredient returns an empty ingredient row with its own id.
func BlankIngredient() Ingredient {
	return Ingredient{ID: NewID()}
}

// NormalizeTag lowercases and trims a tag.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags normalizes every tag, dropping blanks and duplicates while
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = AddTag(out, t)
	}
	return out
}

// AddTag appends tag in normalized form unless it is blank or already present.
func AddTag(tags []string, tag string) []string {
	n := NormalizeTag(tag)
	if n == "" {
		return tags
	}
	for _, t := range tags {
		if t == n {
			return tags
		}
	}
	return append(tags, n)
}

// RemoveTag drops tag (compared in normalized form).
func RemoveTag(tags []string, tag string) []string {
	n := NormalizeTag(tag)
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != n {
			out = append(out, t)
		}
	}
	return out
}

// AddTag adds a tag to the recipe.
func (r *Recipe) AddTag(tag string) {
	r.Tags = AddTag(r.Tags, tag)
}

// RemoveTag removes a tag from the recipe.
func (r *Recipe) RemoveTag(tag string) {
	r.Tags = RemoveTag(r.Tags, tag)
}
