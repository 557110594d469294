package recipe

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTitle is used when a recipe is saved without a title.
const DefaultTitle = "Untitled Recipe"

// PlaceholderThumbnail returns the image shown for recipes saved without a thumbnail.
func PlaceholderThumbnail(now time.Time) string {
	return fmt.Sprintf("https://picsum.photos/seed/%d/400/300", now.UnixMilli())
}

// Prepare turns an edited draft into the form that gets saved: blank rows
// are dropped, free-text fields are trimmed, tags are normalized and missing
// ids, titles, thumbnails and timestamps are filled in.
func Prepare(draft Recipe, now time.Time) Recipe {
	r := draft
	if strings.TrimSpace(r.ID) == "" {
		r.ID = NewID()
	}

	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		r.Title = DefaultTitle
	}

	ingredients := make([]Ingredient, 0, len(draft.Ingredients))
	for _, ing := range draft.Ingredients {
		if strings.TrimSpace(ing.Name) == "" && strings.TrimSpace(ing.Quantity) == "" {
			continue
		}
		if ing.ID == "" {
			ing.ID = NewID()
		}
		ingredients = append(ingredients, ing)
	}
	r.Ingredients = ingredients

	steps := make([]string, 0, len(draft.Steps))
	for _, s := range draft.Steps {
		if strings.TrimSpace(s) != "" {
			steps = append(steps, s)
		}
	}
	r.Steps = steps

	r.Notes = strings.TrimSpace(r.Notes)
	r.OriginalLink = strings.TrimSpace(r.OriginalLink)
	r.CreatorUsername = strings.TrimSpace(r.CreatorUsername)
	r.ThumbnailURL = strings.TrimSpace(r.ThumbnailURL)
	if r.ThumbnailURL == "" {
		r.ThumbnailURL = PlaceholderThumbnail(now)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now.UTC()
	}
	r.Tags = NormalizeTags(draft.Tags)
	return r
}
