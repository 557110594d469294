package importer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"reelchef/internal/recipe"
)

// Placeholders used while seeding a draft.
const (
	FallbackReelTitle  = "Recipe from Reel"
	FallbackAITitle    = "AI Suggested Recipe"
	NoDescriptionNotes = "No description was found in the fetched data to process with AI."

	// DefaultNotesThreshold is the extracted-notes length, in characters, at or below which
	// the notes are considered trivial and dropped.
	DefaultNotesThreshold = 20
)

// Fetcher returns metadata for a reel URL.
type Fetcher interface {
	Fetch(ctx context.Context, reelURL string) (*recipe.ReelMetadata, error)
}

// Extractor structures a free-text description.
type Extractor interface {
	Extract(ctx context.Context, description string) (*recipe.ExtractedParts, error)
}

// ThumbnailStore makes a local copy of a remote thumbnail.
type ThumbnailStore interface {
	Store(ctx context.Context, src string) (string, error)
}

// Options tunes an Importer.
type Options struct {
	// NotesThreshold overrides DefaultNotesThreshold when set. Zero keeps
	// any non-empty extracted notes.
	NotesThreshold *int
	// Thumbnails, when set, receives every fetched thumbnail URL.
	Thumbnails ThumbnailStore
	Now        func() time.Time
}

// Result is a draft built from a link, plus a non-fatal warning when the AI
// stage failed.
type Result struct {
	Draft   recipe.Recipe `json:"draft"`
	Warning string        `json:"warning,omitempty"`
}

// Importer builds recipe drafts from reel links.
type Importer struct {
	fetcher        Fetcher
	extractor      Extractor
	thumbnails     ThumbnailStore
	notesThreshold int
	now            func() time.Time
	logger         *zap.Logger
}

// New creates an Importer.
func New(fetcher Fetcher, extractor Extractor, opts Options, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := DefaultNotesThreshold
	if opts.NotesThreshold != nil && *opts.NotesThreshold >= 0 {
		threshold = *opts.NotesThreshold
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Importer{
		fetcher:        fetcher,
		extractor:      extractor,
		thumbnails:     opts.Thumbnails,
		notesThreshold: threshold,
		now:            now,
		logger:         logger,
	}
}

// ImportFromLink fetches the reel behind reelURL and builds a draft from it.
// A fetch failure aborts the import. A failure of any later stage keeps what
// was already gathered and is reported as Result.Warning.
func (i *Importer) ImportFromLink(ctx context.Context, reelURL string) (*Result, error) {
	meta, err := i.fetcher.Fetch(ctx, reelURL)
	if err != nil {
		return nil, err
	}

	draft := i.seedDraft(reelURL, meta)
	res := &Result{Draft: draft}

	if i.thumbnails != nil && draft.ThumbnailURL != "" {
		local, err := i.thumbnails.Store(ctx, draft.ThumbnailURL)
		if err != nil {
			i.logger.Warn("failed to cache thumbnail, keeping remote URL",
				zap.String("thumbnail", draft.ThumbnailURL), zap.Error(err))
		} else {
			res.Draft.ThumbnailURL = local
		}
	}

	if strings.TrimSpace(meta.Description) == "" {
		return res, nil
	}

	parts, err := i.extractor.Extract(ctx, meta.Description)
	if err != nil {
		i.logger.Warn("AI text processing failed, keeping fetched data",
			zap.String("url", reelURL), zap.Error(err))
		res.Draft.Notes = meta.Description
		res.Warning = fmt.Sprintf("Error processing description with AI: %s. You can edit manually.", err.Error())
		return res, nil
	}

	i.applyParts(&res.Draft, meta, parts)
	return res, nil
}

func (i *Importer) seedDraft(reelURL string, meta *recipe.ReelMetadata) recipe.Recipe {
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = FallbackReelTitle
	}
	notes := meta.Description
	if strings.TrimSpace(notes) == "" {
		notes = NoDescriptionNotes
	}
	link := meta.OriginalLink
	if link == "" {
		link = strings.TrimSpace(reelURL)
	}
	return recipe.Recipe{
		ID:              recipe.NewID(),
		Title:           title,
		Ingredients:     []recipe.Ingredient{recipe.BlankIngredient()},
		Steps:           []string{""},
		Notes:           notes,
		ThumbnailURL:    meta.ThumbnailURL,
		OriginalLink:    link,
		CreatorUsername: meta.CreatorUsername,
		CreatedAt:       i.now().UTC(),
		Tags:            []string{},
	}
}

func (i *Importer) applyParts(draft *recipe.Recipe, meta *recipe.ReelMetadata, parts *recipe.ExtractedParts) {
	switch {
	case parts.SuggestedTitle != "":
		draft.Title = parts.SuggestedTitle
	case strings.TrimSpace(meta.Title) != "":
		draft.Title = strings.TrimSpace(meta.Title)
	default:
		draft.Title = FallbackAITitle
	}

	if len(parts.Ingredients) > 0 {
		draft.Ingredients = make([]recipe.Ingredient, len(parts.Ingredients))
		for n, ing := range parts.Ingredients {
			if ing.ID == "" {
				ing.ID = recipe.NewID()
			}
			draft.Ingredients[n] = ing
		}
	} else {
		draft.Ingredients = []recipe.Ingredient{recipe.BlankIngredient()}
	}

	if len(parts.Steps) > 0 {
		draft.Steps = append([]string(nil), parts.Steps...)
	} else {
		draft.Steps = []string{""}
	}

	if utf8.RuneCountInString(parts.ExtractedNotes) > i.notesThreshold {
		draft.Notes = fmt.Sprintf("Original Description:\n%s\n\nAI Extracted Notes:\n%s", meta.Description, parts.ExtractedNotes)
	} else {
		draft.Notes = meta.Description
	}
}
