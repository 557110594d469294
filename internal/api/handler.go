package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reelchef/internal/apperr"
	"reelchef/internal/importer"
	"reelchef/internal/recipe"
)

// SessionHeader identifies the draft an import request belongs to.
const SessionHeader = "X-Draft-Session"

// Importer defines the interface for building drafts from reel links.
type Importer interface {
	ImportFromLink(ctx context.Context, reelURL string) (*importer.Result, error)
}

// Extractor defines the interface for structuring free-text descriptions.
type Extractor interface {
	Extract(ctx context.Context, description string) (*recipe.ExtractedParts, error)
}

// Handler handles HTTP requests.
type Handler struct {
	Store     recipe.Store
	Importer  Importer
	Extractor Extractor
	Tracker   *importer.Tracker

	Logger  *zap.Logger
	Timeout time.Duration
	Now     func() time.Time
}

// NewHandler creates a new Handler.
func NewHandler(store recipe.Store, imp Importer, extractor Extractor, logger *zap.Logger, timeout time.Duration) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Handler{
		Store:     store,
		Importer:  imp,
		Extractor: extractor,
		Tracker:   importer.NewTracker(),
		Logger:    logger,
		Timeout:   timeout,
		Now:       time.Now,
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/recipes", h.ListRecipes)
	r.GET("/recipes/:id", h.GetRecipe)
	r.POST("/recipes", h.CreateRecipe)
	r.PUT("/recipes/:id", h.UpdateRecipe)
	r.DELETE("/recipes/:id", h.DeleteRecipe)
	r.POST("/recipes/:id/tags", h.AddTag)
	r.DELETE("/recipes/:id/tags/:tag", h.RemoveTag)
	r.POST("/import", h.Import)
	r.POST("/extract", h.Extract)
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": apperr.KindOf(err)})
}

// ListRecipes returns every recipe, newest first, optionally filtered by ?q=.
func (h *Handler) ListRecipes(c *gin.Context) {
	recipes := h.Store.List(c.Request.Context())
	recipes = recipe.Search(recipes, c.Query("q"))
	recipe.SortNewestFirst(recipes)
	c.JSON(http.StatusOK, recipes)
}

// GetRecipe returns one recipe by id.
func (h *Handler) GetRecipe(c *gin.Context) {
	r, err := h.Store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// CreateRecipe saves a new recipe from the request body.
func (h *Handler) CreateRecipe(c *gin.Context) {
	var draft recipe.Recipe
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe payload: " + err.Error(), "kind": apperr.KindEmptyInput})
		return
	}

	r := recipe.Prepare(draft, h.Now())
	if err := h.Store.Create(c.Request.Context(), r); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// UpdateRecipe replaces an existing recipe. The path id always wins over the body id.
func (h *Handler) UpdateRecipe(c *gin.Context) {
	id := c.Param("id")

	var draft recipe.Recipe
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe payload: " + err.Error(), "kind": apperr.KindEmptyInput})
		return
	}

	r, err := h.Store.Modify(c.Request.Context(), id, func(existing *recipe.Recipe) {
		draft.ID = id
		if draft.CreatedAt.IsZero() {
			draft.CreatedAt = existing.CreatedAt
		}
		*existing = recipe.Prepare(draft, h.Now())
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// DeleteRecipe removes a recipe. Unknown ids succeed.
func (h *Handler) DeleteRecipe(c *gin.Context) {
	if err := h.Store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type tagRequest struct {
	Tag string `json:"tag"`
}

// AddTag adds a tag to a recipe.
func (h *Handler) AddTag(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Tag) == "" {
		h.fail(c, apperr.EmptyInput("Tag cannot be empty."))
		return
	}
	h.editTags(c, func(r *recipe.Recipe) { r.AddTag(req.Tag) })
}

// RemoveTag removes a tag from a recipe.
func (h *Handler) RemoveTag(c *gin.Context) {
	tag := c.Param("tag")
	h.editTags(c, func(r *recipe.Recipe) { r.RemoveTag(tag) })
}

func (h *Handler) editTags(c *gin.Context, edit func(*recipe.Recipe)) {
	r, err := h.Store.Modify(c.Request.Context(), c.Param("id"), edit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type importRequest struct {
	URL string `json:"url"`
}

// Import builds a draft from a reel link. When the request names a draft
// session and a newer import for it started meanwhile, the result is
// discarded with 409.
func (h *Handler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperr.EmptyInput("Please enter a reel link first."))
		return
	}

	session := c.GetHeader(SessionHeader)
	var ticket uint64
	if session != "" {
		ticket = h.Tracker.Begin(session)
		defer h.Tracker.Finish(session, ticket)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	res, err := h.Importer.ImportFromLink(ctx, req.URL)
	if session != "" && !h.Tracker.IsCurrent(session, ticket) {
		h.Logger.Info("discarding superseded import", zap.String("session", session), zap.Uint64("ticket", ticket))
		c.JSON(http.StatusConflict, gin.H{"error": "A newer import for this draft was started; this result was discarded."})
		return
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			h.Logger.Info("import abandoned by client", zap.String("url", req.URL))
			c.Status(499)
			return
		}
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Import timed out after " + h.Timeout.String()})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type extractRequest struct {
	Description string `json:"description"`
}

// Extract structures a pasted description without touching the catalog.
func (h *Handler) Extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperr.EmptyInput("Invalid request payload."))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	parts, err := h.Extractor.Extract(ctx, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, parts)
}
