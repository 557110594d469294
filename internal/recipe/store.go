package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"reelchef/internal/apperr"
)

// Store defines the interface for recipe catalog operations.
type Store interface {
	List(ctx context.Context) []Recipe
	GetByID(ctx context.Context, id string) (*Recipe, error)
	Create(ctx context.Context, r Recipe) error
	Update(ctx context.Context, id string, r Recipe) error
	Modify(ctx context.Context, id string, edit func(*Recipe)) (*Recipe, error)
	Delete(ctx context.Context, id string) error
}

// Catalog keeps the whole recipe collection as one JSON array under a single
// key. Every call reads and, for mutations, rewrites the full value.
type Catalog struct {
	kv     KV
	key    string
	logger *zap.Logger

	// serializes read-modify-write within this process only
	mu sync.Mutex
}

// NewCatalog creates a Catalog backed by kv under key.
func NewCatalog(kv KV, key string, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{kv: kv, key: key, logger: logger}
}

func (c *Catalog) load(ctx context.Context) ([]Recipe, error) {
	data, ok, err := c.kv.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if !ok || len(data) == 0 {
		return []Recipe{}, nil
	}
	var recipes []Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	if recipes == nil {
		recipes = []Recipe{}
	}
	return recipes, nil
}

func (c *Catalog) save(ctx context.Context, recipes []Recipe) error {
	data, err := json.Marshal(recipes)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := c.kv.Set(ctx, c.key, data); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

// loadSoft reads the collection, falling back to empty when it cannot be read.
func (c *Catalog) loadSoft(ctx context.Context) []Recipe {
	recipes, err := c.load(ctx)
	if err != nil {
		c.logger.Warn("catalog unreadable, treating as empty", zap.String("key", c.key), zap.Error(err))
		return []Recipe{}
	}
	return recipes
}

// List returns every stored recipe in storage order.
func (c *Catalog) List(ctx context.Context) []Recipe {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadSoft(ctx)
}

// GetByID returns the recipe with the given id or an apperr NotFound error.
func (c *Catalog) GetByID(ctx context.Context, id string) (*Recipe, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.loadSoft(ctx) {
		if r.ID == id {
			found := r
			return &found, nil
		}
	}
	return nil, apperr.NotFound("Recipe not found")
}

// Create appends r. Id uniqueness is the caller's responsibility.
// Mutations never overwrite a collection that failed to decode.
func (c *Catalog) Create(ctx context.Context, r Recipe) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	recipes, err := c.load(ctx)
	if err != nil {
		c.logger.Error("refusing to overwrite unreadable catalog", zap.String("key", c.key), zap.Error(err))
		return err
	}
	if err := c.save(ctx, append(recipes, r)); err != nil {
		c.logger.Error("failed to create recipe", zap.String("id", r.ID), zap.Error(err))
		return err
	}
	return nil
}

// Update replaces the entry whose id equals id, keeping id as the stored id
// whatever r.ID says. Unknown ids are ignored.
func (c *Catalog) Update(ctx context.Context, id string, r Recipe) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	recipes, err := c.load(ctx)
	if err != nil {
		c.logger.Error("refusing to overwrite unreadable catalog", zap.String("key", c.key), zap.Error(err))
		return err
	}
	found := false
	for i := range recipes {
		if recipes[i].ID == id {
			r.ID = id
			recipes[i] = r
			found = true
		}
	}
	if !found {
		c.logger.Debug("update of unknown recipe ignored", zap.String("id", id))
		return nil
	}
	if err := c.save(ctx, recipes); err != nil {
		c.logger.Error("failed to update recipe", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// Modify applies edit to the stored recipe with the given id and saves the
// result in one locked cycle. The stored id is kept whatever edit does.
// Unknown ids return an apperr NotFound error.
func (c *Catalog) Modify(ctx context.Context, id string, edit func(*Recipe)) (*Recipe, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	recipes, err := c.load(ctx)
	if err != nil {
		c.logger.Error("refusing to overwrite unreadable catalog", zap.String("key", c.key), zap.Error(err))
		return nil, err
	}
	for i := range recipes {
		if recipes[i].ID != id {
			continue
		}
		r := recipes[i]
		edit(&r)
		r.ID = id
		recipes[i] = r
		if err := c.save(ctx, recipes); err != nil {
			c.logger.Error("failed to modify recipe", zap.String("id", id), zap.Error(err))
			return nil, err
		}
		return &r, nil
	}
	return nil, apperr.NotFound("Recipe not found")
}

// Delete removes the entry with the given id. Unknown ids are ignored.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	recipes, err := c.load(ctx)
	if err != nil {
		c.logger.Error("refusing to overwrite unreadable catalog", zap.String("key", c.key), zap.Error(err))
		return err
	}
	kept := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(recipes) {
		return nil
	}
	if err := c.save(ctx, kept); err != nil {
		c.logger.Error("failed to delete recipe", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}
