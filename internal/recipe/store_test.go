package recipe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"reelchef/internal/apperr"
)

const testKey = "recipes"

func sampleRecipe(id, title string) Recipe {
	return Recipe{
		ID:    id,
		Title: title,
		Ingredients: []Ingredient{
			{ID: id + "-1", Name: "Flour", Quantity: "1 cup", QuantityMetric: "120g"},
			{ID: id + "-2", Name: "Eggs", Quantity: "2", QuantityMetric: ""},
		},
		Steps:           []string{"Mix", "Bake"},
		Notes:           "Family favourite",
		ThumbnailURL:    "https://example.com/thumb.jpg",
		OriginalLink:    "https://www.instagram.com/reel/abc",
		CreatorUsername: "chef",
		CreatedAt:       time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
		Tags:            []string{"baking"},
	}
}

func newTestCatalog(t *testing.T) (*Catalog, *MemoryKV) {
	kv := NewMemoryKV()
	return NewCatalog(kv, testKey, zaptest.NewLogger(t)), kv
}

func TestCatalog_CreateThenGet(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()
	r := sampleRecipe("r1", "Pancakes")

	require.NoError(t, c.Create(ctx, r))

	got, err := c.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, r, *got)
}

func TestCatalog_ListEmptyWhenKeyMissing(t *testing.T) {
	c, _ := newTestCatalog(t)
	recipes := c.List(context.Background())
	assert.NotNil(t, recipes)
	assert.Empty(t, recipes)
}

func TestCatalog_ListFailsSoftOnCorruptBlob(t *testing.T) {
	c, kv := newTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, testKey, []byte("{not json")))

	assert.Empty(t, c.List(ctx))

	_, err := c.GetByID(ctx, "r1")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCatalog_MutationsKeepCorruptBlob(t *testing.T) {
	c, kv := newTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, testKey, []byte("{not json")))

	assert.Error(t, c.Create(ctx, sampleRecipe("r1", "Pancakes")))

	data, _, err := kv.Get(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestCatalog_UpdateForcesID(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.Create(ctx, sampleRecipe("r1", "Pancakes")))
	require.NoError(t, c.Create(ctx, sampleRecipe("r2", "Waffles")))

	replacement := sampleRecipe("something-else", "Crepes")
	require.NoError(t, c.Update(ctx, "r1", replacement))

	got, err := c.GetByID(ctx, "r1")
	require.NoError(t, err)
	want := replacement
	want.ID = "r1"
	assert.Equal(t, want, *got)

	_, err = c.GetByID(ctx, "something-else")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Len(t, c.List(ctx), 2)
}

func TestCatalog_UpdateUnknownIsNoop(t *testing.T) {
	c, kv := newTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.Create(ctx, sampleRecipe("r1", "Pancakes")))
	before, _, _ := kv.Get(ctx, testKey)

	require.NoError(t, c.Update(ctx, "missing", sampleRecipe("missing", "Ghost")))

	after, _, _ := kv.Get(ctx, testKey)
	assert.Equal(t, before, after)
}

func TestCatalog_ModifyKeepsIDAndSaves(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.Create(ctx, sampleRecipe("r1", "Pancakes")))

	got, err := c.Modify(ctx, "r1", func(r *Recipe) {
		r.ID = "other"
		r.Title = "Crepes"
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)

	stored, err := c.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Crepes", stored.Title)
}

func TestCatalog_ModifyUnknown(t *testing.T) {
	c, kv := newTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.Create(ctx, sampleRecipe("r1", "Pancakes")))
	before, _, _ := kv.Get(ctx, testKey)

	called := false
	_, err := c.Modify(ctx, "missing", func(r *Recipe) { called = true })
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.False(t, called)

	after, _, _ := kv.Get(ctx, testKey)
	assert.Equal(t, before, after)
}

func TestCatalog_ConcurrentModifyKeepsEveryEdit(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()
	r := sampleRecipe("r1", "Pancakes")
	r.Tags = nil
	require.NoError(t, c.Create(ctx, r))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.Modify(ctx, "r1", func(r *Recipe) {
				r.AddTag(fmt.Sprintf("tag-%d", i))
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := c.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, stored.Tags, n)
}

func TestCatalog_Delete(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.Create(ctx, sampleRecipe("r1", "Pancakes")))
	require.NoError(t, c.Create(ctx, sampleRecipe("r2", "Waffles")))

	require.NoError(t, c.Delete(ctx, "r1"))

	_, err := c.GetByID(ctx, "r1")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	remaining := c.List(ctx)
	require.Len(t, remaining, 1)
	assert.Equal(t, "r2", remaining[0].ID)
}

func TestCatalog_DeleteUnknownLeavesCollection(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()
	r1 := sampleRecipe("r1", "Pancakes")
	r2 := sampleRecipe("r2", "Waffles")
	require.NoError(t, c.Create(ctx, r1))
	require.NoError(t, c.Create(ctx, r2))

	require.NoError(t, c.Delete(ctx, "nope"))

	assert.Equal(t, []Recipe{r1, r2}, c.List(ctx))
}

func TestCatalog_OnFileKV(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)
	c := NewCatalog(kv, testKey, zaptest.NewLogger(t))
	ctx := context.Background()
	r := sampleRecipe("r1", "Pancakes")

	require.NoError(t, c.Create(ctx, r))

	got, err := c.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, r, *got)
}

type failingKV struct{ err error }

func (f failingKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, f.err
}

func (f failingKV) Set(ctx context.Context, key string, value []byte) error {
	return f.err
}

func TestCatalog_UnreadableStore(t *testing.T) {
	c := NewCatalog(failingKV{err: errors.New("disk gone")}, testKey, zaptest.NewLogger(t))
	ctx := context.Background()

	assert.Empty(t, c.List(ctx))
	assert.Error(t, c.Create(ctx, sampleRecipe("r1", "Pancakes")))
}
