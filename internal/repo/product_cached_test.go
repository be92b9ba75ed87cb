package repo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogerio-castellano/inventory-shell/internal/models"
)

type fakeCache struct {
	values     map[string][]byte
	deletes    int
	fail       error
	failDelete error
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string][]byte{}}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, v any) (bool, error) {
	if c.fail != nil {
		return false, c.fail
	}
	raw, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, v any) error {
	if c.fail != nil {
		return c.fail
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	if c.fail != nil {
		return c.fail
	}
	if c.failDelete != nil {
		return c.failDelete
	}
	c.deletes++
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func TestCachedProductRepository(t *testing.T) {
	productRepositoryContract(t, func(t *testing.T) ProductRepository {
		return NewCachedProductRepository(NewInMemoryProductRepository(), newFakeCache(), zerolog.Nop())
	})
}

func TestCachedProductRepository_ServesTotalsFromCache(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	cache.values[TotalsKey] = []byte(`{"total_quantity":42,"total_value":4.2}`)
	r := NewCachedProductRepository(NewInMemoryProductRepository(), cache, zerolog.Nop())

	totals, err := r.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, Totals{Quantity: 42, Value: 4.2}, totals)
}

func TestCachedProductRepository_WritesInvalidate(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	r := NewCachedProductRepository(NewInMemoryProductRepository(), cache, zerolog.Nop())

	_, err := r.Create(ctx, models.Product{Name: "A", Quantity: 2, Price: 3})
	require.NoError(t, err)

	totals, err := r.Totals(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, totals.Quantity)
	assert.Contains(t, cache.values, TotalsKey)

	_, err = r.UpdateQuantity(ctx, "a", 5, UpdateFirst)
	require.NoError(t, err)
	assert.NotContains(t, cache.values, TotalsKey)

	totals, err = r.Totals(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, totals.Quantity)

	deletesBefore := cache.deletes
	deleted, err := r.DeleteByName(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, deletesBefore, cache.deletes, "no-op delete must keep the cached report")

	_, err = r.DeleteByName(ctx, "A")
	require.NoError(t, err)
	assert.NotContains(t, cache.values, TotalsKey)
}

func TestCachedProductRepository_FallsBackWhenCacheFails(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	cache.fail = errors.New("connection refused")
	r := NewCachedProductRepository(NewInMemoryProductRepository(), cache, zerolog.Nop())

	_, err := r.Create(ctx, models.Product{Name: "A", Quantity: 2, Price: 3})
	require.NoError(t, err)

	totals, err := r.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, Totals{Quantity: 2, Value: 6}, totals)
}

func TestCachedProductRepository_FailedInvalidationSkipsStaleReport(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	r := NewCachedProductRepository(NewInMemoryProductRepository(), cache, zerolog.Nop())

	_, err := r.Create(ctx, models.Product{Name: "A", Quantity: 2, Price: 3})
	require.NoError(t, err)
	totals, err := r.Totals(ctx)
	require.NoError(t, err)
	require.Equal(t, Totals{Quantity: 2, Value: 6}, totals)

	cache.failDelete = errors.New("i/o timeout")
	_, err = r.Create(ctx, models.Product{Name: "B", Quantity: 1, Price: 10})
	require.NoError(t, err)

	totals, err = r.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, Totals{Quantity: 3, Value: 16}, totals)

	cache.failDelete = nil
	_, err = r.UpdateQuantity(ctx, "b", 4, UpdateFirst)
	require.NoError(t, err)

	totals, err = r.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, Totals{Quantity: 6, Value: 46}, totals)

	var cached Totals
	hit, err := cache.GetJSON(ctx, TotalsKey, &cached)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, totals, cached)
}

func TestCachedProductRepository_ReportAfterFailedDeleteInvalidation(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	r := NewCachedProductRepository(NewInMemoryProductRepository(), cache, zerolog.Nop())

	_, err := r.Create(ctx, models.Product{Name: "A", Quantity: 2, Price: 3})
	require.NoError(t, err)
	_, err = r.Totals(ctx)
	require.NoError(t, err)

	cache.failDelete = errors.New("i/o timeout")
	_, err = r.DeleteByName(ctx, "A")
	require.NoError(t, err)

	for range 2 {
		totals, err := r.Totals(ctx)
		require.NoError(t, err)
		assert.Equal(t, Totals{}, totals)
	}
}
