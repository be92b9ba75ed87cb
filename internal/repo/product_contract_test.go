package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogerio-castellano/inventory-shell/internal/models"
)

// productRepositoryContract runs the behaviour every backend must share.
// newRepo must return an empty repository.
func productRepositoryContract(t *testing.T, newRepo func(t *testing.T) ProductRepository) {
	ctx := context.Background()

	seed := func(t *testing.T, r ProductRepository, products ...models.Product) {
		t.Helper()
		for _, p := range products {
			_, err := r.Create(ctx, p)
			require.NoError(t, err)
		}
	}

	names := func(products []models.Product) []string {
		out := make([]string, 0, len(products))
		for _, p := range products {
			out = append(out, p.Name)
		}
		return out
	}

	t.Run("Create then All returns the exact fields", func(t *testing.T) {
		r := newRepo(t)

		created, err := r.Create(ctx, models.Product{Name: "Laptop", Quantity: 4, Price: 1499.5})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)

		all, err := Collect(r.All(ctx))
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, created.ID, all[0].ID)
		assert.Equal(t, "Laptop", all[0].Name)
		assert.Equal(t, 4, all[0].Quantity)
		assert.Equal(t, 1499.5, all[0].Price)
	})

	t.Run("Create accepts duplicate names", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r, models.Product{Name: "Bolt", Quantity: 1, Price: 1}, models.Product{Name: "Bolt", Quantity: 2, Price: 1})

		all, err := Collect(r.All(ctx))
		require.NoError(t, err)
		assert.Equal(t, []string{"Bolt", "Bolt"}, names(all))
	})

	t.Run("DeleteByName removes one exact match", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r,
			models.Product{Name: "Bolt", Quantity: 1, Price: 1},
			models.Product{Name: "Bolt", Quantity: 2, Price: 1},
			models.Product{Name: "bolt", Quantity: 3, Price: 1},
		)

		deleted, err := r.DeleteByName(ctx, "Bolt")
		require.NoError(t, err)
		assert.True(t, deleted)

		all, err := Collect(r.All(ctx))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Bolt", "bolt"}, names(all))
	})

	t.Run("DeleteByName on a missing name is a no-op", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r, models.Product{Name: "Widget", Quantity: 1, Price: 2})

		deleted, err := r.DeleteByName(ctx, "Gizmo")
		require.NoError(t, err)
		assert.False(t, deleted)

		all, err := Collect(r.All(ctx))
		require.NoError(t, err)
		assert.Equal(t, []string{"Widget"}, names(all))
	})

	t.Run("Search matches prefixes case-insensitively", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r,
			models.Product{Name: "Widget", Quantity: 1, Price: 1},
			models.Product{Name: "Gadget", Quantity: 1, Price: 1},
			models.Product{Name: "WidgetPro", Quantity: 1, Price: 1},
		)

		for _, prefix := range []string{"Wid", "wid", "WID"} {
			found, err := Collect(r.Search(ctx, prefix))
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"Widget", "WidgetPro"}, names(found), "prefix %q", prefix)
		}
	})

	t.Run("Search treats pattern characters literally", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r,
			models.Product{Name: "a.b", Quantity: 1, Price: 1},
			models.Product{Name: "axb", Quantity: 1, Price: 1},
			models.Product{Name: "50% off", Quantity: 1, Price: 1},
			models.Product{Name: "500 units", Quantity: 1, Price: 1},
		)

		found, err := Collect(r.Search(ctx, "a.b"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a.b"}, names(found))

		found, err = Collect(r.Search(ctx, "50%"))
		require.NoError(t, err)
		assert.Equal(t, []string{"50% off"}, names(found))
	})

	t.Run("Search with no match yields nothing", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r, models.Product{Name: "Gadget", Quantity: 1, Price: 1})

		found, err := Collect(r.Search(ctx, "Wid"))
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("UpdateQuantity with no match changes nothing", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r, models.Product{Name: "Widget", Quantity: 7, Price: 1})

		n, err := r.UpdateQuantity(ctx, "Gizmo", 99, UpdateFirst)
		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.Zero(t, n)

		all, err := Collect(r.All(ctx))
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, 7, all[0].Quantity)
	})

	t.Run("UpdateQuantity matches substrings case-insensitively", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r, models.Product{Name: "Blue Widget", Quantity: 7, Price: 1})

		n, err := r.UpdateQuantity(ctx, "WIDG", 3, UpdateFirst)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		all, err := Collect(r.All(ctx))
		require.NoError(t, err)
		assert.Equal(t, 3, all[0].Quantity)
	})

	t.Run("UpdateQuantity first mode updates exactly one match", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r,
			models.Product{Name: "Widget", Quantity: 1, Price: 1},
			models.Product{Name: "WidgetPro", Quantity: 1, Price: 1},
		)

		n, err := r.UpdateQuantity(ctx, "widget", 10, UpdateFirst)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		all, err := Collect(r.All(ctx))
		require.NoError(t, err)
		updated := 0
		for _, p := range all {
			if p.Quantity == 10 {
				updated++
			}
		}
		assert.Equal(t, 1, updated)
	})

	t.Run("UpdateQuantity all mode updates every match", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r,
			models.Product{Name: "Widget", Quantity: 1, Price: 1},
			models.Product{Name: "WidgetPro", Quantity: 1, Price: 1},
			models.Product{Name: "Gadget", Quantity: 1, Price: 1},
		)

		n, err := r.UpdateQuantity(ctx, "widget", 10, UpdateAll)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		all, err := Collect(r.All(ctx))
		require.NoError(t, err)
		for _, p := range all {
			if p.Name == "Gadget" {
				assert.Equal(t, 1, p.Quantity)
			} else {
				assert.Equal(t, 10, p.Quantity, p.Name)
			}
		}
	})

	t.Run("UpdateQuantity unique mode rejects ambiguous patterns", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r,
			models.Product{Name: "Widget", Quantity: 1, Price: 1},
			models.Product{Name: "WidgetPro", Quantity: 1, Price: 1},
		)

		_, err := r.UpdateQuantity(ctx, "widget", 10, UpdateUnique)
		assert.ErrorIs(t, err, ErrAmbiguousMatch)

		all, err := Collect(r.All(ctx))
		require.NoError(t, err)
		for _, p := range all {
			assert.Equal(t, 1, p.Quantity, p.Name)
		}

		n, err := r.UpdateQuantity(ctx, "widgetpro", 10, UpdateUnique)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		_, err = r.UpdateQuantity(ctx, "gizmo", 10, UpdateUnique)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Totals sums quantity and value", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r,
			models.Product{Name: "A", Quantity: 2, Price: 3},
			models.Product{Name: "B", Quantity: 1, Price: 10},
		)

		totals, err := r.Totals(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 3, totals.Quantity)
		assert.InDelta(t, 16.0, totals.Value, 1e-9)
	})

	t.Run("Totals on an empty collection is zero", func(t *testing.T) {
		r := newRepo(t)

		totals, err := r.Totals(ctx)
		require.NoError(t, err)
		assert.Equal(t, Totals{}, totals)
	})

	t.Run("LowStock is inclusive of the threshold", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r,
			models.Product{Name: "two", Quantity: 2, Price: 1},
			models.Product{Name: "five", Quantity: 5, Price: 1},
			models.Product{Name: "nine", Quantity: 9, Price: 1},
		)

		low, err := Collect(r.LowStock(ctx, 5))
		require.NoError(t, err)
		assert.Equal(t, []string{"two", "five"}, names(low))
	})

	t.Run("sequences stop when the consumer stops", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r,
			models.Product{Name: "one", Quantity: 1, Price: 1},
			models.Product{Name: "two", Quantity: 2, Price: 1},
		)

		seen := 0
		for _, err := range r.All(ctx) {
			require.NoError(t, err)
			seen++
			break
		}
		assert.Equal(t, 1, seen)
	})
}
