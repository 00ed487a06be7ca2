package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrily/rationer/internal/contract"
	"github.com/nutrily/rationer/schema"
)

// newTestStore opens a SQLite-backed store in a temp directory.
func newTestStore(t *testing.T) contract.CatalogStore {
	t.Helper()
	store, err := NewStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleProduct(name string) schema.Product {
	return schema.Product{
		Name:            name,
		PerHundredGrams: schema.Vector{schema.Protein: 13.5, schema.ComplexCarbs: 55}.WithDerivedCalories(),
		StepGrams:       30,
		MaxPortions:     3,
	}
}

// TestStoreCRUD walks the full product lifecycle on SQLite.
func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("empty catalog lists nothing", func(t *testing.T) {
		products, err := store.ListProducts(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("add and get", func(t *testing.T) {
		require.NoError(t, store.AddProduct(ctx, sampleProduct("oats")))

		got, err := store.GetProduct(ctx, "oats")
		require.NoError(t, err)
		assert.Equal(t, sampleProduct("oats"), got)
	})

	t.Run("duplicate add is rejected", func(t *testing.T) {
		err := store.AddProduct(ctx, sampleProduct("oats"))
		assert.ErrorIs(t, err, contract.ErrProductExists)
	})

	t.Run("update changes stored values", func(t *testing.T) {
		updated := sampleProduct("oats")
		updated.StepGrams = 40
		updated.MaxPortions = 2
		require.NoError(t, store.UpdateProduct(ctx, "oats", updated))

		got, err := store.GetProduct(ctx, "oats")
		require.NoError(t, err)
		assert.InDelta(t, 40.0, got.StepGrams, 1e-9)
		assert.InDelta(t, 2.0, got.MaxPortions, 1e-9)
	})

	t.Run("update can rename", func(t *testing.T) {
		renamed := sampleProduct("rolled oats")
		require.NoError(t, store.UpdateProduct(ctx, "oats", renamed))

		_, err := store.GetProduct(ctx, "oats")
		assert.ErrorIs(t, err, contract.ErrProductNotFound)

		got, err := store.GetProduct(ctx, "rolled oats")
		require.NoError(t, err)
		assert.Equal(t, renamed, got)
	})

	t.Run("update unknown product", func(t *testing.T) {
		err := store.UpdateProduct(ctx, "ghost", sampleProduct("ghost"))
		assert.ErrorIs(t, err, contract.ErrProductNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteProduct(ctx, "rolled oats"))
		assert.ErrorIs(t, store.DeleteProduct(ctx, "rolled oats"), contract.ErrProductNotFound)
	})
}

// TestStoreKcalAlwaysDerived proves a store round trip recomputes calories
// even when the caller passes an inconsistent vector.
func TestStoreKcalAlwaysDerived(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	p := sampleProduct("chicken")
	p.PerHundredGrams[schema.Calories] = 99999
	require.NoError(t, store.AddProduct(ctx, p))

	got, err := store.GetProduct(ctx, "chicken")
	require.NoError(t, err)
	assert.InDelta(t, schema.DeriveCalories(p.PerHundredGrams), got.PerHundredGrams[schema.Calories], 1e-9)
}

// TestStoreListOrdering lists products sorted by name.
func TestStoreListOrdering(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, name := range []string{"rice", "apple", "lentils"} {
		require.NoError(t, store.AddProduct(ctx, sampleProduct(name)))
	}

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "apple", products[0].Name)
	assert.Equal(t, "lentils", products[1].Name)
	assert.Equal(t, "rice", products[2].Name)
}

// TestStoreReplaceProducts swaps the whole catalog atomically.
func TestStoreReplaceProducts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.AddProduct(ctx, sampleProduct("old")))
	require.NoError(t, store.ReplaceProducts(ctx, []schema.Product{
		sampleProduct("new one"),
		sampleProduct("new two"),
	}))

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "new one", products[0].Name)
	assert.Equal(t, "new two", products[1].Name)
}

// TestStoreReplaceProductsDuplicateName maps the primary-key violation to
// ErrProductExists and keeps the previous catalog via rollback.
func TestStoreReplaceProductsDuplicateName(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.AddProduct(ctx, sampleProduct("old")))

	err := store.ReplaceProducts(ctx, []schema.Product{
		sampleProduct("dup"),
		sampleProduct("dup"),
	})
	assert.ErrorIs(t, err, contract.ErrProductExists)

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "old", products[0].Name)
}

// TestStoreStatus reports connectivity and row counts.
func TestStoreStatus(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.AddProduct(ctx, sampleProduct("oats")))

	status, err := store.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(schema.SQLiteBackend), status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, int64(1), status.TotalProducts)
}

// TestNoneBackend returns a store that accepts nothing but never fails to
// open or close.
func TestNoneBackend(t *testing.T) {
	store, err := NewStore(schema.NoneBackend, "")
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

// TestNewStoreUnsupportedBackend rejects unknown backend names.
func TestNewStoreUnsupportedBackend(t *testing.T) {
	_, err := NewStore(schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
}
