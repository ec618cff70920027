package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	db "github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *db.Repository {
	repo, err := db.NewRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.RunMigrations("./migrations"))
	return repo
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: "5", Title: "Lamp", Description: "Warm", Price: decimal.RequireFromString("19.99"), Stock: 3, Category: "lighting", Brand: "Lumen", Rating: 4.5, Thumbnail: "https://img/5.png", Tags: []string{"home", "light"}},
		{ID: "2", Title: "Chair", Price: decimal.NewFromInt(45), Stock: 0, Category: "furniture"},
	}
}

func TestGetAllProducts_EmptyAfterMigrations(t *testing.T) {
	repo := setupTestDB(t)

	products, err := repo.GetAllProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)

	_, err = repo.FetchedAt(context.Background())
	assert.ErrorIs(t, err, db.ErrNoSnapshot)
}

func TestReplaceProducts_PreservesOrderAndFields(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceProducts(ctx, sampleProducts()))

	products, err := repo.GetAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	lamp := products[0]
	assert.Equal(t, "5", lamp.ID)
	assert.Equal(t, "Lamp", lamp.Title)
	assert.Equal(t, "Warm", lamp.Description)
	assert.True(t, lamp.Price.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, 3, lamp.Stock)
	assert.Equal(t, "lighting", lamp.Category)
	assert.Equal(t, "Lumen", lamp.Brand)
	assert.InDelta(t, 4.5, lamp.Rating, 0.0001)
	assert.Equal(t, "https://img/5.png", lamp.Thumbnail)
	assert.Equal(t, []string{"home", "light"}, lamp.Tags)

	assert.Equal(t, "2", products[1].ID)
	assert.Empty(t, products[1].Tags)
}

func TestReplaceProducts_Overwrites(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceProducts(ctx, sampleProducts()))
	require.NoError(t, repo.ReplaceProducts(ctx, sampleProducts()[1:]))

	products, err := repo.GetAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "2", products[0].ID)

	fetchedAt, err := repo.FetchedAt(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), fetchedAt, time.Minute)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	repo := setupTestDB(t)
	assert.NoError(t, repo.RunMigrations("./migrations"))
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()

	first, err := db.NewRepository(path)
	require.NoError(t, err)
	require.NoError(t, first.RunMigrations("./migrations"))
	require.NoError(t, first.ReplaceProducts(ctx, sampleProducts()))
	require.NoError(t, first.Close())

	second, err := db.NewRepository(path)
	require.NoError(t, err)
	defer second.Close()

	products, err := second.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestGetAllProducts_CancelledContext(t *testing.T) {
	repo := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetAllProducts(ctx)
	assert.ErrorContains(t, err, "failed to query products")
}
