package store_test

import (
	"context"
	"testing"

	"github.com/emrgen/recipe/internal/model"
	"github.com/emrgen/recipe/internal/store"
	"github.com/emrgen/recipe/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const soups = "recipe_soups"

func newStore(t *testing.T) *store.GormStore {
	st := store.NewGormStore(tester.TestDB(t))
	require.NoError(t, st.Migrate(context.TODO(), soups))
	return st
}

func TestGormStore_InsertAndGet(t *testing.T) {
	ctx := context.TODO()
	st := newStore(t)

	recipe := &model.Recipe{
		ID:           "r1",
		Title:        "Minestrone",
		Ingredients:  []string{"beans", "pasta", "salt & pepper"},
		Instructions: "Simmer.",
		CookingTime:  40,
		Category:     "Soups",
		CreatedBy:    "alice",
	}
	require.NoError(t, st.InsertRecipe(ctx, soups, recipe))
	assert.False(t, recipe.CreatedAt.IsZero())

	got, err := st.GetRecipe(ctx, soups, "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, recipe.Title, got.Title)
	assert.Equal(t, recipe.Ingredients, got.Ingredients)
	assert.Equal(t, recipe.Instructions, got.Instructions)
	assert.Equal(t, recipe.CookingTime, got.CookingTime)
	assert.Equal(t, recipe.Category, got.Category)
	assert.Equal(t, recipe.CreatedBy, got.CreatedBy)

	missing, err := st.GetRecipe(ctx, soups, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGormStore_FindRecipes(t *testing.T) {
	ctx := context.TODO()
	st := newStore(t)

	for _, r := range []*model.Recipe{
		{ID: "r1", Title: "Minestrone", CookingTime: 40, CreatedBy: "alice"},
		{ID: "r2", Title: "Gazpacho", CookingTime: 15, CreatedBy: "bob"},
		{ID: "r3", Title: "Pho", CookingTime: 180, CreatedBy: "alice"},
	} {
		require.NoError(t, st.InsertRecipe(ctx, soups, r))
	}

	all, err := st.FindRecipes(ctx, soups, store.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids(all))

	byAlice, err := st.FindRecipes(ctx, soups, store.Filter{CreatedBy: "alice"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r3"}, ids(byAlice))

	maxTime := 40
	quick, err := st.FindRecipes(ctx, soups, store.Filter{MaxCookingTime: &maxTime})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, ids(quick))

	both, err := st.FindRecipes(ctx, soups, store.Filter{CreatedBy: "alice", MaxCookingTime: &maxTime})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids(both))
}

func TestGormStore_SaveRemoveCount(t *testing.T) {
	ctx := context.TODO()
	st := newStore(t)

	recipe := &model.Recipe{ID: "r1", Title: "Minestrone", CookingTime: 40}
	require.NoError(t, st.InsertRecipe(ctx, soups, recipe))

	recipe.Title = "Minestrone alla Genovese"
	require.NoError(t, st.SaveRecipe(ctx, soups, recipe))

	got, err := st.GetRecipe(ctx, soups, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Minestrone alla Genovese", got.Title)

	count, err := st.CountRecipes(ctx, soups)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, st.RemoveRecipe(ctx, soups, "r1"))
	require.NoError(t, st.RemoveRecipe(ctx, soups, "r1"))

	count, err = st.CountRecipes(ctx, soups)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestGormStore_PartitionsAreIsolated(t *testing.T) {
	ctx := context.TODO()
	st := newStore(t)
	require.NoError(t, st.Migrate(ctx, "recipe_desserts"))

	require.NoError(t, st.InsertRecipe(ctx, soups, &model.Recipe{ID: "r1", Title: "Minestrone"}))
	// the same id may exist in two partitions; keeping it unique is the caller's job
	require.NoError(t, st.InsertRecipe(ctx, "recipe_desserts", &model.Recipe{ID: "r1", Title: "Lemon Tart"}))

	got, err := st.GetRecipe(ctx, "recipe_desserts", "r1")
	require.NoError(t, err)
	assert.Equal(t, "Lemon Tart", got.Title)

	require.NoError(t, st.RemoveRecipe(ctx, soups, "r1"))
	got, err = st.GetRecipe(ctx, "recipe_desserts", "r1")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestGormStore_StorageUnavailable(t *testing.T) {
	ctx := context.TODO()
	db := tester.TestDB(t)
	st := store.NewGormStore(db)
	require.NoError(t, st.Migrate(ctx, soups))
	tester.CloseDB(t, db)

	_, err := st.GetRecipe(ctx, soups, "r1")
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)

	_, err = st.FindRecipes(ctx, soups, store.Filter{})
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)

	err = st.InsertRecipe(ctx, soups, &model.Recipe{ID: "r1", Title: "Minestrone"})
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)

	_, err = st.CountRecipes(ctx, soups)
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}

func TestStorageError(t *testing.T) {
	assert.NoError(t, store.StorageError(nil))

	err := store.StorageError(assert.AnError)
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, err, store.StorageError(err))
}

func ids(recipes []*model.Recipe) []string {
	out := make([]string, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.ID)
	}
	return out
}
