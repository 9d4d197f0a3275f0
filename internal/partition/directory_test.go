package partition_test

import (
	"context"
	"sync"
	"testing"

	"github.com/emrgen/recipe/internal/model"
	"github.com/emrgen/recipe/internal/partition"
	"github.com/emrgen/recipe/internal/store"
	"github.com/emrgen/recipe/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormDirectory_EnsureExists(t *testing.T) {
	ctx := context.TODO()
	db := tester.TestDB(t)
	dir := partition.NewGormDirectory(db, tester.Namer())

	exists, err := dir.Exists(ctx, "recipe_main_course")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, dir.EnsureExists(ctx, "Main  Course"))
	require.NoError(t, dir.EnsureExists(ctx, "main course"))

	exists, err = dir.Exists(ctx, "recipe_main_course")
	require.NoError(t, err)
	assert.True(t, exists)

	categories, err := dir.ListCategories(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main_course"}, categories.ToSlice())
}

func TestGormDirectory_EnsureExistsConcurrently(t *testing.T) {
	ctx := context.TODO()
	db := tester.TestDB(t)
	dir := partition.NewGormDirectory(db, tester.Namer())

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = dir.EnsureExists(ctx, "Soups")
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}

	categories, err := dir.ListCategories(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"soups"}, categories.ToSlice())
}

func TestGormDirectory_ListCategoriesIgnoresOtherTables(t *testing.T) {
	ctx := context.TODO()
	db := tester.TestDB(t)
	dir := partition.NewGormDirectory(db, tester.Namer())

	require.NoError(t, db.Exec("CREATE TABLE users (id TEXT PRIMARY KEY)").Error)
	require.NoError(t, dir.EnsureExists(ctx, "Desserts"))
	require.NoError(t, dir.EnsureExists(ctx, ""))

	categories, err := dir.ListCategories(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"desserts", "uncategorized"}, categories.ToSlice())
}

func TestGormDirectory_CountAndDrop(t *testing.T) {
	ctx := context.TODO()
	db := tester.TestDB(t)
	dir := partition.NewGormDirectory(db, tester.Namer())
	st := store.NewGormStore(db)

	require.NoError(t, dir.EnsureExists(ctx, "Soups"))
	count, err := dir.Count(ctx, "recipe_soups")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, st.InsertRecipe(ctx, "recipe_soups", &model.Recipe{ID: "r1", Title: "Minestrone", Category: "Soups"}))
	count, err = dir.Count(ctx, "recipe_soups")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, dir.Drop(ctx, "recipe_soups"))
	exists, err := dir.Exists(ctx, "recipe_soups")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDropIfEmpty(t *testing.T) {
	ctx := context.TODO()
	db := tester.TestDB(t)
	namer := tester.Namer()
	dir := partition.NewGormDirectory(db, namer)
	st := store.NewGormStore(db)

	require.NoError(t, dir.EnsureExists(ctx, "Soups"))
	require.NoError(t, dir.EnsureExists(ctx, "Desserts"))
	require.NoError(t, dir.EnsureExists(ctx, ""))
	require.NoError(t, st.InsertRecipe(ctx, "recipe_desserts", &model.Recipe{ID: "r1", Title: "Lemon Tart"}))

	dropped, err := partition.DropIfEmpty(ctx, dir, namer, "recipe_soups")
	require.NoError(t, err)
	assert.True(t, dropped)

	dropped, err = partition.DropIfEmpty(ctx, dir, namer, "recipe_desserts")
	require.NoError(t, err)
	assert.False(t, dropped)

	dropped, err = partition.DropIfEmpty(ctx, dir, namer, "recipe_uncategorized")
	require.NoError(t, err)
	assert.False(t, dropped)

	dropped, err = partition.DropIfEmpty(ctx, dir, namer, "recipe_missing")
	require.NoError(t, err)
	assert.False(t, dropped)

	categories, err := dir.ListCategories(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"desserts", "uncategorized"}, categories.ToSlice())
}

func TestGormDirectory_StorageUnavailable(t *testing.T) {
	ctx := context.TODO()
	db := tester.TestDB(t)
	dir := partition.NewGormDirectory(db, tester.Namer())
	tester.CloseDB(t, db)

	_, err := dir.ListCategories(ctx)
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)

	err = dir.EnsureExists(ctx, "Soups")
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)

	_, err = dir.Exists(ctx, "recipe_soups")
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)

	_, err = dir.Count(ctx, "recipe_soups")
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}

func TestGormDirectory_UnusualNames(t *testing.T) {
	ctx := context.TODO()
	db := tester.TestDB(t)
	namer := tester.Namer()
	dir := partition.NewGormDirectory(db, namer)

	categories := []string{
		"St. Patrick's Day",
		"a`b",
		`Say "Cheese"`,
		"Grandmother's Sunday Suppers For The Whole Family And The Neighbours Too",
	}
	for _, category := range categories {
		name := namer.Name(category)
		assert.LessOrEqual(t, len(name), partition.MaxNameLength)

		require.NoError(t, dir.EnsureExists(ctx, category), category)
		require.NoError(t, dir.EnsureExists(ctx, category), category)

		exists, err := dir.Exists(ctx, name)
		require.NoError(t, err)
		assert.True(t, exists, category)

		count, err := dir.Count(ctx, name)
		require.NoError(t, err)
		assert.Zero(t, count)
	}

	listed, err := dir.ListCategories(ctx)
	require.NoError(t, err)
	assert.True(t, listed.Contains("st._patrick's_day"))
	assert.True(t, listed.Contains("a`b"))
	assert.True(t, listed.Contains(`say_"cheese"`))
	assert.Equal(t, len(categories), listed.Cardinality())

	for _, category := range categories {
		require.NoError(t, dir.Drop(ctx, namer.Name(category)))
	}
	listed, err = dir.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, listed.Cardinality())
}
