package service

import (
	"context"
	"fmt"

	"github.com/emrgen/recipe/internal/cache"
	"github.com/emrgen/recipe/internal/model"
	"github.com/emrgen/recipe/internal/partition"
	"github.com/emrgen/recipe/internal/store"
	"github.com/sirupsen/logrus"
)

// Locator finds a recipe by id alone, without knowing its category.
type Locator interface {
	// Locate returns the recipe with the given id or ErrRecipeNotFound.
	Locate(ctx context.Context, id string) (*model.Recipe, error)
}

var (
	_ Locator = (*ScanLocator)(nil)
	_ Locator = (*HintedLocator)(nil)
)

// ScanLocator asks every partition in turn. The first partition holding the
// id wins.
type ScanLocator struct {
	namer partition.Namer
	dir   partition.Directory
	store store.RecipeStore
}

func NewScanLocator(namer partition.Namer, dir partition.Directory, store store.RecipeStore) *ScanLocator {
	return &ScanLocator{namer: namer, dir: dir, store: store}
}

func (l *ScanLocator) Locate(ctx context.Context, id string) (*model.Recipe, error) {
	logrus.Debugf("looking up recipe %s across all categories", id)
	categories, err := l.dir.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	for _, name := range sortedPartitions(l.namer, categories) {
		recipe, err := getFromPartition(ctx, l.dir, l.store, name, id)
		if err != nil {
			return nil, err
		}
		if recipe != nil {
			logrus.Debugf("found recipe %s in %s", id, name)
			return recipe, nil
		}
	}

	logrus.Warnf("recipe %s not found in any category", id)
	return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, id)
}

// HintedLocator checks the partition remembered in a LocationCache before
// falling back to a full scan. A hint is only trusted after the partition
// actually returns the recipe.
type HintedLocator struct {
	namer partition.Namer
	dir   partition.Directory
	store store.RecipeStore
	hints cache.LocationCache
	next  Locator
}

func NewHintedLocator(namer partition.Namer, dir partition.Directory, store store.RecipeStore, hints cache.LocationCache) *HintedLocator {
	return &HintedLocator{
		namer: namer,
		dir:   dir,
		store: store,
		hints: hints,
		next:  NewScanLocator(namer, dir, store),
	}
}

func (l *HintedLocator) Locate(ctx context.Context, id string) (*model.Recipe, error) {
	hint, err := l.hints.GetLocation(ctx, id)
	if err != nil {
		logrus.Warnf("location hint for recipe %s unavailable: %v", id, err)
	}

	if hint != "" {
		recipe, err := getFromPartition(ctx, l.dir, l.store, hint, id)
		if err != nil {
			return nil, err
		}
		if recipe != nil {
			return recipe, nil
		}
		logrus.Debugf("stale location hint %s for recipe %s", hint, id)
	}

	recipe, err := l.next.Locate(ctx, id)
	if err != nil {
		if hint != "" {
			if err := l.hints.DeleteLocation(ctx, id); err != nil {
				logrus.Warnf("failed to forget location of recipe %s: %v", id, err)
			}
		}
		return nil, err
	}

	if err := l.hints.SetLocation(ctx, id, l.namer.Name(recipe.Category)); err != nil {
		logrus.Warnf("failed to remember location of recipe %s: %v", id, err)
	}

	return recipe, nil
}

// getFromPartition returns nil, nil when the partition does not exist or does
// not hold id.
func getFromPartition(ctx context.Context, dir partition.Directory, st store.RecipeStore, name, id string) (*model.Recipe, error) {
	exists, err := dir.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	return st.GetRecipe(ctx, name, id)
}
