package service

import (
	"context"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/recipe/internal/model"
	"github.com/emrgen/recipe/internal/partition"
	"github.com/emrgen/recipe/internal/store"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Criteria is the input of AdvancedSearch. Blank strings and a nil or
// negative MaxCookingTime are ignored.
//
// A Criteria with nothing set matches every recipe, so AdvancedSearch
// degrades to GetAllRecipes. Existing callers depend on that, but it may not
// be what product wants; confirm before relying on it in new code.
type Criteria struct {
	Title          string
	Category       string
	MaxCookingTime *int
	Ingredient     string
}

type predicate func(*model.Recipe) bool

// GetRecipesByUser returns every recipe created by username.
func (s *RecipeService) GetRecipesByUser(ctx context.Context, username string) ([]*model.Recipe, error) {
	logrus.Debugf("fetching recipes created by %s", username)
	return s.scan(ctx, store.Filter{CreatedBy: username}, nil)
}

// SearchByTitle returns recipes whose title contains title, ignoring case.
func (s *RecipeService) SearchByTitle(ctx context.Context, title string) ([]*model.Recipe, error) {
	logrus.Debugf("searching recipes with title containing %q", title)
	return s.scan(ctx, store.Filter{}, titleContains(title))
}

// SearchByIngredient returns recipes with at least one ingredient containing
// ingredient, ignoring case.
func (s *RecipeService) SearchByIngredient(ctx context.Context, ingredient string) ([]*model.Recipe, error) {
	logrus.Debugf("searching recipes containing ingredient %q", ingredient)
	return s.scan(ctx, store.Filter{}, ingredientContains(ingredient))
}

// SearchByCookingTime returns recipes that cook in at most minutes. A
// negative value matches nothing.
func (s *RecipeService) SearchByCookingTime(ctx context.Context, minutes int) ([]*model.Recipe, error) {
	if minutes < 0 {
		logrus.Warnf("invalid cooking time for search: %d", minutes)
		return []*model.Recipe{}, nil
	}

	logrus.Debugf("searching recipes with cooking time <= %d minutes", minutes)
	return s.scan(ctx, store.Filter{MaxCookingTime: &minutes}, nil)
}

// SearchByCategory returns the recipes of a single partition, or an empty
// list if the category has none.
func (s *RecipeService) SearchByCategory(ctx context.Context, category string) ([]*model.Recipe, error) {
	return s.searchPartition(ctx, s.namer.Name(category), store.Filter{}, nil)
}

// AdvancedSearch returns recipes matching every criterion that is set.
func (s *RecipeService) AdvancedSearch(ctx context.Context, criteria Criteria) ([]*model.Recipe, error) {
	logrus.Debugf("advanced search with title %q, category %q, max cooking time %v, ingredient %q",
		criteria.Title, criteria.Category, criteria.MaxCookingTime, criteria.Ingredient)

	var filter store.Filter
	if criteria.MaxCookingTime != nil && *criteria.MaxCookingTime >= 0 {
		minutes := *criteria.MaxCookingTime
		filter.MaxCookingTime = &minutes
	}

	var preds []predicate
	if strings.TrimSpace(criteria.Title) != "" {
		preds = append(preds, titleContains(criteria.Title))
	}
	if strings.TrimSpace(criteria.Ingredient) != "" {
		preds = append(preds, ingredientContains(criteria.Ingredient))
	}
	match := allOf(preds...)

	var (
		results []*model.Recipe
		err     error
	)
	if strings.TrimSpace(criteria.Category) != "" {
		results, err = s.searchPartition(ctx, s.namer.Name(criteria.Category), filter, match)
	} else {
		results, err = s.scan(ctx, filter, match)
	}
	if err != nil {
		return nil, err
	}

	logrus.Infof("advanced search found %d result(s)", len(results))
	return results, nil
}

func (s *RecipeService) searchPartition(ctx context.Context, name string, filter store.Filter, match predicate) ([]*model.Recipe, error) {
	exists, err := s.dir.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		logrus.Warnf("partition %s not found for search", name)
		return []*model.Recipe{}, nil
	}

	recipes, err := s.store.FindRecipes(ctx, name, filter)
	if err != nil {
		return nil, err
	}

	return keep(recipes, match), nil
}

// scan runs the same query against every partition and concatenates the
// matches in partition name order. A partition dropped while the scan runs
// is skipped.
func (s *RecipeService) scan(ctx context.Context, filter store.Filter, match predicate) ([]*model.Recipe, error) {
	categories, err := s.dir.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := sortedPartitions(s.namer, categories)
	logrus.Debugf("scanning partitions %v", names)

	found := make([][]*model.Recipe, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanOut)
	for i, name := range names {
		g.Go(func() error {
			recipes, err := s.store.FindRecipes(gctx, name, filter)
			if err != nil {
				if exists, existsErr := s.dir.Exists(gctx, name); existsErr == nil && !exists {
					logrus.Warnf("partition %s disappeared during scan", name)
					return nil
				}
				return err
			}
			found[i] = keep(recipes, match)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]*model.Recipe, 0)
	for _, recipes := range found {
		results = append(results, recipes...)
	}

	return results, nil
}

func keep(recipes []*model.Recipe, match predicate) []*model.Recipe {
	if match == nil {
		return recipes
	}

	kept := make([]*model.Recipe, 0, len(recipes))
	for _, recipe := range recipes {
		if match(recipe) {
			kept = append(kept, recipe)
		}
	}
	return kept
}

func allOf(preds ...predicate) predicate {
	if len(preds) == 0 {
		return nil
	}
	return func(r *model.Recipe) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

func titleContains(title string) predicate {
	needle := strings.ToLower(strings.TrimSpace(title))
	return func(r *model.Recipe) bool {
		return strings.Contains(strings.ToLower(r.Title), needle)
	}
}

func ingredientContains(ingredient string) predicate {
	needle := strings.ToLower(strings.TrimSpace(ingredient))
	return func(r *model.Recipe) bool {
		return slices.ContainsFunc(r.Ingredients, func(i string) bool {
			return strings.Contains(strings.ToLower(i), needle)
		})
	}
}

// sortedPartitions maps categories back to partition names, deduplicated
// and sorted.
func sortedPartitions(namer partition.Namer, categories mapset.Set[string]) []string {
	names := mapset.NewSet[string]()
	for _, category := range categories.ToSlice() {
		names.Add(namer.Name(category))
	}
	return sortedSet(names)
}

func sortedSet(set mapset.Set[string]) []string {
	values := set.ToSlice()
	slices.Sort(values)
	return values
}
