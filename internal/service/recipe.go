package service

import (
	"context"
	"time"

	"github.com/emrgen/recipe/internal/cache"
	"github.com/emrgen/recipe/internal/model"
	"github.com/emrgen/recipe/internal/partition"
	"github.com/emrgen/recipe/internal/queue"
	"github.com/emrgen/recipe/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultFanOut = 4

// Option configures a RecipeService.
type Option func(*RecipeService)

// WithQueue publishes a change for every committed write.
func WithQueue(q queue.RecipeQueue) Option {
	return func(s *RecipeService) {
		s.queue = q
	}
}

// WithLocationCache makes id lookups try the remembered partition first.
func WithLocationCache(hints cache.LocationCache) Option {
	return func(s *RecipeService) {
		s.hints = hints
	}
}

// WithFanOut bounds how many partitions a search reads at once.
func WithFanOut(n int) Option {
	return func(s *RecipeService) {
		if n > 0 {
			s.fanOut = n
		}
	}
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(namer partition.Namer, dir partition.Directory, store store.RecipeStore, opts ...Option) *RecipeService {
	service := &RecipeService{
		namer:  namer,
		dir:    dir,
		store:  store,
		queue:  queue.Nop{},
		fanOut: defaultFanOut,
	}
	for _, opt := range opts {
		opt(service)
	}

	if service.hints != nil {
		service.locator = NewHintedLocator(namer, dir, store, service.hints)
	} else {
		service.locator = NewScanLocator(namer, dir, store)
	}

	return service
}

// RecipeService stores recipes in one partition per category.
//
// Nothing here is transactional across partitions. A move is a remove from
// the old partition followed by an insert into the new one, and a reader
// running between the two does not see the recipe at all.
type RecipeService struct {
	namer   partition.Namer
	dir     partition.Directory
	store   store.RecipeStore
	locator Locator
	queue   queue.RecipeQueue
	hints   cache.LocationCache
	fanOut  int
}

// CreateRecipe stores a copy of recipe under a fresh id, owned by creator.
func (s *RecipeService) CreateRecipe(ctx context.Context, recipe *model.Recipe, creator string) (*model.Recipe, error) {
	created := recipe.Clone()
	created.ID = uuid.New().String()
	created.CreatedBy = creator
	created.Category = s.namer.Label(created.Category)
	created.CreatedAt = time.Time{}
	created.UpdatedAt = time.Time{}

	if err := s.dir.EnsureExists(ctx, created.Category); err != nil {
		return nil, err
	}

	name := s.namer.Name(created.Category)
	logrus.Infof("creating recipe %q in %s by %s", created.Title, name, creator)
	if err := s.store.InsertRecipe(ctx, name, created); err != nil {
		return nil, err
	}

	s.remember(ctx, created.ID, name)
	s.publish(ctx, &queue.RecipeChange{Kind: queue.ChangeCreated, ID: created.ID, To: name, Recipe: created})

	return created, nil
}

// GetAllRecipes returns the recipes of every partition.
func (s *RecipeService) GetAllRecipes(ctx context.Context) ([]*model.Recipe, error) {
	return s.scan(ctx, store.Filter{}, nil)
}

// GetRecipeByID looks for id in every partition and fails with
// ErrRecipeNotFound if none holds it.
func (s *RecipeService) GetRecipeByID(ctx context.Context, id string) (*model.Recipe, error) {
	return s.locator.Locate(ctx, id)
}

// GetRecipeByCategoryAndID looks for id in the partition of category only.
// It returns nil, nil when the recipe is not there.
func (s *RecipeService) GetRecipeByCategoryAndID(ctx context.Context, category, id string) (*model.Recipe, error) {
	name := s.namer.Name(category)
	logrus.Debugf("fetching recipe %s from category %q (%s)", id, category, name)

	recipe, err := getFromPartition(ctx, s.dir, s.store, name, id)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		logrus.Warnf("recipe %s not found in %s", id, name)
	}

	return recipe, nil
}

// UpdateRecipe replaces the mutable fields of recipe id with those of
// details. The id and creator never change. When the category maps to a
// different partition the recipe is moved.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id string, details *model.Recipe) (*model.Recipe, error) {
	existing, err := s.locator.Locate(ctx, id)
	if err != nil {
		return nil, err
	}
	logrus.Infof("updating recipe %s, current title %q", id, existing.Title)

	category := s.namer.Label(details.Category)
	from := s.namer.Name(existing.Category)
	to := s.namer.Name(category)

	if from != to {
		return s.move(ctx, existing, details, from, to)
	}

	updated := existing.Clone()
	updated.Title = details.Title
	updated.Ingredients = details.Clone().Ingredients
	updated.Instructions = details.Instructions
	updated.CookingTime = details.CookingTime
	updated.Category = category
	updated.UpdatedAt = time.Time{}

	logrus.Debugf("category of recipe %s stays in %s, updating in place", id, to)
	if err := s.store.SaveRecipe(ctx, to, updated); err != nil {
		return nil, err
	}

	s.publish(ctx, &queue.RecipeChange{Kind: queue.ChangeUpdated, ID: id, To: to, Recipe: updated})

	return updated, nil
}

// move takes existing out of partition from and inserts details, carrying
// the original id, creator and creation time, into partition to.
func (s *RecipeService) move(ctx context.Context, existing, details *model.Recipe, from, to string) (*model.Recipe, error) {
	logrus.Infof("category of recipe %s changed, moving it from %s to %s", existing.ID, from, to)

	if err := s.store.RemoveRecipe(ctx, from, existing.ID); err != nil {
		return nil, err
	}
	s.dropIfEmpty(ctx, from)

	moved := details.Clone()
	moved.ID = existing.ID
	moved.CreatedBy = existing.CreatedBy
	moved.CreatedAt = existing.CreatedAt
	moved.UpdatedAt = time.Time{}
	moved.Category = s.namer.Label(details.Category)

	err := s.dir.EnsureExists(ctx, moved.Category)
	if err == nil {
		err = s.store.InsertRecipe(ctx, to, moved)
	}
	if err != nil {
		s.restore(ctx, existing, from)
		return nil, err
	}

	s.remember(ctx, moved.ID, to)
	s.publish(ctx, &queue.RecipeChange{Kind: queue.ChangeMoved, ID: moved.ID, From: from, To: to, Recipe: moved})

	return moved, nil
}

// restore puts a recipe back into the partition it was removed from after
// a failed move.
func (s *RecipeService) restore(ctx context.Context, recipe *model.Recipe, name string) {
	err := s.dir.EnsureExists(ctx, recipe.Category)
	if err == nil {
		err = s.store.InsertRecipe(ctx, name, recipe)
	}
	if err != nil {
		logrus.Errorf("recipe %s lost during move, restore into %s failed: %v", recipe.ID, name, err)
		return
	}
	logrus.Warnf("move of recipe %s failed, restored it into %s", recipe.ID, name)
}

// DeleteRecipe removes recipe id and drops its partition if that leaves it
// empty.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id string) error {
	existing, err := s.locator.Locate(ctx, id)
	if err != nil {
		return err
	}

	name := s.namer.Name(existing.Category)
	logrus.Infof("deleting recipe %s with title %q from %s", id, existing.Title, name)
	if err := s.store.RemoveRecipe(ctx, name, id); err != nil {
		return err
	}
	s.dropIfEmpty(ctx, name)

	s.forget(ctx, id)
	s.publish(ctx, &queue.RecipeChange{Kind: queue.ChangeDeleted, ID: id, To: name})

	return nil
}

// ListCategories returns the category of every existing partition, sorted.
func (s *RecipeService) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.dir.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	return sortedSet(categories), nil
}

// dropIfEmpty is best-effort; a failure leaves an empty partition behind,
// which the janitor job reclaims later.
func (s *RecipeService) dropIfEmpty(ctx context.Context, name string) {
	dropped, err := partition.DropIfEmpty(ctx, s.dir, s.namer, name)
	if err != nil {
		logrus.Warnf("failed to drop empty partition %s: %v", name, err)
		return
	}
	if dropped {
		logrus.Infof("partition %s was empty and has been dropped", name)
	}
}

func (s *RecipeService) remember(ctx context.Context, id, name string) {
	if s.hints == nil {
		return
	}
	if err := s.hints.SetLocation(ctx, id, name); err != nil {
		logrus.Warnf("failed to remember location of recipe %s: %v", id, err)
	}
}

func (s *RecipeService) forget(ctx context.Context, id string) {
	if s.hints == nil {
		return
	}
	if err := s.hints.DeleteLocation(ctx, id); err != nil {
		logrus.Warnf("failed to forget location of recipe %s: %v", id, err)
	}
}

func (s *RecipeService) publish(ctx context.Context, change *queue.RecipeChange) {
	change.At = time.Now().UTC()
	if err := s.queue.PublishChange(ctx, change); err != nil {
		logrus.Errorf("failed to publish %s change of recipe %s: %v", change.Kind, change.ID, err)
	}
}
