package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/emrgen/recipe/internal/model"
)

// ErrStorageUnavailable wraps every failure of the underlying database.
var ErrStorageUnavailable = errors.New("storage unavailable")

// StorageError marks err as a storage failure. It returns nil for nil.
func StorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}

type Store interface {
	RecipeStore
	// Migrate creates the tables of the given partitions if they are missing.
	Migrate(ctx context.Context, partitions ...string) error
}

// RecipeStore is a document store where every operation is scoped to one
// named partition. It knows nothing about how partitions are named.
type RecipeStore interface {
	// InsertRecipe inserts a new recipe into the partition.
	InsertRecipe(ctx context.Context, partition string, recipe *model.Recipe) error
	// GetRecipe retrieves a recipe by ID. It returns nil, nil when the partition has no such recipe.
	GetRecipe(ctx context.Context, partition, id string) (*model.Recipe, error)
	// FindRecipes retrieves the recipes of a partition matching the filter.
	FindRecipes(ctx context.Context, partition string, filter Filter) ([]*model.Recipe, error)
	// SaveRecipe updates a recipe in place, inserting it if the ID is unknown.
	SaveRecipe(ctx context.Context, partition string, recipe *model.Recipe) error
	// RemoveRecipe deletes a recipe by ID. Removing a missing recipe is not an error.
	RemoveRecipe(ctx context.Context, partition, id string) error
	// CountRecipes returns the number of recipes in the partition.
	CountRecipes(ctx context.Context, partition string) (int64, error)
}

// Filter holds the predicates pushed down to the database. The zero value
// matches every recipe.
type Filter struct {
	CreatedBy      string
	MaxCookingTime *int
}
