package store

import (
	"context"
	"errors"

	"github.com/emrgen/recipe/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) InsertRecipe(ctx context.Context, partition string, recipe *model.Recipe) error {
	return StorageError(model.Partition(g.db.WithContext(ctx), partition).Create(recipe).Error)
}

func (g *GormStore) GetRecipe(ctx context.Context, partition, id string) (*model.Recipe, error) {
	var recipe model.Recipe
	err := model.Partition(g.db.WithContext(ctx), partition).Where("id = ?", id).Take(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, StorageError(err)
	}

	return &recipe, nil
}

func (g *GormStore) FindRecipes(ctx context.Context, partition string, filter Filter) ([]*model.Recipe, error) {
	recipes := make([]*model.Recipe, 0)
	err := model.Partition(g.db.WithContext(ctx), partition).Scopes(filter.scope).Order("created_at, id").Find(&recipes).Error
	if err != nil {
		return nil, StorageError(err)
	}

	return recipes, nil
}

func (g *GormStore) SaveRecipe(ctx context.Context, partition string, recipe *model.Recipe) error {
	return StorageError(model.Partition(g.db.WithContext(ctx), partition).Save(recipe).Error)
}

func (g *GormStore) RemoveRecipe(ctx context.Context, partition, id string) error {
	res := model.Partition(g.db.WithContext(ctx), partition).Where("id = ?", id).Delete(&model.Recipe{})
	if res.Error != nil {
		return StorageError(res.Error)
	}
	logrus.Debugf("removed %d row(s) with id %s from %s", res.RowsAffected, id, partition)

	return nil
}

func (g *GormStore) CountRecipes(ctx context.Context, partition string) (int64, error) {
	var count int64
	err := model.Partition(g.db.WithContext(ctx), partition).Count(&count).Error
	return count, StorageError(err)
}

func (g *GormStore) Migrate(ctx context.Context, partitions ...string) error {
	for _, partition := range partitions {
		if err := model.MigratePartition(g.db.WithContext(ctx), partition); err != nil {
			return StorageError(err)
		}
	}

	return nil
}

func (f Filter) scope(db *gorm.DB) *gorm.DB {
	if f.CreatedBy != "" {
		db = db.Where("created_by = ?", f.CreatedBy)
	}
	if f.MaxCookingTime != nil {
		db = db.Where("cooking_time <= ?", *f.MaxCookingTime)
	}

	return db
}
