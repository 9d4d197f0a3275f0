package partition

import (
	"context"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/recipe/internal/model"
	"github.com/emrgen/recipe/internal/store"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Directory enumerates, creates and drops partitions. It never reads or
// writes recipe documents.
type Directory interface {
	// ListCategories returns the category of every existing partition.
	ListCategories(ctx context.Context) (mapset.Set[string], error)
	// EnsureExists creates the partition of a category if it is missing.
	EnsureExists(ctx context.Context, category string) error
	// Exists reports whether a partition with the given name exists.
	Exists(ctx context.Context, partition string) (bool, error)
	// Count returns the number of documents in a partition.
	Count(ctx context.Context, partition string) (int64, error)
	// Drop destroys a partition and its contents.
	Drop(ctx context.Context, partition string) error
}

var _ Directory = (*GormDirectory)(nil)

// GormDirectory keeps one table per partition.
type GormDirectory struct {
	db    *gorm.DB
	namer Namer
}

func NewGormDirectory(db *gorm.DB, namer Namer) *GormDirectory {
	return &GormDirectory{
		db:    db,
		namer: namer,
	}
}

func (d *GormDirectory) ListCategories(ctx context.Context) (mapset.Set[string], error) {
	tables, err := d.db.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		return nil, store.StorageError(err)
	}

	categories := mapset.NewSet[string]()
	for _, table := range tables {
		if d.namer.IsPartition(table) {
			categories.Add(d.namer.Category(table))
		}
	}

	return categories, nil
}

func (d *GormDirectory) EnsureExists(ctx context.Context, category string) error {
	name := d.namer.Name(category)
	exists, err := d.Exists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := model.MigratePartition(d.db.WithContext(ctx), name); err != nil {
		// another writer may have created it between the check and the create
		if exists, _ := d.Exists(ctx, name); exists {
			logrus.Debugf("partition %s was created concurrently", name)
			return nil
		}
		return store.StorageError(err)
	}
	logrus.Infof("created partition %s for category %q", name, category)

	return nil
}

func (d *GormDirectory) Exists(ctx context.Context, partition string) (bool, error) {
	tables, err := d.db.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		return false, store.StorageError(err)
	}

	return slices.Contains(tables, partition), nil
}

func (d *GormDirectory) Count(ctx context.Context, partition string) (int64, error) {
	var count int64
	err := model.Partition(d.db.WithContext(ctx), partition).Count(&count).Error
	return count, store.StorageError(err)
}

func (d *GormDirectory) Drop(ctx context.Context, partition string) error {
	if err := d.db.WithContext(ctx).Exec("DROP TABLE IF EXISTS ?", model.PartitionTable(partition)).Error; err != nil {
		return store.StorageError(err)
	}
	logrus.Infof("dropped partition %s", partition)

	return nil
}

// DropIfEmpty drops a partition when it exists, holds no documents and is not
// the sentinel partition. It reports whether the partition was dropped.
//
// The count and the drop are separate calls with no lock between them, so
// this is best-effort cleanup: a concurrent insert into the same category can
// race with it.
func DropIfEmpty(ctx context.Context, dir Directory, namer Namer, partition string) (bool, error) {
	if namer.IsSentinel(partition) {
		logrus.Debugf("partition %s is the sentinel partition, keeping it", partition)
		return false, nil
	}

	exists, err := dir.Exists(ctx, partition)
	if err != nil || !exists {
		return false, err
	}

	count, err := dir.Count(ctx, partition)
	if err != nil {
		return false, err
	}
	logrus.Debugf("partition %s now has %d recipe(s)", partition, count)
	if count > 0 {
		return false, nil
	}

	if err := dir.Drop(ctx, partition); err != nil {
		return false, err
	}

	return true, nil
}
