package service

import (
	"context"
	"sync"
	"testing"

	"github.com/emrgen/recipe/internal/partition"
	"github.com/emrgen/recipe/internal/queue"
	"github.com/emrgen/recipe/internal/store"
	"github.com/emrgen/recipe/internal/tester"
	"gorm.io/gorm"
)

// recordingQueue keeps every published change in memory.
type recordingQueue struct {
	mu      sync.Mutex
	changes []*queue.RecipeChange
}

func (q *recordingQueue) PublishChange(_ context.Context, change *queue.RecipeChange) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.changes = append(q.changes, change)
	return nil
}

func (q *recordingQueue) Close() error { return nil }

func (q *recordingQueue) kinds() []queue.ChangeKind {
	q.mu.Lock()
	defer q.mu.Unlock()
	kinds := make([]queue.ChangeKind, 0, len(q.changes))
	for _, c := range q.changes {
		kinds = append(kinds, c.Kind)
	}
	return kinds
}

type fixture struct {
	db      *gorm.DB
	dir     *partition.GormDirectory
	store   *store.GormStore
	queue   *recordingQueue
	service *RecipeService
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	db := tester.TestDB(t)
	namer := tester.Namer()
	f := &fixture{
		db:    db,
		dir:   partition.NewGormDirectory(db, namer),
		store: store.NewGormStore(db),
		queue: &recordingQueue{},
	}
	opts = append([]Option{WithQueue(f.queue)}, opts...)
	f.service = NewRecipeService(namer, f.dir, f.store, opts...)
	return f
}
