package queue

import (
	"context"
	"time"

	"github.com/emrgen/recipe/internal/model"
)

var RecipeChangeTopic = "recipe.changes"

type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeMoved   ChangeKind = "moved"
	ChangeDeleted ChangeKind = "deleted"
)

// RecipeChange describes one committed write. From is set only for moves.
type RecipeChange struct {
	Kind   ChangeKind    `json:"kind"`
	ID     string        `json:"id"`
	From   string        `json:"from,omitempty"`
	To     string        `json:"to"`
	Recipe *model.Recipe `json:"recipe,omitempty"`
	At     time.Time     `json:"at"`
}

type RecipeQueue interface {
	// PublishChange appends a recipe change to the queue.
	PublishChange(ctx context.Context, change *RecipeChange) error
	Close() error
}

var _ RecipeQueue = Nop{}

// Nop drops every change.
type Nop struct{}

func (Nop) PublishChange(context.Context, *RecipeChange) error { return nil }

func (Nop) Close() error { return nil }
