package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidArgument is returned when a recipe or a search argument is malformed.
var ErrInvalidArgument = errors.New("invalid argument")

// Recipe is a single recipe document. The table a row lives in is the
// partition of its Category; the model itself carries no table name.
type Recipe struct {
	ID           string    `gorm:"primaryKey;type:varchar(36);not null" json:"id"`
	Title        string    `gorm:"not null" json:"title"`
	Ingredients  []string  `gorm:"type:text;serializer:json" json:"ingredients"`
	Instructions string    `gorm:"type:text" json:"instructions"`
	CookingTime  int       `gorm:"not null;default:0" json:"cookingTime"`
	Category     string    `json:"category"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Validate checks the fields a caller must get right before handing the
// recipe to the store.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title must not be blank", ErrInvalidArgument)
	}
	if r.CookingTime < 0 {
		return fmt.Errorf("%w: cooking time must not be negative", ErrInvalidArgument)
	}

	return nil
}

// Clone returns a deep copy so callers can mutate the result freely.
func (r *Recipe) Clone() *Recipe {
	c := *r
	if r.Ingredients != nil {
		c.Ingredients = append([]string(nil), r.Ingredients...)
	}
	return &c
}
