package service

import "errors"

var (
	// ErrRecipeNotFound is returned when no partition holds the requested recipe.
	ErrRecipeNotFound = errors.New("recipe not found")
)
