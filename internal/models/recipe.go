package models

import (
	"time"
)

// Recipe is a named ingredient list. Authoring and scaling live in the
// surrounding application; the engine only resolves ingredients.
type Recipe struct {
	ID        int64
	Title     string
	CreatedAt time.Time

	// Joined fields
	Ingredients []*RecipeIngredient
}

// RecipeIngredient is one line of a recipe, quantified per single serving.
type RecipeIngredient struct {
	ID       int64
	RecipeID int64
	Name     string
	Quantity float64
	Unit     string

	// LinkedPantryID ties the ingredient to a pantry item. Unlinked
	// ingredients cannot participate in consumption.
	LinkedPantryID *int64
}

// IsLinked reports whether the ingredient references a pantry item.
func (i *RecipeIngredient) IsLinked() bool {
	return i.LinkedPantryID != nil
}
