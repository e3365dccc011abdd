package testutil

import (
	"time"

	"github.com/celiogix/pantrysync/internal/models"
)

// FixturePantryItem creates a test pantry item with sensible defaults.
func FixturePantryItem(overrides ...func(*models.PantryItem)) *models.PantryItem {
	now := time.Now().UTC()

	item := &models.PantryItem{
		Name:      "Flour",
		Brand:     "Acme",
		Category:  "Baking",
		Store:     "Market",
		Unit:      "g",
		Amount:    1000,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, override := range overrides {
		override(item)
	}

	return item
}

// FixtureRecipe creates a test recipe with sensible defaults.
func FixtureRecipe(overrides ...func(*models.Recipe)) *models.Recipe {
	recipe := &models.Recipe{
		Title:     "Test Recipe",
		CreatedAt: time.Now().UTC(),
	}

	for _, override := range overrides {
		override(recipe)
	}

	return recipe
}

// FixtureIngredient creates a test recipe ingredient linked to a pantry item.
func FixtureIngredient(recipeID int64, overrides ...func(*models.RecipeIngredient)) *models.RecipeIngredient {
	ing := &models.RecipeIngredient{
		RecipeID: recipeID,
		Name:     "Flour",
		Quantity: 100,
		Unit:     "g",
	}

	for _, override := range overrides {
		override(ing)
	}

	return ing
}

// FixtureMenuEntry creates a test menu entry with sensible defaults.
func FixtureMenuEntry(recipeID int64, overrides ...func(*models.MenuEntry)) *models.MenuEntry {
	entry := &models.MenuEntry{
		Date:      time.Now().UTC(),
		RecipeID:  recipeID,
		Servings:  1,
		CreatedAt: time.Now().UTC(),
	}

	for _, override := range overrides {
		override(entry)
	}

	return entry
}

// FixtureShoppingEntry creates a test shopping entry with sensible defaults.
func FixtureShoppingEntry(overrides ...func(*models.ShoppingEntry)) *models.ShoppingEntry {
	entry := &models.ShoppingEntry{
		Name:     "Flour",
		Quantity: 1,
		Unit:     "g",
		Status:   models.ShoppingStatusPending,
	}

	for _, override := range overrides {
		override(entry)
	}

	return entry
}

// StringPtr returns a pointer to a string value.
func StringPtr(s string) *string {
	return &s
}

// Int64Ptr returns a pointer to an int64 value.
func Int64Ptr(i int64) *int64 {
	return &i
}

// Float64Ptr returns a pointer to a float64 value.
func Float64Ptr(f float64) *float64 {
	return &f
}

// TimePtr returns a pointer to a time value.
func TimePtr(t time.Time) *time.Time {
	return &t
}
