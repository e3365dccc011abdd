// Package seed populates a fresh database with a small sample pantry, a few
// recipes, and a week of menu entries, for demos and manual testing.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/celiogix/pantrysync/internal/models"
	"github.com/celiogix/pantrysync/internal/repository"
)

// Config configures the seed data generator.
type Config struct {
	// StartDate is the date of the first menu entry.
	StartDate time.Time

	// MenuDays is how many consecutive days get a planned meal.
	MenuDays int
}

// DefaultConfig returns a default seed configuration: a week of meals
// starting yesterday, so a first sync has something to apply.
func DefaultConfig(now time.Time) Config {
	return Config{
		StartDate: now.AddDate(0, 0, -1),
		MenuDays:  7,
	}
}

// Generator writes deterministic seed data.
type Generator struct {
	db      *sql.DB
	cfg     Config
	pantry  *repository.PantryRepository
	recipes *repository.RecipeRepository
	menu    *repository.MenuRepository
	logger  *slog.Logger
}

// NewGenerator creates a new seed data generator.
func NewGenerator(db *sql.DB, cfg Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		db:      db,
		cfg:     cfg,
		pantry:  repository.NewPantryRepository(db),
		recipes: repository.NewRecipeRepository(db),
		menu:    repository.NewMenuRepository(db),
		logger:  logger,
	}
}

type seedItem struct {
	name      string
	unit      string
	amount    float64
	threshold float64 // 0 disables
}

type seedIngredient struct {
	item     string // pantry item name, empty for unlinked lines
	name     string
	quantity float64
	unit     string
}

type seedRecipe struct {
	title       string
	ingredients []seedIngredient
}

var pantryItems = []seedItem{
	{name: "Rice", unit: "g", amount: 2000, threshold: 0.25},
	{name: "Olive Oil", unit: "ml", amount: 750, threshold: 100},
	{name: "Chicken Broth", unit: "ml", amount: 2000, threshold: 0.25},
	{name: "Carrots", unit: "g", amount: 500, threshold: 0},
	{name: "Onions", unit: "pcs", amount: 6, threshold: 2},
	{name: "Pasta", unit: "g", amount: 1000, threshold: 0.2},
	{name: "Canned Tomatoes", unit: "g", amount: 800, threshold: 400},
	{name: "Eggs", unit: "pcs", amount: 12, threshold: 4},
}

var recipes = []seedRecipe{
	{
		title: "Vegetable Soup",
		ingredients: []seedIngredient{
			{item: "Chicken Broth", name: "Chicken Broth", quantity: 2, unit: "cup"},
			{item: "Carrots", name: "Carrots", quantity: 150, unit: "g"},
			{item: "Onions", name: "Onion", quantity: 1, unit: "pcs"},
			{name: "Fresh Parsley", quantity: 1, unit: "tbsp"},
		},
	},
	{
		title: "Tomato Pasta",
		ingredients: []seedIngredient{
			{item: "Pasta", name: "Pasta", quantity: 125, unit: "g"},
			{item: "Canned Tomatoes", name: "Canned Tomatoes", quantity: 200, unit: "g"},
			{item: "Olive Oil", name: "Olive Oil", quantity: 2, unit: "tbsp"},
		},
	},
	{
		title: "Fried Rice",
		ingredients: []seedIngredient{
			{item: "Rice", name: "Rice", quantity: 100, unit: "g"},
			{item: "Eggs", name: "Eggs", quantity: 2, unit: "pcs"},
			{item: "Olive Oil", name: "Olive Oil", quantity: 1, unit: "tbsp"},
		},
	},
}

// Generate writes the sample pantry, recipes, and menu entries. It expects
// an empty, migrated database.
func (g *Generator) Generate(ctx context.Context) error {
	itemsByName := make(map[string]*models.PantryItem, len(pantryItems))
	for _, si := range pantryItems {
		base := si.amount
		item := &models.PantryItem{
			Name:       si.name,
			Unit:       si.unit,
			Amount:     si.amount,
			BaseAmount: &base,
		}
		if si.threshold > 0 {
			thr := si.threshold
			item.Threshold = &thr
		}
		if err := g.pantry.Create(ctx, nil, item); err != nil {
			return fmt.Errorf("seeding pantry item %s: %w", si.name, err)
		}
		itemsByName[si.name] = item
	}

	var recipeIDs []int64
	for _, sr := range recipes {
		recipe := &models.Recipe{Title: sr.title}
		if err := g.recipes.Create(ctx, nil, recipe); err != nil {
			return fmt.Errorf("seeding recipe %s: %w", sr.title, err)
		}
		for _, si := range sr.ingredients {
			ing := &models.RecipeIngredient{
				RecipeID: recipe.ID,
				Name:     si.name,
				Quantity: si.quantity,
				Unit:     si.unit,
			}
			if item, ok := itemsByName[si.item]; ok {
				ing.LinkedPantryID = &item.ID
			}
			if err := g.recipes.AddIngredient(ctx, nil, ing); err != nil {
				return fmt.Errorf("seeding ingredient %s: %w", si.name, err)
			}
		}
		recipeIDs = append(recipeIDs, recipe.ID)
	}

	for day := 0; day < g.cfg.MenuDays; day++ {
		entry := &models.MenuEntry{
			Date:     g.cfg.StartDate.AddDate(0, 0, day),
			RecipeID: recipeIDs[day%len(recipeIDs)],
			Servings: 2,
		}
		if err := g.menu.Create(ctx, nil, entry); err != nil {
			return fmt.Errorf("seeding menu entry for day %d: %w", day, err)
		}
	}

	g.logger.Info("seed data generated",
		"pantry_items", len(pantryItems),
		"recipes", len(recipes),
		"menu_entries", g.cfg.MenuDays)
	return nil
}
