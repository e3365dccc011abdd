package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/celiogix/pantrysync/internal/models"
)

// RecipeRepository handles recipe and ingredient data access.
type RecipeRepository struct {
	db *sql.DB
}

// NewRecipeRepository creates a new recipe repository.
func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create inserts a new recipe and assigns its generated id.
func (r *RecipeRepository) Create(ctx context.Context, tx *sql.Tx, recipe *models.Recipe) error {
	q := getQuerier(r.db, tx)
	recipe.CreatedAt = time.Now().UTC()

	result, err := q.ExecContext(ctx,
		"INSERT INTO recipes (title, created_at) VALUES (?, ?)",
		recipe.Title, recipe.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting recipe: %w", err)
	}

	recipe.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted recipe id: %w", err)
	}
	return nil
}

// GetByID retrieves a recipe by id, without its ingredients.
func (r *RecipeRepository) GetByID(ctx context.Context, tx *sql.Tx, id int64) (*models.Recipe, error) {
	q := getQuerier(r.db, tx)

	var recipe models.Recipe
	var createdStr string
	err := q.QueryRowContext(ctx,
		"SELECT id, title, created_at FROM recipes WHERE id = ?", id,
	).Scan(&recipe.ID, &recipe.Title, &createdStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recipe %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning recipe: %w", err)
	}
	recipe.CreatedAt = parseTimestamp(createdStr)

	return &recipe, nil
}

// AddIngredient inserts an ingredient line for a recipe.
func (r *RecipeRepository) AddIngredient(ctx context.Context, tx *sql.Tx, ing *models.RecipeIngredient) error {
	q := getQuerier(r.db, tx)

	result, err := q.ExecContext(ctx, `
		INSERT INTO recipe_ingredients (recipe_id, name, qty, unit, linked_pantry_id)
		VALUES (?, ?, ?, ?, ?)`,
		ing.RecipeID,
		ing.Name,
		ing.Quantity,
		nullableString(ing.Unit),
		nullableInt64Ptr(ing.LinkedPantryID),
	)
	if err != nil {
		return fmt.Errorf("inserting ingredient: %w", err)
	}

	ing.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted ingredient id: %w", err)
	}
	return nil
}

// ListIngredients retrieves all ingredient lines of a recipe.
func (r *RecipeRepository) ListIngredients(ctx context.Context, tx *sql.Tx, recipeID int64) ([]*models.RecipeIngredient, error) {
	q := getQuerier(r.db, tx)

	rows, err := q.QueryContext(ctx, `
		SELECT id, recipe_id, name, COALESCE(qty, 0), unit, linked_pantry_id
		FROM recipe_ingredients
		WHERE recipe_id = ?
		ORDER BY id`,
		recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []*models.RecipeIngredient
	for rows.Next() {
		var ing models.RecipeIngredient
		var unit sql.NullString
		var pantryID sql.NullInt64

		if err := rows.Scan(&ing.ID, &ing.RecipeID, &ing.Name, &ing.Quantity, &unit, &pantryID); err != nil {
			return nil, fmt.Errorf("scanning ingredient row: %w", err)
		}

		if unit.Valid {
			ing.Unit = unit.String
		}
		if pantryID.Valid {
			ing.LinkedPantryID = &pantryID.Int64
		}
		ingredients = append(ingredients, &ing)
	}
	return ingredients, rows.Err()
}
