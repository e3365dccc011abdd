package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/celiogix/pantrysync/internal/models"
	"github.com/celiogix/pantrysync/internal/util"
)

// MenuRepository handles meal-plan entry data access.
type MenuRepository struct {
	db *sql.DB
}

// NewMenuRepository creates a new menu repository.
func NewMenuRepository(db *sql.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// Create inserts a new menu entry and assigns its generated id.
func (r *MenuRepository) Create(ctx context.Context, tx *sql.Tx, entry *models.MenuEntry) error {
	q := getQuerier(r.db, tx)
	entry.CreatedAt = time.Now().UTC()
	if entry.Servings == 0 {
		entry.Servings = 1
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO menu_entries (date, recipe_id, servings, usage_applied, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		util.FormatDate(entry.Date),
		entry.RecipeID,
		entry.Servings,
		boolToInt(entry.UsageApplied),
		entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting menu entry: %w", err)
	}

	entry.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted menu entry id: %w", err)
	}
	return nil
}

// GetByID retrieves a menu entry by id.
func (r *MenuRepository) GetByID(ctx context.Context, tx *sql.Tx, id int64) (*models.MenuEntry, error) {
	q := getQuerier(r.db, tx)

	row := q.QueryRowContext(ctx, `
		SELECT id, date, recipe_id, COALESCE(servings, 1), usage_applied, created_at
		FROM menu_entries
		WHERE id = ?`, id)

	entry, err := scanMenuEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("menu entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning menu entry: %w", err)
	}
	return entry, nil
}

// ListPending retrieves unapplied entries scheduled on or before the cutoff
// date, ordered by (date, id) ascending for deterministic processing.
func (r *MenuRepository) ListPending(ctx context.Context, asOf time.Time) ([]*models.MenuEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, recipe_id, COALESCE(servings, 1), usage_applied, created_at
		FROM menu_entries
		WHERE date <= ? AND COALESCE(usage_applied, 0) = 0
		ORDER BY date, id`,
		util.FormatDate(asOf),
	)
	if err != nil {
		return nil, fmt.Errorf("querying pending menu entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.MenuEntry
	for rows.Next() {
		entry, err := scanMenuEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning menu entry row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// MarkApplied flips the one-shot usage_applied flag for an entry.
func (r *MenuRepository) MarkApplied(ctx context.Context, tx *sql.Tx, id int64) error {
	q := getQuerier(r.db, tx)
	result, err := q.ExecContext(ctx,
		"UPDATE menu_entries SET usage_applied = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking menu entry applied: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("menu entry %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanMenuEntry(row rowScanner) (*models.MenuEntry, error) {
	var entry models.MenuEntry
	var dateStr, createdStr string
	var applied int

	err := row.Scan(&entry.ID, &dateStr, &entry.RecipeID, &entry.Servings, &applied, &createdStr)
	if err != nil {
		return nil, err
	}

	entry.Date, _ = util.ParseDate(dateStr)
	entry.UsageApplied = applied != 0
	entry.CreatedAt = parseTimestamp(createdStr)

	return &entry, nil
}
