package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/celiogix/pantrysync/internal/models"
)

// PantryRepository handles pantry item data access.
type PantryRepository struct {
	db *sql.DB
}

// NewPantryRepository creates a new pantry repository.
func NewPantryRepository(db *sql.DB) *PantryRepository {
	return &PantryRepository{db: db}
}

// Create inserts a new pantry item and assigns its generated id.
func (r *PantryRepository) Create(ctx context.Context, tx *sql.Tx, item *models.PantryItem) error {
	query := `
		INSERT INTO pantry_items (
			name, brand, category, store, unit,
			amount, base_amount, threshold, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	q := getQuerier(r.db, tx)
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	result, err := q.ExecContext(ctx, query,
		item.Name,
		nullableString(item.Brand),
		nullableString(item.Category),
		nullableString(item.Store),
		nullableString(item.Unit),
		item.Amount,
		nullableFloatPtr(item.BaseAmount),
		nullableFloatPtr(item.Threshold),
		item.CreatedAt.Format(time.RFC3339),
		item.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting pantry item: %w", err)
	}

	item.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted pantry id: %w", err)
	}
	return nil
}

// GetByID retrieves a pantry item by id.
func (r *PantryRepository) GetByID(ctx context.Context, tx *sql.Tx, id int64) (*models.PantryItem, error) {
	query := `
		SELECT id, name, brand, category, store, unit,
			amount, base_amount, threshold, created_at, updated_at
		FROM pantry_items
		WHERE id = ?`

	q := getQuerier(r.db, tx)
	item, err := r.scanItem(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pantry item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning pantry item: %w", err)
	}
	return item, nil
}

// List retrieves pantry items ordered by name, with pagination.
func (r *PantryRepository) List(ctx context.Context, page models.Pagination) (*PantryItemList, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pantry_items").Scan(&total); err != nil {
		return nil, fmt.Errorf("counting pantry items: %w", err)
	}

	query := `
		SELECT id, name, brand, category, store, unit,
			amount, base_amount, threshold, created_at, updated_at
		FROM pantry_items
		ORDER BY LOWER(name) ASC, COALESCE(brand, '') ASC
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("querying pantry items: %w", err)
	}
	defer rows.Close()

	var items []*models.PantryItem
	for rows.Next() {
		item, err := r.scanItemRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return &PantryItemList{
		Items:      items,
		Total:      total,
		Page:       page.Page,
		TotalPages: page.TotalPages(total),
	}, rows.Err()
}

// Update writes all mutable fields of a pantry item.
func (r *PantryRepository) Update(ctx context.Context, tx *sql.Tx, item *models.PantryItem) error {
	query := `
		UPDATE pantry_items SET
			name = ?, brand = ?, category = ?, store = ?, unit = ?,
			amount = ?, base_amount = ?, threshold = ?, updated_at = ?
		WHERE id = ?`

	q := getQuerier(r.db, tx)
	item.UpdatedAt = time.Now().UTC()

	result, err := q.ExecContext(ctx, query,
		item.Name,
		nullableString(item.Brand),
		nullableString(item.Category),
		nullableString(item.Store),
		nullableString(item.Unit),
		item.Amount,
		nullableFloatPtr(item.BaseAmount),
		nullableFloatPtr(item.Threshold),
		item.UpdatedAt.Format(time.RFC3339),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating pantry item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("pantry item %d: %w", item.ID, ErrNotFound)
	}
	return nil
}

// UpdateAmount writes a new remaining amount for an item.
func (r *PantryRepository) UpdateAmount(ctx context.Context, tx *sql.Tx, id int64, amount float64) error {
	q := getQuerier(r.db, tx)
	result, err := q.ExecContext(ctx,
		"UPDATE pantry_items SET amount = ?, updated_at = ? WHERE id = ?",
		amount, time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating pantry amount: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("pantry item %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateBaseAmount records a new baseline (highest observed) amount.
func (r *PantryRepository) UpdateBaseAmount(ctx context.Context, tx *sql.Tx, id int64, base float64) error {
	q := getQuerier(r.db, tx)
	result, err := q.ExecContext(ctx,
		"UPDATE pantry_items SET base_amount = ?, updated_at = ? WHERE id = ?",
		base, time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating pantry baseline: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("pantry item %d: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a pantry item. Linked ingredients are unlinked by the
// schema's ON DELETE SET NULL.
func (r *PantryRepository) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	q := getQuerier(r.db, tx)
	result, err := q.ExecContext(ctx, "DELETE FROM pantry_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting pantry item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("pantry item %d: %w", id, ErrNotFound)
	}
	return nil
}

// PantryItemList represents a paginated list of pantry items.
type PantryItemList struct {
	Items      []*models.PantryItem
	Total      int
	Page       int
	TotalPages int
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PantryRepository) scanItem(row rowScanner) (*models.PantryItem, error) {
	var item models.PantryItem
	var brand, category, store, unit sql.NullString
	var baseAmount, threshold sql.NullFloat64
	var createdStr, updatedStr string

	err := row.Scan(
		&item.ID, &item.Name, &brand, &category, &store, &unit,
		&item.Amount, &baseAmount, &threshold, &createdStr, &updatedStr,
	)
	if err != nil {
		return nil, err
	}

	if brand.Valid {
		item.Brand = brand.String
	}
	if category.Valid {
		item.Category = category.String
	}
	if store.Valid {
		item.Store = store.String
	}
	if unit.Valid {
		item.Unit = unit.String
	}
	if baseAmount.Valid {
		item.BaseAmount = &baseAmount.Float64
	}
	if threshold.Valid {
		item.Threshold = &threshold.Float64
	}
	item.CreatedAt = parseTimestamp(createdStr)
	item.UpdatedAt = parseTimestamp(updatedStr)

	return &item, nil
}

func (r *PantryRepository) scanItemRow(rows *sql.Rows) (*models.PantryItem, error) {
	item, err := r.scanItem(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning pantry item row: %w", err)
	}
	return item, nil
}
