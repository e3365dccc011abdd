package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/celiogix/pantrysync/internal/models"
)

// ColumnMap describes the physical layout of a shopping list table. Each
// field names the column backing a logical field; an empty string means the
// deployment's table has no such column and the field is omitted from all
// statements. ID, Name, and Quantity are required.
type ColumnMap struct {
	Table          string
	ID             string
	Name           string
	Brand          string
	Quantity       string
	Unit           string
	Category       string
	Notes          string
	Store          string
	Status         string
	LinkedPantryID string
}

// DefaultColumnMap returns the layout of the built-in shopping_list table.
func DefaultColumnMap() ColumnMap {
	return ColumnMap{
		Table:          "shopping_list",
		ID:             "id",
		Name:           "name",
		Brand:          "brand",
		Quantity:       "quantity",
		Unit:           "unit",
		Category:       "category",
		Notes:          "notes",
		Store:          "store",
		Status:         "status",
		LinkedPantryID: "linked_pantry_id",
	}
}

// Validate checks that the required columns are mapped.
func (c ColumnMap) Validate() error {
	var errs []error
	if c.Table == "" {
		errs = append(errs, errors.New("table name is required"))
	}
	if c.ID == "" {
		errs = append(errs, errors.New("id column is required"))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("name column is required"))
	}
	if c.Quantity == "" {
		errs = append(errs, errors.New("quantity column is required"))
	}
	return errors.Join(errs...)
}

// OpenMatch is a candidate row found by FindOpenMatch. Quantity holds the
// parsed numeric quantity, with NULL reading as 0; QuantityOK is false when
// a stored value is present but cannot be parsed as a number.
type OpenMatch struct {
	ID         int64
	Quantity   float64
	QuantityOK bool
}

// ShoppingRepository handles shopping list data access against a table
// described by a ColumnMap.
type ShoppingRepository struct {
	db   *sql.DB
	cols ColumnMap
}

// NewShoppingRepository creates a shopping repository for the given layout.
func NewShoppingRepository(db *sql.DB, cols ColumnMap) (*ShoppingRepository, error) {
	if err := cols.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shopping column map: %w", err)
	}
	return &ShoppingRepository{db: db, cols: cols}, nil
}

// Columns returns the repository's table layout.
func (r *ShoppingRepository) Columns() ColumnMap {
	return r.cols
}

// FindOpenMatch looks for an open entry (status pending, empty, or absent
// when the table has no status column) matching the candidate. Matching
// prefers the pantry link; when the candidate is unlinked or the table has
// no link column, it falls back to exact (name, unit) equality. Returns
// ErrNotFound when no open row matches.
func (r *ShoppingRepository) FindOpenMatch(ctx context.Context, tx *sql.Tx, candidate *models.ShoppingEntry) (*OpenMatch, error) {
	q := getQuerier(r.db, tx)

	var conds []string
	var args []any

	if r.cols.LinkedPantryID != "" && candidate.LinkedPantryID != nil {
		conds = append(conds, r.cols.LinkedPantryID+" = ?")
		args = append(args, *candidate.LinkedPantryID)
	} else {
		conds = append(conds, r.cols.Name+" = ?")
		args = append(args, candidate.Name)
		if r.cols.Unit != "" {
			conds = append(conds, "COALESCE("+r.cols.Unit+", '') = ?")
			args = append(args, candidate.Unit)
		}
	}
	if r.cols.Status != "" {
		conds = append(conds, "COALESCE("+r.cols.Status+", '') IN ('', ?)")
		args = append(args, string(models.ShoppingStatusPending))
	}

	query := fmt.Sprintf(
		"SELECT %s, CAST(%s AS TEXT) FROM %s WHERE %s ORDER BY %s LIMIT 1",
		r.cols.ID, r.cols.Quantity, r.cols.Table,
		strings.Join(conds, " AND "), r.cols.ID,
	)

	var match OpenMatch
	var qty sql.NullString
	err := q.QueryRowContext(ctx, query, args...).Scan(&match.ID, &qty)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("open shopping entry for %q: %w", candidate.Name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning shopping match: %w", err)
	}

	if !qty.Valid {
		match.QuantityOK = true
	} else if parsed, perr := strconv.ParseFloat(strings.TrimSpace(qty.String), 64); perr == nil {
		match.Quantity = parsed
		match.QuantityOK = true
	}
	return &match, nil
}

// IncrementQuantity adds delta to an entry's stored quantity.
func (r *ShoppingRepository) IncrementQuantity(ctx context.Context, tx *sql.Tx, id int64, newQuantity float64) error {
	q := getQuerier(r.db, tx)

	query := fmt.Sprintf(
		"UPDATE %s SET %s = ? WHERE %s = ?",
		r.cols.Table, r.cols.Quantity, r.cols.ID,
	)
	result, err := q.ExecContext(ctx, query, newQuantity, id)
	if err != nil {
		return fmt.Errorf("updating shopping quantity: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("shopping entry %d: %w", id, ErrNotFound)
	}
	return nil
}

// Insert adds a new shopping entry, writing only the columns the table
// supports. Status defaults to pending when the table carries it.
func (r *ShoppingRepository) Insert(ctx context.Context, tx *sql.Tx, entry *models.ShoppingEntry) error {
	q := getQuerier(r.db, tx)

	cols := []string{r.cols.Name, r.cols.Quantity}
	args := []any{entry.Name, entry.Quantity}

	appendCol := func(col string, val any) {
		if col != "" {
			cols = append(cols, col)
			args = append(args, val)
		}
	}
	appendCol(r.cols.Brand, nullableString(entry.Brand))
	appendCol(r.cols.Unit, nullableString(entry.Unit))
	appendCol(r.cols.Category, nullableString(entry.Category))
	appendCol(r.cols.Notes, nullableString(entry.Notes))
	appendCol(r.cols.Store, nullableString(entry.Store))
	if r.cols.Status != "" {
		status := entry.Status
		if status == "" {
			status = models.ShoppingStatusPending
		}
		appendCol(r.cols.Status, string(status))
	}
	appendCol(r.cols.LinkedPantryID, nullableInt64Ptr(entry.LinkedPantryID))

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		r.cols.Table,
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
	)
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("inserting shopping entry: %w", err)
	}

	entry.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted shopping id: %w", err)
	}
	return nil
}

// List retrieves all shopping entries ordered by id.
func (r *ShoppingRepository) List(ctx context.Context) ([]*models.ShoppingEntry, error) {
	selectCols := []string{r.cols.ID, r.cols.Name, "CAST(" + r.cols.Quantity + " AS TEXT)"}
	optional := []string{
		r.cols.Brand, r.cols.Unit, r.cols.Category,
		r.cols.Notes, r.cols.Store, r.cols.Status, r.cols.LinkedPantryID,
	}
	for _, col := range optional {
		if col == "" {
			selectCols = append(selectCols, "NULL")
		} else {
			selectCols = append(selectCols, col)
		}
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY %s",
		strings.Join(selectCols, ", "), r.cols.Table, r.cols.ID,
	)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying shopping list: %w", err)
	}
	defer rows.Close()

	var entries []*models.ShoppingEntry
	for rows.Next() {
		var entry models.ShoppingEntry
		var qty, brand, unit, category, notes, store, status sql.NullString
		var pantryID sql.NullInt64

		err := rows.Scan(
			&entry.ID, &entry.Name, &qty,
			&brand, &unit, &category, &notes, &store, &status, &pantryID,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning shopping row: %w", err)
		}

		if qty.Valid {
			entry.Quantity, _ = strconv.ParseFloat(strings.TrimSpace(qty.String), 64)
		}
		if brand.Valid {
			entry.Brand = brand.String
		}
		if unit.Valid {
			entry.Unit = unit.String
		}
		if category.Valid {
			entry.Category = category.String
		}
		if notes.Valid {
			entry.Notes = notes.String
		}
		if store.Valid {
			entry.Store = store.String
		}
		if status.Valid {
			entry.Status = models.ShoppingStatus(status.String)
		}
		if pantryID.Valid {
			entry.LinkedPantryID = &pantryID.Int64
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// MarkPurchased sets an entry's status to purchased. Returns an error when
// the table has no status column.
func (r *ShoppingRepository) MarkPurchased(ctx context.Context, tx *sql.Tx, id int64) error {
	if r.cols.Status == "" {
		return fmt.Errorf("shopping table %s has no status column", r.cols.Table)
	}
	q := getQuerier(r.db, tx)

	query := fmt.Sprintf(
		"UPDATE %s SET %s = ? WHERE %s = ?",
		r.cols.Table, r.cols.Status, r.cols.ID,
	)
	result, err := q.ExecContext(ctx, query, string(models.ShoppingStatusPurchased), id)
	if err != nil {
		return fmt.Errorf("marking shopping entry purchased: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("shopping entry %d: %w", id, ErrNotFound)
	}
	return nil
}
