// Package shopping provides shopping list operations, including the
// duplicate-suppressing merger used by the consumption sync engine.
package shopping

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/celiogix/pantrysync/internal/models"
	"github.com/celiogix/pantrysync/internal/repository"
)

// MergeResult describes the outcome of a merge-or-insert.
type MergeResult struct {
	EntryID  int64
	Merged   bool // true when an existing open entry absorbed the candidate
	Quantity float64
}

// Merger adds candidate entries to the shopping list, folding each into an
// existing open entry when one matches instead of creating a duplicate line.
type Merger struct {
	repo   *repository.ShoppingRepository
	logger *slog.Logger
}

// NewMerger creates a merger over the given shopping repository.
func NewMerger(repo *repository.ShoppingRepository, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{repo: repo, logger: logger}
}

// MergeOrInsert adds the candidate to the shopping list. A matching open
// entry (by pantry link, else by exact name and unit) has its quantity
// increased by the candidate's quantity; otherwise a new row is inserted.
// An open entry whose stored quantity cannot be parsed as a number is left
// untouched and treated as already covering the need.
func (m *Merger) MergeOrInsert(ctx context.Context, tx *sql.Tx, candidate *models.ShoppingEntry) (*MergeResult, error) {
	if candidate.Name == "" {
		return nil, errors.New("shopping candidate needs a name")
	}
	if candidate.Quantity <= 0 {
		candidate.Quantity = 1
	}

	match, err := m.repo.FindOpenMatch(ctx, tx, candidate)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("matching shopping entry: %w", err)
	}

	if match != nil {
		if !match.QuantityOK {
			m.logger.Warn("open shopping entry has unreadable quantity, leaving as is",
				"entry_id", match.ID, "name", candidate.Name)
			return &MergeResult{EntryID: match.ID, Merged: true}, nil
		}

		newQty := match.Quantity + candidate.Quantity
		if err := m.repo.IncrementQuantity(ctx, tx, match.ID, newQty); err != nil {
			return nil, fmt.Errorf("incrementing shopping quantity: %w", err)
		}
		return &MergeResult{EntryID: match.ID, Merged: true, Quantity: newQty}, nil
	}

	if err := m.repo.Insert(ctx, tx, candidate); err != nil {
		return nil, fmt.Errorf("inserting shopping entry: %w", err)
	}
	return &MergeResult{EntryID: candidate.ID, Merged: false, Quantity: candidate.Quantity}, nil
}
