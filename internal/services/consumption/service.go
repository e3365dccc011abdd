// Package consumption implements the menu consumption sync engine: it walks
// unapplied menu entries up to a cutoff date, deducts recipe ingredients from
// pantry stock, and auto-adds shopping entries for items that fall to or
// below their replenishment threshold.
package consumption

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/celiogix/pantrysync/internal/database"
	"github.com/celiogix/pantrysync/internal/models"
	"github.com/celiogix/pantrysync/internal/repository"
	"github.com/celiogix/pantrysync/internal/services/shopping"
	"github.com/celiogix/pantrysync/internal/units"
	"github.com/celiogix/pantrysync/internal/util"
)

// Service runs consumption syncs against the pantry store.
type Service struct {
	db          *database.DB
	pantry      *repository.PantryRepository
	recipes     *repository.RecipeRepository
	menu        *repository.MenuRepository
	merger      *shopping.Merger
	opts        Options
	logger      *slog.Logger
	idGenerator *util.IDGenerator
}

// NewService creates a consumption service. A nil logger falls back to
// slog.Default.
func NewService(db *database.DB, merger *shopping.Merger, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RestockQuantity <= 0 {
		opts.RestockQuantity = DefaultOptions().RestockQuantity
	}
	return &Service{
		db:          db,
		pantry:      repository.NewPantryRepository(db.DB),
		recipes:     repository.NewRecipeRepository(db.DB),
		menu:        repository.NewMenuRepository(db.DB),
		merger:      merger,
		opts:        opts,
		logger:      logger,
		idGenerator: util.NewIDGenerator(),
	}
}

// SyncMenuConsumption applies every unapplied menu entry dated on or before
// asOf, in (date, id) order. Each entry is applied in its own transaction
// and marked applied inside it, so a rerun never double-deducts and a
// failure mid-run keeps already-committed entries applied. On failure the
// report reflects the committed portion of the run.
func (s *Service) SyncMenuConsumption(ctx context.Context, asOf time.Time) (*SyncReport, error) {
	report := &SyncReport{RunID: s.idGenerator.NewID()}
	logger := s.logger.With("run_id", report.RunID)

	pending, err := s.menu.ListPending(ctx, asOf)
	if err != nil {
		return report, fmt.Errorf("listing pending menu entries: %w", err)
	}

	logger.Info("starting consumption sync",
		"as_of", util.FormatDate(asOf), "pending_entries", len(pending))

	for _, entry := range pending {
		err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
			return s.applyEntry(ctx, tx, entry, report, logger)
		})
		if err != nil {
			logger.Error("consumption sync aborted",
				"entry_id", entry.ID, "error", err)
			return report, fmt.Errorf("applying menu entry %d: %w", entry.ID, err)
		}
		report.ProcessedEntries++
	}

	logger.Info("consumption sync complete",
		"processed", report.ProcessedEntries,
		"updated_items", report.UpdatedItems,
		"skipped_ingredients", report.SkippedIngredients,
		"auto_added", report.AutoAdded)

	return report, nil
}

// applyEntry deducts one menu entry's ingredients and marks it applied, all
// within the caller's transaction.
func (s *Service) applyEntry(ctx context.Context, tx *sql.Tx, entry *models.MenuEntry, report *SyncReport, logger *slog.Logger) error {
	ingredients, err := s.recipes.ListIngredients(ctx, tx, entry.RecipeID)
	if err != nil {
		return fmt.Errorf("loading ingredients: %w", err)
	}

	servings := entry.Servings
	if servings <= 0 {
		servings = 1
	}

	for _, ing := range ingredients {
		if err := s.applyIngredient(ctx, tx, ing, servings, report, logger); err != nil {
			return err
		}
	}

	return s.menu.MarkApplied(ctx, tx, entry.ID)
}

func (s *Service) applyIngredient(ctx context.Context, tx *sql.Tx, ing *models.RecipeIngredient, servings float64, report *SyncReport, logger *slog.Logger) error {
	if !ing.IsLinked() {
		report.SkippedIngredients++
		logger.Debug("skipping unlinked ingredient", "ingredient", ing.Name)
		return nil
	}

	item, err := s.pantry.GetByID(ctx, tx, *ing.LinkedPantryID)
	if errors.Is(err, repository.ErrNotFound) {
		report.SkippedIngredients++
		logger.Warn("linked pantry item missing, skipping ingredient",
			"ingredient", ing.Name, "pantry_id", *ing.LinkedPantryID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading pantry item %d: %w", *ing.LinkedPantryID, err)
	}

	// Baseline maintenance: record the highest amount ever observed so
	// ratio thresholds have a stable reference even as stock drains.
	if item.BaseAmount == nil || item.Amount > *item.BaseAmount {
		base := item.Amount
		if err := s.pantry.UpdateBaseAmount(ctx, tx, item.ID, base); err != nil {
			return fmt.Errorf("recording baseline for item %d: %w", item.ID, err)
		}
		item.BaseAmount = &base
	}

	required := ing.Quantity * servings

	deduction, ok := s.reconcileUnits(required, ing.Unit, item.Unit)
	if !ok {
		report.SkippedIngredients++
		logger.Warn("ingredient unit cannot be reconciled with pantry unit, skipping",
			"ingredient", ing.Name, "ingredient_unit", ing.Unit, "pantry_unit", item.Unit)
		return nil
	}

	remaining := item.Amount - deduction
	if remaining < 0 {
		remaining = 0
	}
	if err := s.pantry.UpdateAmount(ctx, tx, item.ID, remaining); err != nil {
		return fmt.Errorf("deducting from item %d: %w", item.ID, err)
	}
	report.UpdatedItems++

	if !item.NeedsReplenishment(remaining) {
		return nil
	}

	cutoff := item.ReplenishCutoff()
	candidate := &models.ShoppingEntry{
		Name:           item.Name,
		Brand:          item.Brand,
		Quantity:       s.opts.RestockQuantity,
		Unit:           item.Unit,
		Category:       item.Category,
		Store:          item.Store,
		Notes:          fmt.Sprintf("Auto-added: remaining %g %s <= threshold %g", remaining, item.Unit, cutoff),
		LinkedPantryID: &item.ID,
	}
	result, err := s.merger.MergeOrInsert(ctx, tx, candidate)
	if err != nil {
		return fmt.Errorf("restocking item %d: %w", item.ID, err)
	}
	report.AutoAdded++
	logger.Info("pantry item at or below threshold, added to shopping list",
		"item", item.Name, "remaining", remaining, "threshold", cutoff,
		"merged", result.Merged)

	return nil
}

// reconcileUnits converts a required quantity from the recipe's unit into the
// pantry item's unit. Units of the same known family convert by factor.
// Unknown or mismatched units deduct as-is only when the two unit strings are
// textually identical and pass-through is enabled.
func (s *Service) reconcileUnits(required float64, from, to string) (float64, bool) {
	if units.Convertible(from, to) {
		return units.Convert(required, from, to), true
	}
	if s.opts.AllowUnitPassthrough &&
		strings.EqualFold(strings.TrimSpace(from), strings.TrimSpace(to)) {
		return required, true
	}
	return 0, false
}
