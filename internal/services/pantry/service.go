// Package pantry provides pantry item management operations.
package pantry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/celiogix/pantrysync/internal/database"
	"github.com/celiogix/pantrysync/internal/models"
	"github.com/celiogix/pantrysync/internal/repository"
)

// Service provides pantry item operations.
type Service struct {
	db     *database.DB
	items  *repository.PantryRepository
	logger *slog.Logger
}

// NewService creates a new pantry service.
func NewService(db *database.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:     db,
		items:  repository.NewPantryRepository(db.DB),
		logger: logger,
	}
}

// CreateItemInput carries the fields for a new pantry item.
type CreateItemInput struct {
	Name      string
	Brand     string
	Category  string
	Store     string
	Unit      string
	Amount    float64
	Threshold *float64
}

// CreateItem adds a pantry item. The initial amount also becomes the
// baseline used by ratio thresholds.
func (s *Service) CreateItem(ctx context.Context, input CreateItemInput) (*models.PantryItem, error) {
	if input.Name == "" {
		return nil, errors.New("pantry item needs a name")
	}
	if input.Amount < 0 {
		return nil, fmt.Errorf("amount must not be negative, got %g", input.Amount)
	}

	item := &models.PantryItem{
		Name:      input.Name,
		Brand:     input.Brand,
		Category:  input.Category,
		Store:     input.Store,
		Unit:      input.Unit,
		Amount:    input.Amount,
		Threshold: input.Threshold,
	}
	if input.Amount > 0 {
		base := input.Amount
		item.BaseAmount = &base
	}

	if err := s.items.Create(ctx, nil, item); err != nil {
		return nil, fmt.Errorf("creating pantry item: %w", err)
	}

	s.logger.Info("pantry item created", "item_id", item.ID, "name", item.Name)
	return item, nil
}

// GetItem retrieves a pantry item by id.
func (s *Service) GetItem(ctx context.Context, id int64) (*models.PantryItem, error) {
	return s.items.GetByID(ctx, nil, id)
}

// ListItems retrieves pantry items ordered by name.
func (s *Service) ListItems(ctx context.Context, page models.Pagination) (*repository.PantryItemList, error) {
	return s.items.List(ctx, page)
}

// Restock adds quantity to an item's stock. When the new level exceeds the
// recorded baseline, the baseline advances with it.
func (s *Service) Restock(ctx context.Context, id int64, quantity float64) (*models.PantryItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("restock quantity must be positive, got %g", quantity)
	}

	var item *models.PantryItem
	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		item, err = s.items.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}

		item.Amount += quantity
		if err := s.items.UpdateAmount(ctx, tx, id, item.Amount); err != nil {
			return err
		}

		if item.BaseAmount == nil || item.Amount > *item.BaseAmount {
			base := item.Amount
			if err := s.items.UpdateBaseAmount(ctx, tx, id, base); err != nil {
				return err
			}
			item.BaseAmount = &base
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("restocking item %d: %w", id, err)
	}

	s.logger.Info("pantry item restocked",
		"item_id", id, "added", quantity, "amount", item.Amount)
	return item, nil
}

// SetThreshold updates an item's replenishment threshold. Values in (0, 1]
// are ratios of the baseline, values above 1 are absolute amounts, and nil
// or non-positive values disable auto-replenishment.
func (s *Service) SetThreshold(ctx context.Context, id int64, threshold *float64) error {
	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		item, err := s.items.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		item.Threshold = threshold
		return s.items.Update(ctx, tx, item)
	})
	if err != nil {
		return fmt.Errorf("setting threshold for item %d: %w", id, err)
	}
	return nil
}

// DeleteItem removes a pantry item. Recipe links to it are cleared.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	if err := s.items.Delete(ctx, nil, id); err != nil {
		return err
	}
	s.logger.Info("pantry item deleted", "item_id", id)
	return nil
}
