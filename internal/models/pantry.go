package models

import (
	"time"
)

// PantryItem represents one tracked item in the pantry store.
type PantryItem struct {
	ID       int64
	Name     string
	Brand    string
	Category string
	Store    string

	// Unit is the item's native measurement unit ("g", "cups", "pcs", ...).
	Unit string

	// Amount is the quantity currently remaining, in the native unit.
	Amount float64

	// BaseAmount is the highest amount on record, the 100% reference for
	// ratio thresholds. NULL until first observed.
	BaseAmount *float64

	// Threshold controls auto-replenishment: values in (0, 1] are a
	// fraction of BaseAmount, values > 1 an absolute remaining quantity.
	// NULL or <= 0 disables replenishment for the item.
	Threshold *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReplenishCutoff resolves the threshold to an absolute remaining quantity
// in the item's native unit. Returns 0 when replenishment is disabled.
func (p *PantryItem) ReplenishCutoff() float64 {
	if p.Threshold == nil {
		return 0
	}
	thr := *p.Threshold
	if thr <= 0 {
		return 0
	}
	if thr <= 1.0 {
		if p.BaseAmount == nil {
			return 0
		}
		return *p.BaseAmount * thr
	}
	return thr
}

// NeedsReplenishment reports whether the given remaining amount is at or
// below the resolved cutoff.
func (p *PantryItem) NeedsReplenishment(remaining float64) bool {
	cutoff := p.ReplenishCutoff()
	return cutoff > 0 && remaining <= cutoff
}
