package consumption

// Options tunes how a sync run deducts stock and restocks the shopping list.
type Options struct {
	// RestockQuantity is the quantity written on auto-added shopping
	// entries. One line item per depleted pantry item, not one per unit
	// of shortfall.
	RestockQuantity float64

	// AllowUnitPassthrough permits deducting across units that are not
	// convertible but are textually identical (e.g. "bag" and "bag").
	// When false, such ingredients are skipped.
	AllowUnitPassthrough bool
}

// DefaultOptions returns the options used when none are supplied.
func DefaultOptions() Options {
	return Options{
		RestockQuantity:      1.0,
		AllowUnitPassthrough: true,
	}
}

// SyncReport summarizes one sync run.
type SyncReport struct {
	// RunID is a time-ordered identifier for log correlation.
	RunID string

	// ProcessedEntries counts menu entries marked applied during the run.
	ProcessedEntries int

	// UpdatedItems counts pantry deductions written (one per ingredient
	// applied, not one per distinct item).
	UpdatedItems int

	// SkippedIngredients counts ingredients that could not be applied:
	// unlinked, pointing at a deleted item, or measured in a unit that
	// cannot be reconciled with the pantry's.
	SkippedIngredients int

	// AutoAdded counts threshold breaches that produced or refreshed a
	// shopping list entry.
	AutoAdded int
}
