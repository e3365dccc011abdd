package models

import (
	"time"
)

// MenuEntry schedules one recipe on a calendar date. Entries are created by
// the meal-planning UI and consumed exactly once by the sync engine.
type MenuEntry struct {
	ID       int64
	Date     time.Time // calendar date, midnight UTC
	RecipeID int64
	Servings float64

	// UsageApplied is the one-shot idempotency flag: once true, the
	// entry's pantry effects are never applied again.
	UsageApplied bool

	CreatedAt time.Time

	// Joined fields
	Recipe *Recipe
}
