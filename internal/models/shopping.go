package models

import (
	"time"
)

// ShoppingStatus represents the lifecycle state of a shopping entry.
type ShoppingStatus string

const (
	ShoppingStatusPending   ShoppingStatus = "pending"
	ShoppingStatusPurchased ShoppingStatus = "purchased"
)

func (s ShoppingStatus) String() string {
	return string(s)
}

// IsOpen reports whether an entry with this status is eligible for
// quantity-merging. Empty/unset status counts as open.
func (s ShoppingStatus) IsOpen() bool {
	return s == ShoppingStatusPending || s == ""
}

// ShoppingEntry is one row of the shopping list.
type ShoppingEntry struct {
	ID       int64
	Name     string
	Brand    string
	Quantity float64
	Unit     string
	Category string
	Notes    string
	Store    string
	Status   ShoppingStatus

	// LinkedPantryID back-references the pantry item this entry restocks.
	LinkedPantryID *int64

	CreatedAt time.Time
}

// IsOpen reports whether the entry is still pending purchase.
func (e *ShoppingEntry) IsOpen() bool {
	return e.Status.IsOpen()
}
