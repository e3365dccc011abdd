// Package units converts kitchen measurements between units of the same
// family. Mass units canonicalize to grams, volume units to milliliters.
// Conversions across families (or involving unrecognized units) are not
// meaningful; Convert deliberately returns the input value unchanged in
// that case, and callers needing strictness must check Classify first.
package units

import (
	"strconv"
	"strings"
)

// Family classifies a unit string into one of the convertible domains.
type Family string

const (
	FamilyMass    Family = "mass"
	FamilyVolume  Family = "volume"
	FamilyUnknown Family = "unknown"
)

func (f Family) String() string {
	return string(f)
}

// Canonical reference units per family.
const (
	CanonicalMassUnit   = "g"
	CanonicalVolumeUnit = "ml"
)

// Grams per mass unit. Factors follow NIST avoirdupois definitions.
var massGrams = map[string]float64{
	"g":         1.0,
	"gram":      1.0,
	"grams":     1.0,
	"kg":        1000.0,
	"kilogram":  1000.0,
	"kilograms": 1000.0,
	"oz":        28.349523125,
	"ounce":     28.349523125,
	"ounces":    28.349523125,
	"lb":        453.59237,
	"lbs":       453.59237,
	"pound":     453.59237,
	"pounds":    453.59237,
}

// Milliliters per volume unit. US customary kitchen measures.
var volumeMilliliters = map[string]float64{
	"ml":          1.0,
	"milliliter":  1.0,
	"milliliters": 1.0,
	"l":           1000.0,
	"liter":       1000.0,
	"liters":      1000.0,
	"tsp":         4.92892159375,
	"teaspoon":    4.92892159375,
	"teaspoons":   4.92892159375,
	"tbsp":        14.78676478125,
	"tablespoon":  14.78676478125,
	"tablespoons": 14.78676478125,
	"cup":         236.5882365,
	"cups":        236.5882365,
	"pt":          473.176473,
	"pint":        473.176473,
	"pints":       473.176473,
	"qt":          946.352946,
	"quart":       946.352946,
	"quarts":      946.352946,
	"gal":         3785.411784,
	"gallon":      3785.411784,
	"gallons":     3785.411784,
}

// normalize lowercases and trims a unit string for table lookup.
func normalize(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

// Classify maps any unit string to exactly one family. It is total: empty
// strings, counts ("pcs"), and anything unrecognized are FamilyUnknown.
func Classify(unit string) Family {
	key := normalize(unit)
	if _, ok := massGrams[key]; ok {
		return FamilyMass
	}
	if _, ok := volumeMilliliters[key]; ok {
		return FamilyVolume
	}
	return FamilyUnknown
}

// Convertible reports whether Convert will produce a meaningful result,
// i.e. both units belong to the same known family.
func Convertible(from, to string) bool {
	ff := Classify(from)
	return ff != FamilyUnknown && ff == Classify(to)
}

// ToCanonical converts a value into its family's canonical unit (grams or
// milliliters) and reports the family. Unknown units pass through unchanged.
func ToCanonical(value float64, unit string) (float64, Family) {
	key := normalize(unit)
	if factor, ok := massGrams[key]; ok {
		return value * factor, FamilyMass
	}
	if factor, ok := volumeMilliliters[key]; ok {
		return value * factor, FamilyVolume
	}
	return value, FamilyUnknown
}

// FromCanonical converts a canonical value (grams or milliliters) into the
// target unit. Unknown target units pass through unchanged.
func FromCanonical(canonical float64, unit string) float64 {
	key := normalize(unit)
	if factor, ok := massGrams[key]; ok {
		return canonical / factor
	}
	if factor, ok := volumeMilliliters[key]; ok {
		return canonical / factor
	}
	return canonical
}

// Convert converts a value between two units of the same family. When the
// units belong to different families, or either is unknown, the value is
// returned unchanged (pass-through policy; see the package comment).
func Convert(value float64, from, to string) float64 {
	if !Convertible(from, to) {
		return value
	}
	canonical, _ := ToCanonical(value, from)
	return FromCanonical(canonical, to)
}

// ParseQuantity splits free text like "2 cups" or "250" into a value and a
// unit string. The unit may be empty. Returns ok=false when the leading
// token is not numeric.
func ParseQuantity(s string) (value float64, unit string, ok bool) {
	text := strings.TrimSpace(s)
	if text == "" {
		return 0, "", false
	}
	parts := strings.Fields(text)
	value, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, "", false
	}
	if len(parts) > 1 {
		unit = strings.Join(parts[1:], " ")
	}
	return value, unit, true
}
