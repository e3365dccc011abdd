package units

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		unit string
		want Family
	}{
		{"Grams", "g", FamilyMass},
		{"Kilograms plural", "kilograms", FamilyMass},
		{"Pounds abbreviation", "lbs", FamilyMass},
		{"Ounce", "ounce", FamilyMass},
		{"Milliliters", "ml", FamilyVolume},
		{"Cup", "cup", FamilyVolume},
		{"Gallons", "gallons", FamilyVolume},
		{"Tablespoon", "tbsp", FamilyVolume},
		{"Mixed case with spaces", "  Cups ", FamilyVolume},
		{"Empty string", "", FamilyUnknown},
		{"Count unit", "pcs", FamilyUnknown},
		{"Nonsense", "smidgen", FamilyUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.unit); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.unit, got, tt.want)
			}
		})
	}
}

func TestToCanonical(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		unit       string
		want       float64
		wantFamily Family
	}{
		{"Pound to grams", 1, "lb", 453.59237, FamilyMass},
		{"Kilogram to grams", 2.5, "kg", 2500, FamilyMass},
		{"Cup to milliliters", 1, "cup", 236.5882365, FamilyVolume},
		{"Quart to milliliters", 2, "qt", 1892.705892, FamilyVolume},
		{"Unknown passes through", 7, "pcs", 7, FamilyUnknown},
		{"Empty unit passes through", 3, "", 3, FamilyUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, family := ToCanonical(tt.value, tt.unit)
			if math.Abs(got-tt.want) > tolerance {
				t.Errorf("ToCanonical(%v, %q) = %v, want %v", tt.value, tt.unit, got, tt.want)
			}
			if family != tt.wantFamily {
				t.Errorf("ToCanonical(%v, %q) family = %v, want %v", tt.value, tt.unit, family, tt.wantFamily)
			}
		})
	}
}

func TestFromCanonical(t *testing.T) {
	if got := FromCanonical(453.59237, "lb"); math.Abs(got-1) > tolerance {
		t.Errorf("FromCanonical(453.59237, lb) = %v, want 1", got)
	}
	if got := FromCanonical(1000, "l"); math.Abs(got-1) > tolerance {
		t.Errorf("FromCanonical(1000, l) = %v, want 1", got)
	}
	// Unknown target: canonical value unchanged
	if got := FromCanonical(42, "handful"); got != 42 {
		t.Errorf("FromCanonical(42, handful) = %v, want 42", got)
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		from  string
		to    string
		want  float64
	}{
		{"Cup to ml", 1, "cup", "ml", 236.5882365},
		{"Kg to lb", 1, "kg", "lb", 1000.0 / 453.59237},
		{"Tbsp to tsp", 1, "tbsp", "tsp", 3},
		{"Gallon to cups", 1, "gal", "cups", 16},
		{"Same unit", 5, "g", "g", 5},
		{"Cross-family pass-through", 100, "g", "cup", 100},
		{"Unknown source pass-through", 100, "pcs", "g", 100},
		{"Unknown target pass-through", 100, "g", "pcs", 100},
		{"Both unknown pass-through", 4, "pcs", "each", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Convert(tt.value, tt.from, tt.to); math.Abs(got-tt.want) > tolerance {
				t.Errorf("Convert(%v, %q, %q) = %v, want %v", tt.value, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	pairs := []struct{ a, b string }{
		{"g", "lb"},
		{"kg", "oz"},
		{"ml", "cup"},
		{"tsp", "gal"},
		{"pint", "quart"},
	}

	for _, p := range pairs {
		t.Run(p.a+"-"+p.b, func(t *testing.T) {
			const x = 3.25
			back := Convert(Convert(x, p.a, p.b), p.b, p.a)
			if math.Abs(back-x) > tolerance {
				t.Errorf("round trip %s->%s->%s = %v, want %v", p.a, p.b, p.a, back, x)
			}
		})
	}
}

func TestConvertible(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"Mass to mass", "g", "lb", true},
		{"Volume to volume", "cup", "ml", true},
		{"Mass to volume", "g", "cup", false},
		{"Unknown to mass", "pcs", "g", false},
		{"Unknown to unknown", "pcs", "pcs", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Convertible(tt.from, tt.to); got != tt.want {
				t.Errorf("Convertible(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValue float64
		wantUnit  string
		wantOK    bool
	}{
		{"Value and unit", "2 cups", 2, "cups", true},
		{"Bare number", "250", 250, "", true},
		{"Decimal value", "1.5 kg", 1.5, "kg", true},
		{"Multi-word unit", "3 fl oz", 3, "fl oz", true},
		{"Empty", "", 0, "", false},
		{"Non-numeric", "a pinch", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, unit, ok := ParseQuantity(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseQuantity(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if value != tt.wantValue || unit != tt.wantUnit {
				t.Errorf("ParseQuantity(%q) = (%v, %q), want (%v, %q)",
					tt.input, value, unit, tt.wantValue, tt.wantUnit)
			}
		})
	}
}
