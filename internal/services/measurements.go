package services

import (
	"strconv"
	"strings"
)

// Measurement units for recipe lines. Volume units convert between each
// other; imprecise and count-based units do not.
const (
	UnitOz       = "oz"
	UnitMl       = "ml"
	UnitCl       = "cl"
	UnitTsp      = "tsp"
	UnitTbsp     = "tbsp"
	UnitBarspoon = "barspoon"

	UnitDash   = "dash"
	UnitDrop   = "drop"
	UnitRinse  = "rinse"
	UnitFloat  = "float"
	UnitTop    = "top"
	UnitSplash = "splash"

	UnitWhole = "whole"
	UnitPiece = "piece"
	UnitSlice = "slice"
	UnitWedge = "wedge"
	UnitSprig = "sprig"
	UnitLeaf  = "leaf"
)

// mlConversions holds ml equivalents for the convertible volume units.
var mlConversions = map[string]float64{
	UnitOz:       29.5735,
	UnitMl:       1,
	UnitCl:       10,
	UnitTsp:      4.929,
	UnitTbsp:     14.787,
	UnitBarspoon: 5,
}

// unitAliases maps common spelling variations onto canonical units.
var unitAliases = map[string]string{
	"oz":          UnitOz,
	"ounce":       UnitOz,
	"ounces":      UnitOz,
	"ml":          UnitMl,
	"milliliter":  UnitMl,
	"milliliters": UnitMl,
	"cl":          UnitCl,
	"centiliter":  UnitCl,
	"centiliters": UnitCl,
	"tsp":         UnitTsp,
	"teaspoon":    UnitTsp,
	"teaspoons":   UnitTsp,
	"tbsp":        UnitTbsp,
	"tablespoon":  UnitTbsp,
	"tablespoons": UnitTbsp,
	"barspoon":    UnitBarspoon,
	"barspoons":   UnitBarspoon,
	"dash":        UnitDash,
	"dashes":      UnitDash,
	"drop":        UnitDrop,
	"drops":       UnitDrop,
	"rinse":       UnitRinse,
	"float":       UnitFloat,
	"top":         UnitTop,
	"splash":      UnitSplash,
	"whole":       UnitWhole,
	"piece":       UnitPiece,
	"pieces":      UnitPiece,
	"slice":       UnitSlice,
	"slices":      UnitSlice,
	"wedge":       UnitWedge,
	"wedges":      UnitWedge,
	"sprig":       UnitSprig,
	"sprigs":      UnitSprig,
	"leaf":        UnitLeaf,
	"leaves":      UnitLeaf,
}

// NormalizeUnit maps a free-form unit string onto a canonical unit. Unknown
// units pass through lowercased so nothing is silently dropped.
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		return ""
	}
	if canonical, ok := unitAliases[u]; ok {
		return canonical
	}
	return u
}

// ParseAmount parses a decimal or simple-fraction amount string. Returns nil
// when the string is empty or unparseable.
func ParseAmount(amount string) *float64 {
	s := strings.TrimSpace(amount)
	if s == "" {
		return nil
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, errN := strconv.ParseFloat(strings.TrimSpace(num), 64)
		d, errD := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if errN != nil || errD != nil || d == 0 {
			return nil
		}
		v := n / d
		return &v
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// IsConvertible reports whether the unit converts to other volume units.
func IsConvertible(unit string) bool {
	_, ok := mlConversions[unit]
	return ok
}

// ConvertUnit converts amount between two volume units. Returns false when
// either unit is not convertible.
func ConvertUnit(amount float64, fromUnit, toUnit string) (float64, bool) {
	fromML, ok := mlConversions[fromUnit]
	if !ok {
		return 0, false
	}
	toML, ok := mlConversions[toUnit]
	if !ok {
		return 0, false
	}
	return amount * fromML / toML, true
}
