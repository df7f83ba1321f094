package engine

import (
	"math"
	"strconv"
	"strings"
)

const maxFractionDigits = 16

// FormatNumber renders v in plain decimal notation with at most 16 fractional
// digits and no trailing zeros. NaN and infinities come out as strconv spells
// them ("NaN", "+Inf", "-Inf").
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', maxFractionDigits, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// Finite reports whether v is neither NaN nor an infinity.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
