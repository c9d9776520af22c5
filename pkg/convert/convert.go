// Package convert applies resolved rates to amounts and formats magnitudes
// for display. It is pure: no I/O, no failure modes.
package convert

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/coinwatch/coinwatch/pkg/domain"
)

// Apply converts an amount using a resolved rate. The amount is assumed to be
// a validated finite non-negative value; zero and NaN are guarded upstream.
func Apply(rate *domain.ExchangeRate, amount float64) float64 {
	return amount * rate.Rate
}

// FormatAmount renders a magnitude for display:
//
//	0                 -> "0"
//	>= 1e9            -> value/1e9, 2 fraction digits, "B" suffix
//	>= 1e6            -> value/1e6, 2 fraction digits, "M" suffix
//	>= 1e3            -> value/1e3, 2 fraction digits, "K" suffix
//	0 < m < 1e-6      -> scientific, 4 fraction digits ("5.0000e-07")
//	otherwise         -> plain decimal, fraction digits scaled to magnitude,
//	                     trailing zeros trimmed
func FormatAmount(m float64) string {
	switch {
	case m == 0:
		return "0"
	case m >= 1e9:
		return fmt.Sprintf("%.2fB", m/1e9)
	case m >= 1e6:
		return fmt.Sprintf("%.2fM", m/1e6)
	case m >= 1e3:
		return fmt.Sprintf("%.2fK", m/1e3)
	case m > 0 && m < 1e-6:
		return fmt.Sprintf("%.4e", m)
	default:
		return trimZeros(strconv.FormatFloat(m, 'f', fractionDigits(m), 64))
	}
}

// fractionDigits scales precision inversely to magnitude so small amounts
// keep significant digits.
func fractionDigits(m float64) int {
	switch {
	case m < 1e-4:
		return 8
	case m < 1e-2:
		return 6
	case m < 1:
		return 4
	default:
		return 2
	}
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// ParseAmount validates user-typed amount text. Empty input and a bare "."
// count as zero; anything that does not parse as a finite non-negative
// decimal is rejected.
func ParseAmount(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" || text == "." {
		return 0, true
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
