// Package numfmt rounds numeric table cells to a fixed number of decimal
// places or significant figures. Cells that are not plain decimal numbers
// are returned unchanged.
package numfmt

import (
	"math"
	"strconv"
	"strings"
)

// MaxPrecision caps both the decimal places and the significant figures a
// caller may ask for. float64 carries about 17 significant digits, so
// anything past this only pads with zeros.
const MaxPrecision = 100

// IsNumber reports whether s is an optionally signed decimal number with at
// most one '.' and at least one digit. Exponents are not accepted.
func IsNumber(s string) bool {
	if s == "" {
		return false
	}
	start := 0
	if s[0] == '-' || s[0] == '+' {
		start = 1
	}
	if start >= len(s) {
		return false
	}

	hasDot, hasDigit := false, false
	for i := start; i < len(s); i++ {
		switch c := s[i]; {
		case c == '.':
			if hasDot {
				return false
			}
			hasDot = true
		case c >= '0' && c <= '9':
			hasDigit = true
		default:
			return false
		}
	}
	return hasDigit
}

// RoundDecimals rounds s half away from zero to the given number of decimal
// places and prints exactly that many fraction digits. Negative counts are
// treated as zero and counts above MaxPrecision as MaxPrecision.
func RoundDecimals(s string, decimals int) string {
	v, ok := parse(s)
	if !ok {
		return s
	}
	decimals = min(max(decimals, 0), MaxPrecision)

	return strconv.FormatFloat(scaleRound(v, math.Pow(10, float64(decimals))), 'f', decimals, 64)
}

// RoundSigFigs rounds s to the given number of significant figures. Counts
// below one are treated as one and counts above MaxPrecision as
// MaxPrecision. Results that need no fraction digits are
// printed in integer form.
func RoundSigFigs(s string, sigFigs int) string {
	v, ok := parse(s)
	if !ok {
		return s
	}
	sigFigs = min(max(sigFigs, 1), MaxPrecision)
	if v == 0 {
		return "0"
	}

	exponent := int(math.Floor(math.Log10(math.Abs(v))))
	shift := sigFigs - 1 - exponent
	rounded := scaleRound(v, math.Pow(10, float64(shift)))

	if shift > 0 {
		return strconv.FormatFloat(rounded, 'f', shift, 64)
	}

	out := strconv.FormatFloat(rounded, 'f', 6, 64)
	if dot := strings.IndexByte(out, '.'); dot >= 0 {
		out = out[:dot]
	}
	return out
}

func parse(s string) (float64, bool) {
	if !IsNumber(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// scaleRound rounds v to the grid given by 1/multiplier. Multipliers that
// overflow or underflow leave v as is.
func scaleRound(v, multiplier float64) float64 {
	if multiplier == 0 || math.IsInf(multiplier, 0) {
		return v
	}
	scaled := v * multiplier
	if math.IsInf(scaled, 0) {
		return v
	}
	return math.Round(scaled) / multiplier
}
