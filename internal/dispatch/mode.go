package dispatch

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/f3rmion/tabconv/internal/numfmt"
)

// Format selects the output family of a conversion.
type Format int

const (
	FormatLaTeX Format = iota
	FormatCSV
)

// String returns the lowercase format name.
func (f Format) String() string {
	switch f {
	case FormatLaTeX:
		return "latex"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// RoundMode selects the numeric post-processing applied before conversion.
type RoundMode string

const (
	RoundNone    RoundMode = "none"
	RoundDecimal RoundMode = "decimal"
	RoundSigFigs RoundMode = "sig-figs"
)

// RoundModes lists the selectable modes in display order.
var RoundModes = []RoundMode{RoundNone, RoundDecimal, RoundSigFigs}

// Parameter defaults used when the corresponding field does not parse.
const (
	DefaultDecimals = 0
	DefaultSigFigs  = 1
)

// ParseRoundMode maps a selector value to a RoundMode. Anything other than
// "decimal" or "sig-figs" is RoundNone.
func ParseRoundMode(s string) RoundMode {
	switch RoundMode(s) {
	case RoundDecimal:
		return RoundDecimal
	case RoundSigFigs:
		return RoundSigFigs
	default:
		return RoundNone
	}
}

// ParseParam reads a leading integer from raw the way a browser's parseInt
// does: leading whitespace and an optional sign are skipped, digits are
// read until the first non-digit, and a "0x" prefix switches to hex.
// If no digits are found, or the value is zero, def is returned. Values
// outside the int32 range wrap modulo 2^32.
func ParseParam(raw string, def int) int {
	n, ok := parseLeadingInt(raw)
	if !ok || n == 0 {
		return def
	}
	return n
}

// ErrParamRange is returned by CheckParam when the rounding parameter
// exceeds numfmt.MaxPrecision.
var ErrParamRange = errors.New("dispatch: rounding parameter out of range")

// CheckParam parses the parameter the given mode would use and rejects it
// when it exceeds numfmt.MaxPrecision. Modes without a parameter pass.
func CheckParam(mode, decimals, sigFigs string) error {
	var name, raw string
	var def int
	switch ParseRoundMode(mode) {
	case RoundDecimal:
		name, raw, def = "decimals", decimals, DefaultDecimals
	case RoundSigFigs:
		name, raw, def = "sig-figs", sigFigs, DefaultSigFigs
	default:
		return nil
	}
	if n := ParseParam(raw, def); n > numfmt.MaxPrecision {
		return fmt.Errorf("%w: %s %d is above %d", ErrParamRange, name, n, numfmt.MaxPrecision)
	}
	return nil
}

func parseLeadingInt(raw string) (int, bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	base := uint32(10)
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	// uint32 arithmetic keeps the value modulo 2^32, the same wrap an
	// int32 conversion of the full number would give.
	var v uint32
	digits := 0
	for _, c := range s {
		d := digitValue(c)
		if d < 0 || uint32(d) >= base {
			break
		}
		digits++
		v = v*base + uint32(d)
	}
	if digits == 0 {
		return 0, false
	}

	if neg {
		v = -v
	}
	return int(int32(v)), true
}

func digitValue(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}
