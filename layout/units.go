package layout

import (
	"math"
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for sizes given in scripts and flags.

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, treated as pixels
	UnitPX               // pixels
	UnitPT               // points
	UnitMM               // millimeters
	UnitIN               // inches
)

// Conversion constants. Pixels are CSS pixels (96 per inch).
const (
	PxPerIn = 96.0
	PtPerIn = 72.0
	MmPerIn = 25.4

	PtToMm = MmPerIn / PtPerIn
	MmToPt = 1.0 / PtToMm
	PtToPx = PxPerIn / PtPerIn
	PxToPt = 1.0 / PtToPx
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitIN:
		return "in"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToPx converts the length to (fractional) pixels.
func (l Length) ToPx() float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PtToPx
	case UnitMM:
		return l.Value / MmPerIn * PxPerIn
	case UnitIN:
		return l.Value * PxPerIn
	default:
		return l.Value
	}
}

// Pixels 四舍五入到整数像素。
func (l Length) Pixels() int { return int(math.Round(l.ToPx())) }

// ParseLength parses strings such as "36", "36px", "27pt" or "10mm".
// The boolean result is false when the number cannot be parsed.
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"in", UnitIN}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}
