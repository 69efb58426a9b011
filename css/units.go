package css

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// UnitType is a kind of length measurement.
type UnitType int

const (
	UnitUnset UnitType = iota
	UnitPixel
	UnitPoint
	UnitCentimeter
	UnitMillimeter
	UnitInch
	UnitPica
	UnitEm
	UnitPercent
	UnitAuto
)

var unitNames = map[UnitType]string{
	UnitPixel:      "px",
	UnitPoint:      "pt",
	UnitCentimeter: "cm",
	UnitMillimeter: "mm",
	UnitInch:       "in",
	UnitPica:       "pc",
	UnitEm:         "em",
	UnitPercent:    "%",
}

func (t UnitType) String() string {
	switch t {
	case UnitUnset:
		return "unset"
	case UnitAuto:
		return "auto"
	}
	return unitNames[t]
}

// IsAbsolute reports whether unit can be converted to points without context.
// Em is counted as absolute relative to the default font size.
func (t UnitType) IsAbsolute() bool {
	switch t {
	case UnitPixel, UnitPoint, UnitCentimeter, UnitMillimeter, UnitInch, UnitPica, UnitEm:
		return true
	}
	return false
}

// DefaultFontSize in points, used to resolve em values.
const DefaultFontSize = 12.0

// Unit is a length: magnitude and kind. Zero value is "not specified" which
// is different from valid zero length.
type Unit struct {
	Value float64
	Type  UnitType
}

// NewUnit returns valid unit.
func NewUnit(value float64, t UnitType) Unit {
	return Unit{Value: value, Type: t}
}

// IsValid reports whether unit has been specified and parsed.
func (u Unit) IsValid() bool {
	return u.Type != UnitUnset
}

// IsAuto reports "auto" keyword.
func (u Unit) IsAuto() bool {
	return u.Type == UnitAuto
}

func (u Unit) String() string {
	switch u.Type {
	case UnitUnset:
		return "<unset>"
	case UnitAuto:
		return "auto"
	}
	return strconv.FormatFloat(u.Value, 'f', -1, 64) + u.Type.String()
}

// ParseUnit parses length like 120px, 10pt, 5em, 20%, 1.5in. Number without
// unit is taken as pixels, HTML attributes (width="42") use that convention.
// Malformed value results in not valid unit.
func ParseUnit(raw string) Unit {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return Unit{}
	}
	if s == "auto" {
		return Unit{Type: UnitAuto}
	}

	end := 0
	for end < len(s) {
		c := s[end]
		if ('0' <= c && c <= '9') || c == '.' || ((c == '-' || c == '+') && end == 0) {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return Unit{}
	}
	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return Unit{}
	}

	var t UnitType
	switch strings.TrimSpace(s[end:]) {
	case "", "px":
		t = UnitPixel
	case "pt":
		t = UnitPoint
	case "cm":
		t = UnitCentimeter
	case "mm":
		t = UnitMillimeter
	case "in":
		t = UnitInch
	case "pc":
		t = UnitPica
	case "em", "rem":
		t = UnitEm
	case "%":
		t = UnitPercent
	default:
		return Unit{}
	}
	return Unit{Value: value, Type: t}
}

// Points converts unit to typographic points. Percentages and auto cannot be
// converted and give 0.
func (u Unit) Points() float64 {
	switch u.Type {
	case UnitPixel:
		// 96 dpi
		return u.Value * 0.75
	case UnitPoint:
		return u.Value
	case UnitCentimeter:
		return u.Value * 72 / 2.54
	case UnitMillimeter:
		return u.Value * 72 / 25.4
	case UnitInch:
		return u.Value * 72
	case UnitPica:
		return u.Value * 12
	case UnitEm:
		return u.Value * DefaultFontSize
	}
	return 0
}

// Pixels converts unit to pixels at 96 dpi, rounded.
func (u Unit) Pixels() int {
	if u.Type == UnitPixel {
		return int(math.Round(u.Value))
	}
	return int(math.Round(u.Points() / 0.75))
}

// Twips converts unit to twentieths of a point (dxa) used by word processing
// markup for indentation and spacing.
func (u Unit) Twips() int {
	return int(math.Round(u.Points() * 20))
}

// HalfPoints converts unit to half-points used for font sizes.
func (u Unit) HalfPoints() int {
	return int(math.Round(u.Points() * 2))
}

// EighthPoints converts unit to eighths of a point used for border widths.
func (u Unit) EighthPoints() int {
	return int(math.Round(u.Points() * 8))
}

// GoString is used by %#v in test failures.
func (u Unit) GoString() string {
	return fmt.Sprintf("css.Unit{%v}", u)
}
