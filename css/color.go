package css

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is either empty (not specified or not recognized) or RGBA value.
type Color struct {
	R, G, B, A uint8
	valid      bool
}

// RGB returns opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255, valid: true}
}

// RGBA returns color with explicit alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a, valid: true}
}

// IsEmpty reports whether color was not specified or could not be resolved.
func (c Color) IsEmpty() bool {
	return !c.valid
}

// IsTransparent reports whether color is fully transparent.
func (c Color) IsTransparent() bool {
	return c.valid && c.A == 0
}

// Hex returns RRGGBB form without leading '#', empty string for empty color.
func (c Color) Hex() string {
	if !c.valid {
		return ""
	}
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) String() string {
	if !c.valid {
		return "<empty>"
	}
	if c.A != 255 {
		return fmt.Sprintf("rgba(%d,%d,%d,%d)", c.R, c.G, c.B, c.A)
	}
	return "#" + c.Hex()
}

// ResolveColor maps color specification to RGBA value. Named colors are
// matched first (case-insensitive), then hexadecimal triplet or sextet with
// or without leading '#', then rgb()/rgba() notation. Anything else is
// empty color, never an error.
func ResolveColor(raw string) Color {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Color{}
	}

	if c, ok := namedColors[strings.ToLower(raw)]; ok {
		return c
	}
	if c, ok := parseHexColor(raw); ok {
		return c
	}
	if c, ok := parseFunctionalColor(raw); ok {
		return c
	}
	return Color{}
}

func parseHexColor(raw string) (Color, bool) {
	hex := strings.TrimPrefix(raw, "#")

	switch len(hex) {
	case 3, 6:
	default:
		return Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	if len(hex) == 3 {
		r, g, b := uint8(v>>8&0xF), uint8(v>>4&0xF), uint8(v&0xF)
		return RGB(r<<4|r, g<<4|g, b<<4|b), true
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), true
}

// parseFunctionalColor handles rgb(r,g,b) and rgba(r,g,b,a), channels may be
// integers or percentages, alpha is 0..1 or percentage.
func parseFunctionalColor(raw string) (Color, bool) {
	lower := strings.ToLower(raw)

	var inner string
	switch {
	case strings.HasPrefix(lower, "rgba(") && strings.HasSuffix(lower, ")"):
		inner = lower[5 : len(lower)-1]
	case strings.HasPrefix(lower, "rgb(") && strings.HasSuffix(lower, ")"):
		inner = lower[4 : len(lower)-1]
	default:
		return Color{}, false
	}

	// both "r, g, b" and css4 "r g b / a" forms
	var parts []string
	if strings.Contains(inner, ",") {
		for p := range strings.SplitSeq(inner, ",") {
			parts = append(parts, strings.TrimSpace(p))
		}
	} else {
		channels, alpha, hasAlpha := strings.Cut(inner, "/")
		parts = strings.Fields(channels)
		if hasAlpha {
			parts = append(parts, strings.TrimSpace(alpha))
		}
	}
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, false
	}

	var ch [3]uint8
	for i := range 3 {
		v, ok := parseChannel(parts[i], 255)
		if !ok {
			return Color{}, false
		}
		ch[i] = v
	}
	alpha := uint8(255)
	if len(parts) == 4 {
		v, ok := parseChannel(parts[3], 1)
		if !ok {
			return Color{}, false
		}
		alpha = v
	}
	return RGBA(ch[0], ch[1], ch[2], alpha), true
}

// parseChannel converts a number (scale is its maximum) or a percentage into
// 0..255 range, clamping out of range values.
func parseChannel(s string, scale float64) (uint8, bool) {
	if s == "" {
		return 0, false
	}
	var f float64
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, false
		}
		f = v / 100
	} else {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = v / scale
	}
	f = math.Max(0, math.Min(1, f))
	return uint8(math.Round(f * 255)), true
}
