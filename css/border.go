package css

import "strings"

// BorderStyle is a line style of a border side.
type BorderStyle int

const (
	BorderStyleUnset BorderStyle = iota
	BorderStyleNone
	BorderStyleHidden
	BorderStyleSolid
	BorderStyleDotted
	BorderStyleDashed
	BorderStyleDouble
	BorderStyleGroove
	BorderStyleRidge
	BorderStyleInset
	BorderStyleOutset
)

var borderStyles = map[string]BorderStyle{
	"none":   BorderStyleNone,
	"hidden": BorderStyleHidden,
	"solid":  BorderStyleSolid,
	"dotted": BorderStyleDotted,
	"dashed": BorderStyleDashed,
	"double": BorderStyleDouble,
	"groove": BorderStyleGroove,
	"ridge":  BorderStyleRidge,
	"inset":  BorderStyleInset,
	"outset": BorderStyleOutset,
}

func (s BorderStyle) String() string {
	for name, v := range borderStyles {
		if v == s {
			return name
		}
	}
	return "unset"
}

// ParseBorderStyle returns BorderStyleUnset for anything not recognized.
func ParseBorderStyle(raw string) BorderStyle {
	return borderStyles[strings.ToLower(strings.TrimSpace(raw))]
}

// ParseBorderWidth parses width keyword (thin, medium, thick) or length.
func ParseBorderWidth(raw string) Unit {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "thin":
		return NewUnit(1, UnitPixel)
	case "medium":
		return NewUnit(3, UnitPixel)
	case "thick":
		return NewUnit(5, UnitPixel)
	}
	u := ParseUnit(raw)
	if u.Type == UnitPercent || u.IsAuto() {
		return Unit{}
	}
	return u
}

// SideBorder describes a single border side.
type SideBorder struct {
	Style BorderStyle
	Color Color
	Width Unit
}

// IsValid reports whether any of the parts has been specified.
func (b SideBorder) IsValid() bool {
	return b.Style != BorderStyleUnset || !b.Color.IsEmpty() || b.Width.IsValid()
}

// IsVisible reports whether the border would be drawn.
func (b SideBorder) IsVisible() bool {
	switch b.Style {
	case BorderStyleUnset, BorderStyleNone, BorderStyleHidden:
		return false
	}
	return !b.Width.IsValid() || b.Width.Value > 0
}

// ParseSideBorder parses border shorthand "<width> <style> <color>" with
// components in any order, each optional. Tokens which cannot be recognized
// invalidate the whole value.
func ParseSideBorder(raw string) SideBorder {
	var border SideBorder

	for _, part := range splitOutsideParens(raw) {
		if s := ParseBorderStyle(part); s != BorderStyleUnset && border.Style == BorderStyleUnset {
			border.Style = s
			continue
		}
		if w := ParseBorderWidth(part); w.IsValid() && !border.Width.IsValid() {
			border.Width = w
			continue
		}
		if c := ResolveColor(part); !c.IsEmpty() && border.Color.IsEmpty() {
			border.Color = c
			continue
		}
		return SideBorder{}
	}
	return border
}

// Border holds 4 sides.
type Border struct {
	Top, Right, Bottom, Left SideBorder
}

// NewBorder returns border with the same definition on all sides.
func NewBorder(side SideBorder) Border {
	return Border{Top: side, Right: side, Bottom: side, Left: side}
}

// IsEmpty reports whether none of the sides is specified.
func (b Border) IsEmpty() bool {
	return !b.Top.IsValid() && !b.Right.IsValid() && !b.Bottom.IsValid() && !b.Left.IsValid()
}

// First returns first specified side in top, right, bottom, left order.
// Word processing runs have a single border for all sides.
func (b Border) First() SideBorder {
	for _, s := range [...]SideBorder{b.Top, b.Right, b.Bottom, b.Left} {
		if s.IsValid() {
			return s
		}
	}
	return SideBorder{}
}

// splitOutsideParens splits on whitespace keeping rgb(1, 2, 3) in one piece.
func splitOutsideParens(s string) []string {
	var (
		parts []string
		depth int
		start = -1
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '(':
			depth++
		case c == ')' && depth > 0:
			depth--
		case isSpace(c) && depth == 0:
			if start >= 0 {
				parts = append(parts, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		parts = append(parts, s[start:])
	}
	return parts
}
