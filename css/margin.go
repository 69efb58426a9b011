package css

import "strings"

// Margin holds 4 sides of a box (margin or padding).
type Margin struct {
	Top, Right, Bottom, Left Unit
}

// NewMargin returns margin with the same value on all sides.
func NewMargin(u Unit) Margin {
	return Margin{Top: u, Right: u, Bottom: u, Left: u}
}

// IsValid reports whether at least one side is specified.
func (m Margin) IsValid() bool {
	return m.Top.IsValid() || m.Right.IsValid() || m.Bottom.IsValid() || m.Left.IsValid()
}

// ParseMargin parses CSS box shorthand of 1 to 4 values:
//
//	all | vertical horizontal | top horizontal bottom | top right bottom left
//
// If any of the values cannot be parsed the whole margin is not valid.
func ParseMargin(raw string) Margin {
	parts := strings.Fields(raw)
	if len(parts) == 0 || len(parts) > 4 {
		return Margin{}
	}

	units := make([]Unit, len(parts))
	for i, p := range parts {
		u := ParseUnit(p)
		if !u.IsValid() {
			return Margin{}
		}
		units[i] = u
	}

	switch len(units) {
	case 1:
		return NewMargin(units[0])
	case 2:
		return Margin{Top: units[0], Right: units[1], Bottom: units[0], Left: units[1]}
	case 3:
		return Margin{Top: units[0], Right: units[1], Bottom: units[2], Left: units[1]}
	default:
		return Margin{Top: units[0], Right: units[1], Bottom: units[2], Left: units[3]}
	}
}
