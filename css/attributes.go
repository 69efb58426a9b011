package css

import (
	"sort"
	"strings"
)

// Attributes holds raw values of a single tag occurrence: either the tag
// attributes (see ParseAttributes) or the declarations of its inline style
// (see ParseStyle). Lookups are exact, keys are kept as authored. A nil
// *Attributes behaves as an empty table.
type Attributes struct {
	values map[string]string
}

// NewAttributes returns empty table.
func NewAttributes() *Attributes {
	return &Attributes{values: make(map[string]string)}
}

// ParseAttributes splits raw attribute text of a tag (everything between the
// tag name and the closing bracket) into a table. Each token is one of
//
//	name="value" or name='value' - value ends at matching quote or at '>'
//	name=value                   - value ends at whitespace
//	name                         - attribute without value
//
// Fragments not matching any of the forms are silently skipped, the last
// occurrence of a name wins.
func ParseAttributes(raw string) *Attributes {
	attrs := NewAttributes()

	for i := 0; i < len(raw); {
		if !isNameByte(raw[i]) {
			i++
			continue
		}

		start := i
		for i < len(raw) && isNameByte(raw[i]) {
			i++
		}
		name := raw[start:i]

		// optional whitespace around '='
		j := skipSpaces(raw, i)
		if j >= len(raw) || raw[j] != '=' {
			attrs.values[name] = ""
			continue
		}
		j = skipSpaces(raw, j+1)
		if j >= len(raw) {
			// dangling "name=" - malformed, drop
			i = j
			continue
		}

		switch q := raw[j]; q {
		case '"', '\'':
			j++
			// leading whitespace inside quotes is not significant
			j = skipSpaces(raw, j)
			end := j
			for end < len(raw) && raw[end] != q && raw[end] != '>' {
				end++
			}
			attrs.values[name] = raw[j:end]
			i = end + 1
		default:
			end := j
			for end < len(raw) && !isSpace(raw[end]) && raw[end] != '>' {
				end++
			}
			attrs.values[name] = raw[j:end]
			i = end
		}
	}
	return attrs
}

// isNameByte reports whether b may be part of attribute name. Unicode
// letters are accepted byte-wise so non-ASCII names survive.
func isNameByte(b byte) bool {
	switch {
	case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		return true
	case b == '_' || b == '-' || b == ':' || b == '.':
		return true
	case b >= 0x80:
		return true
	}
	return false
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func skipSpaces(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

// Get returns raw value and whether the name is present.
func (a *Attributes) Get(name string) (string, bool) {
	if a == nil {
		return "", false
	}
	v, ok := a.values[name]
	return v, ok
}

// Value returns raw value or empty string.
func (a *Attributes) Value(name string) string {
	v, _ := a.Get(name)
	return v
}

// Has reports whether the name is present (possibly with empty value).
func (a *Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Set stores value under name overwriting previous one.
func (a *Attributes) Set(name, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	a.values[name] = value
}

// Len returns number of entries.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.values)
}

// Names returns sorted list of names for deterministic iteration.
func (a *Attributes) Names() []string {
	if a == nil {
		return nil
	}
	names := make([]string, 0, len(a.values))
	for n := range a.values {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// String renders table as `name="value"` pairs in name order, for logging.
func (a *Attributes) String() string {
	var sb strings.Builder
	for i, n := range a.Names() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(n)
		sb.WriteString(`="`)
		sb.WriteString(a.values[n])
		sb.WriteByte('"')
	}
	return sb.String()
}

// GetAsColor gets a value representing a color (named color, hexadecimal
// with or without leading '#', rgb()).
func (a *Attributes) GetAsColor(name string) Color {
	return ResolveColor(a.Value(name))
}

// GetAsUnit gets a value representing a length: 120px, 10pt, 5em, 20%...
// Malformed or absent value gives not valid unit.
func (a *Attributes) GetAsUnit(name string) Unit {
	return ParseUnit(a.Value(name))
}

// GetAsMargin gets a value representing the 4 sides (margin, padding).
// Individually specified sides (name-top, name-right...) override the
// grouped definition when valid.
func (a *Attributes) GetAsMargin(name string) Margin {
	margin := ParseMargin(a.Value(name))

	if u := a.GetAsUnit(name + "-top"); u.IsValid() {
		margin.Top = u
	}
	if u := a.GetAsUnit(name + "-right"); u.IsValid() {
		margin.Right = u
	}
	if u := a.GetAsUnit(name + "-bottom"); u.IsValid() {
		margin.Bottom = u
	}
	if u := a.GetAsUnit(name + "-left"); u.IsValid() {
		margin.Left = u
	}
	return margin
}

// GetAsBorder gets the 4 border sides. Each side starts from the grouped
// definition (border, border-width...), a valid side shorthand (border-top)
// replaces it and side sub-properties (border-top-color...) override single
// parts.
func (a *Attributes) GetAsBorder() Border {
	all := a.GetAsSideBorder("border")
	return Border{
		Top:    a.sideBorder(all, "border-top"),
		Right:  a.sideBorder(all, "border-right"),
		Bottom: a.sideBorder(all, "border-bottom"),
		Left:   a.sideBorder(all, "border-left"),
	}
}

// GetAsSideBorder gets a single border side. Style, color and width given
// individually (name-style, name-color, name-width) override corresponding
// part of the grouped definition, each family on its own.
func (a *Attributes) GetAsSideBorder(name string) SideBorder {
	return a.sideBorder(SideBorder{}, name)
}

func (a *Attributes) sideBorder(base SideBorder, name string) SideBorder {
	border := base
	if sb := ParseSideBorder(a.Value(name)); sb.IsValid() {
		border = sb
	}
	if w := ParseBorderWidth(a.Value(name + "-width")); w.IsValid() {
		border.Width = w
	}
	if c := a.GetAsColor(name + "-color"); !c.IsEmpty() {
		border.Color = c
	}
	if s := ParseBorderStyle(a.Value(name + "-style")); s != BorderStyleUnset {
		border.Style = s
	}
	return border
}

// GetAsFont gets the font shorthand combined with individually specified
// style, variant, weight, size and family. Individual value which cannot be
// parsed keeps shorthand value.
func (a *Attributes) GetAsFont(name string) Font {
	font := ParseFont(a.Value(name))

	if v, ok := a.Get(name + "-style"); ok {
		if s := ParseFontStyle(v); s != FontStyleUnset {
			font.Style = s
		}
	}
	if v, ok := a.Get(name + "-variant"); ok {
		if s := ParseFontVariant(v); s != FontVariantUnset {
			font.Variant = s
		}
	}
	if v, ok := a.Get(name + "-weight"); ok {
		if w := ParseFontWeight(v); w != FontWeightUnset {
			font.Weight = w
		}
	}
	if v, ok := a.Get(name + "-family"); ok {
		if f := ParseFontFamily(v); f != "" {
			font.Family = f
		}
	}
	if u := ParseFontSize(a.Value(name + "-size")); u.IsValid() {
		font.Size = u
	}
	return font
}
