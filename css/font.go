package css

import (
	"strconv"
	"strings"
)

// FontStyle is a slant of a font.
type FontStyle int

const (
	FontStyleUnset FontStyle = iota
	FontStyleNormal
	FontStyleItalic
	FontStyleOblique
)

// FontVariant is a font variant.
type FontVariant int

const (
	FontVariantUnset FontVariant = iota
	FontVariantNormal
	FontVariantSmallCaps
)

// FontWeight is a numeric weight 100..900, zero when unset. Relative keywords
// are resolved against normal weight.
type FontWeight int

const (
	FontWeightUnset  FontWeight = 0
	FontWeightNormal FontWeight = 400
	FontWeightBold   FontWeight = 700
)

// IsBold reports weight rendered as bold.
func (w FontWeight) IsBold() bool {
	return w >= 600
}

// Font is a combination of font properties, any of them may be unset.
type Font struct {
	Style   FontStyle
	Variant FontVariant
	Weight  FontWeight
	Size    Unit
	Family  string
}

// IsEmpty reports whether nothing has been specified.
func (f Font) IsEmpty() bool {
	return f.Style == FontStyleUnset && f.Variant == FontVariantUnset &&
		f.Weight == FontWeightUnset && !f.Size.IsValid() && f.Family == ""
}

// ParseFontStyle returns FontStyleUnset for unknown values.
func ParseFontStyle(raw string) FontStyle {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "normal":
		return FontStyleNormal
	case "italic":
		return FontStyleItalic
	case "oblique":
		return FontStyleOblique
	}
	return FontStyleUnset
}

// ParseFontVariant returns FontVariantUnset for unknown values.
func ParseFontVariant(raw string) FontVariant {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "normal":
		return FontVariantNormal
	case "small-caps":
		return FontVariantSmallCaps
	}
	return FontVariantUnset
}

// ParseFontWeight accepts keywords and numeric weights.
func ParseFontWeight(raw string) FontWeight {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "normal", "lighter":
		return FontWeightNormal
	case "bold", "bolder":
		return FontWeightBold
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 1000 {
		return FontWeightUnset
	}
	return FontWeight(n)
}

// fontSizeKeywords are absolute size keywords in points.
var fontSizeKeywords = map[string]float64{
	"xx-small": 7.5,
	"x-small":  7.5,
	"small":    10,
	"medium":   12,
	"large":    13.5,
	"x-large":  18,
	"xx-large": 24,
}

// ParseFontSize accepts size keywords and lengths.
func ParseFontSize(raw string) Unit {
	s := strings.ToLower(strings.TrimSpace(raw))
	if pt, ok := fontSizeKeywords[s]; ok {
		return NewUnit(pt, UnitPoint)
	}
	u := ParseUnit(s)
	if u.IsAuto() || u.Value < 0 {
		return Unit{}
	}
	return u
}

// ParseFontFamily returns the first family of a comma separated list with
// quotes removed.
func ParseFontFamily(raw string) string {
	first, _, _ := strings.Cut(raw, ",")
	return unquote(first)
}

// ParseFont parses CSS font shorthand:
//
//	[style] [variant] [weight] size[/line-height] family[, family...]
//
// Shorthand without size and family is not valid. Keywords caption, icon,
// menu and friends (system fonts) are not supported.
func ParseFont(raw string) Font {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Font{}
	}

	var font Font
	parts := strings.Fields(raw)
	for i, part := range parts {
		if font.Style == FontStyleUnset {
			if s := ParseFontStyle(part); s != FontStyleUnset && s != FontStyleNormal {
				font.Style = s
				continue
			}
		}
		if font.Variant == FontVariantUnset {
			if v := ParseFontVariant(part); v == FontVariantSmallCaps {
				font.Variant = v
				continue
			}
		}
		if font.Weight == FontWeightUnset {
			if w := ParseFontWeight(part); w != FontWeightUnset && strings.ToLower(part) != "normal" {
				font.Weight = w
				continue
			}
		}
		if strings.EqualFold(part, "normal") {
			// "normal" may stand for any of the three above
			continue
		}

		size, _, _ := strings.Cut(part, "/")
		font.Size = ParseFontSize(size)
		if !font.Size.IsValid() {
			return Font{}
		}
		family := strings.Join(parts[i+1:], " ")
		font.Family = ParseFontFamily(family)
		if font.Family == "" {
			return Font{}
		}
		return font
	}
	return Font{}
}
