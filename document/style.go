package document

import (
	"strings"

	"h2d/css"
)

// Toggle is a tri-state flag: not specified, on or explicitly off.
type Toggle int8

const (
	ToggleUnset Toggle = iota
	ToggleOn
	ToggleOff
)

// ToggleOf converts bool into specified toggle.
func ToggleOf(on bool) Toggle {
	if on {
		return ToggleOn
	}
	return ToggleOff
}

// IsOn reports explicitly enabled flag.
func (t Toggle) IsOn() bool {
	return t == ToggleOn
}

// IsSet reports whether value has been specified.
func (t Toggle) IsSet() bool {
	return t != ToggleUnset
}

func (t Toggle) String() string {
	switch t {
	case ToggleOn:
		return "on"
	case ToggleOff:
		return "off"
	}
	return "unset"
}

// VerticalAlign is superscript/subscript positioning of a run.
type VerticalAlign int

const (
	VerticalAlignUnset VerticalAlign = iota
	VerticalAlignBaseline
	VerticalAlignSuper
	VerticalAlignSub
)

func (v VerticalAlign) String() string {
	switch v {
	case VerticalAlignBaseline:
		return "baseline"
	case VerticalAlignSuper:
		return "super"
	case VerticalAlignSub:
		return "sub"
	}
	return "unset"
}

// ParseVerticalAlign maps vertical-align keywords, lengths and other values
// are not representable and give unset.
func ParseVerticalAlign(raw string) VerticalAlign {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "baseline":
		return VerticalAlignBaseline
	case "super", "text-top":
		return VerticalAlignSuper
	case "sub", "text-bottom":
		return VerticalAlignSub
	}
	return VerticalAlignUnset
}

// RunStyle is a set of character formatting properties. Zero value defines
// nothing. It is used both as formatting delta of a single tag and as
// effective style snapshot of a run. RunStyle is a value, copies never share
// state.
type RunStyle struct {
	Bold          Toggle
	Italic        Toggle
	Underline     Toggle
	Strike        Toggle
	SmallCaps     Toggle
	VerticalAlign VerticalAlign
	Color         css.Color
	Background    css.Color
	FontFamily    string
	FontSize      css.Unit
	Border        css.SideBorder
	// Link is hyperlink target, "#name" for internal anchors.
	Link string
}

// IsEmpty reports whether style defines nothing.
func (s RunStyle) IsEmpty() bool {
	return s == RunStyle{}
}

// Merge returns s overridden by every property inner defines.
func (s RunStyle) Merge(inner RunStyle) RunStyle {
	if inner.Bold.IsSet() {
		s.Bold = inner.Bold
	}
	if inner.Italic.IsSet() {
		s.Italic = inner.Italic
	}
	if inner.Underline.IsSet() {
		s.Underline = inner.Underline
	}
	if inner.Strike.IsSet() {
		s.Strike = inner.Strike
	}
	if inner.SmallCaps.IsSet() {
		s.SmallCaps = inner.SmallCaps
	}
	if inner.VerticalAlign != VerticalAlignUnset {
		s.VerticalAlign = inner.VerticalAlign
	}
	if !inner.Color.IsEmpty() {
		s.Color = inner.Color
	}
	if !inner.Background.IsEmpty() {
		s.Background = inner.Background
	}
	if inner.FontFamily != "" {
		s.FontFamily = inner.FontFamily
	}
	if inner.FontSize.IsValid() {
		s.FontSize = inner.FontSize
	}
	if inner.Border.IsValid() {
		s.Border = inner.Border
	}
	if inner.Link != "" {
		s.Link = inner.Link
	}
	return s
}

// MergeStyles folds deltas ordered from outermost to innermost into single
// effective style.
func MergeStyles(deltas ...RunStyle) RunStyle {
	var s RunStyle
	for _, d := range deltas {
		s = s.Merge(d)
	}
	return s
}
