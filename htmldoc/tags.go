package htmldoc

import (
	"golang.org/x/net/html/atom"

	"h2d/css"
	"h2d/document"
)

// tagKind tells the builder how an element participates in the tree.
type tagKind uint8

const (
	// kindInline elements only contribute formatting.
	kindInline tagKind = iota
	// kindBlock elements close the current paragraph and give paragraph
	// properties to the ones opened inside.
	kindBlock
	// kindOpaque elements are dropped with their whole subtree.
	kindOpaque
	kindTable
	kindRowGroup
	kindRow
	kindCell
	kindCaption
)

func (k tagKind) String() string {
	switch k {
	case kindBlock:
		return "block"
	case kindOpaque:
		return "opaque"
	case kindTable:
		return "table"
	case kindRowGroup:
		return "rowgroup"
	case kindRow:
		return "row"
	case kindCell:
		return "cell"
	case kindCaption:
		return "caption"
	}
	return "inline"
}

// headTags may appear inside <head>, anything else closes it.
var headTags = map[atom.Atom]bool{
	atom.Title:    true,
	atom.Meta:     true,
	atom.Link:     true,
	atom.Style:    true,
	atom.Script:   true,
	atom.Base:     true,
	atom.Noscript: true,
	atom.Template: true,
}

// headContainers are head elements with content.
var headContainers = map[atom.Atom]bool{
	atom.Title:    true,
	atom.Style:    true,
	atom.Script:   true,
	atom.Noscript: true,
	atom.Template: true,
}

var opaqueTags = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Button:   true,
	atom.Select:   true,
	atom.Textarea: true,
	atom.Progress: true,
	atom.Meter:    true,
	atom.Head:     true,
	atom.Title:    true,
	atom.Template: true,
	atom.Iframe:   true,
	atom.Object:   true,
	atom.Noscript: true,
	atom.Noembed:  true,
	atom.Noframes: true,
	atom.Svg:      true,
	atom.Math:     true,
	atom.Canvas:   true,
	atom.Audio:    true,
	atom.Video:    true,
	atom.Datalist: true,
	atom.Option:   true,
	atom.Optgroup: true,
	atom.Output:   true,
	atom.Map:      true,
}

// voidTags never have content or end tag.
var voidTags = map[atom.Atom]bool{
	atom.Area:   true,
	atom.Base:   true,
	atom.Br:     true,
	atom.Col:    true,
	atom.Embed:  true,
	atom.Hr:     true,
	atom.Img:    true,
	atom.Input:  true,
	atom.Link:   true,
	atom.Meta:   true,
	atom.Param:  true,
	atom.Source: true,
	atom.Track:  true,
	atom.Wbr:    true,
}

var blockTags = map[atom.Atom]bool{
	atom.Html:       true,
	atom.Body:       true,
	atom.P:          true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Pre:        true,
	atom.Address:    true,
	atom.Blockquote: true,
	atom.Center:     true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Li:         true,
	atom.Dl:         true,
	atom.Dt:         true,
	atom.Dd:         true,
	atom.Section:    true,
	atom.Article:    true,
	atom.Aside:      true,
	atom.Header:     true,
	atom.Footer:     true,
	atom.Nav:        true,
	atom.Main:       true,
	atom.Figure:     true,
	atom.Figcaption: true,
	atom.Form:       true,
	atom.Fieldset:   true,
	atom.Legend:     true,
	atom.Details:    true,
	atom.Summary:    true,
	atom.Hgroup:     true,
	atom.Menu:       true,
	atom.Dir:        true,
	atom.Listing:    true,
	atom.Xmp:        true,
	atom.Plaintext:  true,
}

// paragraphTags are closed by any block starting inside of them.
var paragraphTags = map[atom.Atom]bool{
	atom.P:       true,
	atom.H1:      true,
	atom.H2:      true,
	atom.H3:      true,
	atom.H4:      true,
	atom.H5:      true,
	atom.H6:      true,
	atom.Pre:     true,
	atom.Address: true,
}

// preTags keep white space and line breaks.
var preTags = map[atom.Atom]bool{
	atom.Pre:       true,
	atom.Listing:   true,
	atom.Xmp:       true,
	atom.Plaintext: true,
}

func classify(a atom.Atom) tagKind {
	switch {
	case a == 0:
		// not an HTML element: <o:p>, <xml>, custom elements...
		return kindOpaque
	case opaqueTags[a]:
		return kindOpaque
	case blockTags[a]:
		return kindBlock
	}
	switch a {
	case atom.Table:
		return kindTable
	case atom.Thead, atom.Tbody, atom.Tfoot:
		return kindRowGroup
	case atom.Tr:
		return kindRow
	case atom.Td, atom.Th:
		return kindCell
	case atom.Caption:
		return kindCaption
	}
	return kindInline
}

const monospace = "Courier New"

// tagDeltas hold formatting implied by the element itself.
var tagDeltas = map[atom.Atom]document.RunStyle{
	atom.B:       {Bold: document.ToggleOn},
	atom.Strong:  {Bold: document.ToggleOn},
	atom.Th:      {Bold: document.ToggleOn},
	atom.Dt:      {Bold: document.ToggleOn},
	atom.I:       {Italic: document.ToggleOn},
	atom.Em:      {Italic: document.ToggleOn},
	atom.Cite:    {Italic: document.ToggleOn},
	atom.Dfn:     {Italic: document.ToggleOn},
	atom.Var:     {Italic: document.ToggleOn},
	atom.Address: {Italic: document.ToggleOn},
	atom.U:       {Underline: document.ToggleOn},
	atom.Ins:     {Underline: document.ToggleOn},
	atom.S:       {Strike: document.ToggleOn},
	atom.Strike:  {Strike: document.ToggleOn},
	atom.Del:     {Strike: document.ToggleOn},
	atom.Sup:     {VerticalAlign: document.VerticalAlignSuper},
	atom.Sub:     {VerticalAlign: document.VerticalAlignSub},
	atom.Mark:    {Background: css.RGB(0xFF, 0xFF, 0x00)},
	atom.Code:    {FontFamily: monospace},
	atom.Kbd:     {FontFamily: monospace},
	atom.Samp:    {FontFamily: monospace},
	atom.Tt:      {FontFamily: monospace},
	atom.Pre:     {FontFamily: monospace},
	atom.Listing: {FontFamily: monospace},
	atom.Xmp:     {FontFamily: monospace},
}

// fontSizes maps legacy <font size="1..7"> onto points.
var fontSizes = [...]float64{7.5, 10, 12, 13.5, 18, 24, 36}

// paragraphStyles maps block elements onto paragraph style names.
var paragraphStyles = map[atom.Atom]string{
	atom.H1:         document.HeadingStyle(1),
	atom.H2:         document.HeadingStyle(2),
	atom.H3:         document.HeadingStyle(3),
	atom.H4:         document.HeadingStyle(4),
	atom.H5:         document.HeadingStyle(5),
	atom.H6:         document.HeadingStyle(6),
	atom.Blockquote: document.StyleQuote,
	atom.Pre:        document.StylePreformatted,
	atom.Listing:    document.StylePreformatted,
	atom.Xmp:        document.StylePreformatted,
	atom.Li:         document.StyleListParagraph,
	atom.Figcaption: document.StyleCaption,
	atom.Caption:    document.StyleCaption,
}
