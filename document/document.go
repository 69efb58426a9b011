// Package document defines the rich text node tree produced by the HTML
// compiler and consumed by document sinks.
package document

import (
	"iter"
	"strconv"
	"strings"

	"h2d/css"
)

// Paragraph style names. Sinks map them onto their own style definitions.
const (
	StyleNormal        = ""
	StyleQuote         = "Quote"
	StylePreformatted  = "Preformatted"
	StyleListParagraph = "ListParagraph"
	StyleCaption       = "Caption"
)

// HeadingStyle returns style name for heading level 1..6.
func HeadingStyle(level int) string {
	return "Heading" + strconv.Itoa(min(max(level, 1), 6))
}

// Alignment is horizontal paragraph alignment.
type Alignment int

const (
	AlignUnset Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	}
	return "unset"
}

// ParseAlignment maps text-align values and align attribute onto Alignment.
func ParseAlignment(raw string) Alignment {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "left", "start":
		return AlignLeft
	case "center", "middle":
		return AlignCenter
	case "right", "end":
		return AlignRight
	case "justify":
		return AlignJustify
	}
	return AlignUnset
}

// Document is the root of the tree.
type Document struct {
	Blocks []Block
}

// Block is either a paragraph or a table, exactly one of the fields is set.
type Block struct {
	Paragraph *Paragraph
	Table     *Table
}

// ListItem marks paragraph as list item.
type ListItem struct {
	Ordered bool
	// Level is nesting depth starting with 0.
	Level int
}

// Paragraph is a block of runs.
type Paragraph struct {
	Style      string
	Alignment  Alignment
	Margin     css.Margin
	Border     css.Border
	Background css.Color
	List       *ListItem
	// Bookmarks are anchor names pointing at this paragraph.
	Bookmarks []string
	Runs      []Run
	// Origin is id of the tag which opened the paragraph, 0 for implicit
	// paragraphs. Diagnostics only.
	Origin int
}

// Text returns paragraph text, breaks become new lines and images are
// skipped.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for i := range p.Runs {
		switch p.Runs[i].Kind {
		case RunText:
			sb.WriteString(p.Runs[i].Text)
		case RunBreak:
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// RunKind distinguishes run content.
type RunKind int

const (
	RunText RunKind = iota
	RunBreak
	RunImage
)

func (k RunKind) String() string {
	switch k {
	case RunBreak:
		return "Break"
	case RunImage:
		return "Image"
	}
	return "Text"
}

// Run is a piece of paragraph content with single effective style.
type Run struct {
	Kind  RunKind
	Text  string
	Style RunStyle
	Image *Image
	// Origin is id of the innermost open tag when the run was emitted.
	Origin int
}

// Image is embedded picture. Width and Height are display size in pixels.
type Image struct {
	Source      string
	Alt         string
	Width       int
	Height      int
	Data        []byte
	ContentType string
}

// Table is a grid of cells.
type Table struct {
	Rows       []*TableRow
	Border     css.Border
	Width      css.Unit
	Background css.Color
	Alignment  Alignment
	// CellSpacing and CellPadding come from presentational attributes.
	CellSpacing css.Unit
	CellPadding css.Unit
	Caption     []Block
	Origin      int
}

// TableRow is a single table row.
type TableRow struct {
	Cells  []*TableCell
	Header bool
}

// TableCell holds nested blocks.
type TableCell struct {
	Blocks     []Block
	ColSpan    int
	RowSpan    int
	Width      css.Unit
	Background css.Color
	Alignment  Alignment
	Header     bool
}

// Paragraphs iterates over all paragraphs in document order, descending
// into table captions and cells.
func (d *Document) Paragraphs() iter.Seq[*Paragraph] {
	return func(yield func(*Paragraph) bool) {
		walkBlocks(d.Blocks, yield)
	}
}

func walkBlocks(blocks []Block, yield func(*Paragraph) bool) bool {
	for _, b := range blocks {
		switch {
		case b.Paragraph != nil:
			if !yield(b.Paragraph) {
				return false
			}
		case b.Table != nil:
			if !walkBlocks(b.Table.Caption, yield) {
				return false
			}
			for _, row := range b.Table.Rows {
				for _, cell := range row.Cells {
					if !walkBlocks(cell.Blocks, yield) {
						return false
					}
				}
			}
		}
	}
	return true
}

// Images iterates over all images in document order.
func (d *Document) Images() iter.Seq[*Image] {
	return func(yield func(*Image) bool) {
		for p := range d.Paragraphs() {
			for i := range p.Runs {
				if p.Runs[i].Kind == RunImage && p.Runs[i].Image != nil {
					if !yield(p.Runs[i].Image) {
						return
					}
				}
			}
		}
	}
}
