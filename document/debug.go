package document

import (
	"fmt"

	"h2d/css"
	"h2d/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns a readable tree of the document. Image payloads are
// reported by size only. It exists solely for manual inspection during
// debugging (see "convert --tree").
func (d *Document) String() string {
	if d == nil {
		return "<nil Document>"
	}
	tw := treeWriter{debug.NewTreeWriter()}
	tw.Line(0, "Document")
	tw.blocks(1, d.Blocks)
	return tw.String()
}

func (tw treeWriter) blocks(depth int, blocks []Block) {
	for i, b := range blocks {
		switch {
		case b.Paragraph != nil:
			tw.paragraph(depth, i, b.Paragraph)
		case b.Table != nil:
			tw.table(depth, i, b.Table)
		}
	}
}

func (tw treeWriter) paragraph(depth, idx int, p *Paragraph) {
	attrs := debug.Attrs{}
	attrs.Add("style", p.Style)
	if p.Alignment != AlignUnset {
		attrs.Add("align", p.Alignment.String())
	}
	if p.Margin.IsValid() {
		attrs.Add("margin", marginString(p.Margin))
	}
	if !p.Border.IsEmpty() {
		attrs.Add("border", borderString(p.Border.First()))
	}
	if !p.Background.IsEmpty() {
		attrs.Add("bg", p.Background.String())
	}
	if p.List != nil {
		kind := "bullet"
		if p.List.Ordered {
			kind = "ordered"
		}
		attrs.Addf("list", "%s/%d", kind, p.List.Level)
	}
	for _, b := range p.Bookmarks {
		attrs.Add("bookmark", b)
	}
	tw.Line(depth, "Paragraph[%d]%s", idx, attrs)

	for i := range p.Runs {
		tw.run(depth+1, i, &p.Runs[i])
	}
}

func (tw treeWriter) run(depth, idx int, r *Run) {
	style := styleAttrs(r.Style)
	switch r.Kind {
	case RunText:
		tw.TextBlock(depth, fmt.Sprintf("Text[%d]%s", idx, style), r.Text)
	case RunBreak:
		tw.Line(depth, "Break[%d]%s", idx, style)
	case RunImage:
		img := r.Image
		if img == nil {
			tw.Line(depth, "Image[%d] <nil>", idx)
			return
		}
		attrs := debug.Attrs{}
		attrs.Add("src", img.Source)
		attrs.Add("alt", img.Alt)
		attrs.Addf("size", "%dx%d", img.Width, img.Height)
		attrs.Add("type", img.ContentType)
		attrs.Addf("bytes", "%d", len(img.Data))
		tw.Line(depth, "Image[%d]%s%s", idx, attrs, style)
	}
}

func (tw treeWriter) table(depth, idx int, t *Table) {
	attrs := debug.Attrs{}
	if t.Width.IsValid() {
		attrs.Add("width", t.Width.String())
	}
	if !t.Border.IsEmpty() {
		attrs.Add("border", borderString(t.Border.First()))
	}
	if !t.Background.IsEmpty() {
		attrs.Add("bg", t.Background.String())
	}
	tw.Line(depth, "Table[%d]%s", idx, attrs)
	if len(t.Caption) > 0 {
		tw.Line(depth+1, "Caption")
		tw.blocks(depth+2, t.Caption)
	}
	for i, row := range t.Rows {
		if row.Header {
			tw.Line(depth+1, "Row[%d] header", i)
		} else {
			tw.Line(depth+1, "Row[%d]", i)
		}
		for j, cell := range row.Cells {
			attrs := debug.Attrs{}
			if cell.ColSpan > 1 {
				attrs.Addf("colspan", "%d", cell.ColSpan)
			}
			if cell.RowSpan > 1 {
				attrs.Addf("rowspan", "%d", cell.RowSpan)
			}
			if cell.Header {
				attrs.Add("header", "true")
			}
			if !cell.Background.IsEmpty() {
				attrs.Add("bg", cell.Background.String())
			}
			tw.Line(depth+2, "Cell[%d]%s", j, attrs)
			tw.blocks(depth+3, cell.Blocks)
		}
	}
}

func styleAttrs(s RunStyle) debug.Attrs {
	attrs := debug.Attrs{}
	for _, t := range [...]struct {
		name string
		v    Toggle
	}{
		{"b", s.Bold}, {"i", s.Italic}, {"u", s.Underline}, {"s", s.Strike}, {"caps", s.SmallCaps},
	} {
		if t.v.IsSet() {
			attrs.Add(t.name, t.v.String())
		}
	}
	if s.VerticalAlign != VerticalAlignUnset {
		attrs.Add("valign", s.VerticalAlign.String())
	}
	if !s.Color.IsEmpty() {
		attrs.Add("color", s.Color.String())
	}
	if !s.Background.IsEmpty() {
		attrs.Add("bg", s.Background.String())
	}
	attrs.Add("font", s.FontFamily)
	if s.FontSize.IsValid() {
		attrs.Add("size", s.FontSize.String())
	}
	if s.Border.IsValid() {
		attrs.Add("border", borderString(s.Border))
	}
	attrs.Add("link", s.Link)
	return attrs
}

func borderString(b css.SideBorder) string {
	s := b.Style.String()
	if b.Width.IsValid() {
		s += " " + b.Width.String()
	}
	if !b.Color.IsEmpty() {
		s += " " + b.Color.String()
	}
	return s
}

func marginString(m css.Margin) string {
	return m.Top.String() + " " + m.Right.String() + " " + m.Bottom.String() + " " + m.Left.String()
}
