package wordml

import (
	"context"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"h2d/css"
	"h2d/document"
)

// Numbering instances lists refer to. Numbering definitions are supplied by
// the document template.
const (
	bulletNumID  = 1
	orderedNumID = 2
)

type renderer struct {
	log *zap.Logger
	pkg *Package

	root *etree.Element
	rels *etree.Element

	nextRel      int
	nextBookmark int
	nextDrawing  int

	links map[string]string
	media map[string]string
}

func newRenderer(log *zap.Logger) *renderer {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("w:document")
	root.CreateAttr("xmlns:w", nsW)
	root.CreateAttr("xmlns:r", nsR)
	root.CreateAttr("xmlns:wp", nsWP)
	root.CreateAttr("xmlns:a", nsA)
	root.CreateAttr("xmlns:pic", nsPic)

	relsDoc := etree.NewDocument()
	relsDoc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	rels := relsDoc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", nsRel)

	return &renderer{
		log:   log,
		pkg:   &Package{Document: doc, Relationships: relsDoc},
		root:  root,
		rels:  rels,
		links: make(map[string]string),
		media: make(map[string]string),
	}
}

func (r *renderer) relationship(kind, target string, external bool) string {
	r.nextRel++
	id := "rId" + strconv.Itoa(r.nextRel)
	rel := r.rels.CreateElement("Relationship")
	rel.CreateAttr("Id", id)
	rel.CreateAttr("Type", kind)
	rel.CreateAttr("Target", target)
	if external {
		rel.CreateAttr("TargetMode", "External")
	}
	return id
}

func (r *renderer) blocks(ctx context.Context, parent *etree.Element, blocks []document.Block) error {
	for _, blk := range blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch {
		case blk.Paragraph != nil:
			r.paragraph(parent, blk.Paragraph)
		case blk.Table != nil:
			if err := r.table(ctx, parent, blk.Table); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *renderer) paragraph(parent *etree.Element, p *document.Paragraph) {
	wp := parent.CreateElement("w:p")
	if ppr := paragraphProps(p); ppr != nil {
		wp.AddChild(ppr)
	}

	ids := make([]string, 0, len(p.Bookmarks))
	for _, name := range p.Bookmarks {
		r.nextBookmark++
		id := strconv.Itoa(r.nextBookmark)
		el := wp.CreateElement("w:bookmarkStart")
		el.CreateAttr("w:id", id)
		el.CreateAttr("w:name", name)
		ids = append(ids, id)
	}

	r.runs(wp, p.Runs)

	for _, id := range ids {
		wp.CreateElement("w:bookmarkEnd").CreateAttr("w:id", id)
	}
}

// paragraphProps returns nil when paragraph has default formatting.
func paragraphProps(p *document.Paragraph) *etree.Element {
	ppr := etree.NewElement("w:pPr")
	if p.Style != document.StyleNormal {
		setVal(ppr, "w:pStyle", p.Style)
	}
	if p.List != nil {
		num := ppr.CreateElement("w:numPr")
		setVal(num, "w:ilvl", strconv.Itoa(p.List.Level))
		id := bulletNumID
		if p.List.Ordered {
			id = orderedNumID
		}
		setVal(num, "w:numId", strconv.Itoa(id))
	}
	if !p.Border.IsEmpty() {
		borders(ppr.CreateElement("w:pBdr"), p.Border, false)
	}
	shading(ppr, p.Background)

	m := p.Margin
	if before, after := twips(m.Top), twips(m.Bottom); before != "" || after != "" {
		sp := ppr.CreateElement("w:spacing")
		setAttr(sp, "w:before", before)
		setAttr(sp, "w:after", after)
	}
	if left, right := twips(m.Left), twips(m.Right); left != "" || right != "" {
		ind := ppr.CreateElement("w:ind")
		setAttr(ind, "w:left", left)
		setAttr(ind, "w:right", right)
	}
	justification(ppr, p.Alignment)

	if len(ppr.ChildElements()) == 0 {
		return nil
	}
	return ppr
}

// runs groups consecutive runs with the same link target into hyperlinks.
func (r *renderer) runs(wp *etree.Element, runs []document.Run) {
	for i := 0; i < len(runs); {
		link := runs[i].Style.Link
		j := i + 1
		for j < len(runs) && runs[j].Style.Link == link {
			j++
		}
		parent := wp
		if link != "" {
			parent = r.hyperlink(wp, link)
		}
		for k := i; k < j; k++ {
			r.run(parent, &runs[k])
		}
		i = j
	}
}

func (r *renderer) hyperlink(wp *etree.Element, link string) *etree.Element {
	h := wp.CreateElement("w:hyperlink")
	if anchor, ok := strings.CutPrefix(link, "#"); ok {
		h.CreateAttr("w:anchor", anchor)
		return h
	}
	id, ok := r.links[link]
	if !ok {
		id = r.relationship(relHyperlink, link, true)
		r.links[link] = id
	}
	h.CreateAttr("r:id", id)
	h.CreateAttr("w:history", "1")
	return h
}

func (r *renderer) run(parent *etree.Element, run *document.Run) {
	if run.Kind == document.RunImage && (run.Image == nil || len(run.Image.Data) == 0) {
		return
	}
	wr := parent.CreateElement("w:r")
	if rpr := runProps(run.Style); rpr != nil {
		wr.AddChild(rpr)
	}
	switch run.Kind {
	case document.RunText:
		text(wr, run.Text)
	case document.RunBreak:
		wr.CreateElement("w:br")
	case document.RunImage:
		r.drawing(wr, run.Image)
	}
}

// text writes s splitting it on tabs.
func text(wr *etree.Element, s string) {
	for i, part := range strings.Split(s, "\t") {
		if i > 0 {
			wr.CreateElement("w:tab")
		}
		if part == "" {
			continue
		}
		t := wr.CreateElement("w:t")
		if strings.TrimSpace(part) != part {
			t.CreateAttr("xml:space", "preserve")
		}
		t.SetText(part)
	}
}

// runProps returns nil when style defines nothing representable.
func runProps(s document.RunStyle) *etree.Element {
	rpr := etree.NewElement("w:rPr")
	if s.Link != "" {
		setVal(rpr, "w:rStyle", "Hyperlink")
	}
	if s.FontFamily != "" {
		fonts := rpr.CreateElement("w:rFonts")
		fonts.CreateAttr("w:ascii", s.FontFamily)
		fonts.CreateAttr("w:hAnsi", s.FontFamily)
		fonts.CreateAttr("w:cs", s.FontFamily)
	}
	toggle(rpr, "w:b", s.Bold)
	toggle(rpr, "w:i", s.Italic)
	toggle(rpr, "w:smallCaps", s.SmallCaps)
	toggle(rpr, "w:strike", s.Strike)
	if !s.Color.IsEmpty() && !s.Color.IsTransparent() {
		setVal(rpr, "w:color", s.Color.Hex())
	}
	if s.FontSize.Type.IsAbsolute() {
		if hp := s.FontSize.HalfPoints(); hp > 0 {
			setVal(rpr, "w:sz", strconv.Itoa(hp))
			setVal(rpr, "w:szCs", strconv.Itoa(hp))
		}
	}
	switch s.Underline {
	case document.ToggleOn:
		setVal(rpr, "w:u", "single")
	case document.ToggleOff:
		setVal(rpr, "w:u", "none")
	}
	if s.Border.IsValid() {
		border(rpr, "w:bdr", s.Border)
	}
	shading(rpr, s.Background)
	switch s.VerticalAlign {
	case document.VerticalAlignSuper:
		setVal(rpr, "w:vertAlign", "superscript")
	case document.VerticalAlignSub:
		setVal(rpr, "w:vertAlign", "subscript")
	case document.VerticalAlignBaseline:
		setVal(rpr, "w:vertAlign", "baseline")
	}

	if len(rpr.ChildElements()) == 0 {
		return nil
	}
	return rpr
}

func setVal(parent *etree.Element, tag, val string) *etree.Element {
	el := parent.CreateElement(tag)
	el.CreateAttr("w:val", val)
	return el
}

func setAttr(el *etree.Element, key, val string) {
	if val != "" {
		el.CreateAttr(key, val)
	}
}

func toggle(parent *etree.Element, tag string, t document.Toggle) {
	switch t {
	case document.ToggleOn:
		parent.CreateElement(tag)
	case document.ToggleOff:
		setVal(parent, tag, "0")
	}
}

// twips converts length for spacing and indentation, empty when it cannot
// be expressed.
func twips(u css.Unit) string {
	if !u.Type.IsAbsolute() {
		return ""
	}
	return strconv.Itoa(u.Twips())
}

func justification(parent *etree.Element, a document.Alignment) {
	switch a {
	case document.AlignLeft:
		setVal(parent, "w:jc", "left")
	case document.AlignCenter:
		setVal(parent, "w:jc", "center")
	case document.AlignRight:
		setVal(parent, "w:jc", "right")
	case document.AlignJustify:
		setVal(parent, "w:jc", "both")
	}
}

func shading(parent *etree.Element, c css.Color) {
	if c.IsEmpty() || c.IsTransparent() {
		return
	}
	shd := parent.CreateElement("w:shd")
	shd.CreateAttr("w:val", "clear")
	shd.CreateAttr("w:color", "auto")
	shd.CreateAttr("w:fill", c.Hex())
}

var borderStyles = map[css.BorderStyle]string{
	css.BorderStyleSolid:  "single",
	css.BorderStyleDotted: "dotted",
	css.BorderStyleDashed: "dashed",
	css.BorderStyleDouble: "double",
	css.BorderStyleGroove: "threeDEngrave",
	css.BorderStyleRidge:  "threeDEmboss",
	css.BorderStyleInset:  "inset",
	css.BorderStyleOutset: "outset",
}

// border width limits in eighths of a point
const (
	defaultBorderSize = 4
	minBorderSize     = 2
	maxBorderSize     = 96
)

func border(parent *etree.Element, tag string, b css.SideBorder) {
	el := parent.CreateElement(tag)
	if !b.IsVisible() {
		el.CreateAttr("w:val", "none")
		return
	}
	el.CreateAttr("w:val", borderStyles[b.Style])
	size := defaultBorderSize
	if b.Width.IsValid() {
		size = min(max(b.Width.EighthPoints(), minBorderSize), maxBorderSize)
	}
	el.CreateAttr("w:sz", strconv.Itoa(size))
	el.CreateAttr("w:space", "0")
	color := "auto"
	if !b.Color.IsEmpty() {
		color = b.Color.Hex()
	}
	el.CreateAttr("w:color", color)
}

// borders writes specified sides, inside adds grid lines between table
// cells matching the first specified side.
func borders(parent *etree.Element, b css.Border, inside bool) {
	for _, side := range []struct {
		tag string
		def css.SideBorder
	}{
		{"w:top", b.Top},
		{"w:left", b.Left},
		{"w:bottom", b.Bottom},
		{"w:right", b.Right},
	} {
		if side.def.IsValid() {
			border(parent, side.tag, side.def)
		}
	}
	if inside {
		if first := b.First(); first.IsVisible() {
			border(parent, "w:insideH", first)
			border(parent, "w:insideV", first)
		}
	}
}
