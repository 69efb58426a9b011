package wordml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap/zaptest"

	"h2d/css"
	"h2d/document"
)

func render(t *testing.T, blocks ...document.Block) *Package {
	t.Helper()
	pkg, err := Render(context.Background(), &document.Document{Blocks: blocks}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return pkg
}

func para(runs ...document.Run) *document.Paragraph {
	return &document.Paragraph{Runs: runs}
}

func textRun(s string) document.Run {
	return document.Run{Kind: document.RunText, Text: s}
}

func find(t *testing.T, el *etree.Element, path string) *etree.Element {
	t.Helper()
	found := el.FindElement(path)
	if found == nil {
		t.Fatalf("element %q not found", path)
	}
	return found
}

func val(el *etree.Element) string {
	return el.SelectAttrValue("w:val", "")
}

func TestRender_Skeleton(t *testing.T) {
	pkg := render(t)

	root := pkg.Document.Root()
	if root == nil || root.Space != "w" || root.Tag != "document" {
		t.Fatalf("root = %v, want w:document", root)
	}
	if got := root.SelectAttrValue("xmlns:w", ""); got != nsW {
		t.Errorf("xmlns:w = %q", got)
	}
	find(t, root, "w:body")

	rels := pkg.Relationships.Root()
	if rels == nil || rels.Tag != "Relationships" {
		t.Fatalf("relationships root = %v", rels)
	}
	if n := len(rels.ChildElements()); n != 0 {
		t.Errorf("relationships = %d, want 0", n)
	}
}

func TestRender_ParagraphProps(t *testing.T) {
	p := para(textRun("item"))
	p.Style = document.StyleListParagraph
	p.List = &document.ListItem{Ordered: true, Level: 2}
	p.Alignment = document.AlignJustify
	p.Margin = css.Margin{Top: css.NewUnit(10, css.UnitPoint), Left: css.NewUnit(1, css.UnitInch), Right: css.NewUnit(50, css.UnitPercent)}
	p.Background = css.RGB(0xff, 0xff, 0)
	p.Border = css.Border{Bottom: css.SideBorder{Style: css.BorderStyleSolid, Width: css.NewUnit(1, css.UnitPixel), Color: css.RGB(255, 0, 0)}}
	p.Bookmarks = []string{"first", "second"}

	pkg := render(t, document.Block{Paragraph: p})
	wp := find(t, pkg.Document.Root(), "w:body/w:p")
	ppr := find(t, wp, "w:pPr")

	if got := val(find(t, ppr, "w:pStyle")); got != "ListParagraph" {
		t.Errorf("pStyle = %q", got)
	}
	if got := val(find(t, ppr, "w:numPr/w:ilvl")); got != "2" {
		t.Errorf("ilvl = %q", got)
	}
	if got := val(find(t, ppr, "w:numPr/w:numId")); got != "2" {
		t.Errorf("numId = %q", got)
	}
	if got := val(find(t, ppr, "w:jc")); got != "both" {
		t.Errorf("jc = %q", got)
	}
	if got := find(t, ppr, "w:shd").SelectAttrValue("w:fill", ""); got != "FFFF00" {
		t.Errorf("shd fill = %q", got)
	}
	bottom := find(t, ppr, "w:pBdr/w:bottom")
	if val(bottom) != "single" || bottom.SelectAttrValue("w:sz", "") != "6" || bottom.SelectAttrValue("w:color", "") != "FF0000" {
		t.Errorf("bottom border = %v", bottom.Attr)
	}
	if ppr.FindElement("w:pBdr/w:top") != nil {
		t.Error("unexpected top border")
	}
	if got := find(t, ppr, "w:spacing").SelectAttrValue("w:before", ""); got != "200" {
		t.Errorf("spacing before = %q", got)
	}
	ind := find(t, ppr, "w:ind")
	if got := ind.SelectAttrValue("w:left", ""); got != "1440" {
		t.Errorf("ind left = %q", got)
	}
	if ind.SelectAttr("w:right") != nil {
		t.Error("percentage indentation must be skipped")
	}

	starts := wp.FindElements("w:bookmarkStart")
	ends := wp.FindElements("w:bookmarkEnd")
	if len(starts) != 2 || len(ends) != 2 {
		t.Fatalf("bookmarks = %d/%d, want 2/2", len(starts), len(ends))
	}
	if starts[0].SelectAttrValue("w:name", "") != "first" || starts[1].SelectAttrValue("w:name", "") != "second" {
		t.Errorf("bookmark names = %v, %v", starts[0].Attr, starts[1].Attr)
	}
	if starts[1].SelectAttrValue("w:id", "") != ends[1].SelectAttrValue("w:id", "") {
		t.Error("bookmark start and end ids differ")
	}
	// bookmark wraps paragraph content
	children := wp.ChildElements()
	if children[len(children)-1].Tag != "bookmarkEnd" {
		t.Errorf("last child = %s, want bookmarkEnd", children[len(children)-1].Tag)
	}
}

func TestRender_PlainParagraph(t *testing.T) {
	pkg := render(t, document.Block{Paragraph: para(textRun("plain"))})
	wp := find(t, pkg.Document.Root(), "w:body/w:p")
	if wp.FindElement("w:pPr") != nil {
		t.Error("default paragraph must not have properties")
	}
	r := find(t, wp, "w:r")
	if r.FindElement("w:rPr") != nil {
		t.Error("default run must not have properties")
	}
	if got := find(t, r, "w:t").Text(); got != "plain" {
		t.Errorf("text = %q", got)
	}
}

func TestRender_RunProps(t *testing.T) {
	tests := []struct {
		name  string
		style document.RunStyle
		tag   string
		val   string
	}{
		{"bold", document.RunStyle{Bold: document.ToggleOn}, "w:b", ""},
		{"bold off", document.RunStyle{Bold: document.ToggleOff}, "w:b", "0"},
		{"italic", document.RunStyle{Italic: document.ToggleOn}, "w:i", ""},
		{"small caps", document.RunStyle{SmallCaps: document.ToggleOn}, "w:smallCaps", ""},
		{"strike", document.RunStyle{Strike: document.ToggleOn}, "w:strike", ""},
		{"underline", document.RunStyle{Underline: document.ToggleOn}, "w:u", "single"},
		{"underline off", document.RunStyle{Underline: document.ToggleOff}, "w:u", "none"},
		{"color", document.RunStyle{Color: css.RGB(0x12, 0x34, 0x56)}, "w:color", "123456"},
		{"size", document.RunStyle{FontSize: css.NewUnit(14, css.UnitPoint)}, "w:sz", "28"},
		{"superscript", document.RunStyle{VerticalAlign: document.VerticalAlignSuper}, "w:vertAlign", "superscript"},
		{"subscript", document.RunStyle{VerticalAlign: document.VerticalAlignSub}, "w:vertAlign", "subscript"},
		{"link", document.RunStyle{Link: "#top"}, "w:rStyle", "Hyperlink"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rpr := runProps(tt.style)
			if rpr == nil {
				t.Fatal("runProps() = nil")
			}
			el := find(t, rpr, tt.tag)
			if got := val(el); got != tt.val {
				t.Errorf("%s val = %q, want %q", tt.tag, got, tt.val)
			}
		})
	}
}

func TestRunProps_NotRepresentable(t *testing.T) {
	tests := []struct {
		name  string
		style document.RunStyle
	}{
		{"empty", document.RunStyle{}},
		{"relative size", document.RunStyle{FontSize: css.NewUnit(120, css.UnitPercent)}},
		{"transparent", document.RunStyle{Color: css.RGBA(1, 2, 3, 0), Background: css.RGBA(1, 2, 3, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rpr := runProps(tt.style); rpr != nil {
				t.Errorf("runProps() has %d children, want nil", len(rpr.ChildElements()))
			}
		})
	}
}

func TestRunProps_FontAndBorder(t *testing.T) {
	rpr := runProps(document.RunStyle{
		FontFamily: "Courier New",
		Background: css.RGB(0, 0, 255),
		Border:     css.SideBorder{Style: css.BorderStyleDashed},
	})
	fonts := find(t, rpr, "w:rFonts")
	for _, attr := range []string{"w:ascii", "w:hAnsi", "w:cs"} {
		if got := fonts.SelectAttrValue(attr, ""); got != "Courier New" {
			t.Errorf("%s = %q", attr, got)
		}
	}
	bdr := find(t, rpr, "w:bdr")
	if val(bdr) != "dashed" || bdr.SelectAttrValue("w:sz", "") != "4" || bdr.SelectAttrValue("w:color", "") != "auto" {
		t.Errorf("bdr = %v", bdr.Attr)
	}
	if got := find(t, rpr, "w:shd").SelectAttrValue("w:fill", ""); got != "0000FF" {
		t.Errorf("shd fill = %q", got)
	}

	// schema order
	var tags []string
	for _, el := range rpr.ChildElements() {
		tags = append(tags, el.Tag)
	}
	if got := strings.Join(tags, ","); got != "rFonts,bdr,shd" {
		t.Errorf("order = %s", got)
	}
}

func TestRender_Text(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"word", []string{"t:word"}},
		{" lead", []string{"t+: lead"}},
		{"a\tb", []string{"t:a", "tab", "t:b"}},
		{"\tx ", []string{"tab", "t+:x "}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			wr := etree.NewElement("w:r")
			text(wr, tt.text)
			var got []string
			for _, el := range wr.ChildElements() {
				switch el.Tag {
				case "t":
					prefix := "t:"
					if el.SelectAttrValue("xml:space", "") == "preserve" {
						prefix = "t+:"
					}
					got = append(got, prefix+el.Text())
				default:
					got = append(got, el.Tag)
				}
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("text(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestRender_Breaks(t *testing.T) {
	pkg := render(t, document.Block{Paragraph: para(textRun("a"), document.Run{Kind: document.RunBreak}, textRun("b"))})
	runs := pkg.Document.FindElements("//w:r")
	if len(runs) != 3 {
		t.Fatalf("runs = %d, want 3", len(runs))
	}
	if runs[1].FindElement("w:br") == nil {
		t.Error("second run must be a break")
	}
}

func TestRender_Hyperlinks(t *testing.T) {
	link := func(s, target string) document.Run {
		r := textRun(s)
		r.Style.Link = target
		return r
	}
	pkg := render(t,
		document.Block{Paragraph: para(link("one", "http://example.com/"), link("two", "http://example.com/"), textRun(" mid "), link("top", "#top"))},
		document.Block{Paragraph: para(link("again", "http://example.com/"), link("other", "https://example.org/"))},
	)

	links := pkg.Document.FindElements("//w:hyperlink")
	if len(links) != 4 {
		t.Fatalf("hyperlinks = %d, want 4", len(links))
	}
	if n := len(links[0].FindElements("w:r")); n != 2 {
		t.Errorf("first hyperlink runs = %d, want 2", n)
	}
	if got := links[1].SelectAttrValue("w:anchor", ""); got != "top" {
		t.Errorf("anchor = %q", got)
	}
	if links[1].SelectAttr("r:id") != nil {
		t.Error("internal link must not have relationship")
	}
	first, again := links[0].SelectAttrValue("r:id", ""), links[2].SelectAttrValue("r:id", "")
	if first == "" || first != again {
		t.Errorf("relationship ids %q and %q, want the same", first, again)
	}
	if other := links[3].SelectAttrValue("r:id", ""); other == first {
		t.Error("different targets share relationship")
	}

	rels := pkg.Relationships.Root().ChildElements()
	if len(rels) != 2 {
		t.Fatalf("relationships = %d, want 2", len(rels))
	}
	if rels[0].SelectAttrValue("TargetMode", "") != "External" || rels[0].SelectAttrValue("Type", "") != relHyperlink {
		t.Errorf("relationship = %v", rels[0].Attr)
	}
	if rels[0].SelectAttrValue("Id", "") != first {
		t.Errorf("relationship id = %q, want %q", rels[0].SelectAttrValue("Id", ""), first)
	}
}

func TestRender_Images(t *testing.T) {
	data := []byte("\x89PNG fake but opaque")
	img := func(w, h int) document.Run {
		return document.Run{Kind: document.RunImage, Image: &document.Image{
			Source: "a.png", Alt: "alt text", Width: w, Height: h, Data: data, ContentType: "image/png",
		}}
	}
	pkg := render(t,
		document.Block{Paragraph: para(img(10, 20), img(30, 40))},
		document.Block{Paragraph: para(document.Run{Kind: document.RunImage, Image: &document.Image{Source: "broken"}})},
	)

	if len(pkg.Media) != 1 {
		t.Fatalf("media = %d, want 1", len(pkg.Media))
	}
	m := pkg.Media[0]
	if m.Name != MediaName(data, "image/png") || !strings.HasSuffix(m.Name, ".png") || !strings.HasPrefix(m.Name, "image-") {
		t.Errorf("media name = %q", m.Name)
	}

	drawings := pkg.Document.FindElements("//w:drawing")
	if len(drawings) != 2 {
		t.Fatalf("drawings = %d, want 2", len(drawings))
	}
	extent := find(t, drawings[0], "wp:inline/wp:extent")
	if extent.SelectAttrValue("cx", "") != "95250" || extent.SelectAttrValue("cy", "") != "190500" {
		t.Errorf("extent = %v", extent.Attr)
	}
	docPr := find(t, drawings[1], "wp:inline/wp:docPr")
	if docPr.SelectAttrValue("id", "") != "2" || docPr.SelectAttrValue("descr", "") != "alt text" {
		t.Errorf("docPr = %v", docPr.Attr)
	}
	rid0 := find(t, drawings[0], ".//a:blip").SelectAttrValue("r:embed", "")
	rid1 := find(t, drawings[1], ".//a:blip").SelectAttrValue("r:embed", "")
	if rid0 == "" || rid0 != rid1 {
		t.Errorf("embed ids %q and %q, want the same", rid0, rid1)
	}

	rels := pkg.Relationships.Root().ChildElements()
	if len(rels) != 1 {
		t.Fatalf("relationships = %d, want 1", len(rels))
	}
	if got := rels[0].SelectAttrValue("Target", ""); got != "media/"+m.Name {
		t.Errorf("target = %q", got)
	}
	if rels[0].SelectAttr("TargetMode") != nil {
		t.Error("media relationship must be internal")
	}
}

func TestMediaName(t *testing.T) {
	a := MediaName([]byte("one"), "image/jpeg")
	if a != MediaName([]byte("one"), "image/jpeg") {
		t.Error("name is not stable")
	}
	if a == MediaName([]byte("two"), "image/jpeg") {
		t.Error("different data share name")
	}
	tests := []struct {
		contentType string
		ext         string
	}{
		{"image/jpeg", ".jpeg"},
		{"image/svg+xml", ".svg"},
		{"image/x-portable-pixmap", ".x-portable-pixmap"},
		{"", ".bin"},
	}
	for _, tt := range tests {
		if got := MediaName(nil, tt.contentType); !strings.HasSuffix(got, tt.ext) {
			t.Errorf("MediaName(%q) = %q, want suffix %q", tt.contentType, got, tt.ext)
		}
	}
}

func cell(text string, colspan, rowspan int) *document.TableCell {
	c := &document.TableCell{ColSpan: colspan, RowSpan: rowspan}
	if text != "" {
		c.Blocks = []document.Block{{Paragraph: para(textRun(text))}}
	}
	return c
}

func row(cells ...*document.TableCell) *document.TableRow {
	return &document.TableRow{Cells: cells}
}

func describe(grid [][]slot) string {
	var rows []string
	for _, r := range grid {
		var parts []string
		for _, s := range r {
			var p string
			switch {
			case s.merge == mergeContinue:
				p = "^"
			case s.cell == nil:
				p = "_"
			default:
				p = s.cell.Blocks[0].Paragraph.Runs[0].Text
				if s.merge == mergeRestart {
					p += "*"
				}
			}
			if s.span > 1 {
				p += strings.Repeat("+", s.span-1)
			}
			parts = append(parts, p)
		}
		rows = append(rows, strings.Join(parts, " "))
	}
	return strings.Join(rows, " / ")
}

func TestLayout(t *testing.T) {
	tests := []struct {
		name string
		rows []*document.TableRow
		want string
		cols int
	}{
		{
			name: "simple",
			rows: []*document.TableRow{row(cell("a", 1, 1), cell("b", 1, 1)), row(cell("c", 1, 1))},
			want: "a b / c",
			cols: 2,
		},
		{
			name: "colspan",
			rows: []*document.TableRow{row(cell("a", 2, 1), cell("b", 1, 1)), row(cell("c", 1, 1), cell("d", 1, 1), cell("e", 1, 1))},
			want: "a+ b / c d e",
			cols: 3,
		},
		{
			name: "rowspan first column",
			rows: []*document.TableRow{row(cell("a", 1, 3), cell("b", 1, 1)), row(cell("c", 1, 1)), row(cell("d", 1, 1))},
			want: "a* b / ^ c / ^ d",
			cols: 2,
		},
		{
			name: "rowspan middle column",
			rows: []*document.TableRow{row(cell("a", 1, 1), cell("b", 1, 2), cell("c", 1, 1)), row(cell("d", 1, 1), cell("e", 1, 1))},
			want: "a b* c / d ^ e",
			cols: 3,
		},
		{
			name: "rowspan last column",
			rows: []*document.TableRow{row(cell("a", 1, 1), cell("b", 1, 2)), row(cell("c", 1, 1))},
			want: "a b* / c ^",
			cols: 2,
		},
		{
			name: "rowspan past short row",
			rows: []*document.TableRow{row(cell("a", 1, 1), cell("b", 1, 1), cell("c", 1, 2)), row(cell("d", 1, 1))},
			want: "a b c* / d _ ^",
			cols: 3,
		},
		{
			name: "block of merged cells",
			rows: []*document.TableRow{row(cell("a", 2, 2), cell("b", 1, 1)), row(cell("c", 1, 1))},
			want: "a*+ b / ^+ c",
			cols: 3,
		},
		{
			name: "rowspan beyond table",
			rows: []*document.TableRow{row(cell("a", 1, 5)), row(cell("b", 1, 1))},
			want: "a* / ^ b",
			cols: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, cols := layout(tt.rows)
			if got := describe(grid); got != tt.want {
				t.Errorf("layout() = %q, want %q", got, tt.want)
			}
			if cols != tt.cols {
				t.Errorf("cols = %d, want %d", cols, tt.cols)
			}
		})
	}
}

func TestRender_Table(t *testing.T) {
	side := css.SideBorder{Style: css.BorderStyleSolid, Width: css.NewUnit(1, css.UnitPixel)}
	header := row(cell("h1", 1, 1), cell("h2", 1, 1))
	header.Header = true
	empty := cell("", 1, 1)
	empty.Alignment = document.AlignCenter
	empty.Background = css.RGB(0xcc, 0xcc, 0xcc)
	tbl := &document.Table{
		Rows:        []*document.TableRow{header, row(cell("wide", 2, 1)), row(empty, cell("x", 1, 1))},
		Border:      css.NewBorder(side),
		Width:       css.NewUnit(50, css.UnitPercent),
		Alignment:   document.AlignCenter,
		CellPadding: css.NewUnit(4, css.UnitPixel),
		Caption:     []document.Block{{Paragraph: &document.Paragraph{Style: document.StyleCaption, Runs: []document.Run{textRun("Title")}}}},
	}
	pkg := render(t, document.Block{Table: tbl})
	body := find(t, pkg.Document.Root(), "w:body")

	children := body.ChildElements()
	if len(children) != 3 || children[0].Tag != "p" || children[1].Tag != "tbl" || children[2].Tag != "p" {
		var tags []string
		for _, c := range children {
			tags = append(tags, c.Tag)
		}
		t.Fatalf("body children = %v, want caption, table and trailing paragraph", tags)
	}
	if got := val(find(t, children[0], "w:pPr/w:pStyle")); got != "Caption" {
		t.Errorf("caption style = %q", got)
	}

	wt := children[1]
	tpr := find(t, wt, "w:tblPr")
	tw := find(t, tpr, "w:tblW")
	if tw.SelectAttrValue("w:w", "") != "2500" || tw.SelectAttrValue("w:type", "") != "pct" {
		t.Errorf("tblW = %v", tw.Attr)
	}
	if got := val(find(t, tpr, "w:jc")); got != "center" {
		t.Errorf("jc = %q", got)
	}
	for _, tag := range []string{"w:top", "w:left", "w:bottom", "w:right", "w:insideH", "w:insideV"} {
		if got := val(find(t, tpr, "w:tblBorders/"+tag)); got != "single" {
			t.Errorf("%s = %q", tag, got)
		}
	}
	if got := find(t, tpr, "w:tblCellMar/w:left").SelectAttrValue("w:w", ""); got != "60" {
		t.Errorf("cell margin = %q", got)
	}
	if n := len(wt.FindElements("w:tblGrid/w:gridCol")); n != 2 {
		t.Errorf("grid columns = %d, want 2", n)
	}

	rows := wt.FindElements("w:tr")
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].FindElement("w:trPr/w:tblHeader") == nil {
		t.Error("header row not marked")
	}
	if rows[1].FindElement("w:trPr") != nil {
		t.Error("body row marked as header")
	}
	if got := val(find(t, rows[1], "w:tc/w:tcPr/w:gridSpan")); got != "2" {
		t.Errorf("gridSpan = %q", got)
	}

	tc := find(t, rows[2], "w:tc")
	p := find(t, tc, "w:p")
	if got := val(find(t, p, "w:pPr/w:jc")); got != "center" {
		t.Errorf("empty cell paragraph jc = %q", got)
	}
	if got := find(t, tc, "w:tcPr/w:shd").SelectAttrValue("w:fill", ""); got != "CCCCCC" {
		t.Errorf("cell fill = %q", got)
	}
}

func TestRender_NestedTable(t *testing.T) {
	inner := &document.Table{Rows: []*document.TableRow{row(cell("in", 1, 1))}}
	outer := &document.Table{Rows: []*document.TableRow{row(&document.TableCell{Blocks: []document.Block{{Table: inner}}})}}
	pkg := render(t, document.Block{Table: outer}, document.Block{Paragraph: para(textRun("after"))})

	tc := find(t, pkg.Document.Root(), "w:body/w:tbl/w:tr/w:tc")
	children := tc.ChildElements()
	if len(children) != 3 || children[1].Tag != "tbl" || children[2].Tag != "p" {
		t.Fatalf("cell children = %d, want tcPr, nested table and paragraph", len(children))
	}
	body := find(t, pkg.Document.Root(), "w:body").ChildElements()
	if len(body) != 2 {
		t.Errorf("body children = %d, want 2", len(body))
	}
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Render(ctx, &document.Document{Blocks: []document.Block{{Paragraph: para(textRun("x"))}}}, zaptest.NewLogger(t))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

func TestWriter(t *testing.T) {
	dir := t.TempDir()
	data := []byte("GIF89a fake")
	doc := &document.Document{Blocks: []document.Block{
		{Paragraph: para(textRun("Hello"), document.Run{Kind: document.RunImage, Image: &document.Image{Width: 1, Height: 1, Data: data, ContentType: "image/gif"}})},
	}}

	var sink document.Sink = NewWriter(dir, Options{Indent: 2}, zaptest.NewLogger(t))
	if err := sink.Write(context.Background(), doc); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	main, err := os.ReadFile(filepath.Join(dir, DocumentPart))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(main), "<?xml") || !strings.Contains(string(main), "<w:t>Hello</w:t>") {
		t.Errorf("document part = %s", main)
	}
	if !strings.Contains(string(main), "\n  <w:body>") {
		t.Error("document part is not indented")
	}

	parsed := etree.NewDocument()
	if err := parsed.ReadFromFile(filepath.Join(dir, filepath.FromSlash(RelationshipsPart))); err != nil {
		t.Fatalf("relationships part: %v", err)
	}
	target := find(t, parsed.Root(), "Relationship").SelectAttrValue("Target", "")

	got, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(target)))
	if err != nil {
		t.Fatalf("media part: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("media data = %q", got)
	}

	// second write over existing output
	if err := sink.Write(context.Background(), doc); err != nil {
		t.Errorf("second Write() error = %v", err)
	}
}
