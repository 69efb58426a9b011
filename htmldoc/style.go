package htmldoc

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"h2d/css"
	"h2d/document"
)

// startTag is a parsed start tag occurrence.
type startTag struct {
	name  string
	atom  atom.Atom
	attrs *css.Attributes
	style *css.Attributes
}

// readStartTag takes the current start tag from the tokenizer. Attributes
// are split by css.ParseAttributes from the raw tag text, names are
// lower-cased (HTML attribute names are case-insensitive) and values other
// than style have entities decoded.
func readStartTag(z *html.Tokenizer) *startTag {
	raw := string(z.Raw())
	nameb, _ := z.TagName()
	name := string(nameb)

	rest := ""
	if len(raw) > 1+len(name) {
		rest = raw[1+len(name):]
	}
	rest = strings.TrimSuffix(rest, ">")
	rest = strings.TrimSuffix(strings.TrimRight(rest, " \t\r\n\f"), "/")

	parsed := css.ParseAttributes(rest)
	attrs := css.NewAttributes()
	for _, n := range parsed.Names() {
		v := parsed.Value(n)
		n = strings.ToLower(n)
		if n != "style" {
			v = html.UnescapeString(v)
		}
		attrs.Set(n, v)
	}

	return &startTag{
		name:  name,
		atom:  atom.Lookup(nameb),
		attrs: attrs,
		style: css.ParseStyle(attrs.Value("style")),
	}
}

// hidden reports display:none.
func (t *startTag) hidden() bool {
	return strings.EqualFold(strings.TrimSpace(t.style.Value("display")), "none")
}

// runDelta is the formatting the element introduces. Background and border
// of block elements belong to the paragraph and are not part of it.
func (t *startTag) runDelta(block bool) document.RunStyle {
	d := tagDeltas[t.atom]

	switch t.atom {
	case atom.Font:
		d = d.Merge(fontDelta(t.attrs))
	case atom.A:
		d.Link = linkTarget(t.attrs.Value("href"))
	}
	return d.Merge(styleDelta(t.style, block))
}

func fontDelta(attrs *css.Attributes) document.RunStyle {
	var d document.RunStyle
	d.Color = attrs.GetAsColor("color")
	if face, ok := attrs.Get("face"); ok {
		d.FontFamily = css.ParseFontFamily(face)
	}
	if size, ok := attrs.Get("size"); ok {
		size = strings.TrimSpace(size)
		relative := strings.HasPrefix(size, "+") || strings.HasPrefix(size, "-")
		if n, err := strconv.Atoi(size); err == nil {
			if relative {
				n += 3
			}
			n = min(max(n, 1), len(fontSizes))
			d.FontSize = css.NewUnit(fontSizes[n-1], css.UnitPoint)
		}
	}
	return d
}

func styleDelta(style *css.Attributes, block bool) document.RunStyle {
	var d document.RunStyle
	if style.Len() == 0 {
		return d
	}

	d.Color = style.GetAsColor("color")

	font := style.GetAsFont("font")
	switch font.Style {
	case css.FontStyleItalic, css.FontStyleOblique:
		d.Italic = document.ToggleOn
	case css.FontStyleNormal:
		d.Italic = document.ToggleOff
	}
	switch font.Variant {
	case css.FontVariantSmallCaps:
		d.SmallCaps = document.ToggleOn
	case css.FontVariantNormal:
		d.SmallCaps = document.ToggleOff
	}
	if font.Weight != css.FontWeightUnset {
		d.Bold = document.ToggleOf(font.Weight.IsBold())
	}
	d.FontFamily = font.Family
	d.FontSize = font.Size
	if d.FontSize.Type == css.UnitPercent {
		d.FontSize = css.NewUnit(d.FontSize.Value/100, css.UnitEm)
	}

	decoration := style.Value("text-decoration")
	if v, ok := style.Get("text-decoration-line"); ok {
		decoration = v
	}
	for _, word := range strings.Fields(strings.ToLower(decoration)) {
		switch word {
		case "none":
			d.Underline, d.Strike = document.ToggleOff, document.ToggleOff
		case "underline":
			d.Underline = document.ToggleOn
		case "line-through":
			d.Strike = document.ToggleOn
		}
	}

	d.VerticalAlign = document.ParseVerticalAlign(style.Value("vertical-align"))

	if !block {
		d.Background = backgroundColor(style)
		if b := style.GetAsBorder().First(); b.IsValid() {
			d.Border = b
		}
	}
	return d
}

// backgroundColor looks for a color in background-color and in the
// background shorthand. Transparent background is no background.
func backgroundColor(style *css.Attributes) css.Color {
	c := style.GetAsColor("background-color")
	if c.IsEmpty() {
		for _, part := range strings.Fields(style.Value("background")) {
			if c = css.ResolveColor(part); !c.IsEmpty() {
				break
			}
		}
	}
	if c.IsTransparent() {
		return css.Color{}
	}
	return c
}

// blockProps are paragraph properties a block element gives to paragraphs
// opened inside of it.
type blockProps struct {
	style      string
	align      document.Alignment
	margin     css.Margin
	border     css.Border
	background css.Color
	pre        bool
}

func (t *startTag) blockProps() *blockProps {
	p := &blockProps{
		style:  paragraphStyles[t.atom],
		align:  t.alignment(),
		margin: t.style.GetAsMargin("margin"),
		border: t.style.GetAsBorder(),
		pre:    preTags[t.atom],
	}
	if t.atom == atom.Center && p.align == document.AlignUnset {
		p.align = document.AlignCenter
	}
	p.background = backgroundColor(t.style)
	if p.background.IsEmpty() {
		p.background = t.attrs.GetAsColor("bgcolor")
	}
	switch strings.ToLower(strings.TrimSpace(t.style.Value("white-space"))) {
	case "pre", "pre-wrap", "pre-line", "break-spaces":
		p.pre = true
	case "normal", "nowrap":
		p.pre = false
	}
	return p
}

// alignment prefers text-align over presentational align attribute.
func (t *startTag) alignment() document.Alignment {
	if a := document.ParseAlignment(t.style.Value("text-align")); a != document.AlignUnset {
		return a
	}
	return document.ParseAlignment(t.attrs.Value("align"))
}

// dimension returns requested size in pixels from style or attribute, 0
// when not given or relative.
func (t *startTag) dimension(name string) int {
	u := t.style.GetAsUnit(name)
	if !u.IsValid() {
		u = t.attrs.GetAsUnit(name)
	}
	if !u.Type.IsAbsolute() {
		return 0
	}
	return max(u.Pixels(), 0)
}

// unit returns length from style or attribute.
func (t *startTag) unit(name string) css.Unit {
	if u := t.style.GetAsUnit(name); u.IsValid() {
		return u
	}
	return t.attrs.GetAsUnit(name)
}

// attrBorder turns presentational border="N" into solid border.
func (t *startTag) attrBorder() css.SideBorder {
	u := css.ParseUnit(t.attrs.Value("border"))
	if !u.IsValid() || u.Value <= 0 {
		return css.SideBorder{}
	}
	return css.SideBorder{Style: css.BorderStyleSolid, Width: u, Color: t.attrs.GetAsColor("bordercolor")}
}

// bookmarkName turns anchor id into a name word processors accept: letters,
// digits and underscores, starting with a letter, at most 40 characters.
func bookmarkName(id string) string {
	name := strings.ReplaceAll(slug.Make(id), "-", "_")
	if name == "" {
		return ""
	}
	if c := name[0]; c < 'a' || c > 'z' {
		name = "id_" + name
	}
	return name[:min(len(name), 40)]
}

// linkTarget normalizes href, internal anchors point at bookmark names.
func linkTarget(href string) string {
	href = strings.TrimSpace(href)
	if frag, ok := strings.CutPrefix(href, "#"); ok {
		if name := bookmarkName(frag); name != "" {
			return "#" + name
		}
		return ""
	}
	if strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	return href
}
