package htmldoc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"h2d/css"
	"h2d/document"
)

// openTag is an entry of the open element stack.
type openTag struct {
	id   int
	name string
	atom atom.Atom
	kind tagKind
	// delta is set when the tag pushed formatting delta owned by id.
	delta bool
	// props is set for block-like elements.
	props *blockProps
	// saved is the container to restore when table, cell or caption closes.
	saved *[]document.Block
	table *tableState
	// listUsed is set on li once its first paragraph became list item.
	listUsed bool
}

// barrier reports whether searches for an element of target kind must stop
// at t. Tables isolate their content, cells and captions isolate everything
// but table structure.
func (t *openTag) barrier(target tagKind) bool {
	switch t.kind {
	case kindTable:
		return true
	case kindCell, kindCaption:
		switch target {
		case kindTable, kindRowGroup, kindRow, kindCell, kindCaption:
			return false
		}
		return true
	}
	return false
}

type tableState struct {
	table  *document.Table
	row    *document.TableRow
	header bool
}

// formatDelta is formatting pushed by the tag with id owner.
type formatDelta struct {
	owner int
	style document.RunStyle
}

// skipState tracks subtree of an opaque element being dropped.
type skipState struct {
	name  string
	depth int
	// inner is element with content inside unclosed <head>
	inner string
}

// builder turns token stream into document tree.
type builder struct {
	log  *zap.Logger
	base string

	doc       *document.Document
	container *[]document.Block

	// paragraph being filled and its whitespace state
	para      *document.Paragraph
	paraPre   bool
	keepEmpty bool
	lastSpace bool
	// drop newline right after <pre>
	leadingNewline bool
	seenText       bool

	tags      []*openTag
	deltas    []formatDelta
	bookmarks []string
	images    []*pendingImage
	nextID    int
	skip      skipState
}

func newBuilder(base string, log *zap.Logger) *builder {
	doc := &document.Document{}
	return &builder{
		log:       log,
		base:      base,
		doc:       doc,
		container: &doc.Blocks,
	}
}

// checkEvery is how many tokens are processed between cancellation checks.
const checkEvery = 256

func (b *builder) build(ctx context.Context, r io.Reader) error {
	z := html.NewTokenizer(r)
	for n := 0; ; n++ {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		tt := z.Next()
		lead := b.leadingNewline
		b.leadingNewline = false

		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return fmt.Errorf("unable to read input: %w", err)
			}
			b.closeAll()
			return nil

		case html.TextToken:
			text := string(z.Text())
			if b.skip.depth > 0 && !b.skipText(text) {
				continue
			}
			if !b.seenText {
				text = strings.TrimPrefix(text, "\ufeff")
				b.seenText = true
			}
			b.text(text, lead)

		case html.StartTagToken, html.SelfClosingTagToken:
			t := readStartTag(z)
			if b.skip.depth > 0 {
				if !b.skipStart(t, tt == html.SelfClosingTagToken) {
					continue
				}
			}
			b.start(t, tt == html.SelfClosingTagToken)

		case html.EndTagToken:
			name, _ := z.TagName()
			if b.skip.depth > 0 {
				b.skipEnd(string(name))
				continue
			}
			b.end(string(name))
		}
		// comments, doctype and processing instructions are ignored
	}
}

// skipStart accounts start tag inside opaque element. It returns true when
// skipping has ended and the tag has to be processed normally.
func (b *builder) skipStart(t *startTag, selfClosing bool) bool {
	switch b.skip.name {
	case "head":
		switch {
		case b.skip.inner != "", t.atom == atom.Head, t.atom == atom.Html:
			return false
		case headTags[t.atom]:
			if headContainers[t.atom] && !selfClosing {
				b.skip.inner = t.name
			}
			return false
		}
		// unclosed <head> ends at the first flow content
		b.skip = skipState{}
		return true
	case "option", "optgroup":
		switch classify(t.atom) {
		case kindBlock, kindTable, kindRowGroup, kindRow, kindCell, kindCaption:
			b.skip = skipState{}
			return true
		}
		// option closes its sibling and never nests
		return false
	}
	if t.name == b.skip.name && !selfClosing {
		b.skip.depth++
	}
	return false
}

// skipText returns true when text ends skipping of unclosed <head>.
func (b *builder) skipText(text string) bool {
	if b.skip.name != "head" || b.skip.inner != "" || strings.Trim(text, " \t\r\n\f") == "" {
		return false
	}
	b.skip = skipState{}
	return true
}

func (b *builder) skipEnd(name string) {
	if b.skip.inner != "" {
		if name == b.skip.inner {
			b.skip.inner = ""
		}
		return
	}
	switch b.skip.name {
	case "option", "optgroup":
		switch name {
		case b.skip.name, "optgroup", "select", "datalist":
			b.skip = skipState{}
		}
		return
	}
	if name != b.skip.name {
		return
	}
	if b.skip.depth--; b.skip.depth == 0 {
		b.skip = skipState{}
	}
}

func (b *builder) start(t *startTag, selfClosing bool) {
	b.nextID++
	id := b.nextID

	kind := classify(t.atom)
	if kind != kindOpaque && t.hidden() {
		kind = kindOpaque
	}
	if kind == kindOpaque {
		if !selfClosing && !voidTags[t.atom] {
			b.skip = skipState{name: t.name, depth: 1}
		}
		b.log.Debug("Skipping element", zap.String("tag", t.name), zap.Int("id", id))
		return
	}

	if voidTags[t.atom] {
		b.void(id, t)
		return
	}

	switch kind {
	case kindBlock:
		b.startBlock(id, t)
	case kindTable:
		b.startTable(id, t)
	case kindRowGroup, kindRow, kindCell, kindCaption:
		if b.currentTable() == nil {
			// table structure outside of a table
			b.startBlock(id, t)
			return
		}
		switch kind {
		case kindRowGroup:
			b.startRowGroup(id, t)
		case kindRow:
			b.startRow(id, t)
		case kindCell:
			b.startCell(id, t)
		case kindCaption:
			b.startCaption(id, t)
		}
	default:
		b.push(&openTag{id: id, name: t.name, atom: t.atom, kind: kindInline}, t.runDelta(false))
		b.bookmark(t.attrs.Value("id"))
		if t.atom == atom.A {
			b.bookmark(t.attrs.Value("name"))
		}
	}
}

func (b *builder) void(id int, t *startTag) {
	switch t.atom {
	case atom.Br:
		b.lineBreak()
	case atom.Img:
		b.image(id, t)
	case atom.Hr:
		b.rule(id, t)
	}
	// everything else (input, meta, wbr...) has no content
}

func (b *builder) end(name string) {
	a := atom.Lookup([]byte(name))
	kind := classify(a)
	switch {
	case kind == kindOpaque:
		return
	case a == atom.Br:
		// </br> is taken as <br> by browsers
		b.lineBreak()
		return
	case voidTags[a]:
		return
	}

	i := b.find(func(t *openTag) bool { return t.name == name }, kind, nil)
	if i < 0 {
		// stray end tag
		return
	}
	if b.tags[i].kind == kindInline {
		// only the element itself, formatting opened later stays
		b.closeTag(b.tags[i])
		b.tags = append(b.tags[:i], b.tags[i+1:]...)
		return
	}
	b.popTo(i)
}

// find returns index of the innermost open tag accepted by match. Search
// never crosses scope barriers for target kind and stops at tags accepted by
// stop. Returns -1 when not found.
func (b *builder) find(match func(*openTag) bool, target tagKind, stop func(*openTag) bool) int {
	for i := len(b.tags) - 1; i >= 0; i-- {
		t := b.tags[i]
		if match(t) {
			return i
		}
		if t.barrier(target) || (stop != nil && stop(t)) {
			return -1
		}
	}
	return -1
}

// popTo closes all tags above index i and the tag at i, innermost first.
func (b *builder) popTo(i int) {
	for j := len(b.tags) - 1; j >= i; j-- {
		b.closeTag(b.tags[j])
		b.tags = b.tags[:j]
	}
}

func (b *builder) closeAll() {
	if len(b.tags) > 0 {
		b.popTo(0)
	}
	b.flush()
}

func (b *builder) push(t *openTag, delta document.RunStyle) {
	if !delta.IsEmpty() {
		b.deltas = append(b.deltas, formatDelta{owner: t.id, style: delta})
		t.delta = true
	}
	b.tags = append(b.tags, t)
}

func (b *builder) closeTag(t *openTag) {
	switch t.kind {
	case kindBlock:
		b.flush()
	case kindCell, kindCaption:
		b.flush()
		b.container = t.saved
	case kindRow:
		if st := b.currentTable(); st != nil {
			st.row = nil
		}
	case kindRowGroup:
		if st := b.currentTable(); st != nil {
			st.row = nil
			st.header = false
		}
	case kindTable:
		b.flush()
		b.container = t.saved
		b.finishTable(t.table.table)
	}

	if t.delta {
		for i := len(b.deltas) - 1; i >= 0; i-- {
			if b.deltas[i].owner == t.id {
				b.deltas = append(b.deltas[:i], b.deltas[i+1:]...)
				break
			}
		}
	}
}

// closeParagraph implicitly closes paragraph-like element (p, headings,
// pre, address) a block is being opened in.
func (b *builder) closeParagraph() {
	i := b.find(
		func(t *openTag) bool { return paragraphTags[t.atom] && t.kind == kindBlock },
		kindBlock,
		func(t *openTag) bool { return t.kind != kindInline },
	)
	if i >= 0 {
		b.popTo(i)
	}
}

func (b *builder) startBlock(id int, t *startTag) {
	switch t.atom {
	case atom.Li:
		b.closeSibling(kindBlock, []atom.Atom{atom.Li}, atom.Ul, atom.Ol, atom.Menu, atom.Dir)
	case atom.Dt, atom.Dd:
		b.closeSibling(kindBlock, []atom.Atom{atom.Dt, atom.Dd}, atom.Dl)
	}
	b.closeParagraph()
	b.flush()
	b.ensureCell()

	ot := &openTag{id: id, name: t.name, atom: t.atom, kind: kindBlock, props: t.blockProps()}
	b.push(ot, t.runDelta(true))
	b.bookmark(t.attrs.Value("id"))
	if ot.props.pre {
		b.leadingNewline = true
	}
}

// closeSibling closes open element of one of the names unless an element
// from parents is found first.
func (b *builder) closeSibling(target tagKind, names []atom.Atom, parents ...atom.Atom) {
	is := func(a atom.Atom, set []atom.Atom) bool {
		for _, x := range set {
			if a == x {
				return true
			}
		}
		return false
	}
	i := b.find(
		func(t *openTag) bool { return is(t.atom, names) },
		target,
		func(t *openTag) bool { return is(t.atom, parents) },
	)
	if i >= 0 {
		b.popTo(i)
	}
}

// bookmark attaches anchor to the current paragraph or to the next one.
func (b *builder) bookmark(id string) {
	name := bookmarkName(id)
	if name == "" {
		return
	}
	if b.para != nil {
		b.para.Bookmarks = append(b.para.Bookmarks, name)
		return
	}
	b.bookmarks = append(b.bookmarks, name)
}

// currentStyle merges all active formatting deltas.
func (b *builder) currentStyle() document.RunStyle {
	styles := make([]document.RunStyle, len(b.deltas))
	for i, d := range b.deltas {
		styles[i] = d.style
	}
	return document.MergeStyles(styles...)
}

func (b *builder) origin() int {
	if n := len(b.tags); n > 0 {
		return b.tags[n-1].id
	}
	return 0
}

// preformatted reports whether white space is kept in the current scope.
func (b *builder) preformatted() bool {
	for i := len(b.tags) - 1; i >= 0; i-- {
		t := b.tags[i]
		if t.props != nil {
			return t.props.pre
		}
		if t.barrier(kindBlock) {
			break
		}
	}
	return false
}

// paragraph returns paragraph being filled opening new one when necessary.
func (b *builder) paragraph() *document.Paragraph {
	if b.para != nil {
		return b.para
	}
	b.ensureCell()

	p := &document.Paragraph{}
	first := true
	for i := len(b.tags) - 1; i >= 0; i-- {
		t := b.tags[i]
		if t.props != nil {
			pr := t.props
			if first {
				p.Margin, p.Border, p.Origin = pr.margin, pr.border, t.id
				first = false
			}
			if p.Style == "" {
				p.Style = pr.style
			}
			if p.Alignment == document.AlignUnset {
				p.Alignment = pr.align
			}
			if p.Background.IsEmpty() {
				p.Background = pr.background
			}
			if t.atom == atom.Li && p.List == nil && !t.listUsed {
				p.List = b.listItem(i)
				t.listUsed = true
			}
		}
		if t.barrier(kindBlock) {
			break
		}
	}
	p.Bookmarks, b.bookmarks = b.bookmarks, nil

	b.para = p
	b.paraPre = b.preformatted()
	b.keepEmpty = false
	b.lastSpace = true
	return p
}

// listItem describes li at index i: kind of the nearest list and nesting
// level counted by enclosing lists.
func (b *builder) listItem(i int) *document.ListItem {
	item := &document.ListItem{Level: -1}
	found := false
	for j := i - 1; j >= 0; j-- {
		t := b.tags[j]
		if t.atom == atom.Ul || t.atom == atom.Ol || t.atom == atom.Menu || t.atom == atom.Dir {
			if !found {
				item.Ordered = t.atom == atom.Ol
				found = true
			}
			item.Level++
		}
		if t.barrier(kindBlock) {
			break
		}
	}
	item.Level = max(item.Level, 0)
	return item
}

// flush ends the current paragraph appending it to the container unless
// nothing visible has been collected.
func (b *builder) flush() {
	p := b.para
	if p == nil {
		return
	}
	b.para = nil

	if !b.paraPre {
		trimTrailingSpace(p)
	}
	// trailing break does not start a new line
	if n := len(p.Runs); n > 0 && p.Runs[n-1].Kind == document.RunBreak {
		p.Runs = p.Runs[:n-1]
	}
	if len(p.Runs) == 0 && !b.keepEmpty {
		b.bookmarks = append(p.Bookmarks, b.bookmarks...)
		return
	}
	*b.container = append(*b.container, document.Block{Paragraph: p})
}

func (b *builder) addRun(r document.Run) {
	p := b.paragraph()
	r.Style = b.currentStyle()
	if r.Origin == 0 {
		r.Origin = b.origin()
	}
	p.Runs = append(p.Runs, r)
}

func (b *builder) text(s string, afterPre bool) {
	if b.preformatted() {
		b.preText(s, afterPre)
		return
	}

	s = collapseSpace(s)
	if s == "" || (s == " " && (b.para == nil || b.lastSpace)) {
		return
	}
	b.paragraph()
	if b.lastSpace {
		s = strings.TrimPrefix(s, " ")
	}
	b.addRun(document.Run{Kind: document.RunText, Text: s})
	b.lastSpace = strings.HasSuffix(s, " ")
}

func (b *builder) preText(s string, afterPre bool) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if afterPre {
		s = strings.TrimPrefix(s, "\n")
	}
	if s == "" {
		return
	}
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			b.addRun(document.Run{Kind: document.RunBreak})
			b.keepEmpty = true
		}
		if line != "" {
			b.addRun(document.Run{Kind: document.RunText, Text: line})
		}
	}
	b.lastSpace = false
}

func (b *builder) lineBreak() {
	p := b.paragraph()
	if !b.paraPre {
		trimTrailingSpace(p)
	}
	b.addRun(document.Run{Kind: document.RunBreak})
	b.keepEmpty = true
	b.lastSpace = true
}

// rule turns <hr> into an empty paragraph with bottom border.
func (b *builder) rule(id int, t *startTag) {
	b.closeParagraph()
	b.flush()

	border := t.style.GetAsBorder().First()
	if !border.IsValid() {
		border = css.SideBorder{
			Style: css.BorderStyleSolid,
			Width: css.NewUnit(1, css.UnitPixel),
			Color: t.attrs.GetAsColor("color"),
		}
		if size := t.attrs.GetAsUnit("size"); size.IsValid() && size.Value > 0 {
			border.Width = size
		}
	}

	p := b.paragraph()
	p.Border = css.Border{Bottom: border}
	p.Origin = id
	if a := t.alignment(); a != document.AlignUnset {
		p.Alignment = a
	}
	b.keepEmpty = true
	b.flush()
}

// trimTrailingSpace removes white space at the end of paragraph text.
func trimTrailingSpace(p *document.Paragraph) {
	for n := len(p.Runs); n > 0; n = len(p.Runs) {
		r := &p.Runs[n-1]
		if r.Kind != document.RunText {
			return
		}
		r.Text = strings.TrimRight(r.Text, " ")
		if r.Text != "" {
			return
		}
		p.Runs = p.Runs[:n-1]
	}
}

// collapseSpace replaces every run of HTML white space with single space.
func collapseSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				sb.WriteByte(' ')
				space = true
			}
		default:
			sb.WriteByte(c)
			space = false
		}
	}
	return sb.String()
}
