package htmldoc

import (
	"strconv"
	"strings"

	"golang.org/x/net/html/atom"

	"h2d/css"
	"h2d/document"
)

// currentTable returns state of the innermost open table.
func (b *builder) currentTable() *tableState {
	for i := len(b.tags) - 1; i >= 0; i-- {
		if t := b.tags[i]; t.kind == kindTable {
			return t.table
		}
	}
	return nil
}

// inTableStructure reports position between table tags where no content is
// allowed: inside table, row group or row but not in a cell or caption.
func (b *builder) inTableStructure() bool {
	for i := len(b.tags) - 1; i >= 0; i-- {
		switch b.tags[i].kind {
		case kindTable, kindRowGroup, kindRow:
			return true
		case kindCell, kindCaption:
			return false
		}
	}
	return false
}

// ensureCell opens implicit row and cell for content found directly in
// table structure.
func (b *builder) ensureCell() {
	if !b.inTableStructure() {
		return
	}
	b.nextID++
	b.startCell(b.nextID, implicitTag(atom.Td))
}

func implicitTag(a atom.Atom) *startTag {
	return &startTag{name: a.String(), atom: a, attrs: css.NewAttributes(), style: css.NewAttributes()}
}

func (b *builder) startTable(id int, t *startTag) {
	b.closeParagraph()
	b.flush()
	b.ensureCell()

	tbl := &document.Table{
		Border:      t.style.GetAsBorder(),
		Width:       t.unit("width"),
		Background:  backgroundColor(t.style),
		Alignment:   document.ParseAlignment(t.attrs.Value("align")),
		CellSpacing: t.attrs.GetAsUnit("cellspacing"),
		CellPadding: t.attrs.GetAsUnit("cellpadding"),
		Origin:      id,
	}
	if tbl.Border.IsEmpty() {
		if side := t.attrBorder(); side.IsValid() {
			tbl.Border = css.NewBorder(side)
		}
	}
	if tbl.Background.IsEmpty() {
		tbl.Background = t.attrs.GetAsColor("bgcolor")
	}
	*b.container = append(*b.container, document.Block{Table: tbl})

	ot := &openTag{
		id:    id,
		name:  t.name,
		atom:  t.atom,
		kind:  kindTable,
		saved: b.container,
		table: &tableState{table: tbl},
	}
	b.push(ot, t.runDelta(true))
	b.bookmark(t.attrs.Value("id"))
}

// finishTable drops rows without cells and the whole table when nothing is
// left. Table is always the last block of its container when it closes.
func (b *builder) finishTable(tbl *document.Table) {
	rows := tbl.Rows[:0]
	for _, r := range tbl.Rows {
		if len(r.Cells) > 0 {
			rows = append(rows, r)
		}
	}
	tbl.Rows = rows
	if len(tbl.Rows) > 0 || len(tbl.Caption) > 0 {
		return
	}
	if n := len(*b.container); n > 0 && (*b.container)[n-1].Table == tbl {
		*b.container = (*b.container)[:n-1]
	}
}

// closeSections closes open caption, row group and row of the current table.
func (b *builder) closeSections() {
	for _, kind := range []tagKind{kindCaption, kindRowGroup, kindRow} {
		if i := b.find(func(o *openTag) bool { return o.kind == kind }, kind, nil); i >= 0 {
			b.popTo(i)
		}
	}
	b.flush()
}

func (b *builder) startRowGroup(id int, t *startTag) {
	b.closeSections()
	st := b.currentTable()
	st.header = t.atom == atom.Thead
	b.push(&openTag{id: id, name: t.name, atom: t.atom, kind: kindRowGroup}, t.runDelta(true))
}

func (b *builder) startRow(id int, t *startTag) {
	if i := b.find(func(o *openTag) bool { return o.kind == kindRow }, kindRow, nil); i >= 0 {
		b.popTo(i)
	}
	b.flush()

	st := b.currentTable()
	row := &document.TableRow{Header: st.header}
	st.table.Rows = append(st.table.Rows, row)
	st.row = row

	b.push(&openTag{id: id, name: t.name, atom: t.atom, kind: kindRow}, t.runDelta(true))
}

func (b *builder) startCell(id int, t *startTag) {
	if i := b.find(
		func(o *openTag) bool { return o.kind == kindCell },
		kindCell,
		func(o *openTag) bool { return o.kind == kindRow },
	); i >= 0 {
		b.popTo(i)
	}
	st := b.currentTable()
	if st.row == nil {
		b.nextID++
		b.startRow(b.nextID, implicitTag(atom.Tr))
	}
	b.flush()

	cell := &document.TableCell{
		ColSpan:    span(t.attrs.Value("colspan")),
		RowSpan:    span(t.attrs.Value("rowspan")),
		Width:      t.unit("width"),
		Background: backgroundColor(t.style),
		Alignment:  t.alignment(),
		Header:     t.atom == atom.Th || st.header,
	}
	if cell.Background.IsEmpty() {
		cell.Background = t.attrs.GetAsColor("bgcolor")
	}
	st.row.Cells = append(st.row.Cells, cell)

	ot := &openTag{
		id:    id,
		name:  t.name,
		atom:  t.atom,
		kind:  kindCell,
		saved: b.container,
		props: &blockProps{align: cell.Alignment},
	}
	b.container = &cell.Blocks
	b.push(ot, t.runDelta(true))
	b.bookmark(t.attrs.Value("id"))
}

func (b *builder) startCaption(id int, t *startTag) {
	b.closeSections()

	st := b.currentTable()
	props := t.blockProps()
	if props.align == document.AlignUnset {
		props.align = document.AlignCenter
	}
	ot := &openTag{
		id:    id,
		name:  t.name,
		atom:  t.atom,
		kind:  kindCaption,
		saved: b.container,
		props: props,
	}
	b.container = &st.table.Caption
	b.push(ot, t.runDelta(true))
}

// span parses colspan/rowspan, anything invalid is 1.
func span(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return min(n, 1000)
}
