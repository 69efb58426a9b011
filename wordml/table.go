package wordml

import (
	"context"
	"math"
	"slices"
	"strconv"

	"github.com/beevik/etree"

	"h2d/css"
	"h2d/document"
)

type merge int

const (
	mergeNone merge = iota
	mergeRestart
	mergeContinue
)

// slot is a cell occupying span grid columns. Continuation slots of
// vertically merged cells and fillers have no cell.
type slot struct {
	cell  *document.TableCell
	span  int
	merge merge
}

type vspan struct {
	rows int
	span int
}

// layout places cells on the grid. Cells spanning rows leave continuation
// slots at the same grid column in following rows.
func layout(rows []*document.TableRow) ([][]slot, int) {
	var (
		out     = make([][]slot, 0, len(rows))
		pending = make(map[int]vspan)
		cols    int
	)
	for _, row := range rows {
		var slots []slot
		col := 0
		occupied := func() {
			for {
				p, ok := pending[col]
				if !ok {
					return
				}
				slots = append(slots, slot{span: p.span, merge: mergeContinue})
				if p.rows--; p.rows == 0 {
					delete(pending, col)
				} else {
					pending[col] = p
				}
				col += p.span
			}
		}
		for _, cell := range row.Cells {
			occupied()
			s := slot{cell: cell, span: max(cell.ColSpan, 1)}
			if cell.RowSpan > 1 {
				s.merge = mergeRestart
				pending[col] = vspan{rows: cell.RowSpan - 1, span: s.span}
			}
			slots = append(slots, s)
			col += s.span
		}
		occupied()

		// merged cells past the end of a short row
		rest := make([]int, 0, len(pending))
		for c := range pending {
			if c > col {
				rest = append(rest, c)
			}
		}
		slices.Sort(rest)
		for _, c := range rest {
			if c < col {
				continue
			}
			if c > col {
				slots = append(slots, slot{span: c - col})
				col = c
			}
			occupied()
		}

		out = append(out, slots)
		cols = max(cols, col)
	}
	return out, cols
}

func (r *renderer) table(ctx context.Context, parent *etree.Element, tbl *document.Table) error {
	if err := r.blocks(ctx, parent, tbl.Caption); err != nil {
		return err
	}

	grid, cols := layout(tbl.Rows)
	if cols == 0 {
		return nil
	}

	wt := parent.CreateElement("w:tbl")
	tableProps(wt.CreateElement("w:tblPr"), tbl)
	tg := wt.CreateElement("w:tblGrid")
	for range cols {
		tg.CreateElement("w:gridCol")
	}

	for i, row := range tbl.Rows {
		tr := wt.CreateElement("w:tr")
		if row.Header {
			tr.CreateElement("w:trPr").CreateElement("w:tblHeader")
		}
		for _, s := range grid[i] {
			if err := r.cell(ctx, tr, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func tableProps(tpr *etree.Element, tbl *document.Table) {
	width(tpr, "w:tblW", tbl.Width)
	justification(tpr, tbl.Alignment)
	if tbl.CellSpacing.Type.IsAbsolute() {
		dxa(tpr, "w:tblCellSpacing", tbl.CellSpacing)
	}
	if !tbl.Border.IsEmpty() {
		borders(tpr.CreateElement("w:tblBorders"), tbl.Border, true)
	}
	shading(tpr, tbl.Background)
	if tbl.CellPadding.Type.IsAbsolute() {
		mar := tpr.CreateElement("w:tblCellMar")
		for _, side := range []string{"w:top", "w:left", "w:bottom", "w:right"} {
			dxa(mar, side, tbl.CellPadding)
		}
	}
}

func (r *renderer) cell(ctx context.Context, tr *etree.Element, s slot) error {
	tc := tr.CreateElement("w:tc")
	tcpr := tc.CreateElement("w:tcPr")
	if s.cell != nil {
		width(tcpr, "w:tcW", s.cell.Width)
	}
	if s.span > 1 {
		setVal(tcpr, "w:gridSpan", strconv.Itoa(s.span))
	}
	switch s.merge {
	case mergeRestart:
		setVal(tcpr, "w:vMerge", "restart")
	case mergeContinue:
		tcpr.CreateElement("w:vMerge")
	}

	var blocks []document.Block
	if s.cell != nil {
		shading(tcpr, s.cell.Background)
		blocks = s.cell.Blocks
	}
	if err := r.blocks(ctx, tc, blocks); err != nil {
		return err
	}
	// cell must end with paragraph
	if n := len(blocks); n == 0 || blocks[n-1].Table != nil {
		p := tc.CreateElement("w:p")
		if s.cell != nil && s.cell.Alignment != document.AlignUnset {
			justification(p.CreateElement("w:pPr"), s.cell.Alignment)
		}
	}
	return nil
}

// width writes preferred width: percentage in fiftieths of a percent,
// absolute length in twips, auto otherwise.
func width(parent *etree.Element, tag string, u css.Unit) {
	switch {
	case u.Type == css.UnitPercent:
		el := parent.CreateElement(tag)
		el.CreateAttr("w:w", strconv.Itoa(int(math.Round(min(u.Value, 100)*50))))
		el.CreateAttr("w:type", "pct")
	case u.Type.IsAbsolute():
		dxa(parent, tag, u)
	default:
		el := parent.CreateElement(tag)
		el.CreateAttr("w:w", "0")
		el.CreateAttr("w:type", "auto")
	}
}

func dxa(parent *etree.Element, tag string, u css.Unit) {
	el := parent.CreateElement(tag)
	el.CreateAttr("w:w", strconv.Itoa(max(u.Twips(), 0)))
	el.CreateAttr("w:type", "dxa")
}
