package keepstyle

import "maps"

// FindGridStyleTemplateRow returns the row whose styles are repeated onto
// rows appended past the end of g: the first data row, or the header row
// when g has no data rows.
func FindGridStyleTemplateRow(g *Grid) int {
	if g == nil || g.MaxRow < 1 {
		return 1
	}
	return min(g.MaxRow, 2)
}

// MergeGrids produces a grid holding current's content with original's
// formatting. Rows that exist in original take their style cell by cell;
// rows appended after original's last row take the style of original's
// template row. Columns beyond original's extent keep current's styles.
//
// Hyperlinks from original are carried only onto cells that have none.
// Sheet metadata (merges, panes, tab color, page setup, conditional formats)
// comes from original; dimensions are original's where it sets them.
//
// A nil original returns a copy of current unchanged.
func MergeGrids(current, original *Grid) *Grid {
	if original == nil {
		return current.Clone()
	}
	res := current.Clone()

	tmplRow := FindGridStyleTemplateRow(original)
	lastRow := max(current.MaxRow, original.MaxRow)
	for row := 1; row <= lastRow; row++ {
		src := row
		if row > original.MaxRow {
			src = tmplRow
		}
		for col := 1; col <= res.MaxCol; col++ {
			from, ok := original.Cell(src, col)
			if !ok {
				continue
			}
			u, _ := res.Cell(row, col)
			u.Ref = CellRef{Row: row, Col: col}
			u.Style = from.Style
			if u.Hyperlink == nil && src == row {
				u.Hyperlink = from.Hyperlink
			}
			res.Set(u)
		}
	}

	res.Meta = original.Meta.clone()
	res.Meta.ColWidths = maps.Clone(current.Meta.ColWidths)
	if res.Meta.ColWidths == nil {
		res.Meta.ColWidths = make(map[int]ColDim)
	}
	maps.Copy(res.Meta.ColWidths, original.Meta.ColWidths)
	for row, d := range current.Meta.RowHeights {
		if row > original.MaxRow {
			res.Meta.RowHeights[row] = d
		}
	}
	return res
}

// MergeWithTemplate styles current after a sheet that has no counterpart:
// row 1 takes template's header row and every later row takes template's
// first data row. Column widths are copied where template sets them.
// Content, hyperlinks and the rest of current's metadata are kept.
func MergeWithTemplate(current, template *Grid) *Grid {
	res := current.Clone()
	if template == nil || template.MaxRow < 1 {
		return res
	}
	apply := func(row, src int) {
		for col := 1; col <= res.MaxCol; col++ {
			from, ok := template.Cell(src, col)
			if !ok {
				continue
			}
			u, _ := res.Cell(row, col)
			u.Ref = CellRef{Row: row, Col: col}
			u.Style = from.Style
			res.Set(u)
		}
	}
	if current.MaxRow >= 1 {
		apply(1, 1)
	}
	if template.MaxRow >= 2 {
		for row := 2; row <= current.MaxRow; row++ {
			apply(row, 2)
		}
	}
	for col := 1; col <= min(current.MaxCol, template.MaxCol); col++ {
		if d, ok := template.Meta.ColWidths[col]; ok {
			res.Meta.ColWidths[col] = d
		}
	}
	return res
}
