package keepstyle

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/multierr"
)

// Describe opens a workbook and returns a human-readable summary of the
// formatting of its first sheets: panes, tab color, column widths, the
// style of the header and first data row, and hyperlinks.
// Useful for checking a restored workbook by eye.
func Describe(path string, opts ...Option) (out string, err error) {
	o := buildOptions(opts)
	wb, err := OpenWorkbook(path, opts...)
	if err != nil {
		return "", err
	}
	defer func() { err = multierr.Append(err, wb.Close()) }()

	var b strings.Builder
	fmt.Fprintf(&b, "Workbook: %s\n", path)
	sheets := wb.SheetNames()
	fmt.Fprintf(&b, "Sheets: %d\n", len(sheets))
	if o.describeSheets >= 0 && len(sheets) > o.describeSheets {
		sheets = sheets[:o.describeSheets]
	}
	for _, sheet := range sheets {
		g, err := wb.ReadGrid(sheet)
		if err != nil {
			return "", err
		}
		DescribeGrid(&b, g)
	}
	return b.String(), nil
}

// DescribeGrid writes the formatting summary of one sheet to b.
func DescribeGrid(b *strings.Builder, g *Grid) {
	fmt.Fprintf(b, "\nSheet %q (%d rows x %d cols)\n", g.Sheet, g.MaxRow, g.MaxCol)
	fmt.Fprintf(b, "  Freeze panes: %s\n", orNone(g.Meta.Panes.FreezeCell()))
	fmt.Fprintf(b, "  Tab color: %s\n", orNone(g.Meta.TabColor))
	fmt.Fprintf(b, "  Merged ranges: %d\n", len(g.Meta.Merges))

	if n := min(g.MaxCol, 10); n > 0 {
		widths := make([]string, 0, n)
		for col := 1; col <= n; col++ {
			widths = append(widths, fmt.Sprintf("%s=%s", ColToName(col), formatFloat(g.ColWidth(col))))
		}
		fmt.Fprintf(b, "  Column widths: %s\n", strings.Join(widths, " "))
	}

	for row := 1; row <= min(g.MaxRow, 2); row++ {
		fmt.Fprintf(b, "  Row %d:\n", row)
		for col := 1; col <= min(g.MaxCol, 5); col++ {
			u, _ := g.Cell(row, col)
			fmt.Fprintf(b, "    %s %q: %s\n", CellRef{Row: row, Col: col}, truncate(valueString(u.Value), 20), u.Style.Describe())
		}
	}

	var links []StyledUnit
	for _, u := range g.Units() {
		if u.Hyperlink != nil {
			links = append(links, u)
		}
	}
	fmt.Fprintf(b, "  Hyperlinks: %d\n", len(links))
	if len(links) > 0 {
		fmt.Fprintf(b, "    e.g. %s -> %s\n", links[0].Ref, links[0].Hyperlink)
	}
}

func valueString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case float64:
		return formatFloat(v)
	}
	return fmt.Sprint(v)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
