package keepstyle

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Discrepancy kinds.
const (
	KindColumnWidth = "column_width"
	KindRowHeight   = "row_height"
	KindMergeCount  = "merge_count"
	KindFreezePane  = "freeze_pane"
	KindTabColor    = "tab_color"
	KindCellStyle   = "cell_style"
	KindRowCount    = "row_count"
)

// Discrepancy is one mismatch between a reference and a candidate.
type Discrepancy struct {
	Kind     string
	Sheet    string
	Location string // column letter, row number, cell or "" for sheet-level checks
	Expected string
	Actual   string
}

func (d Discrepancy) String() string {
	loc := d.Sheet
	if d.Location != "" {
		loc += "!" + d.Location
	}
	return fmt.Sprintf("%s %s: expected %s, got %s", loc, d.Kind, d.Expected, d.Actual)
}

// Verify compares the formatting of candidate against reference. It never
// fails: every mismatch is returned as a Discrepancy, sorted by kind and
// location. Neither grid is modified.
func Verify(reference, candidate *Grid, opts ...Option) []Discrepancy {
	o := buildOptions(opts)
	sheet := candidate.Sheet
	var out []Discrepancy
	add := func(kind, loc, expected, actual string) {
		out = append(out, Discrepancy{Kind: kind, Sheet: sheet, Location: loc, Expected: expected, Actual: actual})
	}

	for _, col := range slices.Sorted(maps.Keys(reference.Meta.ColWidths)) {
		want, got := reference.ColWidth(col), candidate.ColWidth(col)
		if want != got {
			add(KindColumnWidth, ColToName(col), formatFloat(want), formatFloat(got))
		}
	}

	rows := slices.Sorted(maps.Keys(reference.Meta.RowHeights))
	if o.rowHeightSample >= 0 && len(rows) > o.rowHeightSample {
		rows = rows[:o.rowHeightSample]
	}
	for _, row := range rows {
		want, got := reference.RowHeight(row), candidate.RowHeight(row)
		if want != got {
			add(KindRowHeight, strconv.Itoa(row), formatFloat(want), formatFloat(got))
		}
	}

	if want, got := len(reference.Meta.Merges), len(candidate.Meta.Merges); want != got {
		add(KindMergeCount, "", strconv.Itoa(want), strconv.Itoa(got))
	}
	if want, got := reference.Meta.Panes.FreezeCell(), candidate.Meta.Panes.FreezeCell(); want != got {
		add(KindFreezePane, "", orNone(want), orNone(got))
	}
	if want, got := reference.Meta.TabColor, candidate.Meta.TabColor; want != got {
		add(KindTabColor, "", orNone(want), orNone(got))
	}

	for row := 1; row <= min(o.sampleRows, reference.MaxRow); row++ {
		for col := 1; col <= min(o.sampleCols, reference.MaxCol); col++ {
			diffs := reference.Style(row, col).Diff(candidate.Style(row, col))
			if len(diffs) == 0 {
				continue
			}
			want := make([]string, len(diffs))
			got := make([]string, len(diffs))
			for i, d := range diffs {
				want[i] = d.Attr + "=" + orNone(d.Expected)
				got[i] = d.Attr + "=" + orNone(d.Actual)
			}
			add(KindCellStyle, CellRef{Row: row, Col: col}.String(), strings.Join(want, " "), strings.Join(got, " "))
		}
	}

	sortDiscrepancies(out)
	return out
}

// ContentReport is the result of comparing content between a backup taken
// before restoring and the restored candidate.
type ContentReport struct {
	Discrepancies []Discrepancy
	NewSheets     []string // sheets present only in the candidate
}

// VerifyContent checks that every candidate sheet kept the number of
// non-empty rows of the same-named backup sheet.
func VerifyContent(backup, candidate []*Grid) ContentReport {
	byName := make(map[string]*Grid, len(backup))
	for _, g := range backup {
		byName[g.Sheet] = g
	}
	var rep ContentReport
	for _, c := range candidate {
		b, ok := byName[c.Sheet]
		if !ok {
			rep.NewSheets = append(rep.NewSheets, c.Sheet)
			continue
		}
		if want, got := b.NonEmptyRows(), c.NonEmptyRows(); want != got {
			rep.Discrepancies = append(rep.Discrepancies, Discrepancy{
				Kind: KindRowCount, Sheet: c.Sheet,
				Expected: strconv.Itoa(want), Actual: strconv.Itoa(got),
			})
		}
	}
	sortDiscrepancies(rep.Discrepancies)
	return rep
}

// VerifyReport is the result of VerifyWorkbooks.
type VerifyReport struct {
	Discrepancies []Discrepancy
	Compared      []string // sheets present in both reference and candidate
	NewSheets     []string // sheets present only in the candidate
	Content       *ContentReport

	ReferenceRows int
	CandidateRows int
	BackupRows    int
}

// OK reports whether no discrepancy was found.
func (r *VerifyReport) OK() bool {
	return len(r.Discrepancies) == 0 && (r.Content == nil || len(r.Content.Discrepancies) == 0)
}

// VerifyWorkbooks compares the formatting of the candidate workbook with the
// reference workbook, and when backupPath is not empty, the content of the
// candidate with the backup. Only failing to read a workbook is an error.
func VerifyWorkbooks(referencePath, candidatePath, backupPath string, opts ...Option) (*VerifyReport, error) {
	o := buildOptions(opts)

	reference, err := loadGrids(referencePath, opts)
	if err != nil {
		return nil, err
	}
	candidate, err := loadGrids(candidatePath, opts)
	if err != nil {
		return nil, err
	}

	rep := &VerifyReport{}
	refByName := make(map[string]*Grid, len(reference))
	for _, g := range reference {
		refByName[g.Sheet] = g
		rep.ReferenceRows += g.NonEmptyRows()
	}
	for _, c := range candidate {
		rep.CandidateRows += c.NonEmptyRows()
		r, ok := refByName[c.Sheet]
		if !ok {
			rep.NewSheets = append(rep.NewSheets, c.Sheet)
			continue
		}
		rep.Compared = append(rep.Compared, c.Sheet)
		rep.Discrepancies = append(rep.Discrepancies, Verify(r, c, opts...)...)
	}
	sortDiscrepancies(rep.Discrepancies)

	if backupPath != "" {
		backup, err := loadGrids(backupPath, opts)
		if err != nil {
			return nil, err
		}
		for _, g := range backup {
			rep.BackupRows += g.NonEmptyRows()
		}
		content := VerifyContent(backup, candidate)
		rep.Content = &content
	}

	o.logger.Info("Verified workbook",
		zap.String("reference", referencePath), zap.String("candidate", candidatePath),
		zap.Int("sheets", len(rep.Compared)), zap.Int("discrepancies", len(rep.Discrepancies)))
	return rep, nil
}

// loadGrids reads every sheet of a workbook.
func loadGrids(path string, opts []Option) (grids []*Grid, err error) {
	wb, err := OpenWorkbook(path, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, wb.Close()) }()
	for _, sheet := range wb.SheetNames() {
		g, err := wb.ReadGrid(sheet)
		if err != nil {
			return nil, err
		}
		grids = append(grids, g)
	}
	return grids, nil
}

func sortDiscrepancies(ds []Discrepancy) {
	slices.SortStableFunc(ds, func(a, b Discrepancy) int {
		return cmp.Or(
			cmp.Compare(a.Sheet, b.Sheet),
			cmp.Compare(a.Kind, b.Kind),
			compareLocation(a.Location, b.Location),
		)
	})
}

// compareLocation orders column letters, row numbers and cell references
// naturally ("B" < "AA", "2" < "10", "B2" < "A10").
func compareLocation(a, b string) int {
	if ra, err := ParseCellRef(a); err == nil {
		if rb, err := ParseCellRef(b); err == nil {
			return cmp.Or(cmp.Compare(ra.Row, rb.Row), cmp.Compare(ra.Col, rb.Col))
		}
	}
	if na, err := strconv.Atoi(a); err == nil {
		if nb, err := strconv.Atoi(b); err == nil {
			return cmp.Compare(na, nb)
		}
	}
	return cmp.Or(cmp.Compare(len(a), len(b)), cmp.Compare(a, b))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
