package keepstyle

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// createStyledWorkbook builds a "Tests" sheet with a bold-blue header, four
// data rows, a merged title range, a frozen header, a tab color, a wide
// column B, a tall header row and a hyperlink.
func createStyledWorkbook(t *testing.T, name string) string {
	return writeWorkbook(t, name, func(f *excelize.File) {
		require.NoError(t, f.SetSheetName("Sheet1", "Tests"))
		setRows(t, f, "Tests", [][]any{
			{"ID", "Title", "Status"},
			{1, "Login works", "Pass"},
			{2, "Logout works", "Fail"},
			{3, "Search works", "Pass"},
			{4, "Filter works", "Pass"},
		})
		styleRange(t, f, "Tests", "A1", "C1", boldBlue)
		styleRange(t, f, "Tests", "A2", "C5", &excelize.Style{
			Border: []excelize.Border{{Type: "bottom", Style: 1, Color: "000000"}},
		})
		require.NoError(t, f.MergeCell("Tests", "E1", "F1"))
		require.NoError(t, f.SetPanes("Tests", &excelize.Panes{
			Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
		}))
		color := "FFFF0000"
		require.NoError(t, f.SetSheetProps("Tests", &excelize.SheetPropsOptions{TabColorRGB: &color}))
		require.NoError(t, f.SetColWidth("Tests", "B", "B", 32))
		require.NoError(t, f.SetRowHeight("Tests", 1, 28))
		require.NoError(t, f.SetCellHyperLink("Tests", "B2", "https://example.com/login", "External"))
	})
}

func TestOpenWorkbook_Missing(t *testing.T) {
	_, err := OpenWorkbook(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "file", nf.Kind)
}

func TestReadGrid(t *testing.T) {
	path := createStyledWorkbook(t, "tests.xlsx")
	g := readGrid(t, path, "Tests")

	assert.Equal(t, "Tests", g.Sheet)
	assert.Equal(t, 5, g.MaxRow)
	assert.GreaterOrEqual(t, g.MaxCol, 3)

	assert.Equal(t, "ID", g.Value(1, 1))
	assert.Equal(t, 2.0, g.Value(3, 1))
	assert.Equal(t, "Logout works", g.Value(3, 2))

	h := g.Style(1, 1)
	assert.True(t, h.Font.Bold)
	assert.Equal(t, "4472C4", h.Fill.Colors[0])
	assert.Equal(t, 1, g.Style(2, 3).Border.Bottom.Style)

	u, ok := g.Cell(2, 2)
	require.True(t, ok)
	require.NotNil(t, u.Hyperlink)
	assert.Equal(t, "https://example.com/login", u.Hyperlink.Target)
	assert.True(t, u.Hyperlink.External)

	m := g.Meta
	require.Len(t, m.Merges, 1)
	assert.Equal(t, "E1:F1", m.Merges[0].String())
	assert.Equal(t, "A2", m.Panes.FreezeCell())
	assert.Equal(t, "FF0000", m.TabColor)
	assert.Equal(t, 32.0, g.ColWidth(2))
	assert.Equal(t, 28.0, g.RowHeight(1))
	assert.Equal(t, 5, g.NonEmptyRows())
}

func TestReadGrid_MissingSheet(t *testing.T) {
	path := createStyledWorkbook(t, "tests.xlsx")
	wb, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer wb.Close()

	_, err = wb.ReadGrid("Nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyGrid_CopiesFormatting(t *testing.T) {
	src := readGrid(t, createStyledWorkbook(t, "src.xlsx"), "Tests")

	f := excelize.NewFile()
	wb := NewWorkbook(f)
	defer wb.Close()

	require.NoError(t, wb.ApplyGrid(src, ApplyAll))
	assert.True(t, wb.HasSheet("Tests"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	back, err := ReadWorkbook(&buf)
	require.NoError(t, err)
	defer back.Close()

	g, err := back.ReadGrid("Tests")
	require.NoError(t, err)

	assert.Equal(t, "Search works", g.Value(4, 2))
	assert.Equal(t, src.Style(1, 1), g.Style(1, 1))
	assert.Equal(t, src.Style(5, 3), g.Style(5, 3))
	assert.Equal(t, "A2", g.Meta.Panes.FreezeCell())
	assert.Equal(t, "FF0000", g.Meta.TabColor)
	assert.Len(t, g.Meta.Merges, 1)
	assert.Equal(t, 32.0, g.ColWidth(2))
	assert.Equal(t, 28.0, g.RowHeight(1))
	assert.Empty(t, Verify(src, g))
}

func TestApplyGrid_StylesOnlyKeepsValues(t *testing.T) {
	path := writeWorkbook(t, "plain.xlsx", func(f *excelize.File) {
		setRows(t, f, "Sheet1", [][]any{{"keep", "me"}})
	})
	wb, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer wb.Close()

	g := NewGrid("Sheet1")
	g.Set(StyledUnit{Ref: CellRef{Row: 1, Col: 1}, Value: "overwrite", Style: headerStyle})
	require.NoError(t, wb.ApplyGrid(g, ApplyStyles))

	v, err := wb.File().GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "keep", v)

	back, err := wb.ReadGrid("Sheet1")
	require.NoError(t, err)
	assert.True(t, back.Style(1, 1).Font.Bold)
	assert.Equal(t, "0000FF", back.Style(1, 1).Font.Color)
}

func TestWorkbookSaveAs(t *testing.T) {
	path := createStyledWorkbook(t, "tests.xlsx")
	wb, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer wb.Close()

	out := filepath.Join(t.TempDir(), "copy.xlsx")
	require.NoError(t, wb.SaveAs(out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}
