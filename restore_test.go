package keepstyle

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// createEditedWorkbook builds the content-only copy of the styled workbook:
// the same "Tests" sheet with three rows appended, plus a "Notes" sheet the
// original does not have. No formatting is applied.
func createEditedWorkbook(t *testing.T, name string) string {
	return writeWorkbook(t, name, func(f *excelize.File) {
		require.NoError(t, f.SetSheetName("Sheet1", "Tests"))
		rows := [][]any{{"ID", "Title", "Status"}}
		for i := 1; i <= 6; i++ {
			rows = append(rows, []any{i, fmt.Sprintf("Case %d", i), "Pass"})
		}
		setRows(t, f, "Tests", rows)
		_, err := f.NewSheet("Notes")
		require.NoError(t, err)
		setRows(t, f, "Notes", [][]any{{"Note"}, {"retest filters"}})
	})
}

func TestRestoreOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("dir", "Tests_TEMP.xlsx"), RestoreOutputPath(filepath.Join("dir", "Tests.xlsx"), "_TEMP"))
	assert.Equal(t, "book.v2_copy.xlsx", RestoreOutputPath("book.v2.xlsx", "_copy"))
}

func TestRestoreWorkbook(t *testing.T) {
	original := createStyledWorkbook(t, "Tests_backup.xlsx")
	current := createEditedWorkbook(t, "Tests.xlsx")
	before, err := os.ReadFile(current)
	require.NoError(t, err)

	rep, err := RestoreWorkbook(original, current)
	require.NoError(t, err)
	assert.Equal(t, RestoreOutputPath(current, "_TEMP"), rep.OutputPath)

	require.Len(t, rep.Sheets, 2)
	tests := rep.Sheets[0]
	assert.Equal(t, "Tests", tests.Sheet)
	assert.Equal(t, RestoreMatched, tests.Mode)
	assert.Equal(t, 7, tests.Rows)
	assert.Equal(t, 2, tests.AppendedRows)
	assert.Equal(t, 7, tests.NonEmptyRows)

	notes := rep.Sheets[1]
	assert.Equal(t, RestoreFallback, notes.Mode)
	assert.Equal(t, "Tests", notes.Source)
	assert.Equal(t, 2, notes.NonEmptyRows)

	after, err := os.ReadFile(current)
	require.NoError(t, err)
	assert.Equal(t, before, after, "current workbook is not modified")

	ref := readGrid(t, original, "Tests")
	out := readGrid(t, rep.OutputPath, "Tests")
	assert.Equal(t, "Case 6", out.Value(7, 2))
	assert.Equal(t, ref.Style(1, 1), out.Style(1, 1))
	for row := 2; row <= 7; row++ {
		src := row
		if row > ref.MaxRow {
			src = 2
		}
		want := ref.Style(src, 3)
		assert.Equal(t, want, out.Style(row, 3), "row %d", row)
	}
	assert.Equal(t, "A2", out.Meta.Panes.FreezeCell())
	assert.Equal(t, "FF0000", out.Meta.TabColor)
	assert.Equal(t, 32.0, out.ColWidth(2))

	n := readGrid(t, rep.OutputPath, "Notes")
	assert.True(t, n.Style(1, 1).Font.Bold)
	assert.Equal(t, 1, n.Style(2, 1).Border.Bottom.Style)
}

// createRowStyledWorkbook builds a four-row "Tests" sheet where the header
// and each data row carry a different style.
func createRowStyledWorkbook(t *testing.T, name string) string {
	return writeWorkbook(t, name, func(f *excelize.File) {
		require.NoError(t, f.SetSheetName("Sheet1", "Tests"))
		setRows(t, f, "Tests", [][]any{
			{"ID", "Title", "Status"},
			{1, "Case 1", "Pass"},
			{2, "Case 2", "Pass"},
			{3, "Case 3", "Pass"},
		})
		styleRange(t, f, "Tests", "A1", "C1", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
		styleRange(t, f, "Tests", "A2", "C2", boldBlue)
		styleRange(t, f, "Tests", "A3", "C3", &excelize.Style{Alignment: &excelize.Alignment{Horizontal: "center"}})
		styleRange(t, f, "Tests", "A4", "C4", &excelize.Style{Font: &excelize.Font{Italic: true}})
	})
}

func TestRestoreWorkbook_AppendedRowsFollowFirstDataRow(t *testing.T) {
	original := createRowStyledWorkbook(t, "Tests_backup.xlsx")
	current := createEditedWorkbook(t, "Tests.xlsx")

	rep, err := RestoreWorkbook(original, current)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Sheets[0].AppendedRows)

	ref := readGrid(t, original, "Tests")
	require.NotEqual(t, ref.Style(2, 1), ref.Style(3, 1))
	require.NotEqual(t, ref.Style(2, 1), ref.Style(4, 1))

	out := readGrid(t, rep.OutputPath, "Tests")
	for row := 1; row <= 7; row++ {
		src := row
		if row > 4 {
			src = 2
		}
		for col := 1; col <= 3; col++ {
			assert.Equal(t, ref.Style(src, col), out.Style(row, col), "row %d col %d", row, col)
		}
	}
	assert.True(t, out.Style(6, 2).Font.Bold)
	assert.False(t, out.Style(6, 2).Font.Italic)
	assert.Equal(t, "Case 6", out.Value(7, 2))
	assert.Equal(t, "center", out.Style(3, 1).Alignment.Horizontal)
}

func TestRestoreWorkbook_ExplicitOutput(t *testing.T) {
	original := createStyledWorkbook(t, "orig.xlsx")
	current := createEditedWorkbook(t, "cur.xlsx")
	out := filepath.Join(t.TempDir(), "restored.xlsx")

	rep, err := RestoreWorkbook(original, current, WithOutputPath(out), WithConditionalFormats(false))
	require.NoError(t, err)
	assert.Equal(t, out, rep.OutputPath)
	_, err = os.Stat(out)
	assert.NoError(t, err)
}

func TestRestoreWorkbook_RefusesToOverwriteCurrent(t *testing.T) {
	original := createStyledWorkbook(t, "orig.xlsx")
	current := createEditedWorkbook(t, "cur.xlsx")

	_, err := RestoreWorkbook(original, current, WithOutputPath(current))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRestoreWorkbook_MissingOriginal(t *testing.T) {
	current := createEditedWorkbook(t, "cur.xlsx")
	_, err := RestoreWorkbook(filepath.Join(t.TempDir(), "missing.xlsx"), current)
	assert.ErrorIs(t, err, ErrNotFound)
}
