package keepstyle

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Restore modes of a sheet.
const (
	RestoreMatched  = "matched"  // styled after the same-named original sheet
	RestoreFallback = "fallback" // styled after the first original sheet
	RestoreDefault  = "default"  // no original sheet available; styles kept
)

// SheetRestore summarizes how one sheet was restored.
type SheetRestore struct {
	Sheet        string
	Mode         string
	Source       string // original sheet used as style source, if any
	Rows         int
	Cols         int
	AppendedRows int // rows past the original's extent styled from the template row
	NonEmptyRows int // counted on the written output
}

// RestoreReport is the result of RestoreWorkbook.
type RestoreReport struct {
	OriginalPath string
	CurrentPath  string
	OutputPath   string
	Sheets       []SheetRestore
}

// RestoreOutputPath returns the side-by-side output location for current:
// the same directory and extension with suffix appended to the file stem.
func RestoreOutputPath(current, suffix string) string {
	ext := filepath.Ext(current)
	return strings.TrimSuffix(current, ext) + suffix + ext
}

// RestoreWorkbook writes a copy of the workbook at currentPath whose sheets
// carry the formatting of the workbook at originalPath. Neither input is
// modified. The output goes to RestoreOutputPath(currentPath, "_TEMP")
// unless WithOutputPath or WithTempSuffix say otherwise.
func RestoreWorkbook(originalPath, currentPath string, opts ...Option) (rep *RestoreReport, err error) {
	o := buildOptions(opts)
	log := o.logger

	out := o.outputPath
	if out == "" {
		out = RestoreOutputPath(currentPath, o.tempSuffix)
	}
	if same, err := samePath(out, currentPath); err != nil || same {
		if err != nil {
			return nil, err
		}
		return nil, &ValidationError{Subject: "restore output", Reason: "must differ from the current workbook", Items: []string{out}}
	}

	original, err := OpenWorkbook(originalPath, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, original.Close()) }()

	current, err := OpenWorkbook(currentPath, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, current.Close()) }()

	rep = &RestoreReport{OriginalPath: originalPath, CurrentPath: currentPath, OutputPath: out}

	originalSheets := original.SheetNames()
	var fallback *Grid
	if len(originalSheets) > 0 {
		if fallback, err = original.ReadGrid(originalSheets[0]); err != nil {
			return nil, err
		}
	}

	for _, sheet := range current.SheetNames() {
		cur, err := current.ReadGrid(sheet)
		if err != nil {
			return nil, err
		}
		sr := SheetRestore{Sheet: sheet, Rows: cur.MaxRow, Cols: cur.MaxCol}

		var merged *Grid
		switch {
		case original.HasSheet(sheet):
			orig, err := original.ReadGrid(sheet)
			if err != nil {
				return nil, err
			}
			merged = MergeGrids(cur, orig)
			sr.Mode, sr.Source = RestoreMatched, sheet
			sr.AppendedRows = max(0, cur.MaxRow-orig.MaxRow)
		case fallback != nil:
			merged = MergeWithTemplate(cur, fallback)
			sr.Mode, sr.Source = RestoreFallback, fallback.Sheet
		default:
			merged = MergeGrids(cur, nil)
			sr.Mode = RestoreDefault
		}
		if !o.conditionalFormats {
			merged.Meta.ConditionalFormats = nil
		}

		if err := current.ApplyGrid(merged, ApplyStyles); err != nil {
			return nil, err
		}
		log.Info("Restored sheet formatting",
			zap.String("sheet", sheet), zap.String("mode", sr.Mode), zap.String("source", sr.Source),
			zap.Int("rows", sr.Rows), zap.Int("cols", sr.Cols), zap.Int("appended", sr.AppendedRows))
		rep.Sheets = append(rep.Sheets, sr)
	}

	if err := current.SaveAs(out); err != nil {
		return nil, err
	}
	log.Info("Saved restored workbook", zap.String("path", out))

	if err := countNonEmptyRows(out, rep, opts); err != nil {
		return nil, fmt.Errorf("re-read %s: %w", out, err)
	}
	return rep, nil
}

// countNonEmptyRows reopens the written workbook so the counts describe
// what actually landed on disk.
func countNonEmptyRows(path string, rep *RestoreReport, opts []Option) (err error) {
	wb, err := OpenWorkbook(path, opts...)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, wb.Close()) }()
	for i := range rep.Sheets {
		g, err := wb.ReadGrid(rep.Sheets[i].Sheet)
		if err != nil {
			return err
		}
		rep.Sheets[i].NonEmptyRows = g.NonEmptyRows()
	}
	return nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, ioErr("resolve", a, err)
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, ioErr("resolve", b, err)
	}
	return absA == absB, nil
}
