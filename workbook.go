package keepstyle

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Workbook wraps an excelize file and converts between worksheets and Grids.
type Workbook struct {
	path string
	file *excelize.File
	log  *zap.Logger

	descriptors map[int]StyleDescriptor // style index → descriptor, read side
	styleIDs    map[StyleDescriptor]int // descriptor → style index, write side
}

// OpenWorkbook opens an xlsx file. Missing files yield a NotFoundError.
func OpenWorkbook(path string, opts ...Option) (*Workbook, error) {
	o := buildOptions(opts)
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, ioErr("open workbook", path, err)
	}
	return newWorkbook(f, path, o.logger), nil
}

// ReadWorkbook reads an xlsx workbook from r.
func ReadWorkbook(r io.Reader, opts ...Option) (*Workbook, error) {
	o := buildOptions(opts)
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &IOError{Op: "read workbook", Path: "<reader>", Err: err}
	}
	return newWorkbook(f, "", o.logger), nil
}

// NewWorkbook wraps an already opened excelize file.
func NewWorkbook(f *excelize.File) *Workbook {
	return newWorkbook(f, f.Path, zap.NewNop())
}

func newWorkbook(f *excelize.File, path string, log *zap.Logger) *Workbook {
	return &Workbook{
		path:        path,
		file:        f,
		log:         log,
		descriptors: make(map[int]StyleDescriptor),
		styleIDs:    make(map[StyleDescriptor]int),
	}
}

// File exposes the underlying excelize file.
func (w *Workbook) File() *excelize.File { return w.file }

// Path returns the path the workbook was opened from, if any.
func (w *Workbook) Path() string { return w.path }

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// SheetNames returns sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// HasSheet reports whether a sheet with the exact name exists.
func (w *Workbook) HasSheet(name string) bool {
	return slices.Contains(w.file.GetSheetList(), name)
}

// SaveAs writes the workbook to path in one step.
func (w *Workbook) SaveAs(path string) error {
	return writeAtomic(path, func(out io.Writer) error {
		return w.file.Write(out)
	})
}

// ReadGrid loads a whole sheet: every cell inside the sheet's extent with its
// value, formula, resolved style and hyperlink, plus the sheet metadata.
func (w *Workbook) ReadGrid(sheet string) (*Grid, error) {
	if !w.HasSheet(sheet) {
		return nil, &NotFoundError{Kind: "sheet", Name: sheet}
	}
	maxRow, maxCol, err := w.extent(sheet)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	g := NewGrid(sheet)
	for row := 1; row <= maxRow; row++ {
		for col := 1; col <= maxCol; col++ {
			u, err := w.readUnit(sheet, CellRef{Row: row, Col: col})
			if err != nil {
				return nil, fmt.Errorf("sheet %q cell %s: %w", sheet, CellRef{Row: row, Col: col}, err)
			}
			g.Set(u)
		}
	}
	g.MaxRow, g.MaxCol = maxRow, maxCol

	if err := w.readMeta(g); err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	w.log.Debug("Read sheet",
		zap.String("sheet", sheet), zap.Int("rows", maxRow), zap.Int("cols", maxCol),
		zap.Int("merges", len(g.Meta.Merges)))
	return g, nil
}

// extent returns the larger of the populated row/column span and the
// sheet's declared dimension.
func (w *Workbook) extent(sheet string) (int, int, error) {
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return 0, 0, err
	}
	maxRow, maxCol := len(rows), 0
	for _, r := range rows {
		maxCol = max(maxCol, len(r))
	}

	dim, err := w.file.GetSheetDimension(sheet)
	if err != nil {
		return 0, 0, err
	}
	if dim == "" || (!strings.Contains(dim, ":") && maxRow == 0) {
		return maxRow, maxCol, nil
	}
	parts := strings.Split(dim, ":")
	col, row, err := excelize.CellNameToCoordinates(parts[len(parts)-1])
	if err != nil {
		return maxRow, maxCol, nil
	}
	return max(maxRow, row), max(maxCol, col), nil
}

func (w *Workbook) readUnit(sheet string, ref CellRef) (StyledUnit, error) {
	cell := ref.String()
	u := StyledUnit{Ref: ref}

	val, err := w.cellValue(sheet, cell)
	if err != nil {
		return u, err
	}
	u.Value = val

	if u.Formula, err = w.file.GetCellFormula(sheet, cell); err != nil {
		return u, err
	}

	styleID, err := w.file.GetCellStyle(sheet, cell)
	if err != nil {
		return u, err
	}
	if u.Style, err = w.descriptor(styleID); err != nil {
		return u, err
	}

	ok, target, err := w.file.GetCellHyperLink(sheet, cell)
	if err != nil {
		return u, err
	}
	if ok && target != "" {
		u.Hyperlink = NewHyperlink(target)
	}
	return u, nil
}

// cellValue returns the typed raw value of a cell: float64, bool, string or nil.
func (w *Workbook) cellValue(sheet, cell string) (any, error) {
	raw, err := w.file.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil || raw == "" {
		return nil, err
	}
	typ, err := w.file.GetCellType(sheet, cell)
	if err != nil {
		return nil, err
	}
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n, nil
		}
	}
	return raw, nil
}

// descriptor resolves a style index of this workbook.
func (w *Workbook) descriptor(styleID int) (StyleDescriptor, error) {
	if d, ok := w.descriptors[styleID]; ok {
		return d, nil
	}
	s, err := w.file.GetStyle(styleID)
	if err != nil {
		return StyleDescriptor{}, fmt.Errorf("style %d: %w", styleID, err)
	}
	d := DescriptorFromExcelize(s)
	w.descriptors[styleID] = d
	return d, nil
}

// styleID registers a descriptor in this workbook, reusing earlier registrations.
func (w *Workbook) styleID(d StyleDescriptor) (int, error) {
	if id, ok := w.styleIDs[d]; ok {
		return id, nil
	}
	id, err := w.file.NewStyle(d.Excelize())
	if err != nil {
		return 0, fmt.Errorf("register style: %w", err)
	}
	w.styleIDs[d] = id
	w.descriptors[id] = d
	return id, nil
}

func (w *Workbook) readMeta(g *Grid) error {
	sheet := g.Sheet
	m := &g.Meta

	merged, err := w.file.GetMergeCells(sheet, true)
	if err != nil {
		return fmt.Errorf("merged cells: %w", err)
	}
	for _, mc := range merged {
		r, err := ParseRangeRef(mc.GetStartAxis() + ":" + mc.GetEndAxis())
		if err != nil {
			return err
		}
		m.Merges = append(m.Merges, r)
	}

	panes, err := w.file.GetPanes(sheet)
	if err != nil {
		return fmt.Errorf("panes: %w", err)
	}
	m.Panes = Panes{
		Freeze:      panes.Freeze,
		Split:       !panes.Freeze && (panes.XSplit > 0 || panes.YSplit > 0),
		XSplit:      panes.XSplit,
		YSplit:      panes.YSplit,
		TopLeftCell: panes.TopLeftCell,
		ActivePane:  panes.ActivePane,
		Selection:   panes.Selection,
	}

	props, err := w.file.GetSheetProps(sheet)
	if err != nil {
		return fmt.Errorf("sheet properties: %w", err)
	}
	m.TabColor = tabColorOf(props)
	if props.DefaultColWidth != nil && *props.DefaultColWidth > 0 {
		m.DefaultColWidth = *props.DefaultColWidth
	}
	if props.CustomHeight != nil && *props.CustomHeight && props.DefaultRowHeight != nil {
		m.DefaultRowHeight = *props.DefaultRowHeight
	}

	layout, err := w.file.GetPageLayout(sheet)
	if err != nil {
		return fmt.Errorf("page layout: %w", err)
	}
	if layout.Orientation != nil {
		m.PageSetup.Orientation = *layout.Orientation
	}
	if layout.Size != nil {
		m.PageSetup.PaperSize = *layout.Size
	}
	m.PageSetup.FitToHeight = layout.FitToHeight
	m.PageSetup.FitToWidth = layout.FitToWidth

	margins, err := w.file.GetPageMargins(sheet)
	if err != nil {
		return fmt.Errorf("page margins: %w", err)
	}
	m.Margins = Margins{
		Left:   deref(margins.Left),
		Right:  deref(margins.Right),
		Top:    deref(margins.Top),
		Bottom: deref(margins.Bottom),
		Header: deref(margins.Header),
		Footer: deref(margins.Footer),
	}

	for col := 1; col <= g.MaxCol; col++ {
		name := ColToName(col)
		width, err := w.file.GetColWidth(sheet, name)
		if err != nil {
			return fmt.Errorf("column %s width: %w", name, err)
		}
		visible, err := w.file.GetColVisible(sheet, name)
		if err != nil {
			return fmt.Errorf("column %s visibility: %w", name, err)
		}
		if width != m.DefaultColWidth || !visible {
			m.ColWidths[col] = ColDim{Width: width, Hidden: !visible}
		}
	}
	for row := 1; row <= g.MaxRow; row++ {
		height, err := w.file.GetRowHeight(sheet, row)
		if err != nil {
			return fmt.Errorf("row %d height: %w", row, err)
		}
		visible, err := w.file.GetRowVisible(sheet, row)
		if err != nil {
			return fmt.Errorf("row %d visibility: %w", row, err)
		}
		if height != m.DefaultRowHeight || !visible {
			m.RowHeights[row] = RowDim{Height: height, Hidden: !visible}
		}
	}

	formats, err := w.file.GetConditionalFormats(sheet)
	if err != nil {
		return fmt.Errorf("conditional formats: %w", err)
	}
	for _, rng := range slices.Sorted(maps.Keys(formats)) {
		cf := ConditionalFormat{Range: rng, Rules: formats[rng]}
		for _, rule := range cf.Rules {
			var style *excelize.Style
			if rule.Format != nil {
				if style, err = w.file.GetConditionalStyle(*rule.Format); err != nil {
					return fmt.Errorf("conditional style %d: %w", *rule.Format, err)
				}
			}
			cf.Styles = append(cf.Styles, style)
		}
		m.ConditionalFormats = append(m.ConditionalFormats, cf)
	}
	return nil
}

// ApplyMode selects what ApplyGrid writes.
type ApplyMode int

const (
	// ApplyStyles writes styles, donated hyperlinks and sheet metadata,
	// leaving the values already in the sheet untouched.
	ApplyStyles ApplyMode = iota
	// ApplyAll also writes every cell value and formula.
	ApplyAll
)

// ApplyGrid writes a grid onto the sheet of the same name, creating the
// sheet when it does not exist. Sheet metadata replaces what the sheet had.
func (w *Workbook) ApplyGrid(g *Grid, mode ApplyMode) error {
	sheet := g.Sheet
	if !w.HasSheet(sheet) {
		if _, err := w.file.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %q: %w", sheet, err)
		}
	}

	units := g.Units()
	if mode == ApplyAll {
		for _, u := range units {
			if err := w.writeValue(sheet, u); err != nil {
				return fmt.Errorf("sheet %q cell %s: %w", sheet, u.Ref, err)
			}
		}
	}
	if err := w.writeStyles(sheet, units); err != nil {
		return fmt.Errorf("sheet %q: %w", sheet, err)
	}
	for _, u := range units {
		if u.Hyperlink == nil {
			continue
		}
		cell := u.Ref.String()
		ok, target, err := w.file.GetCellHyperLink(sheet, cell)
		if err != nil {
			return fmt.Errorf("sheet %q cell %s: %w", sheet, cell, err)
		}
		if ok && target == u.Hyperlink.Target {
			continue
		}
		if err := w.file.SetCellHyperLink(sheet, cell, u.Hyperlink.Target, u.Hyperlink.linkType()); err != nil {
			return fmt.Errorf("sheet %q cell %s hyperlink: %w", sheet, cell, err)
		}
	}
	if err := w.writeMeta(sheet, g.Meta); err != nil {
		return fmt.Errorf("sheet %q: %w", sheet, err)
	}
	return nil
}

func (w *Workbook) writeValue(sheet string, u StyledUnit) error {
	cell := u.Ref.String()
	if err := w.file.SetCellValue(sheet, cell, u.Value); err != nil {
		return err
	}
	if u.Formula != "" {
		return w.file.SetCellFormula(sheet, cell, u.Formula)
	}
	return nil
}

// writeStyles sets cell styles, skipping cells that already carry the
// wanted style.
func (w *Workbook) writeStyles(sheet string, units []StyledUnit) error {
	for _, u := range units {
		cell := u.Ref.String()
		current, err := w.file.GetCellStyle(sheet, cell)
		if err != nil {
			return err
		}
		if d, err := w.descriptor(current); err == nil && d == u.Style {
			continue
		}
		id, err := w.styleID(u.Style)
		if err != nil {
			return err
		}
		if err := w.file.SetCellStyle(sheet, cell, cell, id); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workbook) writeMeta(sheet string, m SheetMeta) error {
	existing, err := w.file.GetMergeCells(sheet, true)
	if err != nil {
		return fmt.Errorf("merged cells: %w", err)
	}
	for _, mc := range existing {
		if err := w.file.UnmergeCell(sheet, mc.GetStartAxis(), mc.GetEndAxis()); err != nil {
			return fmt.Errorf("unmerge %s:%s: %w", mc.GetStartAxis(), mc.GetEndAxis(), err)
		}
	}
	for _, r := range m.Merges {
		if err := w.file.MergeCell(sheet, r.First.String(), r.Last.String()); err != nil {
			return fmt.Errorf("merge %s: %w", r, err)
		}
	}

	if err := w.file.SetPanes(sheet, &excelize.Panes{
		Freeze:      m.Panes.Freeze,
		Split:       m.Panes.Split,
		XSplit:      m.Panes.XSplit,
		YSplit:      m.Panes.YSplit,
		TopLeftCell: m.Panes.TopLeftCell,
		ActivePane:  m.Panes.ActivePane,
		Selection:   m.Panes.Selection,
	}); err != nil {
		return fmt.Errorf("panes: %w", err)
	}

	// A sheet without a tab color is left as it is; excelize cannot remove one.
	if m.TabColor != "" {
		if err := w.file.SetSheetProps(sheet, tabColorProps(m.TabColor)); err != nil {
			return fmt.Errorf("tab color: %w", err)
		}
	}

	layout := &excelize.PageLayoutOptions{
		FitToHeight: m.PageSetup.FitToHeight,
		FitToWidth:  m.PageSetup.FitToWidth,
	}
	if m.PageSetup.Orientation != "" {
		orientation := m.PageSetup.Orientation
		layout.Orientation = &orientation
	}
	if m.PageSetup.PaperSize > 0 {
		size := m.PageSetup.PaperSize
		layout.Size = &size
	}
	if err := w.file.SetPageLayout(sheet, layout); err != nil {
		return fmt.Errorf("page layout: %w", err)
	}

	mg := m.Margins
	if err := w.file.SetPageMargins(sheet, &excelize.PageLayoutMarginsOptions{
		Left: &mg.Left, Right: &mg.Right, Top: &mg.Top,
		Bottom: &mg.Bottom, Header: &mg.Header, Footer: &mg.Footer,
	}); err != nil {
		return fmt.Errorf("page margins: %w", err)
	}

	for _, col := range slices.Sorted(maps.Keys(m.ColWidths)) {
		d, name := m.ColWidths[col], ColToName(col)
		if err := w.file.SetColWidth(sheet, name, name, d.Width); err != nil {
			return fmt.Errorf("column %s width: %w", name, err)
		}
		if err := w.file.SetColVisible(sheet, name, !d.Hidden); err != nil {
			return fmt.Errorf("column %s visibility: %w", name, err)
		}
	}
	for _, row := range slices.Sorted(maps.Keys(m.RowHeights)) {
		d := m.RowHeights[row]
		if err := w.file.SetRowHeight(sheet, row, d.Height); err != nil {
			return fmt.Errorf("row %d height: %w", row, err)
		}
		if err := w.file.SetRowVisible(sheet, row, !d.Hidden); err != nil {
			return fmt.Errorf("row %d visibility: %w", row, err)
		}
	}

	for _, cf := range m.ConditionalFormats {
		if err := w.writeConditionalFormat(sheet, cf); err != nil {
			return fmt.Errorf("conditional format %s: %w", cf.Range, err)
		}
	}
	return nil
}

// writeConditionalFormat replaces the rules on cf.Range, registering each
// rule's differential style in this workbook first.
func (w *Workbook) writeConditionalFormat(sheet string, cf ConditionalFormat) error {
	if err := w.file.UnsetConditionalFormat(sheet, cf.Range); err != nil {
		return err
	}
	rules := slices.Clone(cf.Rules)
	for i := range rules {
		rules[i].Format = nil
		if i >= len(cf.Styles) || cf.Styles[i] == nil {
			continue
		}
		id, err := w.file.NewConditionalStyle(cf.Styles[i])
		if err != nil {
			return err
		}
		rules[i].Format = &id
	}
	return w.file.SetConditionalFormat(sheet, cf.Range, rules)
}

// tabColorOf encodes a sheet's tab color the way StyleDescriptor encodes colors.
func tabColorOf(p excelize.SheetPropsOptions) string {
	var (
		rgb     string
		indexed int
		tint    float64
	)
	if p.TabColorRGB != nil {
		rgb = *p.TabColorRGB
	}
	if p.TabColorIndexed != nil {
		indexed = *p.TabColorIndexed
	}
	if p.TabColorTint != nil {
		tint = *p.TabColorTint
	}
	return encodeColor(rgb, indexed, p.TabColorTheme, tint)
}

func tabColorProps(color string) *excelize.SheetPropsOptions {
	rgb, indexed, theme, tint := decodeColor(color)
	opts := &excelize.SheetPropsOptions{}
	switch {
	case rgb != "":
		argb := "FF" + rgb
		opts.TabColorRGB = &argb
	case theme != nil:
		opts.TabColorTheme = theme
		opts.TabColorTint = &tint
	default:
		opts.TabColorIndexed = &indexed
	}
	return opts
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
