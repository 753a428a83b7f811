package keepstyle

import (
	"fmt"
	"maps"
	"slices"

	"github.com/xuri/excelize/v2"
)

// Built-in sheet defaults used when a worksheet declares none.
const (
	DefaultColWidth  = 9.140625
	DefaultRowHeight = 15.0
)

// StyledUnit is one grid cell: its content, its style and an optional link.
type StyledUnit struct {
	Ref       CellRef
	Value     any // nil when the cell is empty
	Formula   string
	Style     StyleDescriptor
	Hyperlink *Hyperlink
}

// IsEmpty reports whether the cell carries no content.
func (u StyledUnit) IsEmpty() bool {
	if u.Formula != "" {
		return false
	}
	switch v := u.Value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}

// ColDim is an explicitly sized column.
type ColDim struct {
	Width  float64
	Hidden bool
}

// RowDim is an explicitly sized row.
type RowDim struct {
	Height float64
	Hidden bool
}

// Panes describes frozen or split panes of a sheet.
type Panes struct {
	Freeze      bool
	Split       bool
	XSplit      int
	YSplit      int
	TopLeftCell string
	ActivePane  string
	Selection   []excelize.Selection
}

// FreezeCell returns the top-left unfrozen cell, or "" when nothing is frozen.
func (p Panes) FreezeCell() string {
	if !p.Freeze {
		return ""
	}
	return p.TopLeftCell
}

// PageSetup is the subset of page layout carried between sheets.
type PageSetup struct {
	Orientation string
	PaperSize   int
	FitToHeight *int
	FitToWidth  *int
}

// Margins are page margins in inches.
type Margins struct {
	Left, Right, Top, Bottom, Header, Footer float64
}

// ConditionalFormat is one range of conditional formatting rules. Styles
// holds the resolved differential style of each rule (nil when the rule has
// none) so the rules can be re-registered in another workbook.
type ConditionalFormat struct {
	Range  string
	Rules  []excelize.ConditionalFormatOptions
	Styles []*excelize.Style
}

// SheetMeta holds the sheet-level attributes that are not tied to one cell.
type SheetMeta struct {
	Merges             []RangeRef
	Panes              Panes
	TabColor           string
	PageSetup          PageSetup
	Margins            Margins
	ColWidths          map[int]ColDim
	RowHeights         map[int]RowDim
	ConditionalFormats []ConditionalFormat
	DefaultColWidth    float64
	DefaultRowHeight   float64
}

// Grid is a sheet held in memory: cells indexed by (row, col) plus sheet
// metadata. MaxRow and MaxCol are the declared extent.
type Grid struct {
	Sheet  string
	MaxRow int
	MaxCol int
	Meta   SheetMeta

	cells map[CellRef]StyledUnit
}

// NewGrid creates an empty grid for the named sheet.
func NewGrid(sheet string) *Grid {
	return &Grid{
		Sheet: sheet,
		Meta: SheetMeta{
			ColWidths:        make(map[int]ColDim),
			RowHeights:       make(map[int]RowDim),
			DefaultColWidth:  DefaultColWidth,
			DefaultRowHeight: DefaultRowHeight,
		},
		cells: make(map[CellRef]StyledUnit),
	}
}

// Set stores a cell, growing the extent to include it.
func (g *Grid) Set(u StyledUnit) {
	if u.Ref.Row < 1 || u.Ref.Col < 1 {
		panic(fmt.Sprintf("keepstyle: invalid cell position %d,%d", u.Ref.Row, u.Ref.Col))
	}
	g.cells[u.Ref] = u
	g.MaxRow = max(g.MaxRow, u.Ref.Row)
	g.MaxCol = max(g.MaxCol, u.Ref.Col)
}

// Cell returns the cell at (row, col) and whether the grid holds it.
func (g *Grid) Cell(row, col int) (StyledUnit, bool) {
	u, ok := g.cells[CellRef{Row: row, Col: col}]
	return u, ok
}

// Value returns the content at (row, col), or nil.
func (g *Grid) Value(row, col int) any {
	return g.cells[CellRef{Row: row, Col: col}].Value
}

// Style returns the style at (row, col); absent cells have the zero style.
func (g *Grid) Style(row, col int) StyleDescriptor {
	return g.cells[CellRef{Row: row, Col: col}].Style
}

// Units returns every stored cell in row-major order.
func (g *Grid) Units() []StyledUnit {
	units := slices.Collect(maps.Values(g.cells))
	slices.SortFunc(units, func(a, b StyledUnit) int {
		if a.Ref.Row != b.Ref.Row {
			return a.Ref.Row - b.Ref.Row
		}
		return a.Ref.Col - b.Ref.Col
	})
	return units
}

// ColWidth returns the width of a column, falling back to the sheet default.
func (g *Grid) ColWidth(col int) float64 {
	if d, ok := g.Meta.ColWidths[col]; ok {
		return d.Width
	}
	return g.Meta.DefaultColWidth
}

// RowHeight returns the height of a row, falling back to the sheet default.
func (g *Grid) RowHeight(row int) float64 {
	if d, ok := g.Meta.RowHeights[row]; ok {
		return d.Height
	}
	return g.Meta.DefaultRowHeight
}

// NonEmptyRows counts rows holding at least one non-empty cell.
func (g *Grid) NonEmptyRows() int {
	rows := make(map[int]struct{})
	for ref, u := range g.cells {
		if !u.IsEmpty() {
			rows[ref.Row] = struct{}{}
		}
	}
	return len(rows)
}

// Clone returns a deep copy. Hyperlinks are shared since they are never
// mutated in place.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		Sheet:  g.Sheet,
		MaxRow: g.MaxRow,
		MaxCol: g.MaxCol,
		Meta:   g.Meta.clone(),
		cells:  maps.Clone(g.cells),
	}
	if c.cells == nil {
		c.cells = make(map[CellRef]StyledUnit)
	}
	return c
}

func (m SheetMeta) clone() SheetMeta {
	c := m
	c.Merges = slices.Clone(m.Merges)
	c.Panes.Selection = slices.Clone(m.Panes.Selection)
	c.ColWidths = maps.Clone(m.ColWidths)
	if c.ColWidths == nil {
		c.ColWidths = make(map[int]ColDim)
	}
	c.RowHeights = maps.Clone(m.RowHeights)
	if c.RowHeights == nil {
		c.RowHeights = make(map[int]RowDim)
	}
	c.ConditionalFormats = slices.Clone(m.ConditionalFormats)
	return c
}
