package keepstyle

import (
	"fmt"
	"strconv"
	"strings"
)

// CellRef addresses a grid cell. Row and Col are 1-based, matching the
// spreadsheet's own numbering.
type CellRef struct {
	Row int
	Col int
}

// ParseCellRef parses a reference like "B5" or "$B$5".
func ParseCellRef(s string) (CellRef, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "$", "")
	if s == "" {
		return CellRef{}, fmt.Errorf("empty cell reference")
	}
	i := 0
	for i < len(s) && isAlpha(s[i]) {
		i++
	}
	if i == 0 || i == len(s) {
		return CellRef{}, fmt.Errorf("invalid cell reference: %q", s)
	}
	col, err := NameToCol(s[:i])
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}
	row, err := strconv.Atoi(s[i:])
	if err != nil || row < 1 {
		return CellRef{}, fmt.Errorf("invalid row in cell reference: %q", s)
	}
	return CellRef{Row: row, Col: col}, nil
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// String formats the reference as "B5".
func (c CellRef) String() string {
	return ColToName(c.Col) + strconv.Itoa(c.Row)
}

// ColToName converts a 1-based column number to its letters.
// 1→"A", 26→"Z", 27→"AA"
func ColToName(col int) string {
	if col < 1 {
		return ""
	}
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

// NameToCol converts column letters to a 1-based column number.
func NameToCol(name string) (int, error) {
	name = strings.ToUpper(name)
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	col := 0
	for _, ch := range name {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("invalid column name: %q", name)
		}
		col = col*26 + int(ch-'A') + 1
	}
	return col, nil
}

// RangeRef is a rectangular cell range such as a merged region.
type RangeRef struct {
	First CellRef
	Last  CellRef
}

// ParseRangeRef parses "A1:C5". A single cell yields a one-cell range.
func ParseRangeRef(s string) (RangeRef, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	first, err := ParseCellRef(parts[0])
	if err != nil {
		return RangeRef{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	if len(parts) == 1 {
		return RangeRef{First: first, Last: first}, nil
	}
	last, err := ParseCellRef(parts[1])
	if err != nil {
		return RangeRef{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	return RangeRef{First: first, Last: last}, nil
}

// String formats the range as "A1:C5".
func (r RangeRef) String() string {
	return r.First.String() + ":" + r.Last.String()
}

// Contains reports whether ref lies inside the range.
func (r RangeRef) Contains(ref CellRef) bool {
	return ref.Row >= r.First.Row && ref.Row <= r.Last.Row &&
		ref.Col >= r.First.Col && ref.Col <= r.Last.Col
}
