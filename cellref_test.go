package keepstyle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCellRef(t *testing.T) {
	tests := []struct {
		in   string
		want CellRef
	}{
		{"A1", CellRef{Row: 1, Col: 1}},
		{"b5", CellRef{Row: 5, Col: 2}},
		{"$AA$10", CellRef{Row: 10, Col: 27}},
		{" Z3 ", CellRef{Row: 3, Col: 26}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCellRef(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "A", "12", "A0", "1A", "A-1"} {
		_, err := ParseCellRef(bad)
		assert.Error(t, err, bad)
	}
}

func TestColumnNames(t *testing.T) {
	for col, name := range map[int]string{1: "A", 26: "Z", 27: "AA", 52: "AZ", 703: "AAA"} {
		assert.Equal(t, name, ColToName(col))
		n, err := NameToCol(name)
		require.NoError(t, err)
		assert.Equal(t, col, n)
	}
	assert.Empty(t, ColToName(0))
	_, err := NameToCol("A1")
	assert.Error(t, err)
}

func TestRangeRef(t *testing.T) {
	r, err := ParseRangeRef("B2:D4")
	require.NoError(t, err)
	assert.Equal(t, "B2:D4", r.String())
	assert.True(t, r.Contains(CellRef{Row: 3, Col: 3}))
	assert.True(t, r.Contains(CellRef{Row: 4, Col: 4}))
	assert.False(t, r.Contains(CellRef{Row: 1, Col: 3}))
	assert.False(t, r.Contains(CellRef{Row: 3, Col: 5}))

	single, err := ParseRangeRef("C7")
	require.NoError(t, err)
	assert.Equal(t, single.First, single.Last)

	_, err = ParseRangeRef("A1:?")
	assert.Error(t, err)
}

func TestHyperlinkKind(t *testing.T) {
	assert.True(t, NewHyperlink("https://example.com/x").External)
	assert.True(t, NewHyperlink("mailto:qa@example.com").External)
	assert.False(t, NewHyperlink("Sheet2!A1").External)
	assert.Equal(t, "Location", NewHyperlink("Sheet2!A1").linkType())
}
