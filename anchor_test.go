package keepstyle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHeading(t *testing.T) {
	assert.True(t, IsHeading("3. New Bugs / QA Notes Identified"))
	assert.True(t, IsHeading("  12.Extra"))
	assert.False(t, IsHeading("Bug 3. found"))
	assert.False(t, IsHeading("3 New Bugs"))
	assert.False(t, IsHeading(""))
}

func TestFindSection(t *testing.T) {
	d := parseDocx(t, buildDocx(t, []para{
		{text: "Intro"},
		{text: "1. First"},
		{text: "a"},
		{text: "b"},
		{text: " 2. Second "},
		{text: "3. Third"},
		{text: "c"},
	}, false))

	sec, err := FindSection(d, "1. First")
	require.NoError(t, err)
	assert.Equal(t, Section{Heading: "1. First", Start: 1, End: 4}, sec)
	assert.Equal(t, 2, sec.Body())

	sec, err = FindSection(d, "2. Second")
	require.NoError(t, err)
	assert.Equal(t, 0, sec.Body())

	sec, err = FindSection(d, "3. Third")
	require.NoError(t, err)
	assert.Equal(t, 7, sec.End, "last section runs to the end of the document")

	_, err = FindSection(d, "4. Missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSections(t *testing.T) {
	d := parseDocx(t, buildDocx(t, reportParagraphs(), false))
	secs := Sections(d)
	require.Len(t, secs, len(ReportSections))
	for i, s := range secs {
		assert.Equal(t, ReportSections[i], s.Heading)
	}
	assert.Equal(t, 1, secs[0].Body())
	last := secs[len(secs)-1]
	assert.Equal(t, len(d.Paragraphs()), last.End)
	assert.Equal(t, 3, last.Body(), "placeholder and sign-off belong to the last section")
}
