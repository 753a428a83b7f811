package keepstyle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestValidateTemplateStructure(t *testing.T) {
	d := parseDocx(t, buildDocx(t, reportParagraphs(), false))
	assert.NoError(t, ValidateTemplateStructure(d, ReportSections))

	partial := parseDocx(t, buildDocx(t, []para{{text: ReportSections[0]}, {text: "x"}, {text: ReportSections[2]}}, false))
	err := ValidateTemplateStructure(partial, ReportSections)
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{ReportSections[1], ReportSections[3], ReportSections[4], ReportSections[5], ReportSections[6]}, verr.Items)
	assert.Contains(t, err.Error(), "missing required sections")
}

func TestValidateLineFormats(t *testing.T) {
	assert.NoError(t, ValidateLineFormats(DefaultLineFormats()))

	err := ValidateLineFormats(LineFormats{
		Bug:         "${title +}",
		Fix:         "${bug_id}",
		Requirement: "${story_id ==}",
	})
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "line format bug")
	assert.Contains(t, errs[1].Error(), "line format requirement")
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Subject: "report input", Reason: "missing required fields", Items: []string{"date", "status"}}
	assert.Equal(t, "report input: missing required fields: date, status", err.Error())
	assert.ErrorIs(t, err, ErrValidation)
}
