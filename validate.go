package keepstyle

import (
	"fmt"

	"go.uber.org/multierr"
)

// ReportSections are the numbered headings every report template must hold,
// in document order.
var ReportSections = []string{
	"1. Product and Environment Tested",
	"2. Areas Covered During Testing",
	"3. New Bugs / QA Notes Identified",
	"4. Bug Fixes Verified",
	"5. Requirements / Stories Confirmed",
	"6. Pending / Next Steps",
	"7. Testing Status",
}

// ValidateTemplateStructure checks that every heading is present. The
// returned ValidationError lists all missing headings, not only the first.
func ValidateTemplateStructure(doc *Document, headings []string) error {
	paras := doc.Paragraphs()
	var missing []string
	for _, h := range headings {
		if _, err := findSection(paras, h); err != nil {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Subject: "template", Reason: "missing required sections", Items: missing}
	}
	return nil
}

// ValidateLineFormats compiles every expression of every line template and
// returns all syntax errors combined.
func ValidateLineFormats(f LineFormats) error {
	var err error
	for _, t := range []struct{ name, tmpl string }{
		{"bug", f.Bug},
		{"bug_description", f.BugDescription},
		{"fix", f.Fix},
		{"requirement", f.Requirement},
	} {
		if cerr := CheckExpressionSyntax(t.tmpl); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("line format %s: %w", t.name, cerr))
		}
	}
	return err
}
