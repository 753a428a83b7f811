package keepstyle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInput = `
date: "6 November 2025"
tester:
  name: Jane Doe
product:
  name: Britannica Kids
  platforms: ["iOS 18 (iPhone 15)", "Android 15 (Pixel 8)"]
  roles_tested: [Student, Teacher]
areas_covered:
  - Login and logout
  - Search results
bugs:
  - title: Login crash
    severity: High
    description: App closes after entering the password
  - title: Typo on the home screen
  - Images load slowly on Android
bug_fixes:
  - title: Search freeze
    bug_id: BUG-12
  - Verified the logout redirect
requirements:
  - title: Export to PDF
    story_id: US-7
    status: Partially confirmed
status: Testing in progress
`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestParseReportInput(t *testing.T) {
	in, err := ParseReportInput([]byte(sampleInput))
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", in.Tester.Name)
	assert.Equal(t, []string{"Student", "Teacher"}, in.Product.RolesTested)
	require.Len(t, in.Bugs, 3)
	assert.False(t, in.Bugs[0].IsText())
	require.NotNil(t, in.Bugs[0].Description)
	assert.True(t, in.Bugs[2].IsText())
	assert.Equal(t, "Images load slowly on Android", in.Bugs[2].Text)
}

func TestParseReportInput_MissingFields(t *testing.T) {
	_, err := ParseReportInput([]byte("areas_covered: [x]\n"))
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"date", "product", "status"}, verr.Items)
}

func TestParseReportInput_BadYAML(t *testing.T) {
	_, err := ParseReportInput([]byte("date: [unclosed"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBuildSections(t *testing.T) {
	in, err := ParseReportInput([]byte(sampleInput))
	require.NoError(t, err)

	secs, err := BuildSections(in)
	require.NoError(t, err)
	require.Len(t, secs, 7)

	assert.Equal(t, []string{
		"Product: Britannica Kids",
		"Environments:",
		"iOS 18 (iPhone 15)",
		"Android 15 (Pixel 8)",
		"Roles Tested: Student, Teacher",
	}, secs[0].Lines)
	assert.Equal(t, Plain, secs[0].Style)

	assert.Equal(t, Bulleted, secs[1].Style)
	assert.Equal(t, []string{"Login and logout", "Search results"}, secs[1].Lines)

	assert.Equal(t, []string{
		"[High] Login crash",
		"  Description: App closes after entering the password",
		"Typo on the home screen",
		"Images load slowly on Android",
	}, secs[2].Lines)

	assert.Equal(t, []string{"BUG-12: Search freeze - Verified", "Verified the logout redirect"}, secs[3].Lines)
	assert.Equal(t, []string{"US-7: Export to PDF - Partially confirmed"}, secs[4].Lines)
	assert.Equal(t, []string{defaultNextStepsLine}, secs[5].Lines)
	assert.Equal(t, Bulleted, secs[5].Style)
	assert.Equal(t, []string{"Testing in progress"}, secs[6].Lines)
}

func TestBuildSections_Defaults(t *testing.T) {
	in, err := ParseReportInput([]byte("date: \"2025-11-06\"\nproduct: {}\nstatus: Done\n"))
	require.NoError(t, err)

	secs, err := BuildSections(in, WithDefaultProduct("Hello Britannica"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Product: Hello Britannica"}, secs[0].Lines)
	assert.Equal(t, []string{defaultAreasLine}, secs[1].Lines)
	assert.Equal(t, []string{defaultBugsLine}, secs[2].Lines)
	assert.Equal(t, []string{defaultFixesLine}, secs[3].Lines)
	assert.Equal(t, []string{defaultRequirementsLine}, secs[4].Lines)
}

func TestBuildSections_CustomFormat(t *testing.T) {
	in, err := ParseReportInput([]byte(sampleInput))
	require.NoError(t, err)

	secs, err := BuildSections(in, WithLineFormats(LineFormats{Bug: `${upper(severity)}: ${title}`}))
	require.NoError(t, err)
	assert.Equal(t, "HIGH: Login crash", secs[2].Lines[0])
	assert.Equal(t, "  Description: App closes after entering the password", secs[2].Lines[1], "unset formats keep their default")
}

func TestReportFileName(t *testing.T) {
	d := time.Date(2025, 11, 6, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "EOD_2025-11-06_Jane_Doe.docx", ReportFileName(d, "Jane Doe"))
	assert.Equal(t, "EOD_2025-11-06.docx", ReportFileName(d, "  "))
}

func TestPopulateReport(t *testing.T) {
	in, err := ParseReportInput([]byte(sampleInput))
	require.NoError(t, err)
	d := parseDocx(t, buildDocx(t, reportParagraphs(), true))

	require.NoError(t, PopulateReport(d, in))

	assert.Contains(t, texts(d)[1], "findings for November 06, 2025.")
	sec, err := FindSection(d, "3. New Bugs / QA Notes Identified")
	require.NoError(t, err)
	assert.Equal(t, 4, sec.Body())
	assert.Equal(t, "[High] Login crash", d.Paragraphs()[sec.Start+1].Text)

	sec, err = FindSection(d, "2. Areas Covered During Testing")
	require.NoError(t, err)
	assert.Equal(t, "ListBullet", d.Paragraphs()[sec.Start+1].Style)
}

func TestPopulateReport_MissingSectionsLeavesDocumentUntouched(t *testing.T) {
	in, err := ParseReportInput([]byte(sampleInput))
	require.NoError(t, err)
	paras := reportParagraphs()
	// drop "4. Bug Fixes Verified" and "6. Pending / Next Steps" with their bodies
	var kept []para
	for _, p := range paras {
		if p.text == ReportSections[3] || p.text == ReportSections[5] ||
			p.text == "placeholder for "+ReportSections[3] || p.text == "placeholder for "+ReportSections[5] {
			continue
		}
		kept = append(kept, p)
	}
	d := parseDocx(t, buildDocx(t, kept, true))
	before := texts(d)

	err = PopulateReport(d, in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{ReportSections[3], ReportSections[5]}, verr.Items)
	assert.Equal(t, before, texts(d))
}

func TestPopulateReport_BadDate(t *testing.T) {
	in, err := ParseReportInput([]byte("date: \"13/45/2025\"\nproduct: {}\nstatus: Done\n"))
	require.NoError(t, err)
	d := parseDocx(t, buildDocx(t, reportParagraphs(), true))
	before := texts(d)

	assert.ErrorIs(t, PopulateReport(d, in), ErrValidation)
	assert.Equal(t, before, texts(d))
}

func TestGenerateReport(t *testing.T) {
	input := writeFile(t, "eod.yaml", []byte(sampleInput))
	template := writeFile(t, "template.docx", buildDocx(t, reportParagraphs(), true))
	outDir := t.TempDir()

	res, err := GenerateReport(input, template, WithOutputDir(outDir))
	require.NoError(t, err)

	assert.True(t, res.Written)
	assert.Equal(t, "Jane Doe", res.Tester)
	assert.Equal(t, filepath.Join(outDir, "EOD_2025-11-06_Jane_Doe.docx"), res.OutputPath)
	assert.Equal(t, 3, res.Bugs)
	assert.Equal(t, 2, res.AreaLines)
	assert.Equal(t, "Britannica Kids", res.Product)

	info, err := os.Stat(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), res.Size)

	doc, err := OpenDocument(res.OutputPath)
	require.NoError(t, err)
	sec, err := FindSection(doc, "7. Testing Status")
	require.NoError(t, err)
	assert.Equal(t, "Testing in progress", doc.Paragraphs()[sec.Start+1].Text)

	tmplDoc, err := OpenDocument(template)
	require.NoError(t, err)
	assert.Equal(t, texts(parseDocx(t, buildDocx(t, reportParagraphs(), true))), texts(tmplDoc), "template unchanged")
}

func TestGenerateReport_DryRun(t *testing.T) {
	input := writeFile(t, "eod.yaml", []byte(sampleInput))
	template := writeFile(t, "template.docx", buildDocx(t, reportParagraphs(), true))
	out := filepath.Join(t.TempDir(), "report.docx")

	res, err := GenerateReport(input, template, WithOutputPath(out), WithDryRun(true), WithTester("QA Bot"))
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.Equal(t, "QA Bot", res.Tester)
	assert.Equal(t, out, res.OutputPath)
	assert.Positive(t, res.EstimatedSize)

	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateReport_MissingTemplate(t *testing.T) {
	input := writeFile(t, "eod.yaml", []byte(sampleInput))
	_, err := GenerateReport(input, filepath.Join(t.TempDir(), "missing.docx"), WithDryRun(true))
	assert.ErrorIs(t, err, ErrNotFound)
}
