package keepstyle

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ReportInput is the structured content of one end-of-day report.
type ReportInput struct {
	Date         string   `yaml:"date" validate:"required"`
	Product      *Product `yaml:"product" validate:"required"`
	Status       string   `yaml:"status" validate:"required"`
	Tester       Tester   `yaml:"tester"`
	AreasCovered []Entry  `yaml:"areas_covered"`
	Bugs         []Entry  `yaml:"bugs"`
	BugFixes     []Entry  `yaml:"bug_fixes"`
	Requirements []Entry  `yaml:"requirements"`
	NextSteps    []Entry  `yaml:"next_steps"`
}

// Product describes the product and environments under test.
type Product struct {
	Name        string   `yaml:"name"`
	Platforms   []string `yaml:"platforms"`
	RolesTested []string `yaml:"roles_tested"`
}

// Tester names the person filing the report.
type Tester struct {
	Name string `yaml:"name"`
}

// Entry is one list item of a report section: either a plain line (Text)
// or a record whose fields are rendered through a line format.
type Entry struct {
	Text string `yaml:"-"`

	Title       string  `yaml:"title"`
	Severity    string  `yaml:"severity"`
	Description *string `yaml:"description"`
	BugID       string  `yaml:"bug_id"`
	StoryID     string  `yaml:"story_id"`
	Status      string  `yaml:"status"`
}

// IsText reports whether the entry is a plain line.
func (e Entry) IsText() bool {
	return e.Text != "" || (e.Title == "" && e.Severity == "" && e.Description == nil &&
		e.BugID == "" && e.StoryID == "" && e.Status == "")
}

// UnmarshalYAML accepts a scalar line or a mapping of record fields.
func (e *Entry) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*e = Entry{Text: n.Value}
		return nil
	}
	type fields Entry
	var f fields
	if err := n.Decode(&f); err != nil {
		return err
	}
	*e = Entry(f)
	return nil
}

func (e Entry) vars(defaultStatus string) map[string]any {
	status := e.Status
	if status == "" {
		status = defaultStatus
	}
	var desc string
	if e.Description != nil {
		desc = *e.Description
	}
	return map[string]any{
		"title":       e.Title,
		"severity":    e.Severity,
		"description": desc,
		"bug_id":      e.BugID,
		"story_id":    e.StoryID,
		"status":      status,
	}
}

// LineFormats are the ${...} templates used to render record entries.
// Fields are available under their input names (title, severity,
// description, bug_id, story_id, status).
type LineFormats struct {
	Bug            string `yaml:"bug"`
	BugDescription string `yaml:"bug_description"`
	Fix            string `yaml:"fix"`
	Requirement    string `yaml:"requirement"`
}

// DefaultLineFormats renders "[High] Login crash", "  Description: ...",
// "BUG-1: Login crash - Verified" and "US-7: Export - Confirmed".
func DefaultLineFormats() LineFormats {
	return LineFormats{
		Bug:            `${severity == "" ? "" : "[" + severity + "] "}${title}`,
		BugDescription: `  Description: ${description}`,
		Fix:            `${bug_id == "" ? "" : bug_id + ": "}${title} - ${status}`,
		Requirement:    `${story_id == "" ? "" : story_id + ": "}${title} - ${status}`,
	}
}

func (f LineFormats) withDefaults() LineFormats {
	d := DefaultLineFormats()
	if f.Bug == "" {
		f.Bug = d.Bug
	}
	if f.BugDescription == "" {
		f.BugDescription = d.BugDescription
	}
	if f.Fix == "" {
		f.Fix = d.Fix
	}
	if f.Requirement == "" {
		f.Requirement = d.Requirement
	}
	return f
}

// Default lines of sections that have no entries.
const (
	defaultAreasLine        = "Regression and exploratory testing were carried out on both platforms."
	defaultBugsLine         = "No new bugs were reported today. Regression testing continued as planned."
	defaultFixesLine        = "No previously reported bugs were verified or closed today."
	defaultRequirementsLine = "No new requirements or user stories were confirmed today."
	defaultNextStepsLine    = "Continue with regression and exploratory testing in current focus areas."
)

var inputValidator = newInputValidator()

func newInputValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the required fields, reporting all missing ones together.
func (in *ReportInput) Validate() error {
	err := inputValidator.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate report input: %w", err)
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return &ValidationError{Subject: "report input", Reason: "missing required fields", Items: missing}
}

// LoadReportInput reads and validates a YAML report input file.
func LoadReportInput(path string) (*ReportInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioErr("read input", path, err)
	}
	return ParseReportInput(data)
}

// ParseReportInput decodes and validates YAML report input.
func ParseReportInput(data []byte) (*ReportInput, error) {
	var in ReportInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, &ValidationError{Subject: "report input", Reason: "invalid YAML", Items: []string{err.Error()}}
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &in, nil
}

// SectionContent is the rendered content of one report section.
type SectionContent struct {
	Heading string
	Lines   []string
	Style   LineStyle
}

// BuildSections renders the lines of all seven report sections. It reads
// only the input, so it can run before the template is touched.
func BuildSections(in *ReportInput, opts ...Option) ([]SectionContent, error) {
	o := buildOptions(opts)
	ev := NewExpressionEvaluator()
	render := func(tmpl string, vars map[string]any) (string, error) {
		return NewContext(vars, WithEvaluator(ev)).Render(tmpl)
	}

	product := productLines(in.Product, o.defaultProduct)

	areas := textLines(in.AreasCovered, defaultAreasLine)

	var bugs []string
	for _, e := range in.Bugs {
		if e.IsText() {
			bugs = append(bugs, e.Text)
			continue
		}
		vars := e.vars("")
		line, err := render(o.formats.Bug, vars)
		if err != nil {
			return nil, fmt.Errorf("bug %q: %w", e.Title, err)
		}
		bugs = append(bugs, line)
		if e.Description != nil {
			line, err := render(o.formats.BugDescription, vars)
			if err != nil {
				return nil, fmt.Errorf("bug %q: %w", e.Title, err)
			}
			bugs = append(bugs, line)
		}
	}
	if len(bugs) == 0 {
		bugs = []string{defaultBugsLine}
	}

	recordLines := func(entries []Entry, tmpl, defaultStatus, empty string) ([]string, error) {
		var lines []string
		for _, e := range entries {
			if e.IsText() {
				lines = append(lines, e.Text)
				continue
			}
			line, err := render(tmpl, e.vars(defaultStatus))
			if err != nil {
				return nil, fmt.Errorf("entry %q: %w", e.Title, err)
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			lines = []string{empty}
		}
		return lines, nil
	}
	fixes, err := recordLines(in.BugFixes, o.formats.Fix, "Verified", defaultFixesLine)
	if err != nil {
		return nil, fmt.Errorf("bug fixes: %w", err)
	}
	reqs, err := recordLines(in.Requirements, o.formats.Requirement, "Confirmed", defaultRequirementsLine)
	if err != nil {
		return nil, fmt.Errorf("requirements: %w", err)
	}

	next := textLines(in.NextSteps, defaultNextStepsLine)

	return []SectionContent{
		{ReportSections[0], product, Plain},
		{ReportSections[1], areas, Bulleted},
		{ReportSections[2], bugs, Plain},
		{ReportSections[3], fixes, Plain},
		{ReportSections[4], reqs, Plain},
		{ReportSections[5], next, Bulleted},
		{ReportSections[6], []string{in.Status}, Plain},
	}, nil
}

func productLines(p *Product, defaultName string) []string {
	if p == nil {
		p = &Product{}
	}
	name := p.Name
	if name == "" {
		name = defaultName
	}
	lines := []string{"Product: " + name}
	if len(p.Platforms) > 0 {
		lines = append(lines, "Environments:")
		lines = append(lines, p.Platforms...)
	}
	if len(p.RolesTested) > 0 {
		lines = append(lines, "Roles Tested: "+strings.Join(p.RolesTested, ", "))
	}
	return lines
}

// textLines uses each entry's text, or its title for record entries.
func textLines(entries []Entry, empty string) []string {
	var lines []string
	for _, e := range entries {
		if e.IsText() {
			lines = append(lines, e.Text)
		} else {
			lines = append(lines, e.Title)
		}
	}
	if len(lines) == 0 {
		return []string{empty}
	}
	return lines
}

// PopulateReport fills a report template in memory: it checks the template
// outline, replaces the header date and rewrites all seven sections. The
// outline is checked and all lines are rendered before the document is
// modified.
func PopulateReport(doc *Document, in *ReportInput, opts ...Option) error {
	o := buildOptions(opts)
	if err := ValidateTemplateStructure(doc, ReportSections); err != nil {
		return err
	}
	date, err := ParseDateFlexible(in.Date)
	if err != nil {
		return err
	}
	sections, err := BuildSections(in, opts...)
	if err != nil {
		return err
	}

	if _, err := ReplaceHeaderToken(doc, o.header, date.Format(DisplayDateLayout)); err != nil {
		return err
	}
	for _, s := range sections {
		if err := ReplaceSection(doc, s.Heading, s.Lines, s.Style, opts...); err != nil {
			return err
		}
		o.logger.Info("Populated section", zap.String("section", s.Heading), zap.Int("lines", len(s.Lines)))
	}
	return nil
}

// ReportPreview describes a report without writing it.
type ReportPreview struct {
	OutputPath    string
	EstimatedSize int64
	Product       string
	AreaLines     int
	Bugs          int
	Status        string
}

// ReportResult is the result of GenerateReport.
type ReportResult struct {
	ReportPreview
	Date    time.Time
	Tester  string
	Written bool
	Size    int64
}

// ReportFileName returns "EOD_2006-01-02_First_Last.docx".
func ReportFileName(date time.Time, tester string) string {
	name := "EOD_" + date.Format(FileNameDateLayout)
	if tester = strings.TrimSpace(tester); tester != "" {
		name += "_" + strings.ReplaceAll(tester, " ", "_")
	}
	return name + ".docx"
}

// GenerateReport loads inputPath, populates the template at templatePath
// and writes the report. The output goes to WithOutputPath, or to
// ReportFileName inside WithOutputDir. With WithDryRun nothing is written.
func GenerateReport(inputPath, templatePath string, opts ...Option) (*ReportResult, error) {
	o := buildOptions(opts)
	in, err := LoadReportInput(inputPath)
	if err != nil {
		return nil, err
	}
	date, err := ParseDateFlexible(in.Date)
	if err != nil {
		return nil, err
	}

	tester := o.tester
	if tester == "" {
		tester = in.Tester.Name
	}
	if tester == "" {
		tester = currentUserName()
	}
	out := o.outputPath
	if out == "" {
		out = filepath.Join(o.outputDir, ReportFileName(date, tester))
	}
	o.logger.Info("Generating report",
		zap.String("date", date.Format(DisplayDateLayout)), zap.String("tester", tester),
		zap.String("template", templatePath))

	doc, err := OpenDocument(templatePath, opts...)
	if err != nil {
		return nil, err
	}
	if err := PopulateReport(doc, in, opts...); err != nil {
		return nil, err
	}

	res := &ReportResult{Date: date, Tester: tester}
	res.OutputPath = out
	res.Product = in.Product.Name
	if res.Product == "" {
		res.Product = o.defaultProduct
	}
	res.AreaLines = len(textLines(in.AreasCovered, defaultAreasLine))
	res.Bugs = len(in.Bugs)
	res.Status = in.Status

	if o.dryRun {
		if res.EstimatedSize, err = doc.WriteTo(io.Discard); err != nil {
			return nil, err
		}
		o.logger.Info("Dry run, report not written", zap.String("path", out), zap.Int64("size", res.EstimatedSize))
		return res, nil
	}

	if err := doc.SaveAs(out); err != nil {
		return nil, err
	}
	fi, err := os.Stat(out)
	if err != nil {
		return nil, ioErr("stat", out, err)
	}
	res.Written, res.Size, res.EstimatedSize = true, fi.Size(), fi.Size()
	o.logger.Info("Saved report", zap.String("path", out), zap.Int64("size", res.Size))
	return res, nil
}

// currentUserName returns the OS user's full name, or the login name
// without any domain prefix.
func currentUserName() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	if name, _, _ := strings.Cut(u.Name, ","); strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	login := u.Username
	if i := strings.LastIndexAny(login, `\/`); i >= 0 {
		login = login[i+1:]
	}
	return login
}
