package keepstyle

import (
	"regexp"
	"strings"
)

var headingPattern = regexp.MustCompile(`^\d+\.`)

// IsHeading reports whether paragraph text opens a numbered section ("3. New Bugs").
func IsHeading(text string) bool {
	return headingPattern.MatchString(strings.TrimSpace(text))
}

// Section is the half-open paragraph range [Start, End) of one heading:
// Start is the heading itself, End the next heading or the paragraph count.
type Section struct {
	Heading string
	Start   int
	End     int
}

// Body returns the number of paragraphs below the heading.
func (s Section) Body() int {
	return s.End - s.Start - 1
}

// FindSection locates the paragraph whose trimmed text equals heading.
// The document is scanned afresh on every call.
func FindSection(doc *Document, heading string) (Section, error) {
	return findSection(doc.Paragraphs(), heading)
}

func findSection(paras []Paragraph, heading string) (Section, error) {
	want := strings.TrimSpace(heading)
	for i, p := range paras {
		if strings.TrimSpace(p.Text) != want {
			continue
		}
		end := len(paras)
		for j := i + 1; j < len(paras); j++ {
			if IsHeading(paras[j].Text) {
				end = j
				break
			}
		}
		return Section{Heading: heading, Start: i, End: end}, nil
	}
	return Section{}, &NotFoundError{Kind: "section", Name: heading}
}

// Sections lists every numbered section in document order.
func Sections(doc *Document) []Section {
	paras := doc.Paragraphs()
	var out []Section
	for i, p := range paras {
		if !IsHeading(p.Text) {
			continue
		}
		if n := len(out); n > 0 {
			out[n-1].End = i
		}
		out = append(out, Section{Heading: strings.TrimSpace(p.Text), Start: i, End: len(paras)})
	}
	return out
}
