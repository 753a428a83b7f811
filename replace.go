package keepstyle

import (
	"slices"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// LineStyle selects how replacement lines are rendered.
type LineStyle int

const (
	Plain    LineStyle = iota // one plain paragraph per line
	Bulleted                  // one bullet-list paragraph per line
)

func (s LineStyle) String() string {
	if s == Bulleted {
		return "bulleted"
	}
	return "plain"
}

// BulletGlyph prefixes bulleted lines when the bullet style is missing.
const BulletGlyph = "• "

// ReplaceSection replaces every paragraph below heading, up to the next
// heading, with one paragraph per line in order. The heading paragraph and
// all other sections are left untouched. Bulleted lines use the bullet
// paragraph style (WithBulletStyle); when the document does not define it
// they become plain paragraphs starting with BulletGlyph.
func ReplaceSection(doc *Document, heading string, lines []string, style LineStyle, opts ...Option) error {
	o := buildOptions(opts)
	paras := doc.Paragraphs()
	sec, err := findSection(paras, heading)
	if err != nil {
		return err
	}

	var styleID, prefix string
	if style == Bulleted {
		id, ok := doc.StyleID(o.bulletStyle)
		if ok {
			styleID = id
		} else {
			prefix = BulletGlyph
			doc.log.Warn("Falling back to plain bullets",
				zap.String("section", heading), zap.Error(&StyleUnavailableError{Style: o.bulletStyle}))
		}
	}

	for _, p := range paras[sec.Start+1 : sec.End] {
		doc.remove(p.el)
	}
	prev := paras[sec.Start].el
	for _, line := range lines {
		p := doc.newParagraph(prefix+line, styleID)
		doc.insertAfter(prev, p)
		prev = p
	}

	doc.log.Debug("Replaced section",
		zap.String("section", heading), zap.Stringer("style", style),
		zap.Int("removed", sec.Body()), zap.Int("inserted", len(lines)))
	return nil
}

// HeaderToken identifies the introductory paragraph of a report and the
// placeholder inside it. Sentence is the whole paragraph text, containing
// Token, used when the placeholder cannot be replaced run by run.
type HeaderToken struct {
	Marker   string `yaml:"marker" validate:"required"`
	Token    string `yaml:"token" validate:"required"`
	Sentence string `yaml:"sentence" validate:"required"`
}

// DefaultHeaderToken matches the stock end-of-day report template.
func DefaultHeaderToken() HeaderToken {
	return HeaderToken{
		Marker:   "summarizing the testing activities and findings for",
		Token:    "<DATE>",
		Sentence: "Here is the end-of-day report summarizing the testing activities and findings for <DATE>.",
	}
}

// ReplaceHeaderToken substitutes value for the placeholder in the first
// paragraph containing h.Marker. When some run holds the whole placeholder
// the substitution happens inside that run and all run formatting survives;
// preserved is then true. Otherwise the paragraph is rewritten as a single
// run holding h.Sentence, keeping the paragraph properties and the first
// run's formatting.
func ReplaceHeaderToken(doc *Document, h HeaderToken, value string) (preserved bool, err error) {
	var target *Paragraph
	for _, p := range doc.Paragraphs() {
		if strings.Contains(p.Text, h.Marker) {
			target = &p
			break
		}
	}
	if target == nil {
		return false, &NotFoundError{Kind: "header", Name: h.Marker}
	}

	runs := target.el.FindElements(".//" + doc.tag("r"))
	for _, r := range runs {
		for _, t := range r.SelectElements(doc.tag("t")) {
			if text := t.Text(); strings.Contains(text, h.Token) {
				t.SetText(strings.ReplaceAll(text, h.Token, value))
				preserved = true
			}
		}
	}
	if preserved {
		doc.log.Debug("Replaced header token in place", zap.String("value", value))
		return true, nil
	}

	var rPr *etree.Element
	if len(runs) > 0 {
		rPr = runs[0].SelectElement(doc.tag("rPr"))
	}
	ppr := target.el.SelectElement(doc.tag("pPr"))
	for _, tok := range slices.Clone(target.el.Child) {
		if e, ok := tok.(*etree.Element); ok && e == ppr {
			continue
		}
		target.el.RemoveChild(tok)
	}
	doc.appendRun(target.el, strings.ReplaceAll(h.Sentence, h.Token, value), rPr)
	doc.log.Debug("Rewrote header paragraph", zap.String("value", value))
	return false, nil
}
