package keepstyle

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

const (
	documentPart = "word/document.xml"
	stylesPart   = "word/styles.xml"

	wordprocessingNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// Document is a WordprocessingML (.docx) document held in memory. Only the
// main document part is parsed and rewritten; every other part of the
// package is copied through untouched on save.
type Document struct {
	path  string
	parts []*zip.File
	xml   *etree.Document
	body  *etree.Element
	w     string // prefix bound to the wordprocessingml namespace

	styles map[string]string // paragraph style name → style id
	log    *zap.Logger
}

// Paragraph is one body paragraph. Index is its position among the body
// paragraphs at the time it was listed; it is invalidated by any insertion
// or removal.
type Paragraph struct {
	Index int
	Text  string
	Style string // paragraph style id, "" for the default style

	el *etree.Element
}

// OpenDocument reads a .docx file.
func OpenDocument(path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioErr("open document", path, err)
	}
	d, err := ParseDocument(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d.path = path
	return d, nil
}

// ParseDocument parses a .docx package from memory.
func ParseDocument(data []byte, opts ...Option) (*Document, error) {
	o := buildOptions(opts)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &IOError{Op: "read document package", Path: "<docx>", Err: err}
	}
	d := &Document{parts: zr.File, styles: make(map[string]string), log: o.logger}

	main := d.part(documentPart)
	if main == nil {
		return nil, &NotFoundError{Kind: "part", Name: documentPart}
	}
	if d.xml, err = readXMLPart(main); err != nil {
		return nil, err
	}
	root := d.xml.Root()
	if root == nil {
		return nil, &ValidationError{Subject: documentPart, Reason: "empty document"}
	}
	d.w = namespacePrefix(root, wordprocessingNS, "w")
	if d.body = root.SelectElement(d.tag("body")); d.body == nil {
		return nil, &ValidationError{Subject: documentPart, Reason: "missing body"}
	}

	if sp := d.part(stylesPart); sp != nil {
		styles, err := readXMLPart(sp)
		if err != nil {
			return nil, err
		}
		d.loadStyles(styles)
	}
	return d, nil
}

func (d *Document) part(name string) *zip.File {
	for _, f := range d.parts {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readXMLPart(f *zip.File) (*etree.Document, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, &IOError{Op: "open part", Path: f.Name, Err: err}
	}
	defer rc.Close()

	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{Permissive: true}
	if _, err := doc.ReadFrom(rc); err != nil {
		return nil, &IOError{Op: "parse part", Path: f.Name, Err: err}
	}
	return doc, nil
}

// namespacePrefix returns the prefix the root declares for ns, or fallback.
func namespacePrefix(root *etree.Element, ns, fallback string) string {
	for _, a := range root.Attr {
		if a.Space == "xmlns" && a.Value == ns {
			return a.Key
		}
	}
	return fallback
}

func (d *Document) tag(local string) string {
	return d.w + ":" + local
}

func (d *Document) loadStyles(doc *etree.Document) {
	root := doc.Root()
	if root == nil {
		return
	}
	w := namespacePrefix(root, wordprocessingNS, "w")
	for _, s := range root.SelectElements(w + ":style") {
		if s.SelectAttrValue(w+":type", "") != "paragraph" {
			continue
		}
		id := s.SelectAttrValue(w+":styleId", "")
		if id == "" {
			continue
		}
		name := id
		if n := s.SelectElement(w + ":name"); n != nil {
			name = n.SelectAttrValue(w+":val", id)
		}
		d.styles[strings.ToLower(name)] = id
	}
}

// StyleID resolves a paragraph style by display name ("List Bullet") or by
// id ("ListBullet"). Names match case-insensitively.
func (d *Document) StyleID(name string) (string, bool) {
	if id, ok := d.styles[strings.ToLower(name)]; ok {
		return id, true
	}
	compact := strings.ReplaceAll(name, " ", "")
	for _, id := range d.styles {
		if strings.EqualFold(id, name) || strings.EqualFold(id, compact) {
			return id, true
		}
	}
	return "", false
}

// Paragraphs lists the body paragraphs in order. Paragraphs nested in
// tables are not included.
func (d *Document) Paragraphs() []Paragraph {
	els := d.body.SelectElements(d.tag("p"))
	out := make([]Paragraph, len(els))
	for i, el := range els {
		out[i] = Paragraph{Index: i, Text: d.paragraphText(el), Style: d.paragraphStyle(el), el: el}
	}
	return out
}

// paragraphText concatenates the text of every run, including runs inside
// hyperlinks and smart tags. Deleted revisions and field codes are skipped.
func (d *Document) paragraphText(p *etree.Element) string {
	var b strings.Builder
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, c := range e.ChildElements() {
			if c.Space != d.w {
				continue
			}
			switch c.Tag {
			case "t":
				b.WriteString(c.Text())
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			case "pPr", "rPr", "del", "instrText", "delText":
			default:
				walk(c)
			}
		}
	}
	walk(p)
	return b.String()
}

func (d *Document) paragraphStyle(p *etree.Element) string {
	ppr := p.SelectElement(d.tag("pPr"))
	if ppr == nil {
		return ""
	}
	ps := ppr.SelectElement(d.tag("pStyle"))
	if ps == nil {
		return ""
	}
	return ps.SelectAttrValue(d.tag("val"), "")
}

// newParagraph builds a single-run paragraph with an optional style.
func (d *Document) newParagraph(text, styleID string) *etree.Element {
	p := etree.NewElement(d.tag("p"))
	if styleID != "" {
		p.CreateElement(d.tag("pPr")).CreateElement(d.tag("pStyle")).CreateAttr(d.tag("val"), styleID)
	}
	d.appendRun(p, text, nil)
	return p
}

// appendRun adds a run holding text, copying rPr when given.
func (d *Document) appendRun(p *etree.Element, text string, rPr *etree.Element) *etree.Element {
	r := p.CreateElement(d.tag("r"))
	if rPr != nil {
		r.AddChild(rPr.Copy())
	}
	t := r.CreateElement(d.tag("t"))
	if strings.TrimSpace(text) != text {
		t.CreateAttr("xml:space", "preserve")
	}
	t.SetText(text)
	return r
}

// insertAfter places p directly after the body element prev.
func (d *Document) insertAfter(prev, p *etree.Element) {
	d.body.InsertChildAt(prev.Index()+1, p)
}

func (d *Document) remove(p *etree.Element) {
	d.body.RemoveChild(p)
}

// WriteTo writes the complete .docx package to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	main, err := d.xml.WriteToBytes()
	if err != nil {
		return 0, fmt.Errorf("serialize %s: %w", documentPart, err)
	}
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	for _, f := range d.parts {
		if f.Name != documentPart {
			if err := zw.Copy(f); err != nil {
				return cw.n, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate, Modified: time.Now()})
		if err != nil {
			return cw.n, fmt.Errorf("write %s: %w", f.Name, err)
		}
		if _, err := fw.Write(main); err != nil {
			return cw.n, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("finish package: %w", err)
	}
	return cw.n, nil
}

// SaveAs writes the document to path in one step.
func (d *Document) SaveAs(path string) error {
	return writeAtomic(path, func(w io.Writer) error {
		_, err := d.WriteTo(w)
		return err
	})
}

// Path returns the file the document was opened from, if any.
func (d *Document) Path() string { return d.path }

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
