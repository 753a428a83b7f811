package keepstyle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// StyleDescriptor is the complete visual style of a cell. It is a plain
// comparable value: two descriptors are equal iff every attribute matches,
// so it can key maps and be compared with ==.
//
// Colors are stored as "RRGGBB", "theme:N", "theme:N:tint" or "indexed:N".
type StyleDescriptor struct {
	Font         Font
	Fill         Fill
	Border       Border
	Alignment    Alignment
	NumFmt       int
	CustomNumFmt string
	Protection   Protection
}

// Font is the font part of a StyleDescriptor.
type Font struct {
	Name      string
	Size      float64
	Bold      bool
	Italic    bool
	Strike    bool
	Underline string
	VertAlign string
	Color     string
}

// Fill is a pattern or gradient cell fill.
type Fill struct {
	Type    string // "pattern" or "gradient"
	Pattern int
	Colors  [2]string
	Shading int
}

// BorderLine is one edge of a cell border; Style is the excelize border style index.
type BorderLine struct {
	Style int
	Color string
}

// Border holds the four edges and both diagonals.
type Border struct {
	Left, Right, Top, Bottom  BorderLine
	DiagonalUp, DiagonalDown BorderLine
}

// Alignment is the cell's text alignment.
type Alignment struct {
	Horizontal      string
	Vertical        string
	WrapText        bool
	ShrinkToFit     bool
	Indent          int
	TextRotation    int
	ReadingOrder    uint64
	RelativeIndent  int
	JustifyLastLine bool
}

// Protection is only meaningful when Explicit is set; otherwise the
// spreadsheet default (locked, visible) applies.
type Protection struct {
	Explicit bool
	Locked   bool
	Hidden   bool
}

// DescriptorFromExcelize converts an excelize style definition.
func DescriptorFromExcelize(s *excelize.Style) StyleDescriptor {
	var d StyleDescriptor
	if s == nil {
		return d
	}
	if s.Font != nil {
		d.Font = Font{
			Name:      s.Font.Family,
			Size:      s.Font.Size,
			Bold:      s.Font.Bold,
			Italic:    s.Font.Italic,
			Strike:    s.Font.Strike,
			Underline: s.Font.Underline,
			VertAlign: s.Font.VertAlign,
			Color:     encodeColor(s.Font.Color, s.Font.ColorIndexed, s.Font.ColorTheme, s.Font.ColorTint),
		}
	}
	d.Fill = Fill{Type: s.Fill.Type, Pattern: s.Fill.Pattern, Shading: s.Fill.Shading}
	for i := 0; i < len(s.Fill.Color) && i < len(d.Fill.Colors); i++ {
		d.Fill.Colors[i] = normalizeRGB(s.Fill.Color[i])
	}
	for _, b := range s.Border {
		line := BorderLine{Style: b.Style, Color: normalizeRGB(b.Color)}
		switch b.Type {
		case "left":
			d.Border.Left = line
		case "right":
			d.Border.Right = line
		case "top":
			d.Border.Top = line
		case "bottom":
			d.Border.Bottom = line
		case "diagonalUp":
			d.Border.DiagonalUp = line
		case "diagonalDown":
			d.Border.DiagonalDown = line
		}
	}
	if a := s.Alignment; a != nil {
		d.Alignment = Alignment{
			Horizontal:      a.Horizontal,
			Vertical:        a.Vertical,
			WrapText:        a.WrapText,
			ShrinkToFit:     a.ShrinkToFit,
			Indent:          a.Indent,
			TextRotation:    a.TextRotation,
			ReadingOrder:    a.ReadingOrder,
			RelativeIndent:  a.RelativeIndent,
			JustifyLastLine: a.JustifyLastLine,
		}
	}
	d.NumFmt = s.NumFmt
	if s.CustomNumFmt != nil {
		d.CustomNumFmt = *s.CustomNumFmt
	}
	if s.Protection != nil {
		d.Protection = Protection{Explicit: true, Locked: s.Protection.Locked, Hidden: s.Protection.Hidden}
	}
	return d
}

// Excelize converts the descriptor into a style definition suitable for
// (*excelize.File).NewStyle.
func (d StyleDescriptor) Excelize() *excelize.Style {
	s := &excelize.Style{NumFmt: d.NumFmt}
	if d.Font != (Font{}) {
		rgb, indexed, theme, tint := decodeColor(d.Font.Color)
		s.Font = &excelize.Font{
			Family:       d.Font.Name,
			Size:         d.Font.Size,
			Bold:         d.Font.Bold,
			Italic:       d.Font.Italic,
			Strike:       d.Font.Strike,
			Underline:    d.Font.Underline,
			VertAlign:    d.Font.VertAlign,
			Color:        rgb,
			ColorIndexed: indexed,
			ColorTheme:   theme,
			ColorTint:    tint,
		}
	}
	if d.Fill.Type != "" {
		s.Fill = excelize.Fill{Type: d.Fill.Type, Pattern: d.Fill.Pattern, Shading: d.Fill.Shading}
		for _, c := range d.Fill.Colors {
			if c != "" {
				s.Fill.Color = append(s.Fill.Color, c)
			}
		}
	}
	for _, side := range []struct {
		name string
		line BorderLine
	}{
		{"left", d.Border.Left},
		{"right", d.Border.Right},
		{"top", d.Border.Top},
		{"bottom", d.Border.Bottom},
		{"diagonalUp", d.Border.DiagonalUp},
		{"diagonalDown", d.Border.DiagonalDown},
	} {
		if side.line.Style != 0 {
			s.Border = append(s.Border, excelize.Border{Type: side.name, Style: side.line.Style, Color: side.line.Color})
		}
	}
	if d.Alignment != (Alignment{}) {
		a := d.Alignment
		s.Alignment = &excelize.Alignment{
			Horizontal:      a.Horizontal,
			Vertical:        a.Vertical,
			WrapText:        a.WrapText,
			ShrinkToFit:     a.ShrinkToFit,
			Indent:          a.Indent,
			TextRotation:    a.TextRotation,
			ReadingOrder:    a.ReadingOrder,
			RelativeIndent:  a.RelativeIndent,
			JustifyLastLine: a.JustifyLastLine,
		}
	}
	if d.CustomNumFmt != "" {
		code := d.CustomNumFmt
		s.CustomNumFmt = &code
	}
	if d.Protection.Explicit {
		s.Protection = &excelize.Protection{Locked: d.Protection.Locked, Hidden: d.Protection.Hidden}
	}
	return s
}

// AttrDiff is one attribute that differs between two descriptors.
type AttrDiff struct {
	Attr     string
	Expected string
	Actual   string
}

// Diff lists the attributes of other that differ from d, in a fixed order.
func (d StyleDescriptor) Diff(other StyleDescriptor) []AttrDiff {
	if d == other {
		return nil
	}
	var diffs []AttrDiff
	add := func(attr string, a, b any) {
		as, bs := fmt.Sprint(a), fmt.Sprint(b)
		if as != bs {
			diffs = append(diffs, AttrDiff{Attr: attr, Expected: as, Actual: bs})
		}
	}
	add("font.name", d.Font.Name, other.Font.Name)
	add("font.size", d.Font.Size, other.Font.Size)
	add("font.bold", d.Font.Bold, other.Font.Bold)
	add("font.italic", d.Font.Italic, other.Font.Italic)
	add("font.strike", d.Font.Strike, other.Font.Strike)
	add("font.underline", d.Font.Underline, other.Font.Underline)
	add("font.vertAlign", d.Font.VertAlign, other.Font.VertAlign)
	add("font.color", d.Font.Color, other.Font.Color)
	add("fill.type", d.Fill.Type, other.Fill.Type)
	add("fill.pattern", patternName(d.Fill.Pattern), patternName(other.Fill.Pattern))
	add("fill.color", d.Fill.Colors, other.Fill.Colors)
	add("fill.shading", d.Fill.Shading, other.Fill.Shading)
	add("border.left", d.Border.Left, other.Border.Left)
	add("border.right", d.Border.Right, other.Border.Right)
	add("border.top", d.Border.Top, other.Border.Top)
	add("border.bottom", d.Border.Bottom, other.Border.Bottom)
	add("border.diagonalUp", d.Border.DiagonalUp, other.Border.DiagonalUp)
	add("border.diagonalDown", d.Border.DiagonalDown, other.Border.DiagonalDown)
	add("alignment.horizontal", d.Alignment.Horizontal, other.Alignment.Horizontal)
	add("alignment.vertical", d.Alignment.Vertical, other.Alignment.Vertical)
	add("alignment.wrapText", d.Alignment.WrapText, other.Alignment.WrapText)
	add("alignment.shrinkToFit", d.Alignment.ShrinkToFit, other.Alignment.ShrinkToFit)
	add("alignment.indent", d.Alignment.Indent, other.Alignment.Indent)
	add("alignment.textRotation", d.Alignment.TextRotation, other.Alignment.TextRotation)
	add("alignment.readingOrder", d.Alignment.ReadingOrder, other.Alignment.ReadingOrder)
	add("alignment.relativeIndent", d.Alignment.RelativeIndent, other.Alignment.RelativeIndent)
	add("alignment.justifyLastLine", d.Alignment.JustifyLastLine, other.Alignment.JustifyLastLine)
	add("numFmt", d.NumFmt, other.NumFmt)
	add("customNumFmt", d.CustomNumFmt, other.CustomNumFmt)
	add("protection", d.Protection, other.Protection)
	return diffs
}

// Describe renders the descriptor for people, e.g.
// "Font: Calibri 11pt Bold; Fill: solid FFFF00; Border: L:thin, B:thin".
func (d StyleDescriptor) Describe() string {
	var parts []string

	if d.Font != (Font{}) {
		name := d.Font.Name
		if name == "" {
			name = "Default"
		}
		desc := name
		if d.Font.Size != 0 {
			desc += " " + strconv.FormatFloat(d.Font.Size, 'f', -1, 64) + "pt"
		}
		if d.Font.Bold {
			desc += " Bold"
		}
		if d.Font.Italic {
			desc += " Italic"
		}
		if d.Font.Color != "" {
			desc += " Color:" + d.Font.Color
		}
		parts = append(parts, "Font: "+desc)
	}

	if d.Fill.Type == "pattern" && d.Fill.Pattern != 0 {
		desc := patternName(d.Fill.Pattern)
		if d.Fill.Colors[0] != "" {
			desc += " " + d.Fill.Colors[0]
		}
		parts = append(parts, "Fill: "+desc)
	} else if d.Fill.Type == "gradient" {
		parts = append(parts, "Fill: gradient "+strings.TrimSpace(d.Fill.Colors[0]+" "+d.Fill.Colors[1]))
	}

	var align []string
	if d.Alignment.Horizontal != "" {
		align = append(align, "H:"+d.Alignment.Horizontal)
	}
	if d.Alignment.Vertical != "" {
		align = append(align, "V:"+d.Alignment.Vertical)
	}
	if d.Alignment.WrapText {
		align = append(align, "Wrap")
	}
	if len(align) > 0 {
		parts = append(parts, "Align: "+strings.Join(align, ", "))
	}

	var border []string
	for _, side := range []struct {
		tag  string
		line BorderLine
	}{{"L", d.Border.Left}, {"R", d.Border.Right}, {"T", d.Border.Top}, {"B", d.Border.Bottom}} {
		if side.line.Style != 0 {
			border = append(border, side.tag+":"+borderStyleName(side.line.Style))
		}
	}
	if len(border) > 0 {
		parts = append(parts, "Border: "+strings.Join(border, ", "))
	}

	if d.CustomNumFmt != "" {
		parts = append(parts, "Format: "+d.CustomNumFmt)
	} else if d.NumFmt != 0 {
		parts = append(parts, "Format: #"+strconv.Itoa(d.NumFmt))
	}

	if len(parts) == 0 {
		return "Default formatting"
	}
	return strings.Join(parts, "; ")
}

var fillPatternNames = []string{
	"none", "solid", "mediumGray", "darkGray", "lightGray", "darkHorizontal",
	"darkVertical", "darkDown", "darkUp", "darkGrid", "darkTrellis",
	"lightHorizontal", "lightVertical", "lightDown", "lightUp", "lightGrid",
	"lightTrellis", "gray125", "gray0625",
}

var borderStyleNames = []string{
	"none", "thin", "medium", "dashed", "dotted", "thick", "double", "hair",
	"mediumDashed", "dashDot", "mediumDashDot", "dashDotDot",
	"mediumDashDotDot", "slantDashDot",
}

func patternName(p int) string {
	if p >= 0 && p < len(fillPatternNames) {
		return fillPatternNames[p]
	}
	return strconv.Itoa(p)
}

func borderStyleName(s int) string {
	if s >= 0 && s < len(borderStyleNames) {
		return borderStyleNames[s]
	}
	return strconv.Itoa(s)
}

// normalizeRGB upper-cases a hex color and drops a leading "#" or opaque
// "FF" alpha so equal colors compare equal.
func normalizeRGB(c string) string {
	c = strings.ToUpper(strings.TrimPrefix(c, "#"))
	if len(c) == 8 && strings.HasPrefix(c, "FF") {
		c = c[2:]
	}
	return c
}

func encodeColor(rgb string, indexed int, theme *int, tint float64) string {
	switch {
	case rgb != "":
		return normalizeRGB(rgb)
	case theme != nil && tint != 0:
		return fmt.Sprintf("theme:%d:%s", *theme, strconv.FormatFloat(tint, 'f', -1, 64))
	case theme != nil:
		return fmt.Sprintf("theme:%d", *theme)
	case indexed != 0:
		return fmt.Sprintf("indexed:%d", indexed)
	}
	return ""
}

func decodeColor(c string) (rgb string, indexed int, theme *int, tint float64) {
	switch {
	case strings.HasPrefix(c, "theme:"):
		parts := strings.Split(strings.TrimPrefix(c, "theme:"), ":")
		if n, err := strconv.Atoi(parts[0]); err == nil {
			theme = &n
		}
		if len(parts) > 1 {
			tint, _ = strconv.ParseFloat(parts[1], 64)
		}
	case strings.HasPrefix(c, "indexed:"):
		indexed, _ = strconv.Atoi(strings.TrimPrefix(c, "indexed:"))
	default:
		rgb = c
	}
	return rgb, indexed, theme, tint
}
