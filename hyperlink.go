package keepstyle

import "strings"

// Hyperlink is the link attached to a cell. External links point at a URI;
// the rest are locations inside the workbook such as "Sheet2!A1".
type Hyperlink struct {
	Target   string
	External bool
}

// NewHyperlink builds a Hyperlink, treating anything with a scheme as external.
func NewHyperlink(target string) *Hyperlink {
	return &Hyperlink{Target: target, External: isExternalTarget(target)}
}

func isExternalTarget(target string) bool {
	t := strings.ToLower(target)
	return strings.Contains(t, "://") || strings.HasPrefix(t, "mailto:") || strings.HasPrefix(t, "file:")
}

// linkType returns the excelize link type for this hyperlink.
func (h Hyperlink) linkType() string {
	if h.External {
		return "External"
	}
	return "Location"
}

// String returns the hyperlink target.
func (h Hyperlink) String() string {
	return h.Target
}
