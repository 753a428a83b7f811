package keepstyle

import (
	"strconv"
	"strings"
	"time"
)

// DateLayouts are the input date layouts ParseDateFlexible tries, in order.
// Day-first numeric dates use dashes and month-first ones use slashes.
var DateLayouts = []string{
	"2-1-2006",        // 06-11-2025
	"2006-1-2",        // 2025-11-06
	"1/2/2006",        // 11/06/2025
	"January 2, 2006", // November 6, 2025
	"2 January 2006",  // 6 November 2025
	"Jan 2, 2006",     // Nov 6, 2025
	"2 Jan 2006",      // 6 Nov 2025
}

// Output layouts of a report date.
const (
	DisplayDateLayout  = "January 02, 2006"
	FileNameDateLayout = "2006-01-02"
)

// ParseDateFlexible parses s with the first matching layout of DateLayouts.
func ParseDateFlexible(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ValidationError{
		Subject: "date",
		Reason:  "unrecognized date " + strconv.Quote(s) + ", expected one of",
		Items:   []string{"DD-MM-YYYY", "YYYY-MM-DD", "MM/DD/YYYY", "Month D, YYYY", "D Month YYYY"},
	}
}
