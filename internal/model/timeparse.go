package model

import (
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
)

// timeLayouts covers the reduced-precision forms that show up in bucket
// file names (compact or dashed dates) and that strfmt does not accept.
var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"20060102T150405",
	"20060102150405",
	"20060102",
}

// ParseTime interprets the ISO-8601-compatible strings found in change
// records, file identifiers, and CLI arguments. Full datetimes go through
// strfmt; compact bucket dates fall back to an explicit layout list.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		// strfmt maps "" to the zero DateTime without error.
		return time.Time{}, fmt.Errorf("empty date string")
	}
	if dt, err := strfmt.ParseDateTime(s); err == nil {
		return time.Time(dt), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", s)
}
