package provider

import "time"

// timeLayouts covers the timestamp shapes the two providers emit: RFC3339
// with and without fractional seconds, the parcel API's zone-less
// seven-digit-fraction form, and bare dates.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.0000000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses a provider timestamp tolerantly. Returns nil when the
// value is empty or matches no known layout; an unparseable date is treated
// as unknown, not an error.
func ParseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
