package service

import (
	"strings"
	"time"
)

var legacyTimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// NormalizeLegacyTimestamp repairs a cursor timestamp whose "+" offset sign
// arrived as a space (an unescaped "+" in a query string) and parses it into
// a UTC instant. Only the first space is replaced. Zone-less values are UTC.
func NormalizeLegacyTimestamp(raw string) (time.Time, error) {
	fixed := strings.Replace(strings.TrimSpace(raw), " ", "+", 1)

	var firstErr error
	for _, layout := range legacyTimestampLayouts {
		t, err := time.Parse(layout, fixed)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, ValidationError("INVALID_DATE", "oldestDate is not a valid timestamp: "+firstErr.Error())
}
