package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Layouts tried in order for ISO-8601 timestamps. Zoned forms come first;
// naive forms are interpreted as UTC. time.Parse accepts an optional
// fractional second after the seconds field even when the layout omits it.
var timestampLayouts = []struct {
	layout string
	zoned  bool
}{
	{layout: time.RFC3339Nano, zoned: true},
	{layout: "2006-01-02T15:04:05", zoned: false},
	{layout: "2006-01-02 15:04:05", zoned: false},
}

// ParseTimestamp parses a log timestamp: ISO-8601 with or without an
// offset/zone (naive values are taken as UTC), or a Unix-epoch numeric
// string, including negative and fractional epochs. The result is always
// in UTC.
func ParseTimestamp(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, candidate := range timestampLayouts {
		var t time.Time
		var err error
		if candidate.zoned {
			t, err = time.Parse(candidate.layout, trimmed)
		} else {
			t, err = time.ParseInLocation(candidate.layout, trimmed, time.UTC)
		}
		if err == nil {
			return t.UTC(), nil
		}
	}

	if epoch, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(epoch) && !math.IsInf(epoch, 0) {
		sec, frac := math.Modf(epoch)
		return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("unparsable timestamp: %q", value)
}
