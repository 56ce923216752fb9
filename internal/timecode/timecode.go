// Package timecode formats and parses the MM:SS.mmm timestamps shown and
// typed in the tap screen.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Format renders d as MM:SS.mmm, e.g. 65.5s -> "01:05.500". Minutes are not
// wrapped into hours.
func Format(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}

	minutes := int(d / time.Minute)
	seconds := int(d%time.Minute) / int(time.Second)
	millis := int(d%time.Second) / int(time.Millisecond)

	return fmt.Sprintf("%s%02d:%02d.%03d", sign, minutes, seconds, millis)
}

// Parse accepts MM:SS.mmm or SS.mmm.
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty timestamp")
	}

	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		secs, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seconds %q: %w", parts[0], err)
		}
		return fromSeconds(secs), nil
	case 2:
		mins, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid minutes %q: %w", parts[0], err)
		}
		secs, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seconds %q: %w", parts[1], err)
		}
		return fromSeconds(mins*60 + secs), nil
	default:
		return 0, fmt.Errorf("invalid timestamp %q: use MM:SS.mmm or SS.mmm", s)
	}
}

func fromSeconds(s float64) time.Duration {
	return time.Duration(math.Round(s*1000)) * time.Millisecond
}
