package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MaxStalenessDays caps DaysSince.
const MaxStalenessDays = 120

// TimestampLayout is how timestamps leave the service.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var ErrInvalidDuration = errors.New("invalid duration, expected HH:MM:SS")

var durationUnits = [3]int64{3600, 60, 1}

// ParseDuration converts "HH:MM:SS" into seconds. Hours may exceed 24.
func ParseDuration(s string) (int64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	var total int64
	for i, p := range parts {
		if p == "" || strings.IndexFunc(p, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		unit := durationUnits[i]
		if n > (math.MaxInt64-total)/unit {
			return 0, fmt.Errorf("%w: %q overflows", ErrInvalidDuration, s)
		}
		total += n * unit
	}
	return total, nil
}

// AddDuration sums two non-negative second counts, saturating at
// math.MaxInt64.
func AddDuration(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}

// FormatDuration renders seconds as HH:MM:SS. seconds must be >= 0.
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ParseTimestamp parses an ISO-8601 timestamp with optional fractional
// seconds and returns it in UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// DaysSince returns whole days between t and now clamped to
// [0, MaxStalenessDays], or nil when t is nil.
func DaysSince(t *time.Time, now time.Time) *int {
	if t == nil {
		return nil
	}
	d := now.Sub(*t)
	days := 0
	if d > 0 {
		days = int(d / (24 * time.Hour))
	}
	if days > MaxStalenessDays {
		days = MaxStalenessDays
	}
	return &days
}

// FormatTimestamp renders t as ISO-8601 UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
