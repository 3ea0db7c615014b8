package usecase

import (
	"math"
	"regexp"
	"strconv"
	"time"

	"watchtime-report-service/internal/watchtime/core/domain"
)

// DateLayout is the layout of the from/to query parameters.
const DateLayout = "2006-01-02"

var intervalPattern = regexp.MustCompile(`^([0-9]+)([mhd])$`)

var intervalUnits = map[string]time.Duration{
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// FilterParams are the user-facing report filters, all optional.
type FilterParams struct {
	From     string // YYYY-MM-DD
	To       string // YYYY-MM-DD, inclusive
	Interval string // <n>m, <n>h or <n>d
	City     string // itabira, bomdespacho, todos
}

// ParseInterval parses "15m", "3h" or "2d". ok is false for anything else,
// including zero amounts and amounts that overflow a time.Duration.
func ParseInterval(s string) (time.Duration, bool) {
	m := intervalPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	unit := intervalUnits[m[2]]
	if n > math.MaxInt64/int64(unit) {
		return 0, false
	}
	return time.Duration(n) * unit, true
}

// parseDateRange returns [from 00:00 UTC, to+1d 00:00 UTC).
func parseDateRange(from, to string) (start, end time.Time, err error) {
	start, err = time.Parse(DateLayout, from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = time.Parse(DateLayout, to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end.AddDate(0, 0, 1), nil
}

// ResolveRange picks the effective range of a request: a valid interval
// first, then an explicit from/to pair, then the current UTC month up to now.
// Interval and default labels are the resolved bounds shown in loc; explicit
// dates are shown as given.
func ResolveRange(p FilterParams, now time.Time, loc *time.Location) domain.Range {
	now = now.UTC()

	if d, ok := ParseInterval(p.Interval); ok {
		start := now.Add(-d)
		return domain.Range{
			Start:   start,
			End:     now,
			FromDay: start.In(loc),
			ToDay:   now.In(loc),
		}
	}

	if p.From != "" && p.To != "" {
		if start, end, err := parseDateRange(p.From, p.To); err == nil {
			return domain.Range{
				Start:   start,
				End:     end,
				FromDay: start,
				ToDay:   end.AddDate(0, 0, -1),
			}
		}
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return domain.Range{
		Start:   monthStart,
		End:     now,
		FromDay: monthStart.In(loc),
		ToDay:   now.In(loc),
	}
}
