package usecase

import (
	"context"
	"strings"
	"time"

	"watchtime-report-service/internal/logging"
	"watchtime-report-service/internal/watchtime/core/domain"
)

// cityEmailMarkers maps a city filter to the substring its emails carry.
var cityEmailMarkers = map[string]string{
	"itabira":     "@pditabira",
	"bomdespacho": "@pdbomdespacho",
}

// Filter applies the time window and then the city filter.
//
// A valid interval wins over from/to. A malformed interval or unparseable
// dates disable time filtering instead of failing. Events with an unknown
// LastUpdated never pass a time window.
func Filter(ctx context.Context, events []domain.WatchEvent, p FilterParams, now time.Time) []domain.WatchEvent {
	switch {
	case p.Interval != "":
		d, ok := ParseInterval(p.Interval)
		if !ok {
			logging.Ctx(ctx).Warn().Str("intervalo", p.Interval).Msg("ignoring malformed interval")
			break
		}
		cutoff := now.Add(-d)
		events = keep(events, func(e domain.WatchEvent) bool {
			return e.LastUpdated != nil && !e.LastUpdated.Before(cutoff)
		})

	case p.From != "" && p.To != "":
		start, end, err := parseDateRange(p.From, p.To)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("from", p.From).Str("to", p.To).Msg("ignoring unparseable date range")
			break
		}
		events = keep(events, func(e domain.WatchEvent) bool {
			return e.LastUpdated != nil && !e.LastUpdated.Before(start) && e.LastUpdated.Before(end)
		})
	}

	if marker, ok := cityEmailMarkers[p.City]; ok {
		events = keep(events, func(e domain.WatchEvent) bool {
			return strings.Contains(e.Email, marker)
		})
	}

	return events
}

// FilterEmailDomains keeps events whose email ends with "@<domain>" for one
// of the domains. An empty list keeps everything.
func FilterEmailDomains(events []domain.WatchEvent, domains []string) []domain.WatchEvent {
	if len(domains) == 0 {
		return events
	}
	return keep(events, func(e domain.WatchEvent) bool {
		for _, d := range domains {
			if strings.HasSuffix(e.Email, "@"+d) {
				return true
			}
		}
		return false
	})
}

func keep(events []domain.WatchEvent, pred func(domain.WatchEvent) bool) []domain.WatchEvent {
	out := make([]domain.WatchEvent, 0, len(events))
	for _, e := range events {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}
