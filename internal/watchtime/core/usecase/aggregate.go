package usecase

import "watchtime-report-service/internal/watchtime/core/domain"

// Aggregate groups events by (full name, email, lesson, course). Durations
// are summed (saturating), staleness takes the minimum and LastUpdated the maximum, both
// ignoring unknown values. Rows come out in first-seen key order.
func Aggregate(events []domain.WatchEvent) []domain.AggregatedRow {
	index := make(map[domain.GroupKey]int, len(events))
	rows := make([]domain.AggregatedRow, 0)

	for _, e := range events {
		key := e.Key()
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, domain.AggregatedRow{GroupKey: key})
		}
		row := &rows[i]

		row.DurationSeconds = domain.AddDuration(row.DurationSeconds, e.DurationSeconds)

		if e.DaysSinceUpdate != nil && (row.DaysSinceUpdate == nil || *e.DaysSinceUpdate < *row.DaysSinceUpdate) {
			d := *e.DaysSinceUpdate
			row.DaysSinceUpdate = &d
		}
		if e.LastUpdated != nil && (row.LastUpdated == nil || e.LastUpdated.After(*row.LastUpdated)) {
			t := *e.LastUpdated
			row.LastUpdated = &t
		}
	}

	return rows
}
