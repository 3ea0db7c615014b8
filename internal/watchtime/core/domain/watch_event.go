package domain

import "time"

// RawRecord is one element of the upstream "watchtimes" array, as decoded.
type RawRecord map[string]any

// WatchEvent is a normalized "student watched part of a lesson" record.
type WatchEvent struct {
	Email           string
	FullName        string
	LessonName      string
	CourseName      string
	DurationSeconds int64
	LastUpdated     *time.Time // nil when updated_at is unparseable
	DaysSinceUpdate *int       // nil when LastUpdated is nil
}

// GroupKey identifies an AggregatedRow.
type GroupKey struct {
	FullName   string
	Email      string
	LessonName string
	CourseName string
}

func (e WatchEvent) Key() GroupKey {
	return GroupKey{
		FullName:   e.FullName,
		Email:      e.Email,
		LessonName: e.LessonName,
		CourseName: e.CourseName,
	}
}

type AggregatedRow struct {
	GroupKey
	DurationSeconds int64
	DaysSinceUpdate *int
	LastUpdated     *time.Time
}

// Range is the effective window of a report request.
type Range struct {
	// Start and End bound the upstream fetch, UTC, End exclusive.
	Start time.Time
	End   time.Time

	// FromDay and ToDay are the calendar days shown in the export filename.
	FromDay time.Time
	ToDay   time.Time
}
