package usecase

import (
	"errors"
	"fmt"
	"time"

	"watchtime-report-service/internal/watchtime/core/domain"
)

// ErrSchemaMismatch means the upstream records lack a required field.
var ErrSchemaMismatch = errors.New("upstream schema mismatch")

// Upstream field names.
const (
	FieldEmail    = "user_email"
	FieldFullName = "user_full_name"
	FieldLesson   = "lesson_name"
	FieldCourse   = "course_name"
	FieldDuration = "until_completed_duration"
	FieldUpdated  = "updated_at"
)

var requiredFields = []string{
	FieldEmail,
	FieldFullName,
	FieldLesson,
	FieldCourse,
	FieldDuration,
	FieldUpdated,
}

// NormalizeResult carries the events that survived normalization and the
// number of records dropped for missing or malformed fields.
type NormalizeResult struct {
	Events    []domain.WatchEvent
	Discarded int
}

// Normalize validates the schema against the first record, then converts
// every record. A record whose updated_at cannot be parsed is kept with an
// unknown LastUpdated.
func Normalize(raw []domain.RawRecord, now time.Time) (NormalizeResult, error) {
	res := NormalizeResult{Events: make([]domain.WatchEvent, 0, len(raw))}
	if len(raw) == 0 {
		return res, nil
	}

	for _, f := range requiredFields {
		if _, ok := raw[0][f]; !ok {
			return NormalizeResult{}, fmt.Errorf("%w: missing field %q", ErrSchemaMismatch, f)
		}
	}

	for _, r := range raw {
		e, ok := normalizeRecord(r, now)
		if !ok {
			res.Discarded++
			continue
		}
		res.Events = append(res.Events, e)
	}
	return res, nil
}

func normalizeRecord(r domain.RawRecord, now time.Time) (domain.WatchEvent, bool) {
	email, ok1 := r[FieldEmail].(string)
	name, ok2 := r[FieldFullName].(string)
	lesson, ok3 := r[FieldLesson].(string)
	course, ok4 := r[FieldCourse].(string)
	dur, ok5 := r[FieldDuration].(string)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return domain.WatchEvent{}, false
	}
	if _, ok := r[FieldUpdated]; !ok {
		return domain.WatchEvent{}, false
	}

	seconds, err := domain.ParseDuration(dur)
	if err != nil {
		return domain.WatchEvent{}, false
	}

	e := domain.WatchEvent{
		Email:           email,
		FullName:        name,
		LessonName:      lesson,
		CourseName:      course,
		DurationSeconds: seconds,
	}
	if s, ok := r[FieldUpdated].(string); ok {
		if ts, ok := domain.ParseTimestamp(s); ok {
			e.LastUpdated = &ts
		}
	}
	e.DaysSinceUpdate = domain.DaysSince(e.LastUpdated, now)
	return e, true
}
