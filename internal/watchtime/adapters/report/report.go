// Package report renders aggregated rows as JSON records or as a
// semicolon-delimited CSV file.
package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"watchtime-report-service/internal/watchtime/core/domain"
)

// Column order shared by JSON keys and the CSV header.
var Columns = []string{
	"full_name",
	"email",
	"lesson_name",
	"course_name",
	"duration",
	"days_since_update",
	"last_updated",
}

const (
	bom       = "\ufeff"
	delimiter = ';'

	filenamePrefix = "relatorio_watchtime_"
	filenameLayout = "02-01-2006"
)

// Row is the presented form of domain.AggregatedRow.
type Row struct {
	FullName        string  `json:"full_name" example:"Ana Souza"`
	Email           string  `json:"email" example:"ana@pditabira.com"`
	LessonName      string  `json:"lesson_name" example:"Aula 1"`
	CourseName      string  `json:"course_name" example:"Python"`
	Duration        string  `json:"duration" example:"01:02:03"`
	DaysSinceUpdate *int    `json:"days_since_update" example:"3"`
	LastUpdated     *string `json:"last_updated" example:"2024-01-07T10:00:00.000Z"`
}

// ToRows never returns nil so an empty report encodes as [].
func ToRows(rows []domain.AggregatedRow) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		row := Row{
			FullName:   r.FullName,
			Email:      r.Email,
			LessonName: r.LessonName,
			CourseName: r.CourseName,
			Duration:   domain.FormatDuration(r.DurationSeconds),
		}
		if r.DaysSinceUpdate != nil {
			d := *r.DaysSinceUpdate
			row.DaysSinceUpdate = &d
		}
		if r.LastUpdated != nil {
			s := domain.FormatTimestamp(*r.LastUpdated)
			row.LastUpdated = &s
		}
		out = append(out, row)
	}
	return out
}

func (r Row) record() []string {
	days := ""
	if r.DaysSinceUpdate != nil {
		days = strconv.Itoa(*r.DaysSinceUpdate)
	}
	updated := ""
	if r.LastUpdated != nil {
		updated = *r.LastUpdated
	}
	return []string{r.FullName, r.Email, r.LessonName, r.CourseName, r.Duration, days, updated}
}

// WriteCSV writes a BOM, the header and one line per row. Null values are
// written as empty fields.
func WriteCSV(w io.Writer, rows []Row) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename derives the attachment name from the range labels. A single-day
// range yields one date; otherwise "<from>_ate_<to>".
func Filename(rng domain.Range) string {
	from := rng.FromDay.Format(filenameLayout)
	to := rng.ToDay.Format(filenameLayout)
	if from == to {
		return filenamePrefix + from + ".csv"
	}
	return filenamePrefix + from + "_ate_" + to + ".csv"
}
