package domain

import "time"

// Export is the audit entry of one CSV download. It never carries report rows.
type Export struct {
	ID         string
	Filename   string
	RangeStart time.Time
	RangeEnd   time.Time
	Interval   string
	City       string
	Rows       int
	RequestID  string
	ExportedAt time.Time
}
