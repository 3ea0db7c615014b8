package upstream

import "time"

// Window is a half-open [From, To) slice of the fetch range.
type Window struct {
	From time.Time
	To   time.Time
}

// SplitWindows partitions [start, end) into consecutive windows of at most
// days days; the last window is truncated at end. It returns nil when the
// range is empty or inverted.
func SplitWindows(start, end time.Time, days int) []Window {
	if days < 1 {
		days = 1
	}
	var windows []Window
	for from := start; from.Before(end); {
		to := from.AddDate(0, 0, days)
		if to.After(end) {
			to = end
		}
		windows = append(windows, Window{From: from, To: to})
		from = to
	}
	return windows
}
