// Package payroll computes aggregates over locally mirrored punches.
package payroll

import (
	"fmt"
	"time"

	"worklog-backend/internal/model"
)

// MonthRange returns the UTC half-open interval [start, next) for the
// given year and zero-based month.
func MonthRange(year, month0 int) (start, next time.Time) {
	start = time.Date(year, time.Month(month0+1), 1, 0, 0, 0, 0, time.UTC)
	next = start.AddDate(0, 1, 0)
	return start, next
}

// TotalForMonth sums duration_ms over the subject's "out" punches whose
// ts falls within the given month in UTC. A punch pair that spans a
// month boundary is attributed entirely to the month of the "out"
// event's own ts, not its started_at. Punches of kind "in", punches
// without a duration, and punches with an unparseable ts contribute
// zero.
func TotalForMonth(punches []model.PunchRow, year, month0 int) int64 {
	start, next := MonthRange(year, month0)

	var total int64
	for _, p := range punches {
		if p.Kind != model.PunchOut || p.DurationMs == nil {
			continue
		}
		ts, err := time.Parse(time.RFC3339, p.Ts)
		if err != nil {
			continue
		}
		ts = ts.UTC()
		if ts.Before(start) || !ts.Before(next) {
			continue
		}
		total += *p.DurationMs
	}
	return total
}

// FormatHm renders a millisecond duration as "HH:MM".
func FormatHm(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalMinutes := ms / 1000 / 60
	return fmt.Sprintf("%02d:%02d", totalMinutes/60, totalMinutes%60)
}
