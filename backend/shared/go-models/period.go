package models

import (
	"fmt"
	"time"
)

// PeriodKeyLayout formats the year-month marker used as a send watermark.
const PeriodKeyLayout = "2006-01"

// Period is an inclusive date range, normally one calendar month.
// Start and End are dates at midnight UTC.
type Period struct {
	Start time.Time `json:"period_start"`
	End   time.Time `json:"period_end"`
}

// MonthPeriod returns the first..last day of the given month.
func MonthPeriod(year int, month time.Month) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, -1)}
}

// NewPeriod truncates both bounds to dates and checks their order.
func NewPeriod(start, end time.Time) (Period, error) {
	s := DateOnly(start)
	e := DateOnly(end)
	if e.Before(s) {
		return Period{}, fmt.Errorf("period end %s before start %s", e.Format(time.DateOnly), s.Format(time.DateOnly))
	}
	return Period{Start: s, End: e}, nil
}

// Key is the year-month of the period start, e.g. "2024-06".
func (p Period) Key() string {
	return p.Start.Format(PeriodKeyLayout)
}

func (p Period) String() string {
	return p.Start.Format(time.DateOnly) + ".." + p.End.Format(time.DateOnly)
}

// DateOnly drops the clock part, keeping the calendar date as seen in t's location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
