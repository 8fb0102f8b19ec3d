package periods

import (
	"fmt"
	"time"
)

// Period represents one month of a fiscal year.
type Period struct {
	FiscalYear int
	Number     int
	StartDate  time.Time
	EndDate    time.Time
}

// Code renders the period as FY2025-P01.
func (p Period) Code() string {
	return fmt.Sprintf("FY%d-P%02d", p.FiscalYear, p.Number)
}

// Contains reports whether date falls inside the period.
func (p Period) Contains(date time.Time) bool {
	d := truncate(date)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
