package periods

import "time"

// Calendar maps calendar dates onto fiscal years of twelve monthly periods.
// A fiscal year is labelled by the calendar year in which it starts.
type Calendar struct {
	startMonth time.Month
}

// NewCalendar builds a calendar whose year starts in startMonth (1-12).
// Out-of-range values fall back to April.
func NewCalendar(startMonth int) Calendar {
	if startMonth < 1 || startMonth > 12 {
		startMonth = int(time.April)
	}
	return Calendar{startMonth: time.Month(startMonth)}
}

// StartMonth returns the first month of the fiscal year.
func (c Calendar) StartMonth() time.Month {
	if c.startMonth == 0 {
		return time.April
	}
	return c.startMonth
}

// Resolve returns the fiscal year and 1-based period number for date.
func (c Calendar) Resolve(date time.Time) (year, period int) {
	start := c.StartMonth()
	year = date.Year()
	offset := int(date.Month()) - int(start)
	if offset < 0 {
		year--
		offset += 12
	}
	return year, offset + 1
}

// PeriodOf returns the full period covering date.
func (c Calendar) PeriodOf(date time.Time) Period {
	year, number := c.Resolve(date)
	return c.Period(year, number)
}

// Period returns the bounds of period number in fiscal year.
func (c Calendar) Period(year, number int) Period {
	first := time.Date(year, c.StartMonth()+time.Month(number-1), 1, 0, 0, 0, 0, time.UTC)
	return Period{
		FiscalYear: year,
		Number:     number,
		StartDate:  first,
		EndDate:    first.AddDate(0, 1, -1),
	}
}

// YearBounds returns the first and last day of fiscal year.
func (c Calendar) YearBounds(year int) (time.Time, time.Time) {
	return c.Period(year, 1).StartDate, c.Period(year, 12).EndDate
}
