// Package fiscal maps calendar dates onto company financial years. A
// financial year is identified by the calendar year in which it begins, so
// with an April start, February 2025 belongs to FY 2024.
package fiscal

import (
	"fmt"
	"time"

	"github.com/iho/balancechain/internal/domain"
)

var formatStartMonths = map[string]int{
	"january-december": 1,
	"february-january": 2,
	"march-february":   3,
	"april-march":      4,
	"may-april":        5,
	"june-may":         6,
	"july-june":        7,
	"august-july":      8,
	"september-august": 9,
}

// Calendar resolves dates against one company's financial year layout.
type Calendar struct {
	StartMonth   int
	StartingYear int
}

// New builds a Calendar from a company FY configuration. An explicit start
// month wins; otherwise it is derived from the named format.
func New(cfg domain.FYConfig) (Calendar, error) {
	startMonth := cfg.StartMonth
	if startMonth == 0 {
		m, ok := formatStartMonths[cfg.Format]
		if !ok {
			return Calendar{}, fmt.Errorf("%w: %q", domain.ErrInvalidFYFormat, cfg.Format)
		}

		startMonth = m
	}

	if startMonth < 1 || startMonth > 12 {
		return Calendar{}, fmt.Errorf("%w: start month %d", domain.ErrInvalidFYFormat, startMonth)
	}

	return Calendar{StartMonth: startMonth, StartingYear: cfg.StartingYear}, nil
}

// YearOf returns the financial year containing t.
func (c Calendar) YearOf(t time.Time) int {
	if int(t.Month()) >= c.StartMonth {
		return t.Year()
	}

	return t.Year() - 1
}

// YearMonth is one calendar month inside a financial year.
type YearMonth struct {
	Year  int
	Month int
}

// Months returns the 12 calendar months of the financial year beginning in
// fyStart, in chronological order.
func (c Calendar) Months(fyStart int) []YearMonth {
	months := make([]YearMonth, 0, 12)
	for i := 0; i < 12; i++ {
		m := c.StartMonth + i
		y := fyStart
		if m > 12 {
			m -= 12
			y++
		}

		months = append(months, YearMonth{Year: y, Month: m})
	}

	return months
}

// YearRange returns the inclusive UTC date range of a financial year.
func (c Calendar) YearRange(fyStart int) (time.Time, time.Time) {
	start := time.Date(fyStart, time.Month(c.StartMonth), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0).Add(-time.Nanosecond)

	return start, end
}

// MonthRange returns the inclusive UTC date range of one calendar month.
func MonthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	return start, end
}

// Label formats a financial year for display, e.g. 2024 -> "2024-25".
func Label(fyStart int) string {
	return fmt.Sprintf("%d-%02d", fyStart, (fyStart+1)%100)
}

// Years returns the inclusive ascending sequence [from, to]. An empty slice
// means from is after to.
func Years(from, to int) []int {
	if from > to {
		return nil
	}

	years := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, y)
	}

	return years
}
