package features

import (
	"time"

	"QuoteLens/internal/domain/models"
	"QuoteLens/internal/domain/repository"
)

// Window returns the [start, end] range for a period ending at now.
// Month arithmetic normalises overflow the way time.AddDate does (Mar 31 - 1mo = Mar 3).
func Window(period repository.Period, now time.Time) (start, end time.Time) {
	years, months := period.Offset()
	return now.AddDate(-years, -months, 0), now
}

// FilterByPeriod keeps the points dated within the period window, both ends inclusive.
// Order is preserved and nothing is sorted. The result may be empty.
func FilterByPeriod(series models.PriceSeries, period repository.Period, now time.Time) models.PriceSeries {
	start, end := Window(period, now)
	return FilterRange(series, start, end)
}

// FilterRange keeps the points with start <= date <= end.
func FilterRange(series models.PriceSeries, start, end time.Time) models.PriceSeries {
	out := make(models.PriceSeries, 0, len(series))
	for _, p := range series {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}
