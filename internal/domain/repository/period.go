package repository

// Period is a lookback token.
type Period string

const (
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"
	Period2Y  Period = "2y"
)

// Periods lists every supported token, shortest first.
var Periods = []Period{Period1Mo, Period3Mo, Period6Mo, Period1Y, Period2Y}

// IsValidPeriod returns true if p is a supported period.
func IsValidPeriod(p Period) bool {
	switch p {
	case Period1Mo, Period3Mo, Period6Mo, Period1Y, Period2Y:
		return true
	default:
		return false
	}
}

// DefaultPeriod returns the default period.
func DefaultPeriod() Period { return Period1Mo }

// NormalizePeriod converts raw string to a valid period (or default).
func NormalizePeriod(s string) Period {
	if s == "" {
		return DefaultPeriod()
	}
	p := Period(s)
	if IsValidPeriod(p) {
		return p
	}
	return DefaultPeriod()
}

// Offset returns the calendar offset subtracted from "now" to get the window start.
func (p Period) Offset() (years, months int) {
	switch p {
	case Period1Mo:
		return 0, 1
	case Period3Mo:
		return 0, 3
	case Period6Mo:
		return 0, 6
	case Period1Y:
		return 1, 0
	case Period2Y:
		return 2, 0
	default:
		return 0, 1
	}
}
