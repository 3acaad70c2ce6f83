package domain

import "time"

// Period is a calendar (month, year) pair used to scope aggregations and
// budget listings.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// CurrentPeriod returns the period of the server's current date. Callers
// resolve it once at the request boundary, never mid-computation.
func CurrentPeriod() Period {
	now := time.Now()
	return Period{Month: int(now.Month()), Year: now.Year()}
}

// Contains reports whether the calendar date d falls inside the period,
// ignoring the day of month.
func (p Period) Contains(d time.Time) bool {
	return d.Year() == p.Year && int(d.Month()) == p.Month
}

// Valid reports whether the period holds a real calendar month.
func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year >= MinBudgetYear
}
