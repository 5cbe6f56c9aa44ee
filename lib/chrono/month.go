// Package chrono provides a calendar-month value type used for monthly
// sales aggregation and forecast period labels.
package chrono

import (
	"fmt"
	"time"
)

// Month is a specific calendar month of a specific year.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses "YYYY-MM". A longer date string such as "YYYY-MM-DD" is
// accepted and truncated to its month.
func ParseMonth(s string) (Month, error) {
	if len(s) > 7 {
		s = s[:7]
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// index of the month on a continuous timeline, so ordering and distance
// reduce to integer arithmetic.
func (m Month) index() int {
	return m.Year*12 + int(m.Month) - 1
}

func (m Month) Add(months int) Month {
	idx := m.index() + months
	return Month{
		Year:  idx / 12,
		Month: time.Month(idx%12 + 1),
	}
}

// Sub returns the number of months from o to m.
func (m Month) Sub(o Month) int {
	return m.index() - o.index()
}

func (m Month) Before(o Month) bool {
	return m.index() < o.index()
}

func (m Month) After(o Month) bool {
	return m.index() > o.index()
}

// Compare orders months chronologically, for use with slices.SortFunc.
func (m Month) Compare(o Month) int {
	return m.index() - o.index()
}
