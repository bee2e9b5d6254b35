package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"time"
)

// Period is a value object identifying one calendar-month evaluation cycle.
// Its canonical form is the "YYYY-MM" key used throughout scoring and payroll.
// It is immutable - all operations return new Period instances.
type Period struct {
	year  int
	month time.Month
}

// NewPeriod creates a Period from a year and month
func NewPeriod(year int, month time.Month) (Period, error) {
	if year < 1900 || year > 9999 {
		return Period{}, fmt.Errorf("year out of range: %d", year)
	}
	if month < time.January || month > time.December {
		return Period{}, fmt.Errorf("month out of range: %d", month)
	}
	return Period{year: year, month: month}, nil
}

// ParsePeriod parses a canonical "YYYY-MM" key
func ParsePeriod(s string) (Period, error) {
	if len(s) != 7 || s[4] != '-' {
		return Period{}, fmt.Errorf("invalid period %q: expected YYYY-MM", s)
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	return NewPeriod(t.Year(), t.Month())
}

// PeriodOf returns the period containing the given instant
func PeriodOf(t time.Time) Period {
	return Period{year: t.Year(), month: t.Month()}
}

// CurrentPeriod returns the period containing the current time
func CurrentPeriod() Period {
	return PeriodOf(time.Now())
}

// Year returns the calendar year
func (p Period) Year() int {
	return p.year
}

// Month returns the calendar month
func (p Period) Month() time.Month {
	return p.month
}

// IsZero reports whether the period is the zero value
func (p Period) IsZero() bool {
	return p.year == 0
}

// String returns the canonical "YYYY-MM" key
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.year, int(p.month))
}

// Prev returns the preceding period, wrapping January to December of the prior year
func (p Period) Prev() Period {
	if p.month == time.January {
		return Period{year: p.year - 1, month: time.December}
	}
	return Period{year: p.year, month: p.month - 1}
}

// Next returns the following period, wrapping December to January of the next year
func (p Period) Next() Period {
	if p.month == time.December {
		return Period{year: p.year + 1, month: time.January}
	}
	return Period{year: p.year, month: p.month + 1}
}

// Compare orders periods chronologically: -1 if p is earlier than other,
// 0 if equal, +1 if later
func (p Period) Compare(other Period) int {
	switch {
	case p.year != other.year:
		if p.year < other.year {
			return -1
		}
		return 1
	case p.month != other.month:
		if p.month < other.month {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Before reports whether p is chronologically before other
func (p Period) Before(other Period) bool {
	return p.Compare(other) < 0
}

// After reports whether p is chronologically after other
func (p Period) After(other Period) bool {
	return p.Compare(other) > 0
}

// Equals reports whether two periods identify the same month
func (p Period) Equals(other Period) bool {
	return p.year == other.year && p.month == other.month
}

// Start returns the first instant of the period in the given location
func (p Period) Start(loc *time.Location) time.Time {
	return time.Date(p.year, p.month, 1, 0, 0, 0, 0, loc)
}

// End returns the first instant of the following period in the given location.
// The period covers [Start, End).
func (p Period) End(loc *time.Location) time.Time {
	n := p.Next()
	return time.Date(n.year, n.month, 1, 0, 0, 0, 0, loc)
}

// PeriodsEnding yields, in ascending order, the count periods that end at and
// include end. The sequence is finite and restartable; count <= 0 yields nothing.
func PeriodsEnding(end Period, count int) iter.Seq[Period] {
	return func(yield func(Period) bool) {
		if count <= 0 {
			return
		}
		start := end
		for i := 1; i < count; i++ {
			start = start.Prev()
		}
		for p := start; ; p = p.Next() {
			if !yield(p) {
				return
			}
			if p.Equals(end) {
				return
			}
		}
	}
}

// PeriodKeysEnding collects PeriodsEnding into canonical string keys
func PeriodKeysEnding(end Period, count int) []string {
	keys := make([]string, 0, max(count, 0))
	for p := range PeriodsEnding(end, count) {
		keys = append(keys, p.String())
	}
	return keys
}

// MarshalJSON serializes the period as its canonical key
func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON deserializes a canonical "YYYY-MM" key
func (p *Period) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to unmarshal period: %w", err)
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value implements driver.Valuer for database serialization
func (p Period) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements sql.Scanner for database deserialization
func (p *Period) Scan(value any) error {
	if value == nil {
		return errors.New("cannot scan nil into Period")
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Period", value)
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
