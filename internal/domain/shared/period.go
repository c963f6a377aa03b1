package shared

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidPeriod = errors.New("period must be formatted as YYYY-MM")

// Period is a billing month ("competencia"), encoded as "YYYY-MM".
type Period string

func NewPeriod(year int, month time.Month) Period {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period(t.Format("2006-01"))
}

// PeriodOf returns the billing month containing d.
func PeriodOf(d Date) Period {
	return NewPeriod(d.Year(), d.Month())
}

func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return NewPeriod(t.Year(), t.Month()), nil
}

func (p Period) Validate() error {
	_, err := ParsePeriod(string(p))
	return err
}

// AddMonths returns the period n months later. An invalid period is returned unchanged.
func (p Period) AddMonths(n int) Period {
	t, err := time.Parse("2006-01", string(p))
	if err != nil {
		return p
	}
	return NewPeriod(t.Year(), t.Month()+time.Month(n))
}

func (p Period) String() string { return string(p) }
