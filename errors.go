package icannreport

import "fmt"

// ErrInvalidMonth is returned when a report month does not parse as a valid
// calendar month in YYYY-MM form.
type ErrInvalidMonth struct {
	Month string
}

func (e *ErrInvalidMonth) Error() string {
	return fmt.Sprintf("icannreport: month %q is not a valid YYYY-MM month", e.Month)
}

// NewErrInvalidMonth constructs a new ErrInvalidMonth for the given input.
func NewErrInvalidMonth(month string) error {
	return &ErrInvalidMonth{Month: month}
}

// ErrInvalidRegistrarCount is returned when a registrar-count threshold is
// outside the allowed domain (negative).
type ErrInvalidRegistrarCount struct {
	Count int
}

func (e *ErrInvalidRegistrarCount) Error() string {
	return fmt.Sprintf("icannreport: registrar count %d is negative", e.Count)
}

// NewErrInvalidRegistrarCount constructs a new ErrInvalidRegistrarCount with
// the provided count.
func NewErrInvalidRegistrarCount(count int) error {
	return &ErrInvalidRegistrarCount{Count: count}
}
