package climate

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when a query needs at least one observation and the store has none.
	ErrEmptyDataset = errors.New("dataset has no observations")
)

// DateParseError reports a date that is not a well-formed YYYY-MM-DD string.
type DateParseError struct {
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", e.Value)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}

// StoreUnavailableError wraps a failure to reach the Record Store.
// It is never retried by this package.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("record store unavailable: %v", e.Err)
	}
	return fmt.Sprintf("record store unavailable (%s): %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// IsDateParseError reports whether err is or wraps a *DateParseError.
func IsDateParseError(err error) bool {
	var dpe *DateParseError
	return errors.As(err, &dpe)
}

// IsStoreUnavailable reports whether err is or wraps a *StoreUnavailableError.
func IsStoreUnavailable(err error) bool {
	var sue *StoreUnavailableError
	return errors.As(err, &sue)
}
