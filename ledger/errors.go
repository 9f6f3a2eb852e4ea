package ledger

import (
	"errors"
	"fmt"

	"github.com/warp/bookkeeping-engine/generic"
)

// ErrPeriodClosed is returned when posting to a closed accounting period.
var ErrPeriodClosed = errors.New("accounting period closed")

// PeriodClosedError names the closed period.
type PeriodClosedError struct {
	Period PeriodIdentifier
}

func (e *PeriodClosedError) Error() string {
	return fmt.Sprintf("accounting period %s is closed", e.Period)
}

// Unwrap also reports generic.ErrInvalidArgument so the pipeline treats a
// closed period as a rejection rather than a failure.
func (e *PeriodClosedError) Unwrap() []error {
	return []error{ErrPeriodClosed, generic.ErrInvalidArgument}
}
