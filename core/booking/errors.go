package booking

import (
	"errors"
	"fmt"
)

// ErrStaleResource is returned when a claim or reschedule target is no
// longer available at commit time. Recoverable by offering another slot;
// never retried automatically.
var ErrStaleResource = errors.New("resource no longer available")

// ErrNotFound is returned when a scheduled service or resource id is
// unknown to the store.
var ErrNotFound = errors.New("not found")

// CancellationWindowError refuses a cancellation requested inside the
// protected window. It carries the remaining-hours context for the caller.
type CancellationWindowError struct {
	RemainingHours float64
	WindowHours    float64
}

func (e *CancellationWindowError) Error() string {
	return fmt.Sprintf("cancellation refused: %.1fh before start, minimum is %.0fh", e.RemainingHours, e.WindowHours)
}
