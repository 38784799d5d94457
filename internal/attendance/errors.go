package attendance

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateSession is returned when a clock-in finds an open session.
	ErrDuplicateSession = errors.New("an active session already exists, clock out first")
	// ErrNoActiveSession is returned when an operation needs an open session and none exists.
	ErrNoActiveSession = errors.New("no active session")
	// ErrOnBreak blocks clock-out and break-start while a break is open.
	ErrOnBreak = errors.New("a break is in progress, end it first")
	// ErrNoActiveBreak is returned by EndBreak when no break is open.
	ErrNoActiveBreak = errors.New("no break in progress")
	// ErrMissingEodReport blocks clock-out until an end-of-day report exists.
	ErrMissingEodReport = errors.New("no end-of-day report submitted for this session")
	// ErrInvalidBreakType rejects break types outside the known set.
	ErrInvalidBreakType = errors.New("unknown break type")
	// ErrConsentNotPending is returned when a monitoring grant/deny arrives
	// without an outstanding consent request.
	ErrConsentNotPending = errors.New("no monitoring consent pending")
	// ErrSourceDenied is returned when mandatory monitoring consent is refused.
	ErrSourceDenied = errors.New("screen monitoring is required to start work")
)

// EarlyClockOutError defers a clock-out that falls short of the required
// time. It is a soft gate: the caller may retry with confirmation.
type EarlyClockOutError struct {
	Decision Decision
}

func (e *EarlyClockOutError) Error() string {
	return fmt.Sprintf("%.0f minutes short of required time, confirmation needed", e.Decision.ShortfallMinutes)
}
