package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownDomain      = errors.New("unknown domain")
	ErrUnknownStatus      = errors.New("status not allowed for domain")
	ErrBackwardTransition = errors.New("backward transition not allowed")
	ErrTerminalStatus     = errors.New("record already reached a terminal status")
)

// ValidationError lists the curated fields that must be filled before a
// record can be exposed with a public status.
type ValidationError struct {
	Status  Status
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("status %q requires non-empty fields: %s", e.Status, strings.Join(e.Missing, ", "))
}

func unknownStatus(d Domain, s Status) error {
	return fmt.Errorf("%w: %q is not one of %s statuses", ErrUnknownStatus, s, d)
}
