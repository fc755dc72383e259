package migrate

import (
	"errors"
	"fmt"
)

// ErrPlanning marks malformed local configuration detected before any
// submission, such as a non-numeric init argument.
var ErrPlanning = errors.New("invalid migration configuration")

// MigrationError is a phase failure. The remaining phases of the run are
// aborted, but remote state is untouched authority: the next run rebuilds
// it from the log, recomputes the diff and retries only what is missing.
type MigrationError struct {
	Phase string
	Tag   string
	Err   error
}

func (e *MigrationError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("migration phase %q failed on %s: %v", e.Phase, e.Tag, e.Err)
	}
	return fmt.Sprintf("migration phase %q failed: %v", e.Phase, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

func phaseError(phase, tag string, err error) error {
	return &MigrationError{Phase: phase, Tag: tag, Err: err}
}
