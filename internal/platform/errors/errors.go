package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")
	ErrInvalidTimeRange    = errors.New("invalid time range")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrActiveConflict      = errors.New("blocked by an activity in progress")
	ErrOverrideRequired    = errors.New("overlapping activity requires override")
	ErrPersistence         = errors.New("persistence failure")
)

// Persistence tags a storage error so callers can match ErrPersistence
// while the driver cause stays reachable through errors.Is/As.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
