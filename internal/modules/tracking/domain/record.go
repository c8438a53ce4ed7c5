package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "babylog/internal/platform/errors"
)

// Record is a permanent, immutable activity entry. Finalized sessions and
// directly logged entries share this shape.
type Record struct {
	ID            string
	BabyID        string
	Kind          Kind
	StartTime     time.Time
	EndTime       time.Time
	LeftSeconds   int64
	RightSeconds  int64
	PausedSeconds int64
	Seconds       int64
	Notes         string
	Fields        map[string]string
	CreatedAt     time.Time
}

func (r Record) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: record id is required", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(r.BabyID) == "" {
		return fmt.Errorf("%w: baby id is required", apperrors.ErrInvalidInput)
	}
	if err := r.Kind.Validate(); err != nil {
		return err
	}
	if r.StartTime.IsZero() {
		return fmt.Errorf("%w: start time is required", apperrors.ErrInvalidTimeRange)
	}
	if r.EndTime.Before(r.StartTime) {
		return fmt.Errorf("%w: end time precedes start time", apperrors.ErrInvalidTimeRange)
	}
	return nil
}
