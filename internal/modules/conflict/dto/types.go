package dto

import (
	"strings"
	"time"

	apperrors "babylog/internal/platform/errors"
)

type EvaluateInput struct {
	BabyID string
	Kind   string
	// StartTime zero means now; EndTime zero means the activity stays open.
	StartTime time.Time
	EndTime   time.Time
	// ExcludeID skips the session being edited.
	ExcludeID string
}

type ActivityOutput struct {
	ID          string
	Kind        string
	StartTime   time.Time
	Description string
}

type ConflictOutput struct {
	Kind        string
	Activities  []ActivityOutput
	Overridable bool
	Retroactive bool
	Message     string
}

type EvaluateOutput struct {
	Conflicts []ConflictOutput
}

// Blocking reports whether any conflict cannot be overridden.
func (o EvaluateOutput) Blocking() bool {
	for _, c := range o.Conflicts {
		if !c.Overridable {
			return true
		}
	}
	return false
}

// Gate returns nil when the action may proceed. Blocking conflicts always
// fail; advisory ones fail unless allowOverride is set.
func (o EvaluateOutput) Gate(allowOverride bool) error {
	if len(o.Conflicts) == 0 {
		return nil
	}
	if !o.Blocking() && allowOverride {
		return nil
	}
	return &Error{Conflicts: o.Conflicts}
}

// Warnings lists the messages of every conflict, for reporting overrides.
func (o EvaluateOutput) Warnings() []string {
	out := make([]string, 0, len(o.Conflicts))
	for _, c := range o.Conflicts {
		out = append(out, c.Message)
	}
	return out
}

// Error carries the conflicts that stopped an action. It unwraps to
// ErrActiveConflict when one is blocking, otherwise to ErrOverrideRequired.
type Error struct {
	Conflicts []ConflictOutput
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		msgs = append(msgs, c.Message)
	}
	return e.Unwrap().Error() + ": " + strings.Join(msgs, "; ")
}

func (e *Error) Unwrap() error {
	if (EvaluateOutput{Conflicts: e.Conflicts}).Blocking() {
		return apperrors.ErrActiveConflict
	}
	return apperrors.ErrOverrideRequired
}
