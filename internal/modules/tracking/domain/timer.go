package domain

import (
	"fmt"

	apperrors "babylog/internal/platform/errors"
)

// Status is the running/paused marker of one timer variant. Each kind has its
// own status type so a nursing side can never be applied to a pumping timer.
type Status interface {
	fmt.Stringer
	kind() Kind
}

type NursingStatus string

const (
	NursingLeft   NursingStatus = "left"
	NursingRight  NursingStatus = "right"
	NursingPaused NursingStatus = "paused"
)

func (s NursingStatus) String() string { return string(s) }
func (NursingStatus) kind() Kind       { return KindNursing }

type PumpingStatus string

const (
	PumpingRunning PumpingStatus = "running"
	PumpingPaused  PumpingStatus = "paused"
)

func (s PumpingStatus) String() string { return string(s) }
func (PumpingStatus) kind() Kind       { return KindPumping }

// Buckets is the flat view of accumulated seconds used for storage and rescaling.
type Buckets struct {
	Left    int64
	Right   int64
	Paused  int64
	Seconds int64
}

func (b Buckets) Sum() int64 {
	return b.Left + b.Right + b.Paused + b.Seconds
}

// Timer is the per-kind accumulated state of an ActiveSession.
type Timer interface {
	Kind() Kind
	Status() Status
	Running() bool
	Buckets() Buckets
	accrue(seconds int64) Timer
	withStatus(to Status) (Timer, error)
	withBuckets(b Buckets) Timer
}

type NursingTimer struct {
	State         NursingStatus
	LeftSeconds   int64
	RightSeconds  int64
	PausedSeconds int64
}

func (t NursingTimer) Kind() Kind     { return KindNursing }
func (t NursingTimer) Status() Status { return t.State }
func (t NursingTimer) Running() bool  { return t.State != NursingPaused }

func (t NursingTimer) Buckets() Buckets {
	return Buckets{Left: t.LeftSeconds, Right: t.RightSeconds, Paused: t.PausedSeconds}
}

func (t NursingTimer) accrue(seconds int64) Timer {
	switch t.State {
	case NursingLeft:
		t.LeftSeconds += seconds
	case NursingRight:
		t.RightSeconds += seconds
	default:
		t.PausedSeconds += seconds
	}
	return t
}

func (t NursingTimer) withStatus(to Status) (Timer, error) {
	s, ok := to.(NursingStatus)
	if !ok {
		return nil, fmt.Errorf("%w: %s status on a nursing session", apperrors.ErrInvalidTransition, to.kind())
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	t.State = s
	return t, nil
}

func (t NursingTimer) withBuckets(b Buckets) Timer {
	t.LeftSeconds, t.RightSeconds, t.PausedSeconds = b.Left, b.Right, b.Paused
	return t
}

// FedSeconds is the time spent on either side, excluding pauses.
func (t NursingTimer) FedSeconds() int64 {
	return t.LeftSeconds + t.RightSeconds
}

// Rebalance reassigns the left/right split while keeping their sum fixed.
func (t NursingTimer) Rebalance(left int64) (NursingTimer, error) {
	total := t.FedSeconds()
	if left < 0 || left > total {
		return t, fmt.Errorf("%w: left seconds must be within [0, %d]", apperrors.ErrInvalidInput, total)
	}
	t.LeftSeconds = left
	t.RightSeconds = total - left
	return t, nil
}

type PumpingTimer struct {
	State   PumpingStatus
	Seconds int64
}

func (t PumpingTimer) Kind() Kind       { return KindPumping }
func (t PumpingTimer) Status() Status   { return t.State }
func (t PumpingTimer) Running() bool    { return t.State == PumpingRunning }
func (t PumpingTimer) Buckets() Buckets { return Buckets{Seconds: t.Seconds} }

// Paused pumping time is not accumulated anywhere.
func (t PumpingTimer) accrue(seconds int64) Timer {
	if t.State == PumpingRunning {
		t.Seconds += seconds
	}
	return t
}

func (t PumpingTimer) withStatus(to Status) (Timer, error) {
	s, ok := to.(PumpingStatus)
	if !ok {
		return nil, fmt.Errorf("%w: %s status on a pumping session", apperrors.ErrInvalidTransition, to.kind())
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	t.State = s
	return t, nil
}

func (t PumpingTimer) withBuckets(b Buckets) Timer {
	t.Seconds = b.Seconds
	return t
}

// SleepTimer carries no counters: its duration is always derived from the start time.
type SleepTimer struct{}

const sleepRunning = "running"

type sleepStatus struct{}

func (sleepStatus) String() string { return sleepRunning }
func (sleepStatus) kind() Kind     { return KindSleep }

func (SleepTimer) Kind() Kind                  { return KindSleep }
func (SleepTimer) Status() Status              { return sleepStatus{} }
func (SleepTimer) Running() bool               { return true }
func (SleepTimer) Buckets() Buckets            { return Buckets{} }
func (t SleepTimer) accrue(int64) Timer        { return t }
func (t SleepTimer) withBuckets(Buckets) Timer { return t }

func (SleepTimer) withStatus(Status) (Timer, error) {
	return nil, fmt.Errorf("%w: sleep sessions cannot be paused", apperrors.ErrInvalidTransition)
}

func (s NursingStatus) validate() error {
	switch s {
	case NursingLeft, NursingRight, NursingPaused:
		return nil
	default:
		return fmt.Errorf("%w: unknown nursing status %q", apperrors.ErrInvalidTransition, string(s))
	}
}

func (s PumpingStatus) validate() error {
	switch s {
	case PumpingRunning, PumpingPaused:
		return nil
	default:
		return fmt.Errorf("%w: unknown pumping status %q", apperrors.ErrInvalidTransition, string(s))
	}
}

// NewTimer creates a zeroed timer for kind. A nil initial status picks the
// kind's default: nursing starts on the left side, pumping starts running.
func NewTimer(kind Kind, initial Status) (Timer, error) {
	var t Timer
	switch kind {
	case KindNursing:
		t = NursingTimer{State: NursingLeft}
	case KindPumping:
		t = PumpingTimer{State: PumpingRunning}
	case KindSleep:
		return SleepTimer{}, nil
	default:
		return nil, fmt.Errorf("%w: %s does not support timed sessions", apperrors.ErrInvalidInput, kind)
	}
	if initial == nil {
		return t, nil
	}
	return t.withStatus(initial)
}

// RestoreTimer rebuilds a timer from its stored status label and buckets.
func RestoreTimer(kind Kind, status string, b Buckets) (Timer, error) {
	parsed, err := ParseStatus(kind, status)
	if err != nil {
		return nil, err
	}
	t, err := NewTimer(kind, parsed)
	if err != nil {
		return nil, err
	}
	return t.withBuckets(b), nil
}

// ParseStatus maps a status label onto kind's status type. Sleep has no
// status, so any label yields nil.
func ParseStatus(kind Kind, label string) (Status, error) {
	switch kind {
	case KindNursing:
		s := NursingStatus(label)
		if err := s.validate(); err != nil {
			return nil, err
		}
		return s, nil
	case KindPumping:
		s := PumpingStatus(label)
		if err := s.validate(); err != nil {
			return nil, err
		}
		return s, nil
	case KindSleep:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s does not support timed sessions", apperrors.ErrInvalidInput, kind)
	}
}
