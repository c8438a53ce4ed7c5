package domain

import (
	"fmt"
	"time"

	apperrors "babylog/internal/platform/errors"
)

// ActiveSession is a not-yet-finalized timed activity. Methods return updated
// copies; callers persist the result.
type ActiveSession struct {
	ID               string
	BabyID           string
	StartTime        time.Time
	LastCheckpointAt time.Time
	Timer            Timer
	Notes            string
	Fields           map[string]string
}

func (s ActiveSession) Kind() Kind {
	if s.Timer == nil {
		return ""
	}
	return s.Timer.Kind()
}

// Elapsed is the whole seconds between the last checkpoint and now. A clock
// that moved backwards contributes nothing.
func (s ActiveSession) Elapsed(now time.Time) int64 {
	d := now.Sub(s.LastCheckpointAt)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// Flush adds the seconds elapsed since the checkpoint to the bucket selected
// by the current status. The checkpoint advances by whole seconds only, so the
// truncated remainder is carried into the next flush instead of being lost.
func (s ActiveSession) Flush(now time.Time) ActiveSession {
	elapsed := s.Elapsed(now)
	if elapsed == 0 {
		return s
	}
	s.Timer = s.Timer.accrue(elapsed)
	s.LastCheckpointAt = s.LastCheckpointAt.Add(time.Duration(elapsed) * time.Second)
	return s
}

// Transition flushes into the old status bucket, then switches status.
func (s ActiveSession) Transition(to Status, now time.Time) (ActiveSession, error) {
	if to == nil {
		return s, fmt.Errorf("%w: status is required", apperrors.ErrInvalidTransition)
	}
	s = s.Flush(now)
	next, err := s.Timer.withStatus(to)
	if err != nil {
		return s, err
	}
	s.Timer = next
	return s, nil
}

// TotalSeconds is the session span as of now: accumulated buckets for
// counted kinds, wall-clock since start for sleep.
func (s ActiveSession) TotalSeconds(now time.Time) int64 {
	if s.Kind() == KindSleep {
		return spanSeconds(s.StartTime, now)
	}
	return s.Flush(now).Timer.Buckets().Sum()
}

// AdjustStart moves the start time and redistributes the accumulated buckets
// across the new span. Empty buckets receive the whole new span on the
// current status.
func (s ActiveSession) AdjustStart(newStart, now time.Time) (ActiveSession, error) {
	newTotal := spanSeconds(newStart, now)
	if newTotal <= 0 {
		return s, fmt.Errorf("%w: start time must be before %s", apperrors.ErrInvalidTimeRange, now.Format(time.RFC3339))
	}
	s = s.Flush(now)
	oldTotal := spanSeconds(s.StartTime, now)
	s.StartTime = newStart
	if s.Kind() == KindSleep {
		return s, nil
	}
	current := s.Timer.Buckets()
	if current.Sum() == 0 {
		s.Timer = s.Timer.accrue(newTotal)
		return s, nil
	}
	scaled, err := Rescale(current, oldTotal, newTotal)
	if err != nil {
		return s, err
	}
	s.Timer = s.Timer.withBuckets(scaled)
	return s, nil
}

// Rebalance sets the nursing left/right split, keeping their sum.
func (s ActiveSession) Rebalance(left int64, now time.Time) (ActiveSession, error) {
	if _, ok := s.Timer.(NursingTimer); !ok {
		return s, fmt.Errorf("%w: only nursing sessions have sides", apperrors.ErrInvalidInput)
	}
	s = s.Flush(now)
	next, err := s.Timer.(NursingTimer).Rebalance(left)
	if err != nil {
		return s, err
	}
	s.Timer = next
	return s, nil
}

// Finalize closes the session at end and converts it into a Record. Time is
// flushed up to end, or up to now when end lies in the future. An end before
// the last checkpoint scales the buckets down to the start-to-end span.
func (s ActiveSession) Finalize(recordID string, end, now time.Time, notes string, fields map[string]string) (Record, error) {
	if !end.After(s.StartTime) {
		return Record{}, fmt.Errorf("%w: end time must be after start time", apperrors.ErrInvalidTimeRange)
	}
	flushAt := end
	if now.Before(end) {
		flushAt = now
	}
	s = s.Flush(flushAt)
	b := s.Timer.Buckets()
	if span := spanSeconds(s.StartTime, end); b.Sum() > span {
		scaled, err := Rescale(b, b.Sum(), span)
		if err != nil {
			return Record{}, err
		}
		s.Timer = s.Timer.withBuckets(scaled)
		b = scaled
	}
	record := Record{
		ID:            recordID,
		BabyID:        s.BabyID,
		Kind:          s.Kind(),
		StartTime:     s.StartTime,
		EndTime:       end,
		LeftSeconds:   b.Left,
		RightSeconds:  b.Right,
		PausedSeconds: b.Paused,
		Notes:         s.Notes,
		Fields:        mergeFields(s.Fields, fields),
		CreatedAt:     now,
	}
	switch t := s.Timer.(type) {
	case NursingTimer:
		record.Seconds = t.FedSeconds()
	case PumpingTimer:
		record.Seconds = t.Seconds
	default:
		record.Seconds = spanSeconds(s.StartTime, end)
	}
	if notes != "" {
		record.Notes = notes
	}
	return record, nil
}

func spanSeconds(from, to time.Time) int64 {
	return int64(to.Sub(from) / time.Second)
}

func mergeFields(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
