package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"babylog/internal/modules/tracking/domain"
	trackingout "babylog/internal/modules/tracking/port/out"
	"babylog/internal/platform/clock"
	apperrors "babylog/internal/platform/errors"
	"babylog/internal/platform/id"
	"babylog/internal/platform/logging"
	"babylog/internal/platform/telemetry"
	"babylog/internal/platform/tx"
)

// TimerService owns the create/mutate/finalize/cancel lifecycle of active
// sessions. Every mutation is a checkpoint: accumulated seconds are flushed
// and written before the status changes.
type TimerService struct {
	clock    clock.Clock
	idGen    id.Generator
	sessions trackingout.SessionStore
	records  trackingout.RecordStore
	tx       tx.Manager
	log      *slog.Logger
	metrics  telemetry.Recorder
}

func NewTimerService(
	clock clock.Clock,
	idGen id.Generator,
	sessions trackingout.SessionStore,
	records trackingout.RecordStore,
	txm tx.Manager,
	log *slog.Logger,
	metrics telemetry.Recorder,
) *TimerService {
	if txm == nil {
		txm = tx.NoopManager{}
	}
	if metrics == nil {
		metrics = telemetry.Noop{}
	}
	if log == nil {
		log = logging.Discard()
	}
	return &TimerService{clock: clock, idGen: idGen, sessions: sessions, records: records, tx: txm, log: log, metrics: metrics}
}

func (s *TimerService) Now() time.Time {
	return s.clock.Now()
}

func (s *TimerService) Start(ctx context.Context, babyID string, kind domain.Kind, startTime time.Time, initial domain.Status, notes string, fields map[string]string) (domain.ActiveSession, error) {
	if err := validateRef(babyID, kind); err != nil {
		return domain.ActiveSession{}, err
	}
	if _, err := s.sessions.Get(ctx, babyID, kind); err == nil {
		return domain.ActiveSession{}, apperrors.ErrActiveSessionExists
	} else if !errors.Is(err, apperrors.ErrNoActiveSession) {
		return domain.ActiveSession{}, err
	}

	now := s.clock.Now()
	if startTime.IsZero() {
		startTime = now
	}
	if startTime.After(now) {
		return domain.ActiveSession{}, fmt.Errorf("%w: start time is in the future", apperrors.ErrInvalidTimeRange)
	}
	timer, err := domain.NewTimer(kind, initial)
	if err != nil {
		return domain.ActiveSession{}, err
	}
	session := domain.ActiveSession{
		ID:               s.idGen.New(),
		BabyID:           babyID,
		StartTime:        startTime,
		LastCheckpointAt: now,
		Timer:            timer,
		Notes:            notes,
		Fields:           fields,
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		return domain.ActiveSession{}, err
	}
	s.metrics.SessionStarted(ctx, string(kind))
	s.log.InfoContext(ctx, "session started", sessionAttrs(session)...)
	return session, nil
}

// Resume rehydrates a stored session as if its clock had kept running since
// the last checkpoint. Nothing is written.
func (s *TimerService) Resume(ctx context.Context, babyID string, kind domain.Kind) (domain.ActiveSession, error) {
	if err := validateRef(babyID, kind); err != nil {
		return domain.ActiveSession{}, err
	}
	session, err := s.sessions.Get(ctx, babyID, kind)
	if err != nil {
		return domain.ActiveSession{}, err
	}
	return session.Flush(s.clock.Now()), nil
}

func (s *TimerService) Transition(ctx context.Context, babyID string, kind domain.Kind, to domain.Status) (domain.ActiveSession, error) {
	return s.mutate(ctx, babyID, kind, "session transitioned", func(session domain.ActiveSession, now time.Time) (domain.ActiveSession, error) {
		return session.Transition(to, now)
	})
}

// Checkpoint flushes accumulated time without changing status.
func (s *TimerService) Checkpoint(ctx context.Context, babyID string, kind domain.Kind) (domain.ActiveSession, error) {
	return s.mutate(ctx, babyID, kind, "session checkpointed", func(session domain.ActiveSession, now time.Time) (domain.ActiveSession, error) {
		return session.Flush(now), nil
	})
}

// AdjustStartTime moves the start of the open session and redistributes its
// buckets. Without an open session one is started at newStart.
func (s *TimerService) AdjustStartTime(ctx context.Context, babyID string, kind domain.Kind, newStart time.Time, initial domain.Status) (domain.ActiveSession, error) {
	if newStart.IsZero() {
		return domain.ActiveSession{}, fmt.Errorf("%w: start time is required", apperrors.ErrInvalidTimeRange)
	}
	if err := validateRef(babyID, kind); err != nil {
		return domain.ActiveSession{}, err
	}
	now := s.clock.Now()
	if now.Sub(newStart) < time.Second {
		return domain.ActiveSession{}, fmt.Errorf("%w: start time must be at least one second in the past", apperrors.ErrInvalidTimeRange)
	}

	var adjusted domain.ActiveSession
	err := s.tx.Within(ctx, func(ctx context.Context) error {
		session, err := s.sessions.Get(ctx, babyID, kind)
		if errors.Is(err, apperrors.ErrNoActiveSession) {
			session, err = s.Start(ctx, babyID, kind, now, initial, "", nil)
		}
		if err != nil {
			return err
		}
		adjusted, err = session.AdjustStart(newStart, now)
		if err != nil {
			return err
		}
		return s.sessions.Update(ctx, adjusted)
	})
	if err != nil {
		return domain.ActiveSession{}, err
	}
	s.log.InfoContext(ctx, "session start adjusted", sessionAttrs(adjusted)...)
	return adjusted, nil
}

func (s *TimerService) Rebalance(ctx context.Context, babyID string, leftSeconds int64) (domain.ActiveSession, error) {
	return s.mutate(ctx, babyID, domain.KindNursing, "session rebalanced", func(session domain.ActiveSession, now time.Time) (domain.ActiveSession, error) {
		return session.Rebalance(leftSeconds, now)
	})
}

// Finalize writes the permanent record and removes the session in one
// transaction.
func (s *TimerService) Finalize(ctx context.Context, babyID string, kind domain.Kind, endTime time.Time, notes string, fields map[string]string) (domain.Record, error) {
	if err := validateRef(babyID, kind); err != nil {
		return domain.Record{}, err
	}
	now := s.clock.Now()
	if endTime.IsZero() {
		endTime = now
	}
	var record domain.Record
	err := s.tx.Within(ctx, func(ctx context.Context) error {
		session, err := s.sessions.Get(ctx, babyID, kind)
		if err != nil {
			return err
		}
		record, err = session.Finalize(s.idGen.New(), endTime, now, notes, fields)
		if err != nil {
			return err
		}
		if err := s.records.Create(ctx, record); err != nil {
			return err
		}
		return s.sessions.Delete(ctx, babyID, kind)
	})
	if err != nil {
		return domain.Record{}, err
	}
	s.metrics.SessionFinalized(ctx, string(kind), record.Duration())
	s.log.InfoContext(ctx, "session finalized",
		"baby_id", babyID, "kind", string(kind), "record_id", record.ID, "seconds", record.Seconds)
	return record, nil
}

// Cancel discards the open session and all of its accumulated time.
func (s *TimerService) Cancel(ctx context.Context, babyID string, kind domain.Kind) error {
	if err := validateRef(babyID, kind); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, babyID, kind); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "session cancelled", "baby_id", babyID, "kind", string(kind))
	return nil
}

// ListOpen returns every open session for the baby, rehydrated to now.
func (s *TimerService) ListOpen(ctx context.Context, babyID string) ([]domain.ActiveSession, error) {
	if strings.TrimSpace(babyID) == "" {
		return nil, fmt.Errorf("%w: baby id is required", apperrors.ErrInvalidInput)
	}
	sessions, err := s.sessions.ListOpen(ctx, babyID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	for i := range sessions {
		sessions[i] = sessions[i].Flush(now)
	}
	return sessions, nil
}

func (s *TimerService) mutate(ctx context.Context, babyID string, kind domain.Kind, msg string, fn func(domain.ActiveSession, time.Time) (domain.ActiveSession, error)) (domain.ActiveSession, error) {
	if err := validateRef(babyID, kind); err != nil {
		return domain.ActiveSession{}, err
	}
	session, err := s.sessions.Get(ctx, babyID, kind)
	if err != nil {
		return domain.ActiveSession{}, err
	}
	next, err := fn(session, s.clock.Now())
	if err != nil {
		return domain.ActiveSession{}, err
	}
	if err := s.sessions.Update(ctx, next); err != nil {
		return domain.ActiveSession{}, err
	}
	s.log.DebugContext(ctx, msg, sessionAttrs(next)...)
	return next, nil
}

func validateRef(babyID string, kind domain.Kind) error {
	if strings.TrimSpace(babyID) == "" {
		return fmt.Errorf("%w: baby id is required", apperrors.ErrInvalidInput)
	}
	if err := kind.Validate(); err != nil {
		return err
	}
	if !kind.SupportsSession() {
		return fmt.Errorf("%w: %s does not support timed sessions", apperrors.ErrInvalidInput, kind)
	}
	return nil
}

func sessionAttrs(session domain.ActiveSession) []any {
	b := session.Timer.Buckets()
	return []any{
		"baby_id", session.BabyID,
		"kind", string(session.Kind()),
		"session_id", session.ID,
		"status", session.Timer.Status().String(),
		"left_seconds", b.Left,
		"right_seconds", b.Right,
		"paused_seconds", b.Paused,
		"seconds", b.Seconds,
	}
}
