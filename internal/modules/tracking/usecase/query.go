package usecase

import (
	"context"
	"time"

	"babylog/internal/modules/tracking/domain"
	"babylog/internal/modules/tracking/dto"
	trackingin "babylog/internal/modules/tracking/port/in"
	"babylog/internal/modules/tracking/service"
)

// QueryInteractor is the read side. It has no dependency on the conflict
// module, which consumes it.
type QueryInteractor struct {
	timers  *service.TimerService
	entries *service.EntryService
}

func NewQuery(timers *service.TimerService, entries *service.EntryService) trackingin.Query {
	return &QueryInteractor{timers: timers, entries: entries}
}

func (q *QueryInteractor) GetActive(ctx context.Context, ref dto.SessionRef) (dto.ActiveSessionOutput, error) {
	session, err := q.timers.Resume(ctx, ref.BabyID, domain.Kind(ref.Kind))
	if err != nil {
		return dto.ActiveSessionOutput{}, err
	}
	return toSessionOutput(session, q.timers.Now()), nil
}

func (q *QueryInteractor) ListOpen(ctx context.Context, babyID string) ([]dto.ActiveSessionOutput, error) {
	sessions, err := q.timers.ListOpen(ctx, babyID)
	if err != nil {
		return nil, err
	}
	now := q.timers.Now()
	out := make([]dto.ActiveSessionOutput, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toSessionOutput(session, now))
	}
	return out, nil
}

func (q *QueryInteractor) Timeline(ctx context.Context, input dto.TimelineInput) ([]dto.RecordOutput, error) {
	records, err := q.entries.Timeline(ctx, input.BabyID, input.From, input.To)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecordOutput, 0, len(records))
	for _, record := range records {
		out = append(out, toRecordOutput(record))
	}
	return out, nil
}

func toSessionOutput(session domain.ActiveSession, now time.Time) dto.ActiveSessionOutput {
	b := session.Timer.Buckets()
	return dto.ActiveSessionOutput{
		ID:               session.ID,
		BabyID:           session.BabyID,
		Kind:             string(session.Kind()),
		Status:           session.Timer.Status().String(),
		Running:          session.Timer.Running(),
		StartTime:        session.StartTime,
		LastCheckpointAt: session.LastCheckpointAt,
		LeftSeconds:      b.Left,
		RightSeconds:     b.Right,
		PausedSeconds:    b.Paused,
		Seconds:          b.Seconds,
		TotalSeconds:     session.TotalSeconds(now),
		Notes:            session.Notes,
		Fields:           session.Fields,
	}
}

func toRecordOutput(record domain.Record) dto.RecordOutput {
	return dto.RecordOutput{
		ID:            record.ID,
		BabyID:        record.BabyID,
		Kind:          string(record.Kind),
		StartTime:     record.StartTime,
		EndTime:       record.EndTime,
		LeftSeconds:   record.LeftSeconds,
		RightSeconds:  record.RightSeconds,
		PausedSeconds: record.PausedSeconds,
		Seconds:       record.Seconds,
		Notes:         record.Notes,
		Fields:        record.Fields,
	}
}
