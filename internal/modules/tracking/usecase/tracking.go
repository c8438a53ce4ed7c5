package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	conflictdto "babylog/internal/modules/conflict/dto"
	conflictin "babylog/internal/modules/conflict/port/in"
	"babylog/internal/modules/tracking/domain"
	"babylog/internal/modules/tracking/dto"
	trackingin "babylog/internal/modules/tracking/port/in"
	"babylog/internal/modules/tracking/service"
	"babylog/internal/platform/clock"
	apperrors "babylog/internal/platform/errors"
)

type Interactor struct {
	trackingin.Query
	timers    *service.TimerService
	entries   *service.EntryService
	conflicts conflictin.Usecase
}

// NewInteractor wires the command side. A nil conflicts usecase skips
// conflict evaluation entirely.
func NewInteractor(query trackingin.Query, timers *service.TimerService, entries *service.EntryService, conflicts conflictin.Usecase) trackingin.Usecase {
	return &Interactor{Query: query, timers: timers, entries: entries, conflicts: conflicts}
}

func (i *Interactor) Start(ctx context.Context, input dto.StartInput) (dto.StartOutput, error) {
	kind := domain.Kind(input.Kind)
	seed, err := parseSeed(kind, input.Status)
	if err != nil {
		return dto.StartOutput{}, err
	}
	warnings, err := i.gate(ctx, conflictdto.EvaluateInput{BabyID: input.BabyID, Kind: input.Kind, StartTime: input.StartTime}, input.AllowOverride)
	if err != nil {
		return dto.StartOutput{}, err
	}
	session, err := i.timers.Start(ctx, input.BabyID, kind, input.StartTime, seed, input.Notes, input.Fields)
	if err != nil {
		return dto.StartOutput{}, err
	}
	return dto.StartOutput{Session: toSessionOutput(session, i.timers.Now()), Warnings: warnings}, nil
}

func (i *Interactor) Transition(ctx context.Context, input dto.TransitionInput) (dto.ActiveSessionOutput, error) {
	kind := domain.Kind(input.Kind)
	to, err := domain.ParseStatus(kind, input.Status)
	if err != nil {
		return dto.ActiveSessionOutput{}, err
	}
	session, err := i.timers.Transition(ctx, input.BabyID, kind, to)
	if err != nil {
		return dto.ActiveSessionOutput{}, err
	}
	return toSessionOutput(session, i.timers.Now()), nil
}

func (i *Interactor) Checkpoint(ctx context.Context, ref dto.SessionRef) (dto.ActiveSessionOutput, error) {
	session, err := i.timers.Checkpoint(ctx, ref.BabyID, domain.Kind(ref.Kind))
	if err != nil {
		return dto.ActiveSessionOutput{}, err
	}
	return toSessionOutput(session, i.timers.Now()), nil
}

func (i *Interactor) AdjustStartTime(ctx context.Context, input dto.AdjustStartInput) (dto.StartOutput, error) {
	kind := domain.Kind(input.Kind)
	seed, err := parseSeed(kind, input.Status)
	if err != nil {
		return dto.StartOutput{}, err
	}
	excludeID := ""
	if current, err := i.timers.Resume(ctx, input.BabyID, kind); err == nil {
		excludeID = current.ID
	} else if !errors.Is(err, apperrors.ErrNoActiveSession) {
		return dto.StartOutput{}, err
	}
	warnings, err := i.gate(ctx, conflictdto.EvaluateInput{
		BabyID:    input.BabyID,
		Kind:      input.Kind,
		StartTime: input.StartTime,
		ExcludeID: excludeID,
	}, input.AllowOverride)
	if err != nil {
		return dto.StartOutput{}, err
	}
	session, err := i.timers.AdjustStartTime(ctx, input.BabyID, kind, input.StartTime, seed)
	if err != nil {
		return dto.StartOutput{}, err
	}
	return dto.StartOutput{Session: toSessionOutput(session, i.timers.Now()), Warnings: warnings}, nil
}

func (i *Interactor) Rebalance(ctx context.Context, input dto.RebalanceInput) (dto.ActiveSessionOutput, error) {
	session, err := i.timers.Rebalance(ctx, input.BabyID, input.LeftSeconds)
	if err != nil {
		return dto.ActiveSessionOutput{}, err
	}
	return toSessionOutput(session, i.timers.Now()), nil
}

func (i *Interactor) Finalize(ctx context.Context, input dto.FinalizeInput) (dto.RecordOutput, error) {
	record, err := i.timers.Finalize(ctx, input.BabyID, domain.Kind(input.Kind), input.EndTime, input.Notes, input.Fields)
	if err != nil {
		return dto.RecordOutput{}, err
	}
	return toRecordOutput(record), nil
}

func (i *Interactor) Cancel(ctx context.Context, ref dto.SessionRef) error {
	return i.timers.Cancel(ctx, ref.BabyID, domain.Kind(ref.Kind))
}

func (i *Interactor) LogEntry(ctx context.Context, input dto.LogEntryInput) (dto.LogEntryOutput, error) {
	kind := domain.Kind(input.Kind)
	if err := kind.Validate(); err != nil {
		return dto.LogEntryOutput{}, err
	}
	start, end := service.ResolveWindow(input.StartTime, input.EndTime, i.timers.Now())
	if end.Before(start) {
		return dto.LogEntryOutput{}, fmt.Errorf("%w: end time precedes start time", apperrors.ErrInvalidTimeRange)
	}
	warnings, err := i.gate(ctx, conflictdto.EvaluateInput{BabyID: input.BabyID, Kind: input.Kind, StartTime: start, EndTime: end}, input.AllowOverride)
	if err != nil {
		return dto.LogEntryOutput{}, err
	}
	record, err := i.entries.Log(ctx, input.BabyID, kind, start, end, input.Notes, input.Fields)
	if err != nil {
		return dto.LogEntryOutput{}, err
	}
	return dto.LogEntryOutput{Record: toRecordOutput(record), Warnings: warnings}, nil
}

func (i *Interactor) ExportJournal(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error) {
	path, n, err := i.entries.ExportJournal(ctx, input.BabyID, input.Day)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	return dto.ExportOutput{Path: path, Entries: n}, nil
}

func (i *Interactor) Watch(ctx context.Context, ref dto.SessionRef) (trackingin.LiveClock, error) {
	session, err := i.timers.Resume(ctx, ref.BabyID, domain.Kind(ref.Kind))
	if err != nil {
		return nil, err
	}
	return liveClock{display: service.NewDisplay(session)}, nil
}

// gate evaluates conflicts and returns the overridden advisories as
// warnings, or the error that stops the action.
func (i *Interactor) gate(ctx context.Context, input conflictdto.EvaluateInput, allowOverride bool) ([]string, error) {
	if i.conflicts == nil {
		return nil, nil
	}
	result, err := i.conflicts.Evaluate(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := result.Gate(allowOverride); err != nil {
		return nil, err
	}
	if len(result.Conflicts) == 0 {
		return nil, nil
	}
	return result.Warnings(), nil
}

func parseSeed(kind domain.Kind, label string) (domain.Status, error) {
	if label == "" {
		return nil, nil
	}
	return domain.ParseStatus(kind, label)
}

type liveClock struct {
	display *service.Display
}

func (c liveClock) Tick() { c.display.Tick() }

func (c liveClock) Snapshot() dto.ActiveSessionOutput {
	session, total := c.display.Snapshot()
	out := toSessionOutput(session, session.LastCheckpointAt)
	out.TotalSeconds = total
	return out
}

func (c liveClock) Run(s clock.Scheduler, interval time.Duration, onTick func(dto.ActiveSessionOutput)) func() {
	return c.display.Run(s, interval, func(domain.ActiveSession, int64) {
		if onTick != nil {
			onTick(c.Snapshot())
		}
	})
}
