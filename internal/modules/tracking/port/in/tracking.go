package in

import (
	"context"
	"time"

	"babylog/internal/modules/tracking/dto"
	"babylog/internal/platform/clock"
)

// Query is the read side, safe to hand to other modules.
type Query interface {
	GetActive(ctx context.Context, ref dto.SessionRef) (dto.ActiveSessionOutput, error)
	ListOpen(ctx context.Context, babyID string) ([]dto.ActiveSessionOutput, error)
	Timeline(ctx context.Context, input dto.TimelineInput) ([]dto.RecordOutput, error)
}

type Usecase interface {
	Query
	Start(ctx context.Context, input dto.StartInput) (dto.StartOutput, error)
	Transition(ctx context.Context, input dto.TransitionInput) (dto.ActiveSessionOutput, error)
	Checkpoint(ctx context.Context, ref dto.SessionRef) (dto.ActiveSessionOutput, error)
	AdjustStartTime(ctx context.Context, input dto.AdjustStartInput) (dto.StartOutput, error)
	Rebalance(ctx context.Context, input dto.RebalanceInput) (dto.ActiveSessionOutput, error)
	Finalize(ctx context.Context, input dto.FinalizeInput) (dto.RecordOutput, error)
	Cancel(ctx context.Context, ref dto.SessionRef) error
	LogEntry(ctx context.Context, input dto.LogEntryInput) (dto.LogEntryOutput, error)
	ExportJournal(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)
	// Watch returns a display clock for the open session, rehydrated to now.
	Watch(ctx context.Context, ref dto.SessionRef) (LiveClock, error)
}

// LiveClock ticks an in-memory copy of a session for rendering only.
type LiveClock interface {
	Tick()
	Snapshot() dto.ActiveSessionOutput
	Run(s clock.Scheduler, interval time.Duration, onTick func(dto.ActiveSessionOutput)) (stop func())
}
