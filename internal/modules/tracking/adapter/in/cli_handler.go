package in

import (
	"context"
	"fmt"
	"time"

	"babylog/internal/modules/tracking/dto"
	trackingin "babylog/internal/modules/tracking/port/in"
	apperrors "babylog/internal/platform/errors"
)

type CLIHandler struct {
	usecase trackingin.Usecase
}

func NewCLIHandler(usecase trackingin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, babyID, kind string, at time.Time, status, notes string, fields map[string]string, force bool) (dto.StartOutput, error) {
	return h.usecase.Start(ctx, dto.StartInput{
		BabyID:        babyID,
		Kind:          kind,
		StartTime:     at,
		Status:        status,
		Notes:         notes,
		Fields:        fields,
		AllowOverride: force,
	})
}

func (h CLIHandler) Pause(ctx context.Context, babyID, kind string) (dto.ActiveSessionOutput, error) {
	return h.usecase.Transition(ctx, dto.TransitionInput{BabyID: babyID, Kind: kind, Status: "paused"})
}

// Resume restarts a paused timer. Nursing resumes on side, left by default.
func (h CLIHandler) Resume(ctx context.Context, babyID, kind, side string) (dto.ActiveSessionOutput, error) {
	status := "running"
	if kind == "nursing" {
		status = side
		if status == "" {
			status = "left"
		}
	}
	return h.usecase.Transition(ctx, dto.TransitionInput{BabyID: babyID, Kind: kind, Status: status})
}

// SwitchSide flips a running nursing session to the other breast.
func (h CLIHandler) SwitchSide(ctx context.Context, babyID string) (dto.ActiveSessionOutput, error) {
	current, err := h.usecase.GetActive(ctx, dto.SessionRef{BabyID: babyID, Kind: "nursing"})
	if err != nil {
		return dto.ActiveSessionOutput{}, err
	}
	var next string
	switch current.Status {
	case "left":
		next = "right"
	case "right":
		next = "left"
	default:
		return dto.ActiveSessionOutput{}, fmt.Errorf("%w: nursing is paused; resume on a side instead", apperrors.ErrInvalidTransition)
	}
	return h.usecase.Transition(ctx, dto.TransitionInput{BabyID: babyID, Kind: "nursing", Status: next})
}

func (h CLIHandler) Checkpoint(ctx context.Context, babyID, kind string) (dto.ActiveSessionOutput, error) {
	return h.usecase.Checkpoint(ctx, dto.SessionRef{BabyID: babyID, Kind: kind})
}

func (h CLIHandler) AdjustStart(ctx context.Context, babyID, kind string, at time.Time, status string, force bool) (dto.StartOutput, error) {
	return h.usecase.AdjustStartTime(ctx, dto.AdjustStartInput{BabyID: babyID, Kind: kind, StartTime: at, Status: status, AllowOverride: force})
}

func (h CLIHandler) Rebalance(ctx context.Context, babyID string, left time.Duration) (dto.ActiveSessionOutput, error) {
	return h.usecase.Rebalance(ctx, dto.RebalanceInput{BabyID: babyID, LeftSeconds: int64(left / time.Second)})
}

func (h CLIHandler) Stop(ctx context.Context, babyID, kind string, at time.Time, notes string, fields map[string]string) (dto.RecordOutput, error) {
	return h.usecase.Finalize(ctx, dto.FinalizeInput{BabyID: babyID, Kind: kind, EndTime: at, Notes: notes, Fields: fields})
}

func (h CLIHandler) Cancel(ctx context.Context, babyID, kind string) error {
	return h.usecase.Cancel(ctx, dto.SessionRef{BabyID: babyID, Kind: kind})
}

func (h CLIHandler) Status(ctx context.Context, babyID string) ([]dto.ActiveSessionOutput, error) {
	return h.usecase.ListOpen(ctx, babyID)
}

func (h CLIHandler) Watch(ctx context.Context, babyID, kind string) (trackingin.LiveClock, error) {
	return h.usecase.Watch(ctx, dto.SessionRef{BabyID: babyID, Kind: kind})
}

func (h CLIHandler) Log(ctx context.Context, babyID, kind string, start, end time.Time, notes string, fields map[string]string, force bool) (dto.LogEntryOutput, error) {
	return h.usecase.LogEntry(ctx, dto.LogEntryInput{
		BabyID:        babyID,
		Kind:          kind,
		StartTime:     start,
		EndTime:       end,
		Notes:         notes,
		Fields:        fields,
		AllowOverride: force,
	})
}

func (h CLIHandler) Timeline(ctx context.Context, babyID string, from, to time.Time) ([]dto.RecordOutput, error) {
	return h.usecase.Timeline(ctx, dto.TimelineInput{BabyID: babyID, From: from, To: to})
}

func (h CLIHandler) Export(ctx context.Context, babyID string, day time.Time) (dto.ExportOutput, error) {
	return h.usecase.ExportJournal(ctx, dto.ExportInput{BabyID: babyID, Day: day})
}
