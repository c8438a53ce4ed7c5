package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"babylog/internal/modules/conflict/domain"
	conflictout "babylog/internal/modules/conflict/port/out"
	"babylog/internal/platform/clock"
	apperrors "babylog/internal/platform/errors"
	"babylog/internal/platform/logging"
	"babylog/internal/platform/telemetry"
)

// Evaluator only reads; it is safe for concurrent use.
type Evaluator struct {
	clock   clock.Clock
	source  conflictout.OpenSessionSource
	log     *slog.Logger
	metrics telemetry.Recorder
}

func NewEvaluator(clock clock.Clock, source conflictout.OpenSessionSource, log *slog.Logger, metrics telemetry.Recorder) *Evaluator {
	if log == nil {
		log = logging.Discard()
	}
	if metrics == nil {
		metrics = telemetry.Noop{}
	}
	return &Evaluator{clock: clock, source: source, log: log, metrics: metrics}
}

func (e *Evaluator) Evaluate(ctx context.Context, babyID, kind string, start, end time.Time, excludeID string) ([]domain.Conflict, error) {
	if strings.TrimSpace(babyID) == "" {
		return nil, fmt.Errorf("%w: baby id is required", apperrors.ErrInvalidInput)
	}
	if _, ok := domain.CategoryOf(kind); !ok {
		return nil, fmt.Errorf("%w: unknown activity kind %q", apperrors.ErrInvalidInput, kind)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, fmt.Errorf("%w: end time precedes start time", apperrors.ErrInvalidTimeRange)
	}

	open, err := e.source.ListOpen(ctx, babyID)
	if err != nil {
		return nil, err
	}
	candidates := open[:0:0]
	for _, s := range open {
		if excludeID != "" && s.ID == excludeID {
			continue
		}
		candidates = append(candidates, s)
	}

	conflicts := domain.Evaluate(candidates, domain.Proposal{Kind: kind, StartTime: start, EndTime: end}, e.clock.Now())
	for _, c := range conflicts {
		for _, a := range c.Activities {
			e.metrics.ConflictDetected(ctx, kind, a.Kind)
		}
		e.log.InfoContext(ctx, "conflict detected",
			"baby_id", babyID, "kind", kind, "conflict", string(c.Kind), "retroactive", c.Retroactive, "activities", len(c.Activities))
	}
	return conflicts, nil
}
