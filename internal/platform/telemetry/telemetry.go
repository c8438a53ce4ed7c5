// Package telemetry records session lifecycle metrics.
package telemetry

import (
	"context"
	"time"
)

// Recorder receives lifecycle events from the tracking and conflict modules.
type Recorder interface {
	SessionStarted(ctx context.Context, kind string)
	SessionFinalized(ctx context.Context, kind string, duration time.Duration)
	ConflictDetected(ctx context.Context, newKind, conflictKind string)
	Close(ctx context.Context) error
}

// Noop is used when telemetry is disabled or the exporter cannot start.
type Noop struct{}

func (Noop) SessionStarted(context.Context, string)                  {}
func (Noop) SessionFinalized(context.Context, string, time.Duration) {}
func (Noop) ConflictDetected(context.Context, string, string)        {}
func (Noop) Close(context.Context) error                             { return nil }
