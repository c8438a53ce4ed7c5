package out

import (
	"context"
	"time"

	"babylog/internal/modules/tracking/domain"
)

// SessionStore holds at most one ActiveSession per (baby, kind).
type SessionStore interface {
	// Get returns apperrors.ErrNoActiveSession when nothing is open.
	Get(ctx context.Context, babyID string, kind domain.Kind) (domain.ActiveSession, error)
	// Insert returns apperrors.ErrActiveSessionExists when (baby, kind) is taken.
	Insert(ctx context.Context, session domain.ActiveSession) error
	Update(ctx context.Context, session domain.ActiveSession) error
	// Delete returns apperrors.ErrNoActiveSession when nothing was removed.
	Delete(ctx context.Context, babyID string, kind domain.Kind) error
	ListOpen(ctx context.Context, babyID string) ([]domain.ActiveSession, error)
}

type RecordStore interface {
	Create(ctx context.Context, record domain.Record) error
	// List returns records starting in [from, to), ordered by start time.
	List(ctx context.Context, babyID string, from, to time.Time) ([]domain.Record, error)
}

type JournalWriter interface {
	Write(ctx context.Context, babyID string, day time.Time, records []domain.Record) (string, error)
}
