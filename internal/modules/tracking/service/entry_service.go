package service

import (
	"context"
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
)

// EntryService records complete activities and reads them back as a timeline.
type EntryService struct {
	clock   clock.Clock
	idGen   id.Generator
	records trackingout.RecordStore
	journal trackingout.JournalWriter
	log     *slog.Logger
}

func NewEntryService(clock clock.Clock, idGen id.Generator, records trackingout.RecordStore, journal trackingout.JournalWriter, log *slog.Logger) *EntryService {
	if log == nil {
		log = logging.Discard()
	}
	return &EntryService{clock: clock, idGen: idGen, records: records, journal: journal, log: log}
}

// Log writes an already-complete entry. A zero start means now; a zero end
// records an instantaneous event such as a diaper change.
func (s *EntryService) Log(ctx context.Context, babyID string, kind domain.Kind, start, end time.Time, notes string, fields map[string]string) (domain.Record, error) {
	if strings.TrimSpace(babyID) == "" {
		return domain.Record{}, fmt.Errorf("%w: baby id is required", apperrors.ErrInvalidInput)
	}
	if err := kind.Validate(); err != nil {
		return domain.Record{}, err
	}
	now := s.clock.Now()
	start, end = ResolveWindow(start, end, now)
	record := domain.Record{
		ID:        s.idGen.New(),
		BabyID:    babyID,
		Kind:      kind,
		StartTime: start,
		EndTime:   end,
		Seconds:   int64(end.Sub(start) / time.Second),
		Notes:     notes,
		Fields:    fields,
		CreatedAt: now,
	}
	if err := record.Validate(); err != nil {
		return domain.Record{}, err
	}
	if err := s.records.Create(ctx, record); err != nil {
		return domain.Record{}, err
	}
	s.log.InfoContext(ctx, "entry logged", "baby_id", babyID, "kind", string(kind), "record_id", record.ID)
	return record, nil
}

func (s *EntryService) Timeline(ctx context.Context, babyID string, from, to time.Time) ([]domain.Record, error) {
	if strings.TrimSpace(babyID) == "" {
		return nil, fmt.Errorf("%w: baby id is required", apperrors.ErrInvalidInput)
	}
	if to.IsZero() {
		to = s.clock.Now().Add(time.Second)
	}
	if !to.After(from) {
		return nil, fmt.Errorf("%w: timeline end must be after its start", apperrors.ErrInvalidTimeRange)
	}
	return s.records.List(ctx, babyID, from, to)
}

// ExportJournal renders one UTC day of records into a journal note.
func (s *EntryService) ExportJournal(ctx context.Context, babyID string, day time.Time) (string, int, error) {
	if s.journal == nil {
		return "", 0, fmt.Errorf("journal writer is not configured")
	}
	if day.IsZero() {
		day = s.clock.Now()
	}
	day = day.UTC()
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	records, err := s.Timeline(ctx, babyID, from, from.AddDate(0, 0, 1))
	if err != nil {
		return "", 0, err
	}
	path, err := s.journal.Write(ctx, babyID, from, records)
	if err != nil {
		return "", 0, err
	}
	return path, len(records), nil
}

// ResolveWindow fills an unknown start with now and an unknown end with the
// start. It leaves an inverted window alone so validation can reject it.
func ResolveWindow(start, end, now time.Time) (time.Time, time.Time) {
	if start.IsZero() {
		start = now
	}
	if end.IsZero() {
		end = start
	}
	return start, end
}
