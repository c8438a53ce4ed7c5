package service_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"babylog/internal/modules/tracking/domain"
	apperrors "babylog/internal/platform/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type seqID struct{ n int }

func (s *seqID) New() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

type memSessions struct {
	items   map[string]domain.ActiveSession
	updates int
}

func newMemSessions() *memSessions {
	return &memSessions{items: map[string]domain.ActiveSession{}}
}

func sessionKey(babyID string, kind domain.Kind) string { return babyID + "/" + string(kind) }

func (m *memSessions) Get(_ context.Context, babyID string, kind domain.Kind) (domain.ActiveSession, error) {
	s, ok := m.items[sessionKey(babyID, kind)]
	if !ok {
		return domain.ActiveSession{}, apperrors.ErrNoActiveSession
	}
	return s, nil
}

func (m *memSessions) Insert(_ context.Context, s domain.ActiveSession) error {
	key := sessionKey(s.BabyID, s.Kind())
	if _, ok := m.items[key]; ok {
		return apperrors.ErrActiveSessionExists
	}
	m.items[key] = s
	return nil
}

func (m *memSessions) Update(_ context.Context, s domain.ActiveSession) error {
	key := sessionKey(s.BabyID, s.Kind())
	if _, ok := m.items[key]; !ok {
		return apperrors.ErrNoActiveSession
	}
	m.updates++
	m.items[key] = s
	return nil
}

func (m *memSessions) Delete(_ context.Context, babyID string, kind domain.Kind) error {
	key := sessionKey(babyID, kind)
	if _, ok := m.items[key]; !ok {
		return apperrors.ErrNoActiveSession
	}
	delete(m.items, key)
	return nil
}

func (m *memSessions) ListOpen(_ context.Context, babyID string) ([]domain.ActiveSession, error) {
	var out []domain.ActiveSession
	for _, s := range m.items {
		if s.BabyID == babyID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

type memRecords struct {
	items     []domain.Record
	createErr error
}

func (m *memRecords) Create(_ context.Context, r domain.Record) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items = append(m.items, r)
	return nil
}

func (m *memRecords) List(_ context.Context, babyID string, from, to time.Time) ([]domain.Record, error) {
	var out []domain.Record
	for _, r := range m.items {
		if r.BabyID == babyID && !r.StartTime.Before(from) && r.StartTime.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeJournal struct {
	day     time.Time
	records []domain.Record
}

func (f *fakeJournal) Write(_ context.Context, babyID string, day time.Time, records []domain.Record) (string, error) {
	f.day = day
	f.records = records
	return "/journal/" + babyID + ".md", nil
}

type fakeRecorder struct {
	started   []string
	finalized []time.Duration
}

func (f *fakeRecorder) SessionStarted(_ context.Context, kind string) {
	f.started = append(f.started, kind)
}

func (f *fakeRecorder) SessionFinalized(_ context.Context, _ string, d time.Duration) {
	f.finalized = append(f.finalized, d)
}

func (f *fakeRecorder) ConflictDetected(context.Context, string, string) {}
func (f *fakeRecorder) Close(context.Context) error                     { return nil }
