package out_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	trackingout "babylog/internal/modules/tracking/adapter/out"
	"babylog/internal/modules/tracking/domain"
	"babylog/internal/platform/config"
	apperrors "babylog/internal/platform/errors"
	"babylog/internal/platform/sqlite"
)

var t0 = time.Date(2026, 2, 25, 9, 0, 0, 0, time.UTC)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(context.Background(), config.StorageConfig{Driver: config.DriverSQLite, DSN: filepath.Join(t.TempDir(), "babylog.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func nursingSession(t *testing.T, id string) domain.ActiveSession {
	t.Helper()
	timer, err := domain.RestoreTimer(domain.KindNursing, "right", domain.Buckets{Left: 120, Right: 45, Paused: 30})
	if err != nil {
		t.Fatalf("restore timer: %v", err)
	}
	return domain.ActiveSession{
		ID:               id,
		BabyID:           "b1",
		StartTime:        t0,
		LastCheckpointAt: t0.Add(3*time.Minute + 15*time.Second),
		Timer:            timer,
		Notes:            "cluster feed",
		Fields:           map[string]string{"side_pref": "left"},
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := trackingout.NewSQLiteSessionStore(openDB(t))

	want := nursingSession(t, "s1")
	if err := store.Insert(ctx, want); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := store.Get(ctx, "b1", domain.KindNursing)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != want.ID || !got.StartTime.Equal(want.StartTime) || !got.LastCheckpointAt.Equal(want.LastCheckpointAt) {
		t.Fatalf("identity or times not preserved: %+v", got)
	}
	if got.Timer.Status().String() != "right" || got.Timer.Buckets() != want.Timer.Buckets() {
		t.Fatalf("timer not preserved: %s %+v", got.Timer.Status(), got.Timer.Buckets())
	}
	if got.Notes != "cluster feed" || got.Fields["side_pref"] != "left" {
		t.Fatalf("notes or fields not preserved: %+v", got)
	}

	next, err := got.Transition(domain.NursingPaused, got.LastCheckpointAt.Add(10*time.Second))
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if err := store.Update(ctx, next); err != nil {
		t.Fatalf("update: %v", err)
	}
	reloaded, err := store.Get(ctx, "b1", domain.KindNursing)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Timer.Status().String() != "paused" || reloaded.Timer.Buckets().Right != 55 {
		t.Fatalf("update not persisted: %s %+v", reloaded.Timer.Status(), reloaded.Timer.Buckets())
	}
}

func TestSessionStoreEnforcesOnePerKind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := trackingout.NewSQLiteSessionStore(openDB(t))
	if err := store.Insert(ctx, nursingSession(t, "s1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Insert(ctx, nursingSession(t, "s2")); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected ErrActiveSessionExists, got %v", err)
	}

	sleep := domain.ActiveSession{ID: "s3", BabyID: "b1", StartTime: t0.Add(-time.Hour), LastCheckpointAt: t0, Timer: domain.SleepTimer{}}
	if err := store.Insert(ctx, sleep); err != nil {
		t.Fatalf("insert sleep: %v", err)
	}
	open, err := store.ListOpen(ctx, "b1")
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 2 || open[0].Kind() != domain.KindSleep || open[1].Kind() != domain.KindNursing {
		t.Fatalf("expected sleep then nursing ordered by start, got %d sessions", len(open))
	}
}

func TestSessionStoreDeleteReportsMissing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := trackingout.NewSQLiteSessionStore(openDB(t))
	if err := store.Delete(ctx, "b1", domain.KindPumping); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	if _, err := store.Get(ctx, "b1", domain.KindPumping); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestRecordStoreListsHalfOpenRange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := trackingout.NewSQLiteRecordStore(openDB(t))
	for i, start := range []time.Time{t0.Add(-time.Hour), t0, t0.Add(time.Hour), t0.Add(2 * time.Hour)} {
		r := domain.Record{
			ID:        "r" + string(rune('a'+i)),
			BabyID:    "b1",
			Kind:      domain.KindBottle,
			StartTime: start,
			EndTime:   start.Add(15 * time.Minute),
			Seconds:   900,
			Fields:    map[string]string{"ml": "90"},
			CreatedAt: start,
		}
		if err := store.Create(ctx, r); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	records, err := store.List(ctx, "b1", t0, t0.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 || records[0].ID != "rb" || records[1].ID != "rc" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if records[0].Fields["ml"] != "90" || records[0].Seconds != 900 || !records[0].EndTime.Equal(t0.Add(15*time.Minute)) {
		t.Fatalf("record fields not preserved: %+v", records[0])
	}
}

func TestFinalizeStepsRollBackTogether(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openDB(t)
	sessions := trackingout.NewSQLiteSessionStore(db)
	records := trackingout.NewSQLiteRecordStore(db)
	if err := sessions.Insert(ctx, nursingSession(t, "s1")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	boom := errors.New("boom")
	err := sqlite.NewTxManager(db).Within(ctx, func(ctx context.Context) error {
		if err := records.Create(ctx, domain.Record{ID: "r1", BabyID: "b1", Kind: domain.KindNursing, StartTime: t0, EndTime: t0, CreatedAt: t0}); err != nil {
			return err
		}
		if err := sessions.Delete(ctx, "b1", domain.KindNursing); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := sessions.Get(ctx, "b1", domain.KindNursing); err != nil {
		t.Fatalf("session should be restored by rollback: %v", err)
	}
	if list, _ := records.List(ctx, "b1", t0.Add(-time.Hour), t0.Add(time.Hour)); len(list) != 0 {
		t.Fatalf("record should be rolled back, found %d", len(list))
	}
}

func TestRecordStoreOrdersSubSecondTimestamps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := trackingout.NewSQLiteRecordStore(openDB(t))
	day := time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC)
	for _, r := range []struct {
		id    string
		start time.Time
	}{
		{"a", day.Add(500 * time.Millisecond)},
		{"b", day.Add(10*time.Hour + 100*time.Millisecond)},
		{"c", day.Add(10 * time.Hour)},
	} {
		record := domain.Record{ID: r.id, BabyID: "b1", Kind: domain.KindDiaper, StartTime: r.start, EndTime: r.start, CreatedAt: r.start}
		if err := store.Create(ctx, record); err != nil {
			t.Fatalf("create %s: %v", r.id, err)
		}
	}

	records, err := store.List(ctx, "b1", day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var ids []string
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "c" || ids[2] != "b" {
		t.Fatalf("expected a, c, b in start order, got %v", ids)
	}
	if !records[0].StartTime.Equal(day.Add(500 * time.Millisecond)) {
		t.Fatalf("sub-second start not preserved: %s", records[0].StartTime)
	}

	previous, err := store.List(ctx, "b1", day.AddDate(0, 0, -1), day)
	if err != nil {
		t.Fatalf("list previous day: %v", err)
	}
	if len(previous) != 0 {
		t.Fatalf("expected nothing on the previous day, got %d", len(previous))
	}
}
