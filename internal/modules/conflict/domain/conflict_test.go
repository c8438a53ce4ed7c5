package domain_test

import (
	"testing"
	"time"

	"babylog/internal/modules/conflict/domain"
)

var now = time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)

func at(hh, mm int) time.Time {
	return time.Date(2026, 2, 25, hh, mm, 0, 0, time.UTC)
}

func TestStartSleepWhileNursingIsBlocking(t *testing.T) {
	t.Parallel()
	open := []domain.OpenSession{{ID: "n1", Kind: "nursing", StartTime: at(9, 40)}}

	got := domain.Evaluate(open, domain.Proposal{Kind: "sleep"}, now)
	if len(got) != 1 {
		t.Fatalf("expected one conflict, got %+v", got)
	}
	c := got[0]
	if c.Kind != domain.KindActive || c.Overridable || c.Retroactive {
		t.Fatalf("expected blocking active conflict, got %+v", c)
	}
	if len(c.Activities) != 1 || c.Activities[0].ID != "n1" || c.Activities[0].Description != "nursing since 09:40" {
		t.Fatalf("unexpected activities: %+v", c.Activities)
	}
}

func TestActivePassNamesFirstSessionOnly(t *testing.T) {
	t.Parallel()
	open := []domain.OpenSession{
		{ID: "s1", Kind: "sleep", StartTime: at(9, 0)},
		{ID: "n1", Kind: "nursing", StartTime: at(9, 30)},
	}
	got := domain.Evaluate(open, domain.Proposal{Kind: "nursing", StartTime: now}, now)
	if len(got) != 1 || got[0].Kind != domain.KindActive || got[0].Activities[0].ID != "s1" {
		t.Fatalf("expected active conflict naming sleep, got %+v", got)
	}
}

func TestLoggingPastFeedingDuringSleepIsRetroactive(t *testing.T) {
	t.Parallel()
	open := []domain.OpenSession{{ID: "s1", Kind: "sleep", StartTime: at(8, 50)}}

	got := domain.Evaluate(open, domain.Proposal{Kind: "bottle", StartTime: at(9, 0), EndTime: at(9, 10)}, now)
	if len(got) == 0 {
		t.Fatal("expected conflicts")
	}
	var retro *domain.Conflict
	for i := range got {
		if got[i].Kind != domain.KindLogical || !got[i].Overridable {
			t.Fatalf("expected only advisory conflicts, got %+v", got[i])
		}
		if got[i].Retroactive {
			retro = &got[i]
		}
	}
	if retro == nil {
		t.Fatalf("expected a retroactive conflict, got %+v", got)
	}
	if retro.Message != "sleep since 08:50 was already running at 09:00" {
		t.Fatalf("unexpected message: %q", retro.Message)
	}
}

func TestPumpingIsExemptFromEverything(t *testing.T) {
	t.Parallel()
	open := []domain.OpenSession{
		{ID: "s1", Kind: "sleep", StartTime: at(9, 0)},
		{ID: "n1", Kind: "nursing", StartTime: at(9, 30)},
	}
	if got := domain.Evaluate(open, domain.Proposal{Kind: "pumping"}, now); len(got) != 0 {
		t.Fatalf("expected no conflicts for pumping, got %+v", got)
	}
	pumping := []domain.OpenSession{{ID: "p1", Kind: "pumping", StartTime: at(9, 0)}}
	for _, kind := range []string{"sleep", "nursing", "bottle", "activity"} {
		if got := domain.Evaluate(pumping, domain.Proposal{Kind: kind}, now); len(got) != 0 {
			t.Fatalf("expected open pumping to never conflict with %s, got %+v", kind, got)
		}
	}
}

func TestWindowBeforeEverySessionHasNoOverlap(t *testing.T) {
	t.Parallel()
	open := []domain.OpenSession{{ID: "s1", Kind: "sleep", StartTime: at(9, 30)}}
	got := domain.Evaluate(open, domain.Proposal{Kind: "bottle", StartTime: at(9, 0), EndTime: at(9, 10)}, now)
	for _, c := range got {
		if !c.Retroactive {
			t.Fatalf("window before the session must not overlap it, got %+v", c)
		}
	}
}

// Sessions open now are reported for any past proposal, including ones that
// began after the proposed window ended.
func TestRetroactivePassFlagsEverySessionOpenNow(t *testing.T) {
	t.Parallel()
	open := []domain.OpenSession{{ID: "s1", Kind: "sleep", StartTime: at(9, 45)}}
	for _, p := range []domain.Proposal{
		{Kind: "nursing", StartTime: at(7, 0), EndTime: at(7, 20)},
		{Kind: "bottle", StartTime: at(8, 0), EndTime: at(8, 10)},
		{Kind: "activity", StartTime: at(8, 0)},
	} {
		got := domain.Evaluate(open, p, now)
		if len(got) != 1 {
			t.Fatalf("%s at %s: expected one conflict, got %+v", p.Kind, clock(p.StartTime), got)
		}
		c := got[0]
		if c.Kind != domain.KindLogical || !c.Retroactive || !c.Overridable || c.Activities[0].ID != "s1" {
			t.Fatalf("%s at %s: expected retroactive conflict on sleep, got %+v", p.Kind, clock(p.StartTime), c)
		}
	}
}

func TestBackdatedStartIsStillBlocking(t *testing.T) {
	t.Parallel()
	open := []domain.OpenSession{{ID: "n1", Kind: "nursing", StartTime: at(9, 40)}}
	got := domain.Evaluate(open, domain.Proposal{Kind: "sleep", StartTime: at(9, 58)}, now)
	if len(got) == 0 || got[0].Kind != domain.KindActive || got[0].Overridable {
		t.Fatalf("expected blocking active conflict for a backdated timer, got %+v", got)
	}
}

func TestCompletedEntrySkipsActivePass(t *testing.T) {
	t.Parallel()
	open := []domain.OpenSession{{ID: "n1", Kind: "nursing", StartTime: at(9, 40)}}
	got := domain.Evaluate(open, domain.Proposal{Kind: "sleep", StartTime: at(9, 45), EndTime: at(9, 50)}, now)
	if len(got) == 0 {
		t.Fatal("expected advisory conflicts")
	}
	for _, c := range got {
		if c.Kind != domain.KindLogical || !c.Overridable {
			t.Fatalf("completed entry must only raise advisory conflicts, got %+v", c)
		}
	}
}

func clock(t time.Time) string {
	return t.Format("15:04")
}

func TestLogicalConflictForNonSessionKinds(t *testing.T) {
	t.Parallel()
	open := []domain.OpenSession{
		{ID: "s1", Kind: "sleep", StartTime: at(9, 0)},
		{ID: "p1", Kind: "pumping", StartTime: at(9, 5)},
	}
	got := domain.Evaluate(open, domain.Proposal{Kind: "activity", StartTime: now}, now)
	if len(got) != 1 || got[0].Kind != domain.KindLogical || got[0].Retroactive {
		t.Fatalf("expected one live logical conflict, got %+v", got)
	}
	if len(got[0].Activities) != 1 || got[0].Activities[0].ID != "s1" {
		t.Fatalf("expected sleep only, got %+v", got[0].Activities)
	}
	if got := domain.Evaluate(open, domain.Proposal{Kind: "diaper"}, now); len(got) != 0 {
		t.Fatalf("diaper never conflicts, got %+v", got)
	}
}

func TestSubSecondStartIsNotPast(t *testing.T) {
	t.Parallel()
	open := []domain.OpenSession{{ID: "n1", Kind: "nursing", StartTime: at(9, 40)}}
	got := domain.Evaluate(open, domain.Proposal{Kind: "sleep", StartTime: now.Add(-500 * time.Millisecond)}, now)
	if len(got) != 1 || got[0].Kind != domain.KindActive {
		t.Fatalf("expected active conflict for a start within the current second, got %+v", got)
	}
}

func TestExclusionMatrix(t *testing.T) {
	t.Parallel()
	cases := []struct {
		newKind, existing string
		want              bool
	}{
		{"sleep", "nursing", true},
		{"sleep", "bottle", true},
		{"sleep", "activity", true},
		{"nursing", "sleep", true},
		{"bottle", "activity", true},
		{"activity", "sleep", true},
		{"activity", "nursing", false},
		{"nursing", "bottle", false},
		{"pumping", "sleep", false},
		{"sleep", "pumping", false},
		{"diaper", "sleep", false},
		{"sleep", "diaper", false},
	}
	for _, tc := range cases {
		if got := domain.Excludes(tc.newKind, tc.existing); got != tc.want {
			t.Fatalf("Excludes(%s, %s) = %v, want %v", tc.newKind, tc.existing, got, tc.want)
		}
	}
	if _, ok := domain.CategoryOf("swaddle"); ok {
		t.Fatal("expected unknown kind to have no category")
	}
}
