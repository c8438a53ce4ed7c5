package domain_test

import (
	"errors"
	"testing"

	"babylog/internal/modules/tracking/domain"
	apperrors "babylog/internal/platform/errors"
)

func TestRescale(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		in       domain.Buckets
		oldTotal int64
		newTotal int64
		want     domain.Buckets
	}{
		{"doubles", domain.Buckets{Left: 240, Right: 360}, 600, 1200, domain.Buckets{Left: 480, Right: 720}},
		{"halves with pause", domain.Buckets{Left: 100, Right: 200, Paused: 300}, 600, 300, domain.Buckets{Left: 50, Right: 100, Paused: 150}},
		{"truncates", domain.Buckets{Seconds: 10}, 3, 1, domain.Buckets{Seconds: 3}},
		{"no old total", domain.Buckets{Left: 7}, 0, 100, domain.Buckets{Left: 7}},
	}
	for _, tc := range cases {
		got, err := domain.Rescale(tc.in, tc.oldTotal, tc.newTotal)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %+v, got %+v", tc.name, tc.want, got)
		}
	}
	if _, err := domain.Rescale(domain.Buckets{Left: 1}, 10, 0); !errors.Is(err, apperrors.ErrInvalidTimeRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}
}

func TestKindSupportsSession(t *testing.T) {
	t.Parallel()
	for _, k := range domain.SessionKinds() {
		if !k.SupportsSession() {
			t.Fatalf("%s should support sessions", k)
		}
	}
	for _, k := range []domain.Kind{domain.KindBottle, domain.KindDiaper, domain.KindActivity} {
		if k.SupportsSession() {
			t.Fatalf("%s should be atomic", k)
		}
	}
	if err := domain.Kind("bath").Validate(); err == nil {
		t.Fatalf("unknown kind should fail")
	}
}
