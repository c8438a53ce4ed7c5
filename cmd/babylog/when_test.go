package main

import (
	"testing"
	"time"
)

func TestParseWhen(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		raw  string
		want time.Time
	}{
		{"", time.Time{}},
		{"15m", now.Add(-15 * time.Minute)},
		{"08:50", time.Date(2026, 3, 1, 8, 50, 0, 0, time.UTC)},
		{"2026-02-28T23:00:00Z", time.Date(2026, 2, 28, 23, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := parseWhen(tc.raw, now)
		if err != nil {
			t.Fatalf("parseWhen(%q): %v", tc.raw, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("parseWhen(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
	if _, err := parseWhen("yesterday", now); err == nil {
		t.Fatalf("expected error for unrecognised input")
	}
	if _, err := parseWhen("-5m", now); err == nil {
		t.Fatalf("expected error for negative duration")
	}
}

func TestParseFields(t *testing.T) {
	t.Parallel()
	fields, err := parseFields([]string{"ml=120", " side = left "})
	if err != nil {
		t.Fatalf("parse fields: %v", err)
	}
	if fields["ml"] != "120" || fields["side"] != "left" {
		t.Fatalf("unexpected fields: %#v", fields)
	}
	if _, err := parseFields([]string{"novalue"}); err == nil {
		t.Fatalf("expected error for missing '='")
	}
}
