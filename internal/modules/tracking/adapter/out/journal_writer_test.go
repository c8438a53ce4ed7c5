package out_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	trackingout "babylog/internal/modules/tracking/adapter/out"
	"babylog/internal/modules/tracking/domain"
	"babylog/internal/platform/markdown"
)

func TestJournalWriterRendersDayNote(t *testing.T) {
	t.Parallel()
	dataDir := t.TempDir()
	writer := trackingout.NewMarkdownJournalWriter(dataDir)
	day := time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC)
	records := []domain.Record{
		{ID: "r1", BabyID: "b1", Kind: domain.KindNursing, StartTime: t0, EndTime: t0.Add(20 * time.Minute), LeftSeconds: 600, RightSeconds: 540, Seconds: 1140},
		{ID: "r2", BabyID: "b1", Kind: domain.KindDiaper, StartTime: t0.Add(time.Hour), EndTime: t0.Add(time.Hour), Notes: "wet"},
	}

	path, err := writer.Write(context.Background(), "b1", day, records)
	if err != nil {
		t.Fatalf("write journal: %v", err)
	}
	if want := filepath.Join(dataDir, "journal", "2026", "02", "25-b1.md"); path != want {
		t.Fatalf("expected %s, got %s", want, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}

	var meta struct {
		Baby    string         `yaml:"baby"`
		Entries int            `yaml:"entries"`
		Totals  map[string]int `yaml:"totals_minutes"`
	}
	body, err := markdown.Parse(string(raw), &meta)
	if err != nil {
		t.Fatalf("parse journal: %v", err)
	}
	if meta.Baby != "b1" || meta.Entries != 2 || meta.Totals["nursing"] != 19 {
		t.Fatalf("unexpected frontmatter: %+v", meta)
	}
	if !strings.Contains(body, "09:00-09:20 nursing 19m0s (L 10m0s, R 9m0s)") || !strings.Contains(body, "diaper 0s wet") {
		t.Fatalf("unexpected body:\n%s", body)
	}
}
