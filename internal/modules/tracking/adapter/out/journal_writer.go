package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"babylog/internal/modules/tracking/domain"
	trackingout "babylog/internal/modules/tracking/port/out"
	"babylog/internal/platform/markdown"
)

type journalMeta struct {
	Baby    string         `yaml:"baby"`
	Date    string         `yaml:"date"`
	Entries int            `yaml:"entries"`
	Totals  map[string]int `yaml:"totals_minutes,omitempty"`
}

// MarkdownJournalWriter writes one note per baby per day under the data dir.
type MarkdownJournalWriter struct {
	root string
}

func NewMarkdownJournalWriter(dataDir string) trackingout.JournalWriter {
	return &MarkdownJournalWriter{root: filepath.Join(dataDir, "journal")}
}

func (w *MarkdownJournalWriter) Write(_ context.Context, babyID string, day time.Time, records []domain.Record) (string, error) {
	path := filepath.Join(w.root, day.Format("2006"), day.Format("01"), fmt.Sprintf("%s-%s.md", day.Format("02"), babyID))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create journal dir: %w", err)
	}
	meta := journalMeta{Baby: babyID, Date: day.Format("2006-01-02"), Entries: len(records), Totals: map[string]int{}}
	for _, r := range records {
		meta.Totals[string(r.Kind)] += int(r.Seconds / 60)
	}
	content, err := markdown.Render(meta, renderJournalBody(babyID, day, records))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write journal note: %w", err)
	}
	return path, nil
}

func renderJournalBody(babyID string, day time.Time, records []domain.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n\n", babyID, day.Format("2006-01-02"))
	if len(records) == 0 {
		b.WriteString("No entries.\n")
		return b.String()
	}
	for _, r := range records {
		fmt.Fprintf(&b, "- %s-%s %s %s", r.StartTime.Format("15:04"), r.EndTime.Format("15:04"), r.Kind, formatSeconds(r.Seconds))
		if r.Kind == domain.KindNursing {
			fmt.Fprintf(&b, " (L %s, R %s)", formatSeconds(r.LeftSeconds), formatSeconds(r.RightSeconds))
		}
		if r.Notes != "" {
			fmt.Fprintf(&b, " %s", r.Notes)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatSeconds(seconds int64) string {
	return (time.Duration(seconds) * time.Second).String()
}
