package markdown_test

import (
	"strings"
	"testing"

	"babylog/internal/platform/markdown"
)

type noteMeta struct {
	Day     string `yaml:"day"`
	Entries int    `yaml:"entries"`
}

func TestRenderThenParse(t *testing.T) {
	t.Parallel()
	rendered, err := markdown.Render(noteMeta{Day: "2026-02-25", Entries: 3}, "# Day\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(rendered, "---\n") || !strings.Contains(rendered, "entries: 3\n---\n") {
		t.Fatalf("unexpected frontmatter: %q", rendered)
	}
	meta := noteMeta{}
	body, err := markdown.Parse(rendered, &meta)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if meta.Entries != 3 || strings.TrimSpace(body) != "# Day" {
		t.Fatalf("unexpected parse result: %+v %q", meta, body)
	}
}

func TestParseWithoutFrontmatterAndUnclosedFence(t *testing.T) {
	t.Parallel()
	meta := noteMeta{}
	body, err := markdown.Parse("plain", &meta)
	if err != nil || body != "plain" {
		t.Fatalf("expected passthrough, got %q %v", body, err)
	}
	if _, err := markdown.Parse("---\nday: x\n", &meta); err == nil {
		t.Fatalf("expected unclosed fence to fail")
	}
}
