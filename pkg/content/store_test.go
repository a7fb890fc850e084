package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pressroom/pkg/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Service: "test"})
	return NewStore(t.TempDir(), "https://example.org", log)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"  Company Visit: PT. Maju!  ", "company-visit-pt-maju"},
		{"already-slugged", "already-slugged"},
		{"___", "untitled"},
		{"", "untitled"},
	}

	for _, tt := range tests {
		if got := Slug(tt.title); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestRecordID_Deterministic(t *testing.T) {
	date := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

	a := RecordID("Internship Openings 2026", date)
	b := RecordID("Internship Openings 2026", date)

	if a != b {
		t.Fatalf("same title and date produced different ids: %q vs %q", a, b)
	}
	if a != "internship-openings-2026-2026-04-02" {
		t.Errorf("unexpected record id: %q", a)
	}
}

func TestWrite_FrontmatterAndBody(t *testing.T) {
	store := newTestStore(t)

	path, err := store.Write("infoprof", "hello-world-2026-04-02", map[string]any{
		"title":    "Hello World",
		"category": "announcement",
	}, "Body text here")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written record: %v", err)
	}

	text := string(data)
	if !strings.HasPrefix(text, "---\n") {
		t.Error("record should start with a frontmatter fence")
	}
	if !strings.Contains(text, "title: Hello World") {
		t.Errorf("frontmatter missing title field:\n%s", text)
	}
	if !strings.HasSuffix(text, "Body text here\n") {
		t.Errorf("record should end with the body:\n%s", text)
	}
}

func TestGenerateSitemap(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Write("infoprof", "a-post-2026-01-01", map[string]any{"title": "A"}, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Write("events", "b-event-2026-01-02", map[string]any{"title": "B"}, "b"); err != nil {
		t.Fatal(err)
	}

	if err := store.GenerateSitemap(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(store.dir, "sitemap.xml"))
	if err != nil {
		t.Fatalf("failed to read sitemap: %v", err)
	}

	text := string(data)
	for _, want := range []string{
		"https://example.org/infoprof/a-post-2026-01-01",
		"https://example.org/events/b-event-2026-01-02",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("sitemap missing %q:\n%s", want, text)
		}
	}
}
