// Package content is the boundary to the markdown content-record store.
// The coordination subsystem only ever writes whole records here during
// publication; reading and rendering belong to the site itself.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pressroom/pkg/logger"
)

type Store struct {
	dir     string
	baseURL string
	log     *logger.Logger
}

func NewStore(dir, baseURL string, log *logger.Logger) *Store {
	return &Store{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases the title and collapses runs of non-alphanumerics to
// single dashes.
func Slug(title string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "untitled"
	}
	return s
}

// RecordID derives the deterministic identifier a published record is
// stored under: the title slug suffixed with the publish date. The same
// title published on the same day maps to the same record, which keeps
// publish retries idempotent.
func RecordID(title string, date time.Time) string {
	return fmt.Sprintf("%s-%s", Slug(title), date.UTC().Format("2006-01-02"))
}

// Write materializes one content record as markdown with YAML
// frontmatter under <dir>/<contentType>/<id>.md. An existing file is
// overwritten, last write wins.
func (s *Store) Write(contentType, id string, fields map[string]any, body string) (string, error) {
	typeDir := filepath.Join(s.dir, contentType)
	if err := os.MkdirAll(typeDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create content directory: %w", err)
	}

	frontmatter, err := yaml.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to marshal frontmatter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(frontmatter)
	sb.WriteString("---\n\n")
	sb.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		sb.WriteString("\n")
	}

	path := filepath.Join(typeDir, id+".md")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write content record: %w", err)
	}

	s.log.Info("Content record written",
		"type", contentType,
		"id", id,
		"path", path,
	)
	return path, nil
}

// RecordURL is the public URL a written record is served under.
func (s *Store) RecordURL(contentType, id string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, contentType, id)
}

// GenerateSitemap rewrites sitemap.xml at the content root from the
// records currently on disk, one URL per markdown file.
func (s *Store) GenerateSitemap() error {
	var urls []string

	err := filepath.WalkDir(s.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		rel = strings.TrimSuffix(filepath.ToSlash(rel), ".md")
		urls = append(urls, s.baseURL+"/"+rel)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			urls = nil
		} else {
			return fmt.Errorf("failed to walk content directory: %w", err)
		}
	}
	sort.Strings(urls)

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, u := range urls {
		sb.WriteString("  <url><loc>")
		sb.WriteString(u)
		sb.WriteString("</loc></url>\n")
	}
	sb.WriteString("</urlset>\n")

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create content directory: %w", err)
	}
	path := filepath.Join(s.dir, "sitemap.xml")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write sitemap: %w", err)
	}

	s.log.Info("Sitemap regenerated", "path", path, "url_count", len(urls))
	return nil
}
