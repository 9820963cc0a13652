// Package local writes converted pages to the local filesystem.
package local

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/JakeFAU/mdcrawler/internal/crawler"
	"github.com/JakeFAU/mdcrawler/internal/hash/sha256"
)

// Config captures the parameters for the local page store.
type Config struct {
	// BaseDir is the root directory pages are written under.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
}

// PageStore writes one Markdown file per crawled page.
type PageStore struct {
	baseDir string
}

// New creates the base directory if needed and checks it is writable.
func New(cfg Config) (*PageStore, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, errors.New("base directory is required")
	}

	info, err := os.Stat(cfg.BaseDir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create base directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("stat base directory: %w", err)
	case !info.IsDir():
		return nil, errors.New("base directory path is not a directory")
	}

	probe := filepath.Join(cfg.BaseDir, ".writable_test")
	if err := os.WriteFile(probe, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("base directory is not writable: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return nil, fmt.Errorf("clean up probe file: %w", err)
	}
	return &PageStore{baseDir: cfg.BaseDir}, nil
}

// WritePage stores the page's Markdown at PagePath(page.URL) and returns the
// file path written.
func (s *PageStore) WritePage(ctx context.Context, page crawler.Page) (string, error) {
	rel, err := PagePath(page.URL)
	if err != nil {
		return "", err
	}
	return s.Put(ctx, rel, []byte(page.Result.Markdown))
}

// Put writes data to rel under the base directory. Paths escaping the base
// directory are rejected.
func (s *PageStore) Put(ctx context.Context, rel string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(rel) == "" {
		return "", errors.New("path is required")
	}
	base := filepath.Clean(s.baseDir)
	full := filepath.Clean(filepath.Join(base, rel))
	if !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", errors.New("path traversal detected")
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return "", fmt.Errorf("create parent directories: %w", err)
	}
	if err := os.WriteFile(full, data, 0o600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return full, nil
}

// PagePath maps a page URL to a relative file path: host, then the cleaned
// path segments, with "index.md" for directory URLs. A query string adds a
// short digest so distinct queries do not collide.
func PagePath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	host := sanitize(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("page url %q has no host", rawURL)
	}
	if port := u.Port(); port != "" {
		host += "_" + port
	}

	segments := []string{host}
	for _, seg := range strings.Split(path.Clean("/"+u.Path), "/") {
		if seg = sanitize(seg); seg != "" {
			segments = append(segments, seg)
		}
	}
	name := "index"
	if len(segments) > 1 && !strings.HasSuffix(u.Path, "/") {
		name = strings.TrimSuffix(segments[len(segments)-1], path.Ext(segments[len(segments)-1]))
		segments = segments[:len(segments)-1]
	}
	if u.RawQuery != "" {
		name += "-" + sha256.Short([]byte(u.RawQuery), 8)
	}
	return filepath.Join(append(segments, name+".md")...), nil
}

func sanitize(segment string) string {
	var b strings.Builder
	for _, r := range segment {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "." || out == ".." {
		return ""
	}
	return out
}
