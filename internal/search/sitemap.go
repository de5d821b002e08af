package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	lockRetryDelay   = 50 * time.Millisecond
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// RenderSitemap writes links as sitemaps.org urlset
func RenderSitemap(w io.Writer, links []string) error {
	set := urlSet{Xmlns: sitemapNamespace, URLs: make([]sitemapURL, 0, len(links))}
	for _, link := range links {
		set.URLs = append(set.URLs, sitemapURL{Loc: link})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteSitemap replaces the sitemap at path. Concurrent writers, including
// other processes, are serialized by a lock file next to it, and readers
// never see a partially written file.
func WriteSitemap(ctx context.Context, path string, links []string) error {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock sitemap %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("failed to lock sitemap %s", path)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary sitemap: %w", err)
	}
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmp.Name())
	}()

	if err := RenderSitemap(tmp, links); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync sitemap: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close sitemap: %w", err)
	}
	//nolint:gosec // sitemaps are public
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set sitemap permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace sitemap %s: %w", path, err)
	}
	return nil
}
