// Package storage saves uploaded images to a local bucket directory and
// resolves their public URLs. Keys are collision-resistant (uuid plus the
// original extension) so concurrent uploads never clobber each other.
package storage

import (
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes files under Dir and serves them at BaseURL/Bucket/<key>.
type Store struct {
	Dir     string
	BaseURL string
	Bucket  string
}

// NewFromEnv builds a Store from UPLOAD_DIR and BASE_URL, with local
// defaults for development.
func NewFromEnv() *Store {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "./uploads"
	}
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Store{Dir: dir, BaseURL: baseURL, Bucket: "images"}
}

// Upload streams r into the bucket under a generated key and returns the
// public URL plus the key. The key is what Remove expects later.
func (s *Store) Upload(r io.Reader, originalName string) (publicURL, key string, err error) {
	if _, err := os.Stat(s.Dir); os.IsNotExist(err) {
		if err := os.MkdirAll(s.Dir, 0755); err != nil {
			return "", "", fmt.Errorf("create upload dir: %w", err)
		}
	}

	ext := filepath.Ext(originalName)
	key = uuid.New().String() + ext
	savePath := filepath.Join(s.Dir, key)

	dst, err := os.Create(savePath)
	if err != nil {
		return "", "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(savePath)
		return "", "", fmt.Errorf("write upload: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.BaseURL, s.Bucket, key), key, nil
}

// Remove deletes a stored file by key. A missing file is not an error;
// removal is best-effort cleanup.
func (s *Store) Remove(key string) error {
	if key == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// KeyFromURL derives the storage key from a public URL by taking the last
// path segment, provided the segment before it matches the bucket name.
// URLs of any other shape return "" (logged, not surfaced): those images
// simply never get cleaned up.
func (s *Store) KeyFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		log.Printf("storage: cannot parse image url %q: %v", rawURL, err)
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[len(parts)-2] != s.Bucket {
		log.Printf("storage: image url %q does not match %s/<key> convention, skipping cleanup", rawURL, s.Bucket)
		return ""
	}
	return parts[len(parts)-1]
}
