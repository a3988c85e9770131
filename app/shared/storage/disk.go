package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes uploads under a local directory. Used in development when
// no bucket is configured.
type DiskStore struct {
	root    string
	baseURL string
}

func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (d *DiskStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(d.root, clean), nil
}

func (d *DiskStore) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	p, err := d.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", key, err)
	}
	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", key, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", key, err)
	}
	return key, nil
}

func (d *DiskStore) URL(_ context.Context, key string) (string, error) {
	if _, err := d.path(key); err != nil {
		return "", err
	}
	segments := strings.Split(strings.TrimPrefix(key, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return d.baseURL + "/" + strings.Join(segments, "/"), nil
}

var _ BlobStore = (*DiskStore)(nil)
