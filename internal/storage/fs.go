package storage

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FSBackend serves audit files from a local directory tree.
type FSBackend struct {
	root   string
	suffix string
}

func NewFSBackend(root, suffix string) *FSBackend {
	if suffix == "" {
		suffix = DefaultFileSuffix
	}
	return &FSBackend{root: root, suffix: suffix}
}

func (b *FSBackend) Root() string { return b.root }

// List walks the root recursively. Files sitting directly in the root
// directory are not time buckets and are skipped.
func (b *FSBackend) List(ctx context.Context) ([]string, error) {
	root := filepath.Clean(b.root)
	var files []string

	err := filepath.WalkDir(b.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Dir(path) == root {
			return nil
		}
		if strings.HasSuffix(path, b.suffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (b *FSBackend) Fetch(ctx context.Context, id string) (io.ReadCloser, error) {
	return os.Open(id)
}

func (b *FSBackend) Close() error { return nil }
