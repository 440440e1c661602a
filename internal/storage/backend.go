package storage

import (
	"context"
	"io"
	"strings"
)

// DefaultFileSuffix is the suffix audit files are filtered by when the
// environment does not override it.
const DefaultFileSuffix = ".jsonl.gz"

const gcsScheme = "gs://"

// Backend abstracts the store holding the audit files. Both backends must
// produce the same total order of identifiers for equivalent content; the
// engine never special-cases either.
type Backend interface {
	// List returns the identifiers of all audit files under the root,
	// filtered to the configured suffix, in ascending lexicographic order.
	List(ctx context.Context) ([]string, error)

	// Fetch returns the raw (still compressed) bytes of one identified file.
	Fetch(ctx context.Context, id string) (io.ReadCloser, error)

	// Root is the prefix stripped from an identifier before the bucket
	// date is parsed out of it.
	Root() string

	Close() error
}

// Open selects a backend for the source root. Roots carrying the gs://
// scheme go to Cloud Storage, everything else to the local filesystem.
func Open(ctx context.Context, root, suffix, credentialsFile string) (Backend, error) {
	if strings.HasPrefix(root, gcsScheme) {
		return NewGCSBackend(ctx, root, suffix, credentialsFile)
	}
	return NewFSBackend(root, suffix), nil
}
