package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSBackend serves audit files from a Cloud Storage bucket. The root has
// the form gs://bucket/prefix; identifiers are object keys.
type GCSBackend struct {
	client *storage.Client
	bucket string
	prefix string
	suffix string
}

func NewGCSBackend(ctx context.Context, root, suffix, credentialsFile string) (*GCSBackend, error) {
	bucket, prefix, _ := strings.Cut(strings.TrimPrefix(root, gcsScheme), "/")
	if bucket == "" {
		return nil, fmt.Errorf("invalid source root %q: missing bucket", root)
	}
	if suffix == "" {
		suffix = DefaultFileSuffix
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &GCSBackend{
		client: client,
		bucket: bucket,
		prefix: prefix,
		suffix: suffix,
	}, nil
}

func (b *GCSBackend) Root() string { return b.prefix }

func (b *GCSBackend) List(ctx context.Context) ([]string, error) {
	it := b.client.Bucket(b.bucket).Objects(ctx, &storage.Query{Prefix: b.prefix})

	var keys []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list gs://%s/%s: %w", b.bucket, b.prefix, err)
		}
		if strings.HasSuffix(attrs.Name, b.suffix) {
			keys = append(keys, attrs.Name)
		}
	}

	sort.Strings(keys)
	return keys, nil
}

func (b *GCSBackend) Fetch(ctx context.Context, id string) (io.ReadCloser, error) {
	r, err := b.client.Bucket(b.bucket).Object(id).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s: %w", b.bucket, id, err)
	}
	return r, nil
}

func (b *GCSBackend) Close() error { return b.client.Close() }
