package storage

import (
	"context"
	"testing"
)

func TestOpenDispatch(t *testing.T) {
	backend, err := Open(context.Background(), t.TempDir(), "", "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer backend.Close()

	if _, ok := backend.(*FSBackend); !ok {
		t.Errorf("expected filesystem backend, got %T", backend)
	}
}

func TestOpenGCSMissingBucket(t *testing.T) {
	if _, err := Open(context.Background(), "gs://", "", ""); err == nil {
		t.Error("expected error for root without bucket")
	}
}
