package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
)

// writeGzipLines creates a gzip-compressed NDJSON file, making parent
// directories as needed.
func writeGzipLines(t *testing.T, path string, lines ...string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	gz := gzip.NewWriter(f)
	for _, line := range lines {
		if _, err := gz.Write([]byte(line + "\n")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
}

func TestReaderDecodesRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2016", "01", "09.jsonl.gz")
	writeGzipLines(t, path,
		`{"changeTime": "2016-01-09T20:44:00Z", "before": {"ambientTemp": 82.0}, "after": {"ambientTemp": 81.0}}`,
		`{"changeTime": "2016-01-09T21:00:00Z", "before": {}, "after": {"fanMode": "auto"}}`,
	)

	backend := NewFSBackend(dir, "")
	it, err := NewReader().Records(context.Background(), backend, path)
	if err != nil {
		t.Fatalf("open iterator: %v", err)
	}
	defer it.Close()

	if !it.Next() {
		t.Fatalf("expected first record, err: %v", it.Err())
	}
	rec := it.Record()
	if !rec.ChangeTime.Equal(time.Date(2016, 1, 9, 20, 44, 0, 0, time.UTC)) {
		t.Errorf("unexpected changeTime: %v", rec.ChangeTime)
	}
	var temp float64
	if err := json.Unmarshal(rec.After["ambientTemp"], &temp); err != nil || temp != 81.0 {
		t.Errorf("expected after.ambientTemp 81.0, got %s (%v)", rec.After["ambientTemp"], err)
	}
	if err := json.Unmarshal(rec.Before["ambientTemp"], &temp); err != nil || temp != 82.0 {
		t.Errorf("expected before.ambientTemp 82.0, got %s (%v)", rec.Before["ambientTemp"], err)
	}

	if !it.Next() {
		t.Fatalf("expected second record, err: %v", it.Err())
	}
	rec = it.Record()
	if len(rec.Before) != 0 {
		t.Errorf("expected empty before, got %v", rec.Before)
	}
	if string(rec.After["fanMode"]) != `"auto"` {
		t.Errorf("expected raw string value, got %s", rec.After["fanMode"])
	}

	if it.Next() {
		t.Error("expected end of stream")
	}
	if err := it.Err(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestReaderNullFieldIsAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buckets", "09.jsonl.gz")
	writeGzipLines(t, path,
		`{"changeTime": "2016-01-09T20:44:00Z", "before": {"mode": null}, "after": {"mode": "heat"}}`,
	)

	backend := NewFSBackend(dir, "")
	it, err := NewReader().Records(context.Background(), backend, path)
	if err != nil {
		t.Fatalf("open iterator: %v", err)
	}
	defer it.Close()

	if !it.Next() {
		t.Fatalf("expected record, err: %v", it.Err())
	}
	if _, ok := it.Record().Before["mode"]; ok {
		t.Error("null value should count as absent")
	}
	if _, ok := it.Record().After["mode"]; !ok {
		t.Error("after side should keep the field")
	}
}

func TestReaderMalformedLine(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"invalid json", `{"changeTime": "2016-01-09T20:44:00Z", "before": `},
		{"missing changeTime", `{"before": {}, "after": {}}`},
		{"bad changeTime", `{"changeTime": "never", "before": {}, "after": {}}`},
		{"non-object side", `{"changeTime": "2016-01-09T20:44:00Z", "before": [], "after": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "buckets", "09.jsonl.gz")
			writeGzipLines(t, path,
				`{"changeTime": "2016-01-09T10:00:00Z", "before": {}, "after": {"ok": 1}}`,
				tt.line,
			)

			backend := NewFSBackend(dir, "")
			it, err := NewReader().Records(context.Background(), backend, path)
			if err != nil {
				t.Fatalf("open iterator: %v", err)
			}
			defer it.Close()

			if !it.Next() {
				t.Fatalf("first record should decode, err: %v", it.Err())
			}
			if it.Next() {
				t.Fatal("malformed line should stop the iterator")
			}
			if it.Err() == nil {
				t.Error("malformed line must surface an error, not be skipped")
			}
		})
	}
}

func TestReaderRestartable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buckets", "09.jsonl.gz")
	writeGzipLines(t, path,
		`{"changeTime": "2016-01-09T10:00:00Z", "before": {}, "after": {"n": 1}}`,
	)

	backend := NewFSBackend(dir, "")
	reader := NewReader()

	for i := 0; i < 2; i++ {
		it, err := reader.Records(context.Background(), backend, path)
		if err != nil {
			t.Fatalf("open iterator: %v", err)
		}
		count := 0
		for it.Next() {
			count++
		}
		if err := it.Err(); err != nil {
			t.Fatalf("scan: %v", err)
		}
		if err := it.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if count != 1 {
			t.Errorf("pass %d: expected 1 record, got %d", i, count)
		}
	}
}

func TestReaderNotGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buckets", "09.jsonl.gz")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	backend := NewFSBackend(dir, "")
	if _, err := NewReader().Records(context.Background(), backend, path); err == nil {
		t.Error("expected error for non-gzip content")
	}
}
