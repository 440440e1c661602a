package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/valyala/fastjson"

	"github.com/coffersTech/auditreplay/internal/model"
)

// maxLineSize bounds a single NDJSON record.
const maxLineSize = 16 * 1024 * 1024

// RecordIterator provides a record-by-record view of one audit file.
type RecordIterator interface {
	Next() bool
	Record() model.ChangeRecord
	Err() error
	Close() error
}

// Reader decodes gzip-compressed, newline-delimited JSON audit files.
// Decoding is lazy: records are produced one line at a time and never
// materialized as a whole file. A fresh Records call re-reads from the
// start; the stream is not seekable.
type Reader struct {
	parsers fastjson.ParserPool
}

func NewReader() *Reader {
	return &Reader{}
}

// Records opens the identified file through the backend and returns an
// iterator over its change records. The caller owns Close.
func (r *Reader) Records(ctx context.Context, backend Backend, id string) (RecordIterator, error) {
	rc, err := backend.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	gz, err := gzip.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("gzip %s: %w", id, err)
	}

	sc := bufio.NewScanner(gz)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	return &fileIterator{
		reader: r,
		id:     id,
		raw:    rc,
		gz:     gz,
		sc:     sc,
	}, nil
}

type fileIterator struct {
	reader *Reader
	id     string
	raw    io.ReadCloser
	gz     *gzip.Reader
	sc     *bufio.Scanner

	line int
	curr model.ChangeRecord
	err  error
}

// Next advances to the following record. A malformed line is a hard
// failure for the file, surfaced through Err, never silently skipped.
func (it *fileIterator) Next() bool {
	if it.err != nil {
		return false
	}
	if !it.sc.Scan() {
		it.err = it.sc.Err()
		return false
	}
	it.line++

	rec, err := it.parseLine(it.sc.Bytes())
	if err != nil {
		it.err = fmt.Errorf("%s line %d: %w", it.id, it.line, err)
		return false
	}
	it.curr = rec
	return true
}

func (it *fileIterator) Record() model.ChangeRecord {
	return it.curr
}

func (it *fileIterator) Err() error {
	return it.err
}

func (it *fileIterator) Close() error {
	gzErr := it.gz.Close()
	if err := it.raw.Close(); err != nil {
		return err
	}
	return gzErr
}

func (it *fileIterator) parseLine(line []byte) (model.ChangeRecord, error) {
	p := it.reader.parsers.Get()
	defer it.reader.parsers.Put(p)

	v, err := p.ParseBytes(line)
	if err != nil {
		return model.ChangeRecord{}, fmt.Errorf("parse record: %w", err)
	}

	ct := v.GetStringBytes("changeTime")
	if ct == nil {
		return model.ChangeRecord{}, fmt.Errorf("missing changeTime")
	}
	changeTime, err := model.ParseTime(string(ct))
	if err != nil {
		return model.ChangeRecord{}, fmt.Errorf("changeTime: %w", err)
	}

	before, err := objectFields(v.Get("before"))
	if err != nil {
		return model.ChangeRecord{}, fmt.Errorf("before: %w", err)
	}
	after, err := objectFields(v.Get("after"))
	if err != nil {
		return model.ChangeRecord{}, fmt.Errorf("after: %w", err)
	}

	return model.ChangeRecord{
		ChangeTime: changeTime,
		Before:     before,
		After:      after,
	}, nil
}

// objectFields copies a before/after object into raw JSON values. A
// missing side is an empty map; a field holding JSON null counts as
// absent, matching the record format's deletion semantics.
func objectFields(v *fastjson.Value) (map[string]json.RawMessage, error) {
	if v == nil {
		return map[string]json.RawMessage{}, nil
	}
	obj, err := v.Object()
	if err != nil {
		return nil, err
	}

	out := make(map[string]json.RawMessage, obj.Len())
	obj.Visit(func(key []byte, val *fastjson.Value) {
		if val.Type() == fastjson.TypeNull {
			return
		}
		out[string(key)] = json.RawMessage(val.MarshalTo(nil))
	})
	return out, nil
}
