package model

import (
	"encoding/json"
	"time"
)

// ChangeRecord is one audit log entry: the value of every touched field
// immediately before and immediately after a single mutation.
// Values are kept as raw JSON so callers can round-trip them unchanged.
type ChangeRecord struct {
	ChangeTime time.Time
	Before     map[string]json.RawMessage
	After      map[string]json.RawMessage
}

// HasField reports whether the record mentions the field on either side.
func (r *ChangeRecord) HasField(field string) bool {
	if _, ok := r.Before[field]; ok {
		return true
	}
	_, ok := r.After[field]
	return ok
}

// ReplayResult is the externally visible outcome of one replay run.
// TS carries the caller's original process-date string, unparsed.
// Fields that could not be resolved are simply absent from State.
type ReplayResult struct {
	State map[string]json.RawMessage `json:"state"`
	TS    string                     `json:"ts"`
}
