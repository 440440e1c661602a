package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/coffersTech/auditreplay/internal/model"
)

// Cause classifies why a field could not be resolved. All three causes
// surface identically to multi-field callers as "field unavailable".
type Cause int

const (
	// CauseNotFound: no scanned record anywhere mentions the field.
	CauseNotFound Cause = iota
	// CauseDeleted: the closest record's after side lacks the field while
	// the process date is at or after the change.
	CauseDeleted
	// CauseNotCreated: the closest record's before side lacks the field
	// while the process date precedes the change.
	CauseNotCreated
)

// FieldError reports an unavailable field. It is the only per-field
// failure kind; anything else aborts the whole query.
type FieldError struct {
	Field string
	Cause Cause
}

func (e *FieldError) Error() string {
	switch e.Cause {
	case CauseDeleted:
		return fmt.Sprintf("the field %q was deleted before the process date", e.Field)
	case CauseNotCreated:
		return fmt.Sprintf("the field %q had not yet been created at the time of the process date", e.Field)
	default:
		return fmt.Sprintf("the field %q could not be found", e.Field)
	}
}

// resolveState picks the field's effective value from the winning record:
// the after side when the process date is at or past the change, the
// before side otherwise.
func resolveState(rec *model.ChangeRecord, field string, processDate time.Time) (json.RawMessage, error) {
	if !processDate.Before(rec.ChangeTime) {
		v, ok := rec.After[field]
		if !ok {
			return nil, &FieldError{Field: field, Cause: CauseDeleted}
		}
		return v, nil
	}

	v, ok := rec.Before[field]
	if !ok {
		return nil, &FieldError{Field: field, Cause: CauseNotCreated}
	}
	return v, nil
}
