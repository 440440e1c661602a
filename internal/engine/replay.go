package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coffersTech/auditreplay/internal/model"
	"github.com/coffersTech/auditreplay/internal/storage"
)

// Replayer reconstructs field values at a historical instant from the
// audit file catalog of one storage backend. It holds no mutable state
// across queries; distinct queries may run in parallel.
type Replayer struct {
	backend storage.Backend
	reader  *storage.Reader
	suffix  string
	log     *slog.Logger
}

func NewReplayer(backend storage.Backend, suffix string, log *slog.Logger) *Replayer {
	if suffix == "" {
		suffix = storage.DefaultFileSuffix
	}
	if log == nil {
		log = slog.Default()
	}
	return &Replayer{
		backend: backend,
		reader:  storage.NewReader(),
		suffix:  suffix,
		log:     log,
	}
}

// FieldState runs one replay query for a single field: list the catalog,
// build the traversal plan, search the main file, then the before files,
// then the after files, and resolve the winning record's before/after
// side against the process date.
func (r *Replayer) FieldState(ctx context.Context, field string, processDate time.Time) (json.RawMessage, error) {
	files, err := r.backend.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list audit files: %w", err)
	}
	plan, err := BuildPlan(files, r.backend.Root(), r.suffix, processDate)
	if err != nil {
		return nil, err
	}

	rec, err := r.searchFiles(ctx, field, []string{plan.Main}, processDate)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec, err = r.searchFiles(ctx, field, plan.Before, processDate)
		if err != nil {
			return nil, err
		}
	}
	if rec == nil {
		rec, err = r.searchFiles(ctx, field, plan.After, processDate)
		if err != nil {
			return nil, err
		}
	}
	if rec == nil {
		return nil, &FieldError{Field: field, Cause: CauseNotFound}
	}

	return resolveState(rec, field, processDate)
}

// Replay resolves each requested field independently at the given process
// date. Per-field failures are logged as warnings and leave the field out
// of the result; malformed input aborts the whole run.
func (r *Replayer) Replay(ctx context.Context, fields []string, processDateStr string) (model.ReplayResult, error) {
	processDate, err := model.ParseTime(processDateStr)
	if err != nil {
		return model.ReplayResult{}, fmt.Errorf("process date: %w", err)
	}

	result := model.ReplayResult{
		State: make(map[string]json.RawMessage, len(fields)),
		TS:    processDateStr,
	}

	for _, field := range fields {
		value, err := r.FieldState(ctx, field, processDate)
		if err != nil {
			var fe *FieldError
			if errors.As(err, &fe) {
				r.log.Warn("field unavailable", "field", fe.Field, "reason", fe.Error())
				continue
			}
			return model.ReplayResult{}, err
		}
		result.State[field] = value
	}

	return result, nil
}
