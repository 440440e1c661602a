package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/coffersTech/auditreplay/internal/model"
)

// searchFiles scans the given files in order for the record mentioning
// the field whose changeTime is closest to the process date. A strictly
// smaller distance replaces the best-so-far; a tie keeps the record found
// first. Once a file has yielded any match, later files in the sequence
// are not scanned: priority is file order first, in-file closeness
// second. Returns nil when no record in the sequence mentions the field.
func (r *Replayer) searchFiles(ctx context.Context, field string, files []string, processDate time.Time) (*model.ChangeRecord, error) {
	var best *model.ChangeRecord
	var bestDiff time.Duration

	for _, f := range files {
		it, err := r.reader.Records(ctx, r.backend, f)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f, err)
		}

		for it.Next() {
			rec := it.Record()
			if !rec.HasField(field) {
				continue
			}
			diff := absDuration(rec.ChangeTime.Sub(processDate))
			if best == nil || diff < bestDiff {
				c := rec
				best = &c
				bestDiff = diff
			}
		}
		if err := it.Err(); err != nil {
			it.Close()
			return nil, fmt.Errorf("scan %s: %w", f, err)
		}
		if err := it.Close(); err != nil {
			return nil, fmt.Errorf("close %s: %w", f, err)
		}

		if best != nil {
			break
		}
	}

	return best, nil
}
