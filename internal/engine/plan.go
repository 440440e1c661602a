package engine

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/coffersTech/auditreplay/internal/model"
)

var ErrEmptyCatalog = errors.New("no audit files under root")

// Plan partitions the catalog around the file whose bucket date is
// closest to the process date. Before runs descending and After
// ascending, so both start with the file nearest to Main.
type Plan struct {
	Main   string
	Before []string
	After  []string
}

// fileDate extracts the bucket date encoded in a file identifier: the
// root prefix and suffix are stripped, path separators removed, and the
// remainder parsed as an ISO-8601-compatible date.
func fileDate(id, root, suffix string) (time.Time, error) {
	s := strings.TrimPrefix(id, root)
	s = strings.TrimSuffix(s, suffix)
	s = strings.ReplaceAll(s, "/", "")
	s = strings.ReplaceAll(s, string(filepath.Separator), "")
	return model.ParseTime(s)
}

// BuildPlan scans the ascending catalog tracking the running minimum of
// |fileDate - processDate|. The scan stops at the first strict increase:
// for regular, contiguous time buckets the diff sequence is unimodal, so
// no later file can be closer. Irregular buckets or gaps break that
// assumption and degrade the Main choice; that is a known limitation of
// the catalog layout, not checked here. The non-strict comparison means
// a tie advances Main to the later file.
func BuildPlan(files []string, root, suffix string, processDate time.Time) (Plan, error) {
	if len(files) == 0 {
		return Plan{}, ErrEmptyCatalog
	}

	minDiff := time.Duration(math.MaxInt64)
	mainIdx := 0
	for i, f := range files {
		d, err := fileDate(f, root, suffix)
		if err != nil {
			return Plan{}, fmt.Errorf("file date of %s: %w", f, err)
		}
		diff := absDuration(processDate.Sub(d))
		if diff > minDiff {
			break
		}
		minDiff = diff
		mainIdx = i
	}

	before := make([]string, 0, mainIdx)
	for i := mainIdx - 1; i >= 0; i-- {
		before = append(before, files[i])
	}

	return Plan{
		Main:   files[mainIdx],
		Before: before,
		After:  append([]string(nil), files[mainIdx+1:]...),
	}, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
