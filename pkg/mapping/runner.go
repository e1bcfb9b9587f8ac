package mapping

import (
	"context"
	"errors"
	"fmt"

	"github.com/solidify-labs/gl2gh/pkg/logger"
)

// ErrSkip marks a record that cannot be applied but should not count as a
// failure, e.g. the target issue does not exist. Appliers return it (possibly
// wrapped) and the runner records the record as skipped.
var ErrSkip = errors.New("record skipped")

// Applier performs the target-system write for one pending record, mutating
// the record's target fields on success. When dryRun is set the applier runs
// its read-side validation but must not issue any write.
type Applier[T Record] func(ctx context.Context, record T, dryRun bool) error

// Summary reports the outcome of an apply pass.
type Summary struct {
	Applied  int // records applied in this run (dry run: records that would be applied)
	Failed   int
	Skipped  int // records skipped in this run plus records already resolved
	Resolved int // records that were already resolved before this run
}

func (s Summary) String() string {
	return fmt.Sprintf("applied=%d failed=%d skipped=%d already-resolved=%d", s.Applied, s.Failed, s.Skipped, s.Resolved)
}

// Runner drives an apply pass over a mapping file. A failure on one record is
// recorded and does not stop the remaining records; already-resolved records
// are never re-applied, which makes re-runs idempotent.
type Runner[T Record] struct {
	Store  *Store[T]
	DryRun bool
	// FlushEvery controls how many record mutations may accumulate before
	// the mapping file is rewritten. Zero means flush after every record,
	// which keeps the pass resumable after an interruption.
	FlushEvery int
}

// Apply runs the applier over every unresolved record and persists statuses
// back to the mapping file. In dry-run mode statuses are left untouched and
// the file is never written. Cancellation stops between records after the
// current state has been saved.
func (r *Runner[T]) Apply(ctx context.Context, records []T, apply Applier[T]) (Summary, error) {
	var summary Summary
	dirty := 0

	flush := func() error {
		if r.DryRun || dirty == 0 {
			return nil
		}
		if err := r.Store.Save(records); err != nil {
			return err
		}
		dirty = 0
		return nil
	}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			if flushErr := flush(); flushErr != nil {
				logger.Error("Failed to save mapping file on cancellation", "file", r.Store.Path(), "error", flushErr)
			}
			return summary, err
		}

		if record.GetStatus().Resolved() {
			summary.Resolved++
			summary.Skipped++
			continue
		}

		err := apply(ctx, record, r.DryRun)
		switch {
		case err == nil:
			summary.Applied++
			if !r.DryRun {
				record.SetStatus(StatusApplied)
				dirty++
			}
		case errors.Is(err, ErrSkip):
			summary.Skipped++
			logger.Debug("Record skipped", "reason", err)
			if !r.DryRun {
				record.SetStatus(StatusSkipped)
				dirty++
			}
		default:
			summary.Failed++
			logger.Error("Failed to apply record", "error", err)
			if !r.DryRun {
				record.SetStatus(StatusFailed)
				dirty++
			}
		}

		if dirty > r.FlushEvery {
			if err := flush(); err != nil {
				return summary, err
			}
		}
	}

	if err := flush(); err != nil {
		return summary, err
	}
	return summary, nil
}
