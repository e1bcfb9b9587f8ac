package mapping

// Status tracks a mapping record through the migration workflow. A record is
// written as pending by create-map, and moves to exactly one of the other
// statuses during an apply pass.
type Status string

const (
	StatusPending Status = "pending"
	StatusApplied Status = "applied"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// ParseStatus maps stored status text to a Status. Unknown text (including a
// hand-edited mapping file) is treated as pending so the record is retried.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusApplied, StatusFailed, StatusSkipped:
		return Status(s)
	default:
		return StatusPending
	}
}

// Resolved reports whether a record needs no further target-system write.
func (s Status) Resolved() bool {
	return s == StatusApplied || s == StatusSkipped
}

// Record is the per-row state the runner drives. Concrete record types embed
// their own source/target columns and expose only the status here.
type Record interface {
	GetStatus() Status
	SetStatus(Status)
}
