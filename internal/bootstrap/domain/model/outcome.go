package model

// Outcome is the result of one bootstrap run
type Outcome string

const (
	// OutcomeAlreadyInitialized means the collection existed; nothing was written.
	OutcomeAlreadyInitialized Outcome = "already_initialized"
	// OutcomeInitialized means collection, index and seed were all created.
	OutcomeInitialized Outcome = "initialized"
	// OutcomePartiallyInitialized means collection and index exist but the
	// seed insert failed.
	OutcomePartiallyInitialized Outcome = "partially_initialized"
	// OutcomeDryRun means the probe ran and no writes were attempted.
	OutcomeDryRun Outcome = "dry_run"
	// OutcomeLockHeld means another run holds the initialization lock.
	OutcomeLockHeld Outcome = "lock_held"
)

// Report summarizes a bootstrap run for logging and exit code selection
type Report struct {
	Outcome    Outcome
	RunID      string
	Database   string
	Collection string
	Attempts   int
	// Cause explains a run that did not complete every write: the seed
	// insert failure of a partially initialized run, or the lock error of a
	// skipped one.
	Cause error
}

// Wrote reports whether the run performed any writes
func (r Report) Wrote() bool {
	return r.Outcome == OutcomeInitialized || r.Outcome == OutcomePartiallyInitialized
}
