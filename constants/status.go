package constants

// RunStatus is the canonical status for rows in extraction_runs.
type RunStatus string

// Stable values (stored as-is).
const (
	RunStatusOK      RunStatus = "OK"      // every key field recovered
	RunStatusPartial RunStatus = "PARTIAL" // some key fields missing
	RunStatusEmpty   RunStatus = "EMPTY"   // nothing recovered (unreadable or unrecognized input)
	RunStatusFailed  RunStatus = "FAILED"  // input could not be loaded
)
