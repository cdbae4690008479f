package model

// Job is a single execution unit: an input binding, a target workflow
// document, and a working directory isolated from sibling jobs.
//
// Jobs are created per unit of work (one per split group when grouping
// applies) and exist only for the duration of their lifecycle; the
// JobReport is what survives.
type Job struct {
	ID      string
	BatchID string

	// GroupIndex correlates a split job back to its input slice.
	// Downstream aggregation depends on group identity, not arrival order.
	GroupIndex int

	// Document is the raw workflow document (or sub-document) to execute.
	Document map[string]any

	// Inputs is the resolved input/parameter binding for this job.
	Inputs map[string]any

	WorkDir string
	State   JobState
}

// ExecutionResult is the outcome of the engine invocation for one job.
type ExecutionResult struct {
	ExitCode int
	Stdout   string
	Stderr   string

	// Outputs maps declared output names to produced file locations.
	Outputs map[string]any

	// Err is the execution failure cause, if any.
	Err error
}

// Success reports whether the engine invocation completed with a zero
// exit status and no infrastructure error.
func (r *ExecutionResult) Success() bool {
	return r != nil && r.Err == nil && r.ExitCode == 0
}
