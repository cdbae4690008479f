package model

// JobState represents the lifecycle state of a Job.
type JobState string

const (
	JobStatePending        JobState = "PENDING"
	JobStatePreProcessing  JobState = "PRE_PROCESSING"
	JobStateExecuting      JobState = "EXECUTING"
	JobStatePostProcessing JobState = "POST_PROCESSING"
	JobStateSucceeded      JobState = "SUCCEEDED"
	JobStateFailed         JobState = "FAILED"
)

// String returns the string representation of the job state.
func (s JobState) String() string {
	return string(s)
}

// IsTerminal returns true if the job is in a final state.
func (s JobState) IsTerminal() bool {
	switch s {
	case JobStateSucceeded, JobStateFailed:
		return true
	}
	return false
}

// ValidJobTransitions defines the allowed state transitions for Jobs.
//
// A pre-process failure moves straight to FAILED: execution and
// post-process are never attempted. Execution always proceeds to
// POST_PROCESSING regardless of outcome, so hooks can observe failures.
var ValidJobTransitions = map[JobState][]JobState{
	JobStatePending:        {JobStatePreProcessing},
	JobStatePreProcessing:  {JobStateExecuting, JobStateFailed},
	JobStateExecuting:      {JobStatePostProcessing},
	JobStatePostProcessing: {JobStateSucceeded, JobStateFailed},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s JobState) CanTransitionTo(next JobState) bool {
	for _, allowed := range ValidJobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// BatchState represents the overall state of a submission batch.
type BatchState string

const (
	BatchStatePending   BatchState = "PENDING"
	BatchStateRunning   BatchState = "RUNNING"
	BatchStateCompleted BatchState = "COMPLETED"
	BatchStateFailed    BatchState = "FAILED"
	BatchStateCancelled BatchState = "CANCELLED"
)

// String returns the string representation of the batch state.
func (s BatchState) String() string {
	return string(s)
}

// IsTerminal returns true if the batch is in a final state.
func (s BatchState) IsTerminal() bool {
	switch s {
	case BatchStateCompleted, BatchStateFailed, BatchStateCancelled:
		return true
	}
	return false
}
