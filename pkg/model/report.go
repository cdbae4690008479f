package model

import (
	"time"
)

// JobReport is the persistent record of one job's lifecycle outcome.
//
// A post-process failure never masks an earlier execution failure: when
// both phases fail, the execution failure is the primary cause and the
// post-process failure is kept as the secondary cause.
type JobReport struct {
	JobID       string         `json:"job_id"`
	BatchID     string         `json:"batch_id"`
	GroupIndex  int            `json:"group_index"`
	State       JobState       `json:"state"`
	Phase       Phase          `json:"phase,omitempty"` // failing phase, if any
	Cause       string         `json:"cause,omitempty"`
	Secondary   string         `json:"secondary_cause,omitempty"`
	ExitCode    int            `json:"exit_code"`
	Outputs     map[string]any `json:"outputs,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`

	// Err and SecondaryErr carry the structured cause chain for in-process
	// inspection. Cause/Secondary are their serialized forms.
	Err          error `json:"-"`
	SecondaryErr error `json:"-"`
}

// Failed reports whether the job reached a FAILED terminal state.
func (r *JobReport) Failed() bool {
	return r.State == JobStateFailed
}

// BatchReport aggregates per-job outcomes for one submission.
type BatchReport struct {
	ID           string      `json:"id"`
	WorkflowPath string      `json:"workflow_path"`
	State        BatchState  `json:"state"`
	Jobs         []JobReport `json:"jobs"`
	CreatedAt    time.Time   `json:"created_at"`
	CompletedAt  time.Time   `json:"completed_at"`
}

// Success reports whether every produced job reached SUCCEEDED.
// Any FAILED job yields a non-zero overall submission status.
func (b *BatchReport) Success() bool {
	if len(b.Jobs) == 0 {
		return false
	}
	for i := range b.Jobs {
		if b.Jobs[i].State != JobStateSucceeded {
			return false
		}
	}
	return true
}

// FailedJobs returns the reports of jobs that did not succeed.
func (b *BatchReport) FailedJobs() []JobReport {
	var failed []JobReport
	for i := range b.Jobs {
		if b.Jobs[i].State != JobStateSucceeded {
			failed = append(failed, b.Jobs[i])
		}
	}
	return failed
}
