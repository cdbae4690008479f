// Package report persists batch and job reports so past submissions
// can be listed and inspected after the process exits.
package report

import (
	"context"

	"github.com/me/gridwe/pkg/model"
)

// ListOptions controls pagination and filtering for list queries.
type ListOptions struct {
	Limit  int
	Offset int
	State  string // filter by batch state, empty for all
}

// Clamp normalizes the options to sane bounds.
func (o *ListOptions) Clamp() {
	if o.Limit <= 0 || o.Limit > 500 {
		o.Limit = 50
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// Store defines the persistence layer for batch reports.
type Store interface {
	// SaveBatch writes a batch report and all its job reports.
	SaveBatch(ctx context.Context, batch *model.BatchReport) error

	// GetBatch loads one batch with its jobs. Returns nil, nil when the
	// batch does not exist.
	GetBatch(ctx context.Context, id string) (*model.BatchReport, error)

	// ListBatches returns a page of batches (without jobs) plus the
	// total count matching the filter.
	ListBatches(ctx context.Context, opts ListOptions) ([]*model.BatchReport, int, error)

	// ListJobs returns the job reports of one batch in group order.
	ListJobs(ctx context.Context, batchID string) ([]model.JobReport, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
