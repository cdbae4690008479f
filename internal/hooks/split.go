package hooks

import (
	"sort"

	"github.com/google/uuid"
	"github.com/me/gridwe/pkg/model"
)

// splitByGroupSize partitions a job on the first (sorted) input named in
// groupSize. An array of length L with group size g yields ceil(L/g)
// sibling jobs carrying contiguous, order-preserving slices; the last
// slice may be shorter. Non-array inputs are replicated unchanged.
func splitByGroupSize(job *model.Job, groupSize map[string]int) ([]*model.Job, error) {
	if len(groupSize) == 0 {
		return []*model.Job{job}, nil
	}

	names := make([]string, 0, len(groupSize))
	for name := range groupSize {
		names = append(names, name)
	}
	sort.Strings(names)
	input := names[0]
	g := groupSize[input]

	if g <= 0 {
		return nil, &model.InvalidGroupingError{Input: input, GroupSize: g, Reason: "group size must be positive"}
	}
	arr, ok := job.Inputs[input].([]any)
	if !ok {
		return nil, &model.InvalidGroupingError{Input: input, GroupSize: g, Reason: "job has no array input with this name"}
	}
	if len(arr) == 0 {
		// A zero-job batch would fail with no job-level cause to
		// inspect; reject it up front instead.
		return nil, &model.InvalidGroupingError{Input: input, GroupSize: g, Reason: "array input is empty"}
	}

	jobs := make([]*model.Job, 0, (len(arr)+g-1)/g)
	for start := 0; start < len(arr); start += g {
		end := start + g
		if end > len(arr) {
			end = len(arr)
		}

		inputs := make(map[string]any, len(job.Inputs))
		for k, v := range job.Inputs {
			inputs[k] = v
		}
		inputs[input] = arr[start:end:end]

		jobs = append(jobs, &model.Job{
			ID:         uuid.NewString(),
			BatchID:    job.BatchID,
			GroupIndex: len(jobs),
			Document:   job.Document,
			Inputs:     inputs,
			State:      model.JobStatePending,
		})
	}
	return jobs, nil
}
