package hooks

import (
	"errors"
	"testing"

	"github.com/me/gridwe/pkg/model"
)

func baseJob(inputs map[string]any) *model.Job {
	return &model.Job{
		ID:      "base",
		BatchID: "batch-1",
		Inputs:  inputs,
		State:   model.JobStatePending,
	}
}

func TestSplitNoGrouping(t *testing.T) {
	job := baseJob(map[string]any{"x": 1})
	jobs, err := splitByGroupSize(job, nil)
	if err != nil {
		t.Fatalf("splitByGroupSize: %v", err)
	}
	if len(jobs) != 1 || jobs[0] != job {
		t.Error("empty grouping should return the job unchanged")
	}
}

func TestSplitCeilDivision(t *testing.T) {
	// 5 elements with group size 2 -> 3 jobs of sizes 2, 2, 1.
	job := baseJob(map[string]any{
		"input_data": []any{"a", "b", "c", "d", "e"},
		"config":     "shared.yml",
	})

	jobs, err := splitByGroupSize(job, map[string]int{"input_data": 2})
	if err != nil {
		t.Fatalf("splitByGroupSize: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("got %d jobs, want 3", len(jobs))
	}

	var recombined []any
	for i, j := range jobs {
		if j.GroupIndex != i {
			t.Errorf("job %d has GroupIndex %d", i, j.GroupIndex)
		}
		if j.BatchID != "batch-1" {
			t.Errorf("job %d lost batch id", i)
		}
		if j.State != model.JobStatePending {
			t.Errorf("job %d state = %s, want PENDING", i, j.State)
		}
		if j.Inputs["config"] != "shared.yml" {
			t.Errorf("job %d lost non-array input", i)
		}
		arr := j.Inputs["input_data"].([]any)
		recombined = append(recombined, arr...)
	}

	sizes := []int{
		len(jobs[0].Inputs["input_data"].([]any)),
		len(jobs[1].Inputs["input_data"].([]any)),
		len(jobs[2].Inputs["input_data"].([]any)),
	}
	if sizes[0] != 2 || sizes[1] != 2 || sizes[2] != 1 {
		t.Errorf("group sizes = %v, want [2 2 1]", sizes)
	}

	// Concatenating the groups in order must reproduce the original array.
	want := []any{"a", "b", "c", "d", "e"}
	if len(recombined) != len(want) {
		t.Fatalf("recombined %d elements, want %d", len(recombined), len(want))
	}
	for i := range want {
		if recombined[i] != want[i] {
			t.Errorf("element %d = %v, want %v", i, recombined[i], want[i])
		}
	}
}

func TestSplitExactDivision(t *testing.T) {
	job := baseJob(map[string]any{"input_data": []any{"a", "b", "c", "d"}})
	jobs, err := splitByGroupSize(job, map[string]int{"input_data": 2})
	if err != nil {
		t.Fatalf("splitByGroupSize: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("got %d jobs, want 2", len(jobs))
	}
}

func TestSplitGroupLargerThanArray(t *testing.T) {
	job := baseJob(map[string]any{"input_data": []any{"a"}})
	jobs, err := splitByGroupSize(job, map[string]int{"input_data": 10})
	if err != nil {
		t.Fatalf("splitByGroupSize: %v", err)
	}
	if len(jobs) != 1 {
		t.Errorf("got %d jobs, want 1", len(jobs))
	}
}

func TestSplitInvalidGroupSize(t *testing.T) {
	for _, g := range []int{0, -1} {
		job := baseJob(map[string]any{"input_data": []any{"a"}})
		_, err := splitByGroupSize(job, map[string]int{"input_data": g})
		var invalid *model.InvalidGroupingError
		if !errors.As(err, &invalid) {
			t.Fatalf("group size %d: expected InvalidGroupingError, got %v", g, err)
		}
		if invalid.GroupSize != g {
			t.Errorf("error GroupSize = %d, want %d", invalid.GroupSize, g)
		}
	}
}

func TestSplitEmptyArrayInput(t *testing.T) {
	// An empty array would produce a batch with zero jobs and no
	// job-level cause; it must be rejected before submission.
	job := baseJob(map[string]any{"input_data": []any{}})
	_, err := splitByGroupSize(job, map[string]int{"input_data": 2})
	var invalid *model.InvalidGroupingError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidGroupingError, got %v", err)
	}
	if invalid.Input != "input_data" {
		t.Errorf("error Input = %q, want input_data", invalid.Input)
	}
}

func TestSplitMissingArrayInput(t *testing.T) {
	job := baseJob(map[string]any{"input_data": "not-an-array"})
	_, err := splitByGroupSize(job, map[string]int{"input_data": 2})
	var invalid *model.InvalidGroupingError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidGroupingError, got %v", err)
	}
}

func TestSplitJobsGetDistinctIDs(t *testing.T) {
	job := baseJob(map[string]any{"input_data": []any{"a", "b"}})
	jobs, err := splitByGroupSize(job, map[string]int{"input_data": 1})
	if err != nil {
		t.Fatalf("splitByGroupSize: %v", err)
	}
	if jobs[0].ID == jobs[1].ID || jobs[0].ID == job.ID {
		t.Error("split jobs should carry fresh ids")
	}
}
