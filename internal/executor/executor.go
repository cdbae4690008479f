// Package executor drives jobs through their lifecycle: resolve hook
// plugins from hints, pre-process, invoke the workflow engine,
// post-process, and aggregate per-job outcomes into a batch report.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/me/gridwe/internal/dataset"
	"github.com/me/gridwe/internal/filestore"
	"github.com/me/gridwe/internal/hooks"
	"github.com/me/gridwe/internal/registry"
	"github.com/me/gridwe/pkg/cwl"
	"github.com/me/gridwe/pkg/hint"
	"github.com/me/gridwe/pkg/model"
)

// Invoker abstracts the engine so tests can substitute a fake.
type Invoker interface {
	Execute(ctx context.Context, job *model.Job) (*model.ExecutionResult, error)
}

// Config holds executor configuration.
type Config struct {
	// MaxInFlight bounds simultaneous jobs; excess jobs queue.
	MaxInFlight int

	// WorkRoot is the directory under which per-batch and per-job
	// working directories are created.
	WorkRoot string
}

// DefaultConfig returns the executor defaults.
func DefaultConfig() Config {
	return Config{MaxInFlight: 4, WorkRoot: "workernode"}
}

// Executor maps annotated workflow documents onto engine invocations.
type Executor struct {
	hooks    *registry.Registry[hooks.Factory]
	datasets *registry.Registry[dataset.Factory]
	store    filestore.Store
	engine   Invoker
	config   Config
	logger   *slog.Logger
}

// New creates an Executor. Both registries must have completed
// discovery before Submit is called.
func New(hookReg *registry.Registry[hooks.Factory], datasetReg *registry.Registry[dataset.Factory], store filestore.Store, engine Invoker, cfg Config, logger *slog.Logger) *Executor {
	defaults := DefaultConfig()
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = defaults.MaxInFlight
	}
	if cfg.WorkRoot == "" {
		cfg.WorkRoot = defaults.WorkRoot
	}
	return &Executor{
		hooks:    hookReg,
		datasets: datasetReg,
		store:    store,
		engine:   engine,
		config:   cfg,
		logger:   logger.With("component", "executor"),
	}
}

// Submit runs one annotated workflow document as a batch of jobs and
// returns the per-job report. Only pre-batch failures (hint decoding,
// plugin resolution, input dataset generation, splitting) return an
// error; job lifecycle failures are captured in the report instead.
func (e *Executor) Submit(ctx context.Context, workflowPath string, doc cwl.Document, inputs map[string]any) (*model.BatchReport, error) {
	batch := &model.BatchReport{
		ID:           uuid.NewString(),
		WorkflowPath: workflowPath,
		State:        model.BatchStatePending,
		CreatedAt:    time.Now().UTC(),
	}
	batchDir := filepath.Join(e.config.WorkRoot, batch.ID)
	if err := os.MkdirAll(batchDir, 0o755); err != nil {
		return nil, fmt.Errorf("create batch directory: %w", err)
	}

	// Production-level input generation happens before any job exists;
	// its failure aborts the whole submission.
	inputs, err := e.resolveInputs(ctx, workflowPath, doc, inputs, batchDir)
	if err != nil {
		return nil, err
	}

	hook, th, err := e.resolveHook(doc)
	if err != nil {
		return nil, err
	}
	e.logger.Info("hook resolved", "batch_id", batch.ID, "plugin", hook.Name(), "group_size", th.GroupSize)

	sched, err := hint.ExtractScheduling(doc)
	if err != nil {
		return nil, err
	}
	if sched.Platform != "" || len(sched.Sites) > 0 {
		e.logger.Info("scheduling constraints", "batch_id", batch.ID,
			"platform", sched.Platform, "priority", sched.Priority, "sites", sched.Sites)
	}

	base := &model.Job{
		ID:       uuid.NewString(),
		BatchID:  batch.ID,
		Document: doc,
		Inputs:   inputs,
		State:    model.JobStatePending,
	}
	jobs, err := hook.Split(base)
	if err != nil {
		return nil, err
	}
	e.logger.Info("batch prepared", "batch_id", batch.ID, "jobs", len(jobs))

	batch.State = model.BatchStateRunning
	batch.Jobs = e.runAll(ctx, hook, jobs)

	batch.CompletedAt = time.Now().UTC()
	switch {
	case ctx.Err() != nil:
		batch.State = model.BatchStateCancelled
	case batch.Success():
		batch.State = model.BatchStateCompleted
	default:
		batch.State = model.BatchStateFailed
	}
	e.logger.Info("batch finished", "batch_id", batch.ID, "state", batch.State, "failed", len(batch.FailedJobs()))
	return batch, nil
}

// runAll drives every job through its state machine under the
// configured concurrency bound. Sibling jobs share nothing mutable; a
// cancelled context prevents pending jobs from starting but lets
// already-running jobs finish.
func (e *Executor) runAll(ctx context.Context, hook hooks.ExecutionHook, jobs []*model.Job) []model.JobReport {
	reports := make([]model.JobReport, len(jobs))

	var g errgroup.Group
	g.SetLimit(e.config.MaxInFlight)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if ctx.Err() != nil {
				reports[i] = e.notStarted(job, ctx.Err())
				return nil
			}
			reports[i] = e.runJob(ctx, hook, job)
			return nil
		})
	}
	g.Wait()
	return reports
}

// runJob drives a single job: PENDING, PRE_PROCESSING, EXECUTING,
// POST_PROCESSING, then a terminal state. Failures never escape as raw
// errors; they become the report's structured cause.
func (e *Executor) runJob(ctx context.Context, hook hooks.ExecutionHook, job *model.Job) model.JobReport {
	report := model.JobReport{
		JobID:      job.ID,
		BatchID:    job.BatchID,
		GroupIndex: job.GroupIndex,
		StartedAt:  time.Now().UTC(),
	}
	logger := e.logger.With("job_id", job.ID, "group", job.GroupIndex)

	finish := func(state model.JobState) model.JobReport {
		job.State = state
		report.State = state
		report.CompletedAt = time.Now().UTC()
		return report
	}
	fail := func(phase model.Phase, err error) model.JobReport {
		report.Phase = phase
		report.Err = e.phaseErr(phase, job, err)
		report.Cause = report.Err.Error()
		return finish(model.JobStateFailed)
	}

	// Working directories are isolated per job so concurrent jobs'
	// artifacts never collide by name.
	job.WorkDir = filepath.Join(e.config.WorkRoot, job.BatchID, job.ID)

	job.State = model.JobStatePreProcessing
	if err := os.MkdirAll(job.WorkDir, 0o755); err != nil {
		return fail(model.PhasePreProcess, err)
	}
	if err := hook.PreProcess(ctx, job); err != nil {
		// Execution and post-process are skipped entirely: the job
		// never ran, so there is no result to observe.
		logger.Error("pre-process failed", "error", err)
		return fail(model.PhasePreProcess, err)
	}

	job.State = model.JobStateExecuting
	result, err := e.engine.Execute(ctx, job)
	if err != nil {
		result = &model.ExecutionResult{ExitCode: -1, Err: err}
	}
	var execErr error
	if !result.Success() {
		logger.Error("execution failed", "exit_code", result.ExitCode, "error", result.Err)
		execErr = e.phaseErr(model.PhaseExecute, job, result.Err)
	}
	report.ExitCode = result.ExitCode
	report.Outputs = result.Outputs

	// Post-process always observes the result, success or failure.
	job.State = model.JobStatePostProcessing
	var postErr error
	if err := hook.PostProcess(ctx, job, result); err != nil {
		logger.Error("post-process failed", "error", err)
		postErr = e.phaseErr(model.PhasePostProcess, job, err)
	}

	switch {
	case execErr == nil && postErr == nil:
		logger.Info("job succeeded")
		return finish(model.JobStateSucceeded)
	case execErr != nil:
		// Execution failure stays the primary cause; a post-process
		// failure on top is attached, never dropped.
		report.Phase = model.PhaseExecute
		report.Err = execErr
		report.Cause = execErr.Error()
		if postErr != nil {
			report.SecondaryErr = postErr
			report.Secondary = postErr.Error()
		}
		return finish(model.JobStateFailed)
	default:
		report.Phase = model.PhasePostProcess
		report.Err = postErr
		report.Cause = postErr.Error()
		return finish(model.JobStateFailed)
	}
}

// notStarted reports a job that was still pending when the batch was
// cancelled.
func (e *Executor) notStarted(job *model.Job, cause error) model.JobReport {
	now := time.Now().UTC()
	err := e.phaseErr(model.PhasePreProcess, job, fmt.Errorf("not started: %w", cause))
	return model.JobReport{
		JobID:       job.ID,
		BatchID:     job.BatchID,
		GroupIndex:  job.GroupIndex,
		State:       model.JobStateFailed,
		Phase:       model.PhasePreProcess,
		Err:         err,
		Cause:       err.Error(),
		StartedAt:   now,
		CompletedAt: now,
	}
}

func (e *Executor) phaseErr(phase model.Phase, job *model.Job, err error) error {
	return &model.PhaseError{Phase: phase, JobID: job.ID, GroupIndex: job.GroupIndex, Err: err}
}

// resolveInputs runs the Production-level input dataset plugin when the
// document names one, merging generated inputs over the static binding.
func (e *Executor) resolveInputs(ctx context.Context, workflowPath string, doc cwl.Document, inputs map[string]any, batchDir string) (map[string]any, error) {
	prod, err := hint.ExtractProduction(doc)
	if err != nil {
		return nil, err
	}
	if prod.Plugin == "" {
		return inputs, nil
	}

	entry, err := e.datasets.Get(prod.Plugin)
	if err != nil {
		return nil, err
	}
	plugin, err := entry.Factory(e.store, e.logger)
	if err != nil {
		return nil, &model.InputResolutionError{Plugin: prod.Plugin, Err: err}
	}

	inputsPath, catalogPath, err := plugin.GenerateInputs(ctx, workflowPath, prod.Config, batchDir)
	if err != nil {
		if _, ok := err.(*model.InputResolutionError); ok {
			return nil, err
		}
		return nil, &model.InputResolutionError{Plugin: prod.Plugin, Err: err}
	}
	if inputsPath == "" {
		// No-op plugin: proceed with the statically declared inputs.
		return inputs, nil
	}
	e.logger.Info("input dataset generated", "plugin", plugin.Name(), "inputs", inputsPath, "catalog", catalogPath)

	data, err := os.ReadFile(inputsPath)
	if err != nil {
		return nil, &model.InputResolutionError{Plugin: prod.Plugin, Err: err}
	}
	var generated map[string]any
	if err := yaml.Unmarshal(data, &generated); err != nil {
		return nil, &model.InputResolutionError{Plugin: prod.Plugin, Err: err}
	}

	merged := make(map[string]any, len(inputs)+len(generated))
	for k, v := range inputs {
		merged[k] = v
	}
	for k, v := range generated {
		merged[k] = v
	}
	return merged, nil
}

// resolveHook extracts the execution hooks hint and instantiates the
// named plugin. A hint that names no plugin but carries a VO selects
// the first plugin registered for that organization; otherwise the
// registry default applies.
func (e *Executor) resolveHook(doc cwl.Document) (hooks.ExecutionHook, hint.TransformationHooks, error) {
	th, err := hint.ExtractTransformationHooks(doc)
	if err != nil {
		return nil, th, err
	}
	var entry registry.Entry[hooks.Factory]
	if th.Plugin == "" && th.VO != "" {
		entry, err = e.hooks.FindApplicable(th.VO)
	} else {
		entry, err = e.hooks.Get(th.Plugin)
	}
	if err != nil {
		return nil, th, err
	}
	hook, err := entry.Factory(th, e.store, e.logger)
	if err != nil {
		return nil, th, fmt.Errorf("instantiate hook plugin %q: %w", entry.Name, err)
	}
	return hook, th, nil
}
