package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/me/gridwe/pkg/model"
)

// Engine serializes a job into its working directory and drives the
// external workflow runner on it.
type Engine struct {
	runner Runner
	bin    string
	args   []string
	logger *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	Runner Runner   // defaults to CommandRunner
	Bin    string   // workflow runner binary, defaults to "cwltool"
	Args   []string // extra runner arguments, defaults to --parallel
	Logger *slog.Logger
}

// New creates an engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runner := cfg.Runner
	if runner == nil {
		runner = CommandRunner{}
	}
	bin := cfg.Bin
	if bin == "" {
		bin = "cwltool"
	}
	args := cfg.Args
	if args == nil {
		args = []string{"--parallel"}
	}
	return &Engine{
		runner: runner,
		bin:    bin,
		args:   args,
		logger: logger.With("component", "engine"),
	}
}

// Execute writes the job's document and input binding into its working
// directory, invokes the runner, and returns the execution result. A
// non-zero exit is carried in the result with Err set; infrastructure
// failures (serialization, process start) are returned as errors.
func (e *Engine) Execute(ctx context.Context, job *model.Job) (*model.ExecutionResult, error) {
	taskPath := filepath.Join(job.WorkDir, "task.cwl")
	if err := writeYAML(taskPath, job.Document); err != nil {
		return nil, fmt.Errorf("serialize task: %w", err)
	}

	command := append(append([]string{e.bin}, e.args...), "task.cwl")
	if len(job.Inputs) > 0 {
		paramsPath := filepath.Join(job.WorkDir, "parameters.yml")
		if err := writeYAML(paramsPath, job.Inputs); err != nil {
			return nil, fmt.Errorf("serialize parameters: %w", err)
		}
		command = append(command, "parameters.yml")
	}

	e.logger.Info("executing job", "job_id", job.ID, "command", command, "workdir", job.WorkDir)
	run, err := e.runner.Run(ctx, RunSpec{Command: command, WorkDir: job.WorkDir})
	if err != nil {
		return nil, err
	}

	result := &model.ExecutionResult{
		ExitCode: run.ExitCode,
		Stdout:   run.Stdout,
		Stderr:   run.Stderr,
		Outputs:  parseOutputs(run.Stdout),
	}
	if run.ExitCode != 0 {
		result.Err = fmt.Errorf("engine exited with status %d", run.ExitCode)
	}
	return result, nil
}

// parseOutputs decodes the output-location object the runner prints on
// stdout. Engines that print nothing usable yield empty outputs, not an
// error: output collection is best-effort.
func parseOutputs(stdout string) map[string]any {
	var outputs map[string]any
	if err := json.Unmarshal([]byte(stdout), &outputs); err != nil {
		return nil
	}
	return outputs
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
