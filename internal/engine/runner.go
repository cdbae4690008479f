// Package engine invokes the external workflow engine on a resolved
// document and input binding. Workflow-step execution itself is the
// engine's business; this package only shells out and captures results.
package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

// RunSpec describes one engine invocation.
type RunSpec struct {
	Command []string          // command and arguments
	WorkDir string            // working directory
	Env     map[string]string // extra environment variables
}

// RunResult holds the outcome of a command execution.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner abstracts the process invocation so tests can substitute a
// fake engine.
type Runner interface {
	Run(ctx context.Context, spec RunSpec) (*RunResult, error)
}

// ErrEmptyCommand is returned for a RunSpec with no command.
var ErrEmptyCommand = errors.New("empty command")

// CommandRunner runs the engine as a local subprocess.
type CommandRunner struct{}

// Run executes the command, capturing stdout and stderr. A non-zero
// exit is reported through RunResult, not an error; errors mean the
// process could not be started or was torn down abnormally.
func (CommandRunner) Run(ctx context.Context, spec RunSpec) (*RunResult, error) {
	if len(spec.Command) == 0 {
		return nil, ErrEmptyCommand
	}

	cmd := exec.CommandContext(ctx, spec.Command[0], spec.Command[1:]...)
	cmd.Dir = spec.WorkDir
	cmd.Env = os.Environ()
	for k, v := range spec.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &RunResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, err
	}
	return result, nil
}
