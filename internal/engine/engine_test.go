package engine

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/me/gridwe/pkg/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeRunner records the run spec and returns a canned result.
type fakeRunner struct {
	spec   RunSpec
	result *RunResult
	err    error
}

func (f *fakeRunner) Run(_ context.Context, spec RunSpec) (*RunResult, error) {
	f.spec = spec
	return f.result, f.err
}

func TestExecuteSerializesJob(t *testing.T) {
	runner := &fakeRunner{result: &RunResult{ExitCode: 0, Stdout: `{"out": "result.txt"}`}}
	eng := New(Config{Runner: runner, Logger: testLogger()})

	workDir := t.TempDir()
	job := &model.Job{
		ID:       "j1",
		WorkDir:  workDir,
		Document: map[string]any{"class": "Workflow"},
		Inputs:   map[string]any{"x": 1},
	}

	result, err := eng.Execute(context.Background(), job)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if _, err := os.Stat(filepath.Join(workDir, "task.cwl")); err != nil {
		t.Errorf("task.cwl not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(workDir, "parameters.yml")); err != nil {
		t.Errorf("parameters.yml not written: %v", err)
	}

	want := []string{"cwltool", "--parallel", "task.cwl", "parameters.yml"}
	if len(runner.spec.Command) != len(want) {
		t.Fatalf("command = %v, want %v", runner.spec.Command, want)
	}
	for i := range want {
		if runner.spec.Command[i] != want[i] {
			t.Errorf("command[%d] = %q, want %q", i, runner.spec.Command[i], want[i])
		}
	}
	if runner.spec.WorkDir != workDir {
		t.Errorf("runner workdir = %q, want %q", runner.spec.WorkDir, workDir)
	}

	if !result.Success() {
		t.Error("zero exit should be a success")
	}
	if result.Outputs["out"] != "result.txt" {
		t.Errorf("outputs not parsed from stdout: %v", result.Outputs)
	}
}

func TestExecuteWithoutInputs(t *testing.T) {
	runner := &fakeRunner{result: &RunResult{ExitCode: 0}}
	eng := New(Config{Runner: runner, Logger: testLogger()})

	job := &model.Job{ID: "j1", WorkDir: t.TempDir(), Document: map[string]any{"class": "Workflow"}}
	if _, err := eng.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	last := runner.spec.Command[len(runner.spec.Command)-1]
	if last != "task.cwl" {
		t.Errorf("empty inputs should omit the parameters file, command = %v", runner.spec.Command)
	}
}

func TestExecuteNonZeroExit(t *testing.T) {
	runner := &fakeRunner{result: &RunResult{ExitCode: 3, Stderr: "boom"}}
	eng := New(Config{Runner: runner, Logger: testLogger()})

	job := &model.Job{ID: "j1", WorkDir: t.TempDir(), Document: map[string]any{"class": "Workflow"}}
	result, err := eng.Execute(context.Background(), job)
	if err != nil {
		t.Fatalf("non-zero exit should not be an Execute error: %v", err)
	}
	if result.Success() {
		t.Error("exit 3 should not be a success")
	}
	if result.Err == nil {
		t.Error("failed result should carry an error")
	}
	if result.ExitCode != 3 || result.Stderr != "boom" {
		t.Errorf("result = %+v", result)
	}
}

func TestExecuteUnparsableStdout(t *testing.T) {
	runner := &fakeRunner{result: &RunResult{ExitCode: 0, Stdout: "not json"}}
	eng := New(Config{Runner: runner, Logger: testLogger()})

	job := &model.Job{ID: "j1", WorkDir: t.TempDir(), Document: map[string]any{"class": "Workflow"}}
	result, err := eng.Execute(context.Background(), job)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Outputs != nil {
		t.Errorf("unparsable stdout should yield nil outputs, got %v", result.Outputs)
	}
}

func TestCommandRunnerEmptyCommand(t *testing.T) {
	_, err := CommandRunner{}.Run(context.Background(), RunSpec{})
	if err != ErrEmptyCommand {
		t.Errorf("err = %v, want ErrEmptyCommand", err)
	}
}

func TestCommandRunnerCapturesExit(t *testing.T) {
	result, err := CommandRunner{}.Run(context.Background(), RunSpec{
		Command: []string{"sh", "-c", "echo hello; exit 7"},
		WorkDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExitCode != 7 {
		t.Errorf("ExitCode = %d, want 7", result.ExitCode)
	}
	if result.Stdout != "hello\n" {
		t.Errorf("Stdout = %q", result.Stdout)
	}
}
