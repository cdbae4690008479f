package model

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a malformed hint payload. It names the
// offending field and the workflow node carrying the hint block.
type ConfigurationError struct {
	Class  string // hint class, e.g. "dirac:ExecutionHooks"
	Field  string
	Node   string // workflow node id, "" for the top-level document
	Reason string
}

func (e *ConfigurationError) Error() string {
	node := e.Node
	if node == "" {
		node = "<document>"
	}
	return fmt.Sprintf("invalid %s hint on %s: field %q: %s", e.Class, node, e.Field, e.Reason)
}

// PluginNotFoundError is returned by registry lookups for unknown names.
// Known plugin names are enumerated in the message to aid debugging.
type PluginNotFoundError struct {
	Name  string
	Known []string
}

func (e *PluginNotFoundError) Error() string {
	return fmt.Sprintf("plugin %q not registered (known plugins: %s)", e.Name, strings.Join(e.Known, ", "))
}

// NoApplicablePluginError is returned when no registered plugin matches
// the requested virtual organization and no default is configured.
type NoApplicablePluginError struct {
	VO    string
	Known []string
}

func (e *NoApplicablePluginError) Error() string {
	return fmt.Sprintf("no plugin applicable for VO %q (known plugins: %s)", e.VO, strings.Join(e.Known, ", "))
}

// InvalidGroupingError reports bad job-splitting parameters: a group size
// of zero or less, or grouping requested on a job with no array input.
type InvalidGroupingError struct {
	Input     string
	GroupSize int
	Reason    string
}

func (e *InvalidGroupingError) Error() string {
	return fmt.Sprintf("invalid grouping on input %q (group size %d): %s", e.Input, e.GroupSize, e.Reason)
}

// InputResolutionError reports a Production-level input generation
// failure. It is fatal to the whole submission: no jobs exist to execute
// without resolved inputs.
type InputResolutionError struct {
	Plugin string
	Err    error
}

func (e *InputResolutionError) Error() string {
	return fmt.Sprintf("input dataset plugin %q: %v", e.Plugin, e.Err)
}

func (e *InputResolutionError) Unwrap() error {
	return e.Err
}

// Phase identifies a job lifecycle phase for error tagging.
type Phase string

const (
	PhasePreProcess  Phase = "pre_process"
	PhaseExecute     Phase = "execute"
	PhasePostProcess Phase = "post_process"
)

// PhaseError wraps a job lifecycle failure with the phase and job
// identity, so callers can distinguish "never ran" from "ran and failed"
// from "ran, succeeded, but cleanup failed".
type PhaseError struct {
	Phase      Phase
	JobID      string
	GroupIndex int
	Err        error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s failed for job %s (group %d): %v", e.Phase, e.JobID, e.GroupIndex, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
