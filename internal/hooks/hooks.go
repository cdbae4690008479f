// Package hooks provides the pluggable strategies invoked around a
// job's engine execution: input staging and query resolution before,
// output registration after, and array-input splitting in between.
package hooks

import (
	"context"
	"log/slog"

	"github.com/me/gridwe/internal/filestore"
	"github.com/me/gridwe/internal/registry"
	"github.com/me/gridwe/pkg/hint"
	"github.com/me/gridwe/pkg/model"
)

// ExecutionHook is the capability set every concrete hook plugin
// exposes. Implementations must be safe for concurrent use by sibling
// jobs: they hold only read-only configuration after construction.
type ExecutionHook interface {
	Name() string
	VO() string
	Description() string

	// Split partitions a job into sibling jobs when the hint specifies a
	// group size for an array input. Hooks without grouping semantics
	// return the job unchanged.
	Split(job *model.Job) ([]*model.Job, error)

	// PreProcess stages inputs and may rewrite the job's input bindings.
	// A failure aborts the job before execution.
	PreProcess(ctx context.Context, job *model.Job) error

	// PostProcess observes the execution result, successful or not.
	// Logic that requires success must check result.Success itself.
	PostProcess(ctx context.Context, job *model.Job, result *model.ExecutionResult) error

	// FormatDisplay renders plugin configuration for presentation.
	// Deterministic: same config, same sequence.
	FormatDisplay(config map[string]any) []hint.DisplayItem
}

// Factory builds a hook instance from the decoded hint configuration.
type Factory func(h hint.TransformationHooks, store filestore.Store, logger *slog.Logger) (ExecutionHook, error)

// Built-in plugin names.
const (
	NoopName       = "Noop"
	QueryBasedName = "QueryBased"
	LHCbName       = "LHCbSimulation"
)

// NewRegistry builds the hook plugin registry with the built-ins
// registered. The no-op plugin is the default for absent hints.
func NewRegistry(logger *slog.Logger) *registry.Registry[Factory] {
	r := registry.New[Factory](NoopName, logger)
	r.Register(registry.Entry[Factory]{
		Name:        NoopName,
		VO:          "generic",
		Description: "no-op hook: identity split, no staging",
		Factory:     NewNoop,
	})
	r.Register(registry.Entry[Factory]{
		Name:        QueryBasedName,
		VO:          "generic",
		Description: "query-based staging with array-input grouping",
		Factory:     NewQueryBased,
	})
	r.Register(registry.Entry[Factory]{
		Name:        LHCbName,
		VO:          "lhcb",
		Description: "LHCb simulation staging conventions",
		Factory:     NewLHCbSimulation,
	})
	return r
}
