// Package dataset provides Production-level input dataset plugins:
// strategies that materialize a concrete input file list and a replica
// catalog before any job executes.
package dataset

import (
	"context"
	"log/slog"

	"github.com/me/gridwe/internal/filestore"
	"github.com/me/gridwe/internal/registry"
	"github.com/me/gridwe/pkg/hint"
)

// Plugin generates the inputs file and replica catalog for a workflow.
// It is called once, before any job executor activity, and must be
// deterministic given identical catalog state.
type Plugin interface {
	Name() string
	VO() string
	Description() string

	// GenerateInputs writes the inputs file and replica catalog into
	// outputDir. Empty return paths mean "proceed with statically
	// declared inputs".
	GenerateInputs(ctx context.Context, workflowPath string, config map[string]any, outputDir string) (inputsPath, catalogPath string, err error)

	// FormatDisplay renders plugin configuration for presentation.
	FormatDisplay(config map[string]any) []hint.DisplayItem
}

// Factory builds a dataset plugin instance.
type Factory func(store filestore.Store, logger *slog.Logger) (Plugin, error)

// Built-in plugin names.
const (
	NoOpName    = "NoOpInputDataset"
	CatalogName = "CatalogInputDataset"
)

// NewRegistry builds the input dataset plugin registry with the
// built-ins registered. There is no default: input generation only
// happens when a Production hint names a plugin.
func NewRegistry(logger *slog.Logger) *registry.Registry[Factory] {
	r := registry.New[Factory]("", logger)
	r.Register(registry.Entry[Factory]{
		Name:        NoOpName,
		VO:          "generic",
		Description: "no-op plugin that does not generate inputs",
		Factory:     NewNoOp,
	})
	r.Register(registry.Entry[Factory]{
		Name:        CatalogName,
		VO:          "generic",
		Description: "file-store catalog query plugin",
		Factory:     NewCatalog,
	})
	return r
}

// NoOp generates nothing, signalling the caller to proceed with the
// workflow's statically declared inputs.
type NoOp struct{}

// NewNoOp builds the no-op dataset plugin.
func NewNoOp(_ filestore.Store, _ *slog.Logger) (Plugin, error) {
	return &NoOp{}, nil
}

func (*NoOp) Name() string        { return NoOpName }
func (*NoOp) VO() string          { return "generic" }
func (*NoOp) Description() string { return "no-op plugin that does not generate inputs" }

// GenerateInputs returns empty paths: no files generated.
func (*NoOp) GenerateInputs(context.Context, string, map[string]any, string) (string, string, error) {
	return "", "", nil
}

// FormatDisplay returns no items.
func (*NoOp) FormatDisplay(map[string]any) []hint.DisplayItem { return nil }
