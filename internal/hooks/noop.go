package hooks

import (
	"context"
	"log/slog"

	"github.com/me/gridwe/internal/filestore"
	"github.com/me/gridwe/pkg/hint"
	"github.com/me/gridwe/pkg/model"
)

// Noop is the default hook: no staging, no splitting, no registration.
// It is substituted whenever a workflow carries no execution hooks hint
// or leaves the plugin name unspecified.
type Noop struct{}

// NewNoop builds the no-op hook. The hint and collaborators are unused.
func NewNoop(_ hint.TransformationHooks, _ filestore.Store, _ *slog.Logger) (ExecutionHook, error) {
	return &Noop{}, nil
}

func (*Noop) Name() string        { return NoopName }
func (*Noop) VO() string          { return "generic" }
func (*Noop) Description() string { return "no-op hook: identity split, no staging" }

// Split returns the job unchanged.
func (*Noop) Split(job *model.Job) ([]*model.Job, error) {
	return []*model.Job{job}, nil
}

// PreProcess does nothing.
func (*Noop) PreProcess(context.Context, *model.Job) error { return nil }

// PostProcess does nothing.
func (*Noop) PostProcess(context.Context, *model.Job, *model.ExecutionResult) error { return nil }

// FormatDisplay returns no items.
func (*Noop) FormatDisplay(map[string]any) []hint.DisplayItem { return nil }
