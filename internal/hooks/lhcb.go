package hooks

import (
	"fmt"
	"log/slog"

	"github.com/me/gridwe/internal/filestore"
	"github.com/me/gridwe/pkg/hint"
)

// LHCbSimulation is the LHCb variant of the query-based hook. Staging
// and splitting behavior is inherited; only the display formatting
// follows the experiment's bookkeeping conventions.
type LHCbSimulation struct {
	*QueryBased
}

// NewLHCbSimulation builds the LHCb simulation hook.
func NewLHCbSimulation(h hint.TransformationHooks, store filestore.Store, logger *slog.Logger) (ExecutionHook, error) {
	base, err := NewQueryBased(h, store, logger)
	if err != nil {
		return nil, err
	}
	return &LHCbSimulation{QueryBased: base.(*QueryBased)}, nil
}

func (*LHCbSimulation) Name() string        { return LHCbName }
func (*LHCbSimulation) VO() string          { return "lhcb" }
func (*LHCbSimulation) Description() string { return "LHCb simulation staging conventions" }

// FormatDisplay renders the bookkeeping-style configuration fields.
func (*LHCbSimulation) FormatDisplay(config map[string]any) []hint.DisplayItem {
	var items []hint.DisplayItem

	if v, ok := config["event_type"]; ok {
		items = append(items, hint.DisplayItem{Label: "EventType", Value: fmt.Sprint(v)})
	}
	if v, ok := config["conditions_description"].(string); ok {
		items = append(items, hint.DisplayItem{Label: "Conditions", Value: v})
	}
	if conditions, ok := config["conditions_dict"].(map[string]any); ok {
		for _, field := range []struct{ key, label string }{
			{"configName", "Config"},
			{"inFileType", "FileType"},
			{"inProPass", "ProcessingPass"},
		} {
			if v, ok := conditions[field.key].(string); ok {
				items = append(items, hint.DisplayItem{Label: field.label, Value: v})
			}
		}
	}
	return items
}
