// Package hint extracts typed configuration from the namespaced
// annotation blocks (hints) attached to workflow documents.
//
// Extraction is a pure function of the document: the first block whose
// class matches the requested kind wins, non-matching and unknown classes
// are skipped, and an absent hint yields the kind's documented default.
// When duplicates of one kind appear on a node the first is honored,
// matching the behavior of the system this layer replaces.
package hint

import (
	"fmt"

	"github.com/me/gridwe/pkg/cwl"
	"github.com/me/gridwe/pkg/model"
)

// Recognized hint classes.
const (
	ClassExecutionHooks = "dirac:ExecutionHooks"
	ClassScheduling     = "dirac:Scheduling"
	ClassProduction     = "dirac:Production"
)

// DisplayItem is one (label, value) pair produced by FormatDisplay.
type DisplayItem struct {
	Label string
	Value string
}

// ExecutionHooks configures the execution hook plugin wrapped around a
// job. An empty Plugin name selects the no-op plugin.
type ExecutionHooks struct {
	Plugin        string
	VO            string
	OutputSandbox []string
	OutputPaths   map[string]string

	// Config holds the remaining plugin-specific fields of the block.
	Config map[string]any
}

// TransformationHooks extends ExecutionHooks with job-grouping semantics
// for Transformation-level workflows. GroupSize maps an array input name
// to the maximum number of elements per split job.
type TransformationHooks struct {
	ExecutionHooks
	GroupSize map[string]int
}

// Scheduling carries platform and site constraints for a workflow node.
type Scheduling struct {
	Platform string
	Priority int
	Sites    []string
}

// DefaultPriority is applied when a dirac:Scheduling block omits priority.
const DefaultPriority = 10

// Production configures Production-level input dataset resolution.
// An empty Plugin name means no input generation is performed.
type Production struct {
	Plugin string
	Config map[string]any
}

// find returns the first reachable hint block of the given class.
func find(doc cwl.Document, class string) (cwl.HintBlock, bool) {
	for _, b := range cwl.WalkHints(doc) {
		if b.Class == class {
			return b, true
		}
	}
	return cwl.HintBlock{}, false
}

// ExtractExecutionHooks decodes the dirac:ExecutionHooks hint, or returns
// the zero value (no-op plugin) when no block is present.
func ExtractExecutionHooks(doc cwl.Document) (ExecutionHooks, error) {
	block, ok := find(doc, ClassExecutionHooks)
	if !ok {
		return ExecutionHooks{}, nil
	}
	return decodeExecutionHooks(block)
}

// ExtractTransformationHooks decodes the dirac:ExecutionHooks hint
// including the Transformation-level group_size field.
func ExtractTransformationHooks(doc cwl.Document) (TransformationHooks, error) {
	block, ok := find(doc, ClassExecutionHooks)
	if !ok {
		return TransformationHooks{}, nil
	}

	hooks, err := decodeExecutionHooks(block)
	if err != nil {
		return TransformationHooks{}, err
	}

	out := TransformationHooks{ExecutionHooks: hooks}
	raw, ok := block.Fields["group_size"]
	if !ok {
		return out, nil
	}
	groups, ok := raw.(map[string]any)
	if !ok {
		return TransformationHooks{}, configErr(block, "group_size", "expected a map of input name to integer")
	}
	out.GroupSize = make(map[string]int, len(groups))
	for name, v := range groups {
		n, ok := asInt(v)
		if !ok {
			return TransformationHooks{}, configErr(block, "group_size", fmt.Sprintf("entry %q is not an integer", name))
		}
		out.GroupSize[name] = n
	}
	delete(out.Config, "group_size")
	return out, nil
}

// ExtractScheduling decodes the dirac:Scheduling hint. The default has
// no platform or site constraints and priority DefaultPriority.
func ExtractScheduling(doc cwl.Document) (Scheduling, error) {
	s := Scheduling{Priority: DefaultPriority}
	block, ok := find(doc, ClassScheduling)
	if !ok {
		return s, nil
	}

	for field, v := range block.Fields {
		switch field {
		case "platform":
			p, ok := v.(string)
			if !ok {
				return Scheduling{}, configErr(block, field, "expected a string")
			}
			s.Platform = p
		case "priority":
			n, ok := asInt(v)
			if !ok {
				return Scheduling{}, configErr(block, field, "expected an integer")
			}
			s.Priority = n
		case "sites":
			sites, err := stringList(v)
			if err != nil {
				return Scheduling{}, configErr(block, field, err.Error())
			}
			s.Sites = sites
		}
	}
	return s, nil
}

// ExtractProduction decodes the dirac:Production hint, or returns the
// zero value (no input dataset plugin) when no block is present.
func ExtractProduction(doc cwl.Document) (Production, error) {
	block, ok := find(doc, ClassProduction)
	if !ok {
		return Production{}, nil
	}

	p := Production{Config: map[string]any{}}
	for field, v := range block.Fields {
		switch field {
		case "input_dataset_plugin":
			name, ok := v.(string)
			if !ok {
				return Production{}, configErr(block, field, "expected a string")
			}
			p.Plugin = name
		case "input_dataset_config":
			cfg, ok := v.(map[string]any)
			if !ok {
				return Production{}, configErr(block, field, "expected a map")
			}
			p.Config = cfg
		default:
			p.Config[field] = v
		}
	}
	return p, nil
}

func decodeExecutionHooks(block cwl.HintBlock) (ExecutionHooks, error) {
	h := ExecutionHooks{Config: map[string]any{}}
	for field, v := range block.Fields {
		switch field {
		case "hook_plugin":
			name, ok := v.(string)
			if !ok {
				return ExecutionHooks{}, configErr(block, field, "expected a string")
			}
			h.Plugin = name
		case "vo":
			vo, ok := v.(string)
			if !ok {
				return ExecutionHooks{}, configErr(block, field, "expected a string")
			}
			h.VO = vo
		case "output_sandbox":
			list, err := stringList(v)
			if err != nil {
				return ExecutionHooks{}, configErr(block, field, err.Error())
			}
			h.OutputSandbox = list
		case "output_paths":
			raw, ok := v.(map[string]any)
			if !ok {
				return ExecutionHooks{}, configErr(block, field, "expected a map of output name to destination")
			}
			h.OutputPaths = make(map[string]string, len(raw))
			for name, dest := range raw {
				d, ok := dest.(string)
				if !ok {
					return ExecutionHooks{}, configErr(block, field, fmt.Sprintf("destination for %q is not a string", name))
				}
				h.OutputPaths[name] = d
			}
		case "group_size":
			// Decoded by ExtractTransformationHooks; kept in Config here
			// so job-level extraction does not silently drop it.
			h.Config[field] = v
		default:
			h.Config[field] = v
		}
	}
	return h, nil
}

func configErr(block cwl.HintBlock, field, reason string) *model.ConfigurationError {
	return &model.ConfigurationError{
		Class:  block.Class,
		Field:  field,
		Node:   block.Node,
		Reason: reason,
	}
}

// asInt normalizes the integer representations yaml.v3 may produce.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

func stringList(v any) ([]string, error) {
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of strings")
	}
	out := make([]string, 0, len(raw))
	for i, entry := range raw {
		s, ok := entry.(string)
		if !ok {
			return nil, fmt.Errorf("entry %d is not a string", i)
		}
		out = append(out, s)
	}
	return out, nil
}
