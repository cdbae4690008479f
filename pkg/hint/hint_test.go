package hint

import (
	"errors"
	"testing"

	"github.com/me/gridwe/pkg/cwl"
	"github.com/me/gridwe/pkg/model"
)

func docWithHints(hints []any) cwl.Document {
	return cwl.Document{
		"class": "Workflow",
		"id":    "wf",
		"hints": hints,
	}
}

func TestExtractExecutionHooksAbsent(t *testing.T) {
	h, err := ExtractExecutionHooks(cwl.Document{"class": "Workflow"})
	if err != nil {
		t.Fatalf("ExtractExecutionHooks: %v", err)
	}
	if h.Plugin != "" {
		t.Errorf("absent hint should yield empty plugin, got %q", h.Plugin)
	}
}

func TestExtractExecutionHooksFields(t *testing.T) {
	doc := docWithHints([]any{
		map[string]any{
			"class":          "dirac:ExecutionHooks",
			"hook_plugin":    "QueryBased",
			"vo":             "lhcb",
			"output_sandbox": []any{"log.txt"},
			"output_paths":   map[string]any{"sim": "lfn:grid/data/sim"},
			"campaign":       "Run3",
		},
	})

	h, err := ExtractExecutionHooks(doc)
	if err != nil {
		t.Fatalf("ExtractExecutionHooks: %v", err)
	}
	if h.Plugin != "QueryBased" {
		t.Errorf("Plugin = %q, want QueryBased", h.Plugin)
	}
	if h.VO != "lhcb" {
		t.Errorf("VO = %q, want lhcb", h.VO)
	}
	if len(h.OutputSandbox) != 1 || h.OutputSandbox[0] != "log.txt" {
		t.Errorf("OutputSandbox = %v", h.OutputSandbox)
	}
	if h.OutputPaths["sim"] != "lfn:grid/data/sim" {
		t.Errorf("OutputPaths = %v", h.OutputPaths)
	}
	if h.Config["campaign"] != "Run3" {
		t.Errorf("plugin-specific field not kept in Config: %v", h.Config)
	}
}

func TestExtractExecutionHooksFirstWins(t *testing.T) {
	doc := docWithHints([]any{
		map[string]any{"class": "dirac:ExecutionHooks", "hook_plugin": "First"},
		map[string]any{"class": "dirac:ExecutionHooks", "hook_plugin": "Second"},
	})

	h, err := ExtractExecutionHooks(doc)
	if err != nil {
		t.Fatalf("ExtractExecutionHooks: %v", err)
	}
	if h.Plugin != "First" {
		t.Errorf("duplicate hints: Plugin = %q, want First", h.Plugin)
	}
}

func TestExtractExecutionHooksFromNestedStep(t *testing.T) {
	doc := cwl.Document{
		"class": "Workflow",
		"id":    "outer",
		"steps": []any{
			map[string]any{
				"id": "inner",
				"run": map[string]any{
					"class": "Workflow",
					"id":    "sub",
					"hints": []any{
						map[string]any{"class": "dirac:ExecutionHooks", "hook_plugin": "QueryBased"},
					},
				},
			},
		},
	}

	h, err := ExtractExecutionHooks(doc)
	if err != nil {
		t.Fatalf("ExtractExecutionHooks: %v", err)
	}
	if h.Plugin != "QueryBased" {
		t.Errorf("hint on nested sub-workflow not found, Plugin = %q", h.Plugin)
	}
}

func TestExtractExecutionHooksMalformed(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
	}{
		{"non-string plugin", map[string]any{"class": "dirac:ExecutionHooks", "hook_plugin": 7}},
		{"non-list sandbox", map[string]any{"class": "dirac:ExecutionHooks", "output_sandbox": "log.txt"}},
		{"non-map paths", map[string]any{"class": "dirac:ExecutionHooks", "output_paths": []any{"a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractExecutionHooks(docWithHints([]any{tt.fields}))
			var cfgErr *model.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cfgErr.Node != "wf" {
				t.Errorf("error should name the node, got %q", cfgErr.Node)
			}
		})
	}
}

func TestExtractTransformationHooksGroupSize(t *testing.T) {
	doc := docWithHints([]any{
		map[string]any{
			"class":       "dirac:ExecutionHooks",
			"hook_plugin": "QueryBased",
			"group_size":  map[string]any{"input_data": 2},
		},
	})

	th, err := ExtractTransformationHooks(doc)
	if err != nil {
		t.Fatalf("ExtractTransformationHooks: %v", err)
	}
	if th.GroupSize["input_data"] != 2 {
		t.Errorf("GroupSize = %v, want input_data=2", th.GroupSize)
	}
	if _, ok := th.Config["group_size"]; ok {
		t.Error("group_size should not leak into Config after decoding")
	}
}

func TestExtractTransformationHooksBadGroupSize(t *testing.T) {
	doc := docWithHints([]any{
		map[string]any{
			"class":      "dirac:ExecutionHooks",
			"group_size": map[string]any{"input_data": "two"},
		},
	})

	_, err := ExtractTransformationHooks(doc)
	var cfgErr *model.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Field != "group_size" {
		t.Errorf("Field = %q, want group_size", cfgErr.Field)
	}
}

func TestExtractSchedulingDefaults(t *testing.T) {
	s, err := ExtractScheduling(cwl.Document{"class": "Workflow"})
	if err != nil {
		t.Fatalf("ExtractScheduling: %v", err)
	}
	if s.Priority != DefaultPriority {
		t.Errorf("Priority = %d, want %d", s.Priority, DefaultPriority)
	}
	if s.Platform != "" || len(s.Sites) != 0 {
		t.Errorf("absent hint should yield no constraints: %+v", s)
	}
}

func TestExtractScheduling(t *testing.T) {
	doc := docWithHints([]any{
		map[string]any{
			"class":    "dirac:Scheduling",
			"platform": "el9",
			"priority": 5,
			"sites":    []any{"LCG.CERN.ch", "LCG.GRIDKA.de"},
		},
	})

	s, err := ExtractScheduling(doc)
	if err != nil {
		t.Fatalf("ExtractScheduling: %v", err)
	}
	if s.Platform != "el9" || s.Priority != 5 || len(s.Sites) != 2 {
		t.Errorf("unexpected scheduling: %+v", s)
	}
}

func TestExtractProduction(t *testing.T) {
	doc := docWithHints([]any{
		map[string]any{
			"class":                "dirac:Production",
			"input_dataset_plugin": "CatalogInputDataset",
			"input_dataset_config": map[string]any{"campaign": "Run3"},
		},
	})

	p, err := ExtractProduction(doc)
	if err != nil {
		t.Fatalf("ExtractProduction: %v", err)
	}
	if p.Plugin != "CatalogInputDataset" {
		t.Errorf("Plugin = %q", p.Plugin)
	}
	if p.Config["campaign"] != "Run3" {
		t.Errorf("Config = %v", p.Config)
	}
}

func TestExtractProductionAbsent(t *testing.T) {
	p, err := ExtractProduction(cwl.Document{"class": "Workflow"})
	if err != nil {
		t.Fatalf("ExtractProduction: %v", err)
	}
	if p.Plugin != "" {
		t.Errorf("absent hint should yield empty plugin, got %q", p.Plugin)
	}
}
