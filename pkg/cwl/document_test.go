package cwl

import "testing"

func TestStepListOrder(t *testing.T) {
	doc := Document{
		"class": "Workflow",
		"steps": []any{
			map[string]any{"id": "first", "run": "tool1.cwl"},
			map[string]any{"id": "second", "run": "tool2.cwl"},
			map[string]any{"id": "third", "run": "tool3.cwl"},
		},
	}

	steps := doc.StepList()
	if len(steps) != 3 {
		t.Fatalf("StepList() returned %d steps, want 3", len(steps))
	}
	for i, want := range []string{"first", "second", "third"} {
		if steps[i].ID != want {
			t.Errorf("step[%d].ID = %q, want %q", i, steps[i].ID, want)
		}
	}
}

func TestStepListMapForm(t *testing.T) {
	doc := Document{
		"class": "Workflow",
		"steps": map[string]any{
			"zeta":  map[string]any{"run": "z.cwl"},
			"alpha": map[string]any{"run": "a.cwl"},
		},
	}

	steps := doc.StepList()
	if len(steps) != 2 {
		t.Fatalf("StepList() returned %d steps, want 2", len(steps))
	}
	if steps[0].ID != "alpha" || steps[1].ID != "zeta" {
		t.Errorf("map-form steps not in sorted order: %q, %q", steps[0].ID, steps[1].ID)
	}
}

func TestStepInlinedRun(t *testing.T) {
	doc := Document{
		"class": "Workflow",
		"steps": []any{
			map[string]any{
				"id":  "sub",
				"run": map[string]any{"class": "Workflow", "id": "inner"},
			},
		},
	}

	steps := doc.StepList()
	if len(steps) != 1 {
		t.Fatalf("StepList() returned %d steps, want 1", len(steps))
	}
	if steps[0].Run == nil {
		t.Fatal("inlined run sub-document not resolved")
	}
	if steps[0].Run.ID() != "inner" {
		t.Errorf("Run.ID() = %q, want %q", steps[0].Run.ID(), "inner")
	}
}

func TestWalkHintsDeclarationOrder(t *testing.T) {
	doc := Document{
		"class": "Workflow",
		"id":    "top",
		"hints": []any{
			map[string]any{"class": "dirac:ExecutionHooks", "hook_plugin": "A"},
		},
		"steps": []any{
			map[string]any{
				"id": "step1",
				"hints": []any{
					map[string]any{"class": "dirac:ExecutionHooks", "hook_plugin": "B"},
				},
			},
			map[string]any{
				"id": "step2",
				"run": map[string]any{
					"class": "Workflow",
					"id":    "nested",
					"hints": []any{
						map[string]any{"class": "dirac:Scheduling", "platform": "el9"},
					},
				},
			},
		},
	}

	blocks := WalkHints(doc)
	if len(blocks) != 3 {
		t.Fatalf("WalkHints() returned %d blocks, want 3", len(blocks))
	}
	if blocks[0].Fields["hook_plugin"] != "A" {
		t.Errorf("first block should be the document's own hint, got %v", blocks[0])
	}
	if blocks[1].Fields["hook_plugin"] != "B" {
		t.Errorf("second block should be step1's hint, got %v", blocks[1])
	}
	if blocks[2].Class != "dirac:Scheduling" {
		t.Errorf("third block should come from the nested sub-workflow, got %v", blocks[2])
	}
	if blocks[1].Node != "step1" {
		t.Errorf("step hint should carry the step id, got %q", blocks[1].Node)
	}
}

func TestWalkHintsMapForm(t *testing.T) {
	doc := Document{
		"class": "CommandLineTool",
		"hints": map[string]any{
			"dirac:ExecutionHooks": map[string]any{"hook_plugin": "QueryBased"},
			"DockerRequirement":    map[string]any{"dockerPull": "busybox"},
		},
	}

	blocks := WalkHints(doc)
	if len(blocks) != 2 {
		t.Fatalf("WalkHints() returned %d blocks, want 2", len(blocks))
	}
	found := false
	for _, b := range blocks {
		if b.Class == "dirac:ExecutionHooks" && b.Fields["hook_plugin"] == "QueryBased" {
			found = true
		}
	}
	if !found {
		t.Error("map-form hint block not decoded")
	}
}

func TestWalkHintsCyclicDocument(t *testing.T) {
	// A sub-workflow sharing the top-level id must not recurse forever.
	inner := map[string]any{"class": "Workflow", "id": "loop"}
	doc := Document{
		"class": "Workflow",
		"id":    "loop",
		"steps": []any{
			map[string]any{"id": "s", "run": inner},
		},
	}
	inner["steps"] = []any{map[string]any{"id": "s2", "run": map[string]any(doc)}}

	// Must terminate.
	if blocks := WalkHints(doc); blocks != nil {
		t.Errorf("expected no hints, got %d", len(blocks))
	}
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte("class: Workflow\ncwlVersion: v1.2\nid: wf\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Class() != "Workflow" || doc.CWLVersion() != "v1.2" || doc.ID() != "wf" {
		t.Errorf("unexpected document fields: class=%q version=%q id=%q",
			doc.Class(), doc.CWLVersion(), doc.ID())
	}
}
