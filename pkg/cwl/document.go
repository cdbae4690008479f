// Package cwl provides loose, map-based access to parsed CWL documents.
// Full CWL semantics (expressions, schema validation, step execution)
// belong to the external workflow engine; this package only reads the
// structure the execution layer needs: classes, steps, and hint blocks.
package cwl

import (
	"sort"
)

// Document represents a raw CWL document as produced by yaml.Unmarshal.
type Document map[string]any

// Class returns the CWL class (Workflow, CommandLineTool, ExpressionTool).
func (d Document) Class() string {
	if v, ok := d["class"].(string); ok {
		return v
	}
	return ""
}

// ID returns the document's id field, if present.
func (d Document) ID() string {
	if v, ok := d["id"].(string); ok {
		return v
	}
	return ""
}

// CWLVersion returns the cwlVersion field.
func (d Document) CWLVersion() string {
	if v, ok := d["cwlVersion"].(string); ok {
		return v
	}
	return ""
}

// Step is a workflow step together with its resolved sub-document, when
// the step's run field is inlined.
type Step struct {
	ID  string
	Doc Document // the step node itself
	Run Document // inlined run sub-document, nil if run is a reference
}

// StepList returns workflow steps in declaration order. CWL allows both
// list form (ordered) and map form; map-form steps are returned in
// sorted-key order so traversal stays deterministic.
func (d Document) StepList() []Step {
	raw, ok := d["steps"]
	if !ok {
		return nil
	}

	var steps []Step
	switch s := raw.(type) {
	case []any:
		for _, entry := range s {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			steps = append(steps, newStep(Document(m).ID(), m))
		}
	case map[string]any:
		ids := make([]string, 0, len(s))
		for id := range s {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			m, ok := s[id].(map[string]any)
			if !ok {
				continue
			}
			steps = append(steps, newStep(id, m))
		}
	}
	return steps
}

func newStep(id string, node map[string]any) Step {
	step := Step{ID: id, Doc: Document(node)}
	if run, ok := node["run"].(map[string]any); ok {
		step.Run = Document(run)
	}
	return step
}

// HintBlock is one structured annotation attached to a workflow node.
type HintBlock struct {
	Class  string
	Node   string // id of the node carrying the hint
	Fields map[string]any
}

// maxHintDepth bounds sub-workflow recursion. The id-based visited guard
// covers well-formed documents; the depth bound covers id-less ones.
const maxHintDepth = 32

// WalkHints collects the hint blocks reachable from doc: the document's
// own hints, then each step's hints, then each inlined sub-workflow's,
// depth-first in declaration order. Hints attached to a sub-workflow used
// as a step are therefore discoverable from the top level.
func WalkHints(doc Document) []HintBlock {
	seen := make(map[string]bool)
	return walkHints(doc, seen, 0)
}

func walkHints(doc Document, seen map[string]bool, depth int) []HintBlock {
	if doc == nil || depth > maxHintDepth {
		return nil
	}
	if id := doc.ID(); id != "" {
		if seen[id] {
			return nil
		}
		seen[id] = true
	}

	blocks := nodeHints(doc)
	for _, step := range doc.StepList() {
		for _, b := range nodeHints(step.Doc) {
			if b.Node == "" {
				b.Node = step.ID
			}
			blocks = append(blocks, b)
		}
		blocks = append(blocks, walkHints(step.Run, seen, depth+1)...)
	}
	return blocks
}

// nodeHints decodes the hints field of a single node. CWL allows both a
// list of {class: ...} maps and a map keyed by class name.
func nodeHints(doc Document) []HintBlock {
	raw, ok := doc["hints"]
	if !ok {
		return nil
	}

	node := doc.ID()
	var blocks []HintBlock
	switch h := raw.(type) {
	case []any:
		for _, entry := range h {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			class, _ := m["class"].(string)
			if class == "" {
				continue
			}
			fields := make(map[string]any, len(m))
			for k, v := range m {
				if k != "class" {
					fields[k] = v
				}
			}
			blocks = append(blocks, HintBlock{Class: class, Node: node, Fields: fields})
		}
	case map[string]any:
		classes := make([]string, 0, len(h))
		for class := range h {
			classes = append(classes, class)
		}
		sort.Strings(classes)
		for _, class := range classes {
			fields, ok := h[class].(map[string]any)
			if !ok {
				fields = map[string]any{}
			}
			blocks = append(blocks, HintBlock{Class: class, Node: node, Fields: fields})
		}
	}
	return blocks
}
