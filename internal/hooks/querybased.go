package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"

	"github.com/me/gridwe/internal/filestore"
	"github.com/me/gridwe/pkg/hint"
	"github.com/me/gridwe/pkg/model"
)

// defaultQueryRoot is the store path queries resolve under when the
// hint does not configure one.
const defaultQueryRoot = "/grid/data"

// QueryBased resolves input references from a query path built out of
// hint configuration (query_root/campaign/site/data_type), stages
// referenced files through the file store before execution, splits
// array inputs by group size, and registers declared outputs after a
// successful execution.
type QueryBased struct {
	queryRoot string
	campaign  string
	site      string
	dataType  string

	groupSize     map[string]int
	outputSandbox []string
	outputPaths   map[string]string

	store  filestore.Store
	logger *slog.Logger
}

// NewQueryBased builds a QueryBased hook from the hint configuration.
func NewQueryBased(h hint.TransformationHooks, store filestore.Store, logger *slog.Logger) (ExecutionHook, error) {
	q := &QueryBased{
		queryRoot:     defaultQueryRoot,
		groupSize:     h.GroupSize,
		outputSandbox: h.OutputSandbox,
		outputPaths:   h.OutputPaths,
		store:         store,
		logger:        logger.With("component", "hook", "plugin", QueryBasedName),
	}
	if v, ok := h.Config["query_root"].(string); ok && v != "" {
		q.queryRoot = v
	}
	q.campaign, _ = h.Config["campaign"].(string)
	q.site, _ = h.Config["site"].(string)
	q.dataType, _ = h.Config["data_type"].(string)
	return q, nil
}

func (q *QueryBased) Name() string        { return QueryBasedName }
func (q *QueryBased) VO() string          { return "generic" }
func (q *QueryBased) Description() string { return "query-based staging with array-input grouping" }

// InputQuery builds the store path for a named input from the
// configured query parameters. Empty segments are omitted.
func (q *QueryBased) InputQuery(name string) string {
	segments := []string{q.queryRoot}
	for _, s := range []string{q.campaign, q.site, q.dataType, name} {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return path.Join(segments...)
}

// Split partitions the job by the hint's group size, if any.
func (q *QueryBased) Split(job *model.Job) ([]*model.Job, error) {
	return splitByGroupSize(job, q.groupSize)
}

// PreProcess fetches referenced inputs into the job working directory
// and rewrites the bindings to the staged local paths.
func (q *QueryBased) PreProcess(ctx context.Context, job *model.Job) error {
	for name, value := range job.Inputs {
		switch v := value.(type) {
		case string:
			if !filestore.IsRef(v) {
				continue
			}
			local, err := q.store.Fetch(ctx, v, job.WorkDir)
			if err != nil {
				return fmt.Errorf("stage input %q: %w", name, err)
			}
			job.Inputs[name] = local
		case []any:
			staged, changed, err := q.stageList(ctx, name, v, job.WorkDir)
			if err != nil {
				return err
			}
			if changed {
				job.Inputs[name] = staged
			}
		}
	}
	return nil
}

func (q *QueryBased) stageList(ctx context.Context, name string, values []any, workDir string) ([]any, bool, error) {
	staged := make([]any, len(values))
	changed := false
	for i, entry := range values {
		ref, ok := entry.(string)
		if !ok || !filestore.IsRef(ref) {
			staged[i] = entry
			continue
		}
		local, err := q.store.Fetch(ctx, ref, workDir)
		if err != nil {
			return nil, false, fmt.Errorf("stage input %q[%d]: %w", name, i, err)
		}
		staged[i] = local
		changed = true
	}
	return staged, changed, nil
}

// PostProcess registers declared outputs with the file store. It runs
// for failed executions too, but registration requires success: on a
// failed result it only logs what partial output is present.
func (q *QueryBased) PostProcess(ctx context.Context, job *model.Job, result *model.ExecutionResult) error {
	if result == nil {
		return nil
	}
	if !result.Success() {
		q.logger.Info("execution failed, skipping output registration",
			"job_id", job.ID, "exit_code", result.ExitCode, "partial_outputs", len(result.Outputs))
		return nil
	}

	for _, name := range q.declaredOutputs() {
		paths, ok := outputFilePaths(result.Outputs[name])
		if !ok {
			return fmt.Errorf("declared output %q not produced", name)
		}
		dest := q.outputPaths[name]
		if dest == "" {
			dest = filestore.BuildRef(q.InputQuery(name))
		}
		for _, p := range paths {
			ref, err := q.store.Put(ctx, p, dest)
			if err != nil {
				return fmt.Errorf("store output %q: %w", name, err)
			}
			q.logger.Info("output stored", "job_id", job.ID, "output", name, "ref", ref)
		}
	}
	return nil
}

// declaredOutputs merges the sandbox and path selectors, sandbox first,
// without duplicates.
func (q *QueryBased) declaredOutputs() []string {
	seen := make(map[string]bool)
	var names []string
	for _, name := range q.outputSandbox {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	pathNames := make([]string, 0, len(q.outputPaths))
	for name := range q.outputPaths {
		pathNames = append(pathNames, name)
	}
	// Map iteration order is random; sort for deterministic registration.
	sort.Strings(pathNames)
	for _, name := range pathNames {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// FormatDisplay renders the query parameters in a fixed order.
func (q *QueryBased) FormatDisplay(config map[string]any) []hint.DisplayItem {
	var items []hint.DisplayItem
	for _, field := range []struct{ key, label string }{
		{"query_root", "QueryRoot"},
		{"campaign", "Campaign"},
		{"site", "Site"},
		{"data_type", "DataType"},
	} {
		if v, ok := config[field.key].(string); ok && v != "" {
			items = append(items, hint.DisplayItem{Label: field.label, Value: v})
		}
	}
	return items
}

// outputFilePaths extracts local file paths from an engine output value:
// a path string, a File object, or a list of either.
func outputFilePaths(v any) ([]string, bool) {
	switch out := v.(type) {
	case string:
		return []string{out}, true
	case map[string]any:
		if p, ok := out["path"].(string); ok {
			return []string{p}, true
		}
	case []any:
		var paths []string
		for _, entry := range out {
			sub, ok := outputFilePaths(entry)
			if !ok {
				return nil, false
			}
			paths = append(paths, sub...)
		}
		if len(paths) > 0 {
			return paths, true
		}
	}
	return nil, false
}
