package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/me/gridwe/internal/filestore"
	"github.com/me/gridwe/pkg/hint"
	"github.com/me/gridwe/pkg/model"
)

// Catalog queries the file store under a configured path and writes the
// matching references as a CWL inputs file plus a replica catalog.
//
// Config fields: query_root (default "/grid/data"), campaign, site,
// data_type (path segments, empty ones omitted), input_name (the
// workflow input receiving the file list, default "input_data"), and
// limit (maximum number of entries, 0 for all).
type Catalog struct {
	store  filestore.Store
	logger *slog.Logger
}

// NewCatalog builds the catalog dataset plugin.
func NewCatalog(store filestore.Store, logger *slog.Logger) (Plugin, error) {
	return &Catalog{
		store:  store,
		logger: logger.With("component", "dataset", "plugin", CatalogName),
	}, nil
}

func (*Catalog) Name() string        { return CatalogName }
func (*Catalog) VO() string          { return "generic" }
func (*Catalog) Description() string { return "file-store catalog query plugin" }

// GenerateInputs queries the store and writes <wf>-inputs.yml and
// <wf>-replica-catalog.json into outputDir. A query that matches no
// entries is an input resolution failure: without inputs no job
// placeholders exist to execute.
func (c *Catalog) GenerateInputs(ctx context.Context, workflowPath string, config map[string]any, outputDir string) (string, string, error) {
	queryPath := c.queryPath(config)
	refs, err := c.store.List(ctx, filestore.BuildRef(queryPath))
	if err != nil {
		return "", "", &model.InputResolutionError{Plugin: CatalogName, Err: err}
	}
	if len(refs) == 0 {
		return "", "", &model.InputResolutionError{
			Plugin: CatalogName,
			Err:    fmt.Errorf("no catalog entries under %s", queryPath),
		}
	}
	if limit, ok := intField(config, "limit"); ok && limit > 0 && limit < len(refs) {
		refs = refs[:limit]
	}

	inputName, _ := config["input_name"].(string)
	if inputName == "" {
		inputName = "input_data"
	}

	stem := strings.TrimSuffix(filepath.Base(workflowPath), filepath.Ext(workflowPath))
	inputsPath := filepath.Join(outputDir, stem+"-inputs.yml")
	catalogPath := filepath.Join(outputDir, stem+"-replica-catalog.json")

	if err := writeInputs(inputsPath, inputName, refs); err != nil {
		return "", "", &model.InputResolutionError{Plugin: CatalogName, Err: err}
	}
	if err := writeCatalog(catalogPath, refs); err != nil {
		return "", "", &model.InputResolutionError{Plugin: CatalogName, Err: err}
	}

	c.logger.Info("inputs generated", "query", queryPath, "entries", len(refs), "inputs", inputsPath)
	return inputsPath, catalogPath, nil
}

// FormatDisplay renders the query configuration in a fixed order.
func (*Catalog) FormatDisplay(config map[string]any) []hint.DisplayItem {
	var items []hint.DisplayItem
	for _, field := range []struct{ key, label string }{
		{"query_root", "QueryRoot"},
		{"campaign", "Campaign"},
		{"site", "Site"},
		{"data_type", "DataType"},
		{"input_name", "InputName"},
	} {
		if v, ok := config[field.key].(string); ok && v != "" {
			items = append(items, hint.DisplayItem{Label: field.label, Value: v})
		}
	}
	if limit, ok := intField(config, "limit"); ok && limit > 0 {
		items = append(items, hint.DisplayItem{Label: "Limit", Value: fmt.Sprint(limit)})
	}
	return items
}

func (c *Catalog) queryPath(config map[string]any) string {
	root, _ := config["query_root"].(string)
	if root == "" {
		root = "/grid/data"
	}
	segments := []string{root}
	for _, key := range []string{"campaign", "site", "data_type"} {
		if v, ok := config[key].(string); ok && v != "" {
			segments = append(segments, v)
		}
	}
	return path.Join(segments...)
}

// writeInputs writes the input file list in CWL job form.
func writeInputs(path string, inputName string, refs []string) error {
	files := make([]map[string]string, len(refs))
	for i, ref := range refs {
		files[i] = map[string]string{"class": "File", "path": ref}
	}
	data, err := yaml.Marshal(map[string]any{inputName: files})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// writeCatalog writes the replica catalog: reference to known locations.
func writeCatalog(path string, refs []string) error {
	replicas := make(map[string][]string, len(refs))
	for _, ref := range refs {
		replicas[ref] = []string{ref}
	}
	data, err := json.MarshalIndent(replicas, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func intField(config map[string]any, key string) (int, bool) {
	switch v := config[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
