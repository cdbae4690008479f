package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/me/gridwe/internal/dataset"
	"github.com/me/gridwe/internal/filestore"
	"github.com/me/gridwe/internal/hooks"
	"github.com/me/gridwe/pkg/cwl"
	"github.com/me/gridwe/pkg/hint"
)

func newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <cwl-file>",
		Short: "Show the execution hints of a workflow document",
		Long: `Describe extracts the execution hooks, scheduling, and production
hints from a workflow document and renders them through the plugins
they name, without running anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := cwl.Load(args[0])
			if err != nil {
				return err
			}
			return describe(doc)
		},
	}
	return cmd
}

func describe(doc cwl.Document) error {
	th, err := hint.ExtractTransformationHooks(doc)
	if err != nil {
		return err
	}
	sched, err := hint.ExtractScheduling(doc)
	if err != nil {
		return err
	}
	prod, err := hint.ExtractProduction(doc)
	if err != nil {
		return err
	}

	store := filestore.NopStore{}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	hookReg := hooks.NewRegistry(logger)
	hookReg.Discover(nil)
	entry, err := hookReg.Get(th.Plugin)
	if err != nil {
		return err
	}
	hook, err := entry.Factory(th, store, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Hook plugin:\t%s (%s)\n", hook.Name(), hook.Description())
	if th.VO != "" {
		fmt.Fprintf(w, "VO:\t%s\n", th.VO)
	}
	for input, size := range th.GroupSize {
		fmt.Fprintf(w, "Group size:\t%s=%d\n", input, size)
	}
	for _, item := range hook.FormatDisplay(th.Config) {
		fmt.Fprintf(w, "%s:\t%s\n", item.Label, item.Value)
	}

	fmt.Fprintf(w, "Platform:\t%s\n", orDash(sched.Platform))
	fmt.Fprintf(w, "Priority:\t%d\n", sched.Priority)
	if len(sched.Sites) > 0 {
		fmt.Fprintf(w, "Sites:\t%s\n", strings.Join(sched.Sites, ", "))
	}

	if prod.Plugin != "" {
		datasetReg := dataset.NewRegistry(logger)
		datasetReg.Discover(nil)
		entry, err := datasetReg.Get(prod.Plugin)
		if err != nil {
			return err
		}
		plugin, err := entry.Factory(store, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Dataset plugin:\t%s (%s)\n", plugin.Name(), plugin.Description())
		for _, item := range plugin.FormatDisplay(prod.Config) {
			fmt.Fprintf(w, "%s:\t%s\n", item.Label, item.Value)
		}
	}

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
