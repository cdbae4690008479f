package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/me/gridwe/internal/dataset"
	"github.com/me/gridwe/internal/hooks"
)

func newPluginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List registered execution hook and input dataset plugins",
		RunE: func(cmd *cobra.Command, args []string) error {
			hookReg := hooks.NewRegistry(logger)
			hookReg.Discover(nil)
			datasetReg := dataset.NewRegistry(logger)
			datasetReg.Discover(nil)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tNAME\tVO\tDESCRIPTION")
			for _, e := range hookReg.Entries() {
				fmt.Fprintf(w, "hook\t%s\t%s\t%s\n", e.Name, e.VO, e.Description)
			}
			for _, e := range datasetReg.Entries() {
				fmt.Fprintf(w, "dataset\t%s\t%s\t%s\n", e.Name, e.VO, e.Description)
			}
			return w.Flush()
		},
	}
	return cmd
}
