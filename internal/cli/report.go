package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/me/gridwe/internal/report"
)

func newReportCmd() *cobra.Command {
	var dbPath string
	var state string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "report [batch-id]",
		Short: "List stored batch reports or show one batch",
		Long: `Without arguments, report lists stored batches. With a batch ID it
prints the full batch report, including per-job outcomes, as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := report.NewSQLiteStore(dbPath, logger)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Migrate(cmd.Context()); err != nil {
				return err
			}

			if len(args) == 1 {
				batch, err := s.GetBatch(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if batch == nil {
					return fmt.Errorf("batch %s not found", args[0])
				}
				out, err := json.MarshalIndent(batch, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			batches, total, err := s.ListBatches(cmd.Context(), report.ListOptions{
				Limit:  limit,
				Offset: offset,
				State:  state,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATE\tWORKFLOW\tCREATED")
			for _, b := range batches {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.ID, b.State, b.WorkflowPath, b.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("%d of %d batches\n", len(batches), total)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", defaultDBPath(), "Report database path (or GRIDWE_DB env)")
	cmd.Flags().StringVar(&state, "state", "", "Filter by batch state")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum batches to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "List offset")

	return cmd
}
