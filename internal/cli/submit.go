package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/me/gridwe/internal/config"
	"github.com/me/gridwe/internal/dataset"
	"github.com/me/gridwe/internal/engine"
	"github.com/me/gridwe/internal/executor"
	"github.com/me/gridwe/internal/filestore"
	"github.com/me/gridwe/internal/hooks"
	"github.com/me/gridwe/internal/report"
	"github.com/me/gridwe/pkg/cwl"
	"github.com/me/gridwe/pkg/model"
)

func newSubmitCmd() *cobra.Command {
	cfg := config.DefaultRunnerConfig()

	cmd := &cobra.Command{
		Use:   "submit <cwl-file> [job-file]",
		Short: "Run a hint-annotated workflow as a batch of jobs",
		Long: `Submit extracts the execution hooks from the workflow document,
splits the inputs into jobs, drives every job through pre-process,
engine execution, and post-process, and prints the batch report as
JSON to stdout. The exit status is non-zero when any job fails.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			workflowPath := args[0]

			doc, err := cwl.Load(workflowPath)
			if err != nil {
				return err
			}

			var inputs map[string]any
			if len(args) > 1 {
				data, err := os.ReadFile(args[1])
				if err != nil {
					return fmt.Errorf("read job file: %w", err)
				}
				if err := yaml.Unmarshal(data, &inputs); err != nil {
					return fmt.Errorf("parse job file: %w", err)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runSubmit(ctx, cfg, workflowPath, doc, inputs)
		},
	}

	cmd.Flags().StringVar(&cfg.WorkRoot, "workdir", cfg.WorkRoot, "Root directory for per-job working directories")
	cmd.Flags().StringVar(&cfg.StoreRoot, "store-root", cfg.StoreRoot, "Local file store root")
	cmd.Flags().StringVar(&cfg.EngineBin, "engine", cfg.EngineBin, "Workflow engine binary")
	cmd.Flags().IntVar(&cfg.MaxInFlight, "max-in-flight", cfg.MaxInFlight, "Maximum concurrently executing jobs")
	cmd.Flags().StringVar(&cfg.DBPath, "db", defaultDBPath(), "Report database path (or GRIDWE_DB env)")

	return cmd
}

func runSubmit(ctx context.Context, cfg config.RunnerConfig, workflowPath string, doc cwl.Document, inputs map[string]any) error {
	store, err := filestore.NewDirStore(cfg.StoreRoot)
	if err != nil {
		return fmt.Errorf("open file store: %w", err)
	}

	hookReg := hooks.NewRegistry(logger)
	hookReg.Discover(nil)
	datasetReg := dataset.NewRegistry(logger)
	datasetReg.Discover(nil)

	eng := engine.New(engine.Config{Bin: cfg.EngineBin, Logger: logger})
	exec := executor.New(hookReg, datasetReg, store, eng, executor.Config{
		MaxInFlight: cfg.MaxInFlight,
		WorkRoot:    cfg.WorkRoot,
	}, logger)

	batch, err := exec.Submit(ctx, workflowPath, doc, inputs)
	if err != nil {
		return err
	}

	if err := saveBatch(ctx, cfg.DBPath, batch); err != nil {
		logger.Error("persist batch report", "error", err)
	}

	out, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	fmt.Println(string(out))

	if !batch.Success() {
		return fmt.Errorf("batch %s: %d of %d jobs failed", batch.ID, len(batch.FailedJobs()), len(batch.Jobs))
	}
	return nil
}

func saveBatch(ctx context.Context, dbPath string, batch *model.BatchReport) error {
	s, err := report.NewSQLiteStore(dbPath, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Migrate(ctx); err != nil {
		return err
	}
	return s.SaveBatch(ctx, batch)
}
