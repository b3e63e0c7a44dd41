package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Atarvano/ManifestAi/cmd/manifest-ai/ui"
	"github.com/Atarvano/ManifestAi/internal/domain"
	"github.com/Atarvano/ManifestAi/internal/storage"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent pipeline runs from the run ledger",
	RunE:  runRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one pipeline run in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "number of runs to show")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	repo, closeLedger, err := ledger(ctx)
	if err != nil {
		return err
	}
	defer closeLedger()

	runs, err := repo.List(ctx, runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		ui.Info("No runs recorded")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID.String(),
			r.Pipeline,
			r.Filename,
			r.Model,
			r.Status,
			strconv.Itoa(r.ItemCount),
			fmt.Sprintf("%d/%d/%d", r.HSAdded, r.HSValidated, r.HSFailed),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			ui.FormatDuration(r.Duration()),
		})
	}

	ui.Section("Pipeline Runs")
	ui.Table([]string{"ID", "Pipeline", "File", "Model", "Status", "Items", "HS +/=/x", "Started", "Took"}, rows)
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	id, err := parseRunID(args[0])
	if err != nil {
		return describe(err)
	}

	repo, closeLedger, err := ledger(ctx)
	if err != nil {
		return err
	}
	defer closeLedger()

	run, err := repo.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return err
	}

	ui.Section("Pipeline Run")
	ui.Table([]string{"Field", "Value"}, runDetail(run))
	return nil
}

// ledger opens the run ledger or explains how to enable it.
func ledger(ctx context.Context) (*storage.RunRepository, func(), error) {
	repo, db, err := openLedger(ctx)
	if err != nil {
		return nil, nil, describe(err)
	}
	if repo == nil {
		return nil, nil, fmt.Errorf("run ledger disabled: set database.driver to sqlite or postgres")
	}
	return repo, func() { db.Close() }, nil
}

func parseRunID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, domain.InvalidRequestError(fmt.Sprintf("invalid run id %q", s))
	}
	return id, nil
}

func runDetail(r *storage.Run) [][]string {
	finished, took := "-", "-"
	if r.FinishedAt != nil {
		finished = r.FinishedAt.Local().Format("2006-01-02 15:04:05")
		took = ui.FormatDuration(r.Duration())
	}
	errText := r.Error
	if errText == "" {
		errText = "-"
	}

	return [][]string{
		{"ID", r.ID.String()},
		{"Pipeline", r.Pipeline},
		{"File", r.Filename},
		{"Model", r.Model},
		{"Status", r.Status},
		{"Items", strconv.Itoa(r.ItemCount)},
		{"HS added", strconv.Itoa(r.HSAdded)},
		{"HS validated", strconv.Itoa(r.HSValidated)},
		{"HS failed", strconv.Itoa(r.HSFailed)},
		{"Started", r.StartedAt.Local().Format("2006-01-02 15:04:05")},
		{"Finished", finished},
		{"Took", took},
		{"Error", errText},
	}
}
