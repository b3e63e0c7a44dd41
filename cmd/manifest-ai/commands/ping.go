package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/Atarvano/ManifestAi/cmd/manifest-ai/ui"
	"github.com/Atarvano/ManifestAi/internal/llm"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity of every configured model provider",
	RunE:  runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	providers, skipped := llm.NewProviders(ctx, cfg.LLM, logger)
	router := llm.NewRouter(providers, cfg.LLM.Fallbacks, logger)

	start := time.Now()
	var results map[string]error
	ui.Wait("Pinging providers", func() { results = router.Ping(ctx) })

	var rows [][]string
	failed := 0
	for name, err := range results {
		status := "ok"
		if err != nil {
			status = err.Error()
			failed++
		}
		rows = append(rows, []string{name, status})
	}
	for name, err := range skipped {
		rows = append(rows, []string{name, "not configured: " + err.Error()})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

	ui.Section("Providers")
	ui.Table([]string{"Provider", "Status"}, rows)
	ui.Info("Checked %d providers in %s", len(results), ui.FormatDuration(time.Since(start)))

	if len(results) == 0 {
		return fmt.Errorf("no providers configured")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d providers failed", failed, len(results))
	}
	return nil
}
