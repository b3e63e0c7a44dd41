package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Atarvano/ManifestAi/cmd/manifest-ai/ui"
	"github.com/Atarvano/ManifestAi/internal/domain"
	"github.com/Atarvano/ManifestAi/internal/pipeline"
)

var (
	ceisaModel    string
	ceisaOut      string
	ceisaStrategy string
)

var ceisaCmd = &cobra.Command{
	Use:   "ceisa <workbook.xlsx>",
	Short: "Fill HS codes in a CEISA manifest workbook",
	Long: `Parses the seven CEISA sheets, links them into master, house and goods
entries, classifies goods without a valid HS code and writes the processed
workbook.`,
	Args: cobra.ExactArgs(1),
	RunE: runCeisa,
}

func init() {
	ceisaCmd.Flags().StringVarP(&ceisaModel, "model", "m", "", "model source (gemini, deepseek, groq)")
	ceisaCmd.Flags().StringVarP(&ceisaOut, "out", "o", "", "output workbook (default <name>-processed.xlsx)")
	ceisaCmd.Flags().StringVar(&ceisaStrategy, "strategy", "", "enrichment strategy (sequential, batch)")

	rootCmd.AddCommand(ceisaCmd)
}

func runCeisa(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	src := args[0]
	file, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer file.Close()

	out := ceisaOut
	if out == "" {
		out = strings.TrimSuffix(src, filepath.Ext(src)) + "-processed.xlsx"
	}

	model := firstNonEmpty(ceisaModel, cfg.LLM.DefaultSource)
	svc, cleanup, err := service(ctx, model)
	if err != nil {
		return describe(err)
	}
	defer cleanup()

	eventCh := make(chan domain.StreamEvent, 100)
	done := make(chan struct{})
	go func() {
		watch(eventCh)
		close(done)
	}()

	result, err := svc.Customs(ctx, pipeline.CustomsRequest{
		Filename:    filepath.Base(src),
		Source:      file,
		ModelSource: model,
		Strategy:    firstNonEmpty(ceisaStrategy, cfg.Enrichment.Strategy),
		OutputPath:  out,
	}, eventCh)
	close(eventCh)
	<-done
	if err != nil {
		return describe(err)
	}

	ui.Success("Wrote processed workbook to %s", result.Output)

	m := result.Manifest
	ui.Section("CEISA Summary")
	ui.Table([]string{"Field", "Value"}, [][]string{
		{"Master B/L", strconv.Itoa(m.Summary.TotalMasterBL)},
		{"House B/L", strconv.Itoa(m.Summary.TotalHouseBL)},
		{"Goods lines", strconv.Itoa(m.Summary.TotalBarang)},
		{"Containers", strconv.Itoa(m.Summary.TotalKontainer)},
		{"Dropped rows", strconv.Itoa(m.Dropped.Total())},
		{"HS codes added", strconv.Itoa(result.Stats.HSCodesAdded)},
		{"HS codes validated", strconv.Itoa(result.Stats.ValidationsRun)},
		{"HS lookups failed", strconv.Itoa(result.Stats.Failed)},
	})
	return nil
}
