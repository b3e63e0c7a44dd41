package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Atarvano/ManifestAi/cmd/manifest-ai/ui"
	"github.com/Atarvano/ManifestAi/internal/ceisa"
	"github.com/Atarvano/ManifestAi/internal/domain"
	"github.com/Atarvano/ManifestAi/internal/pipeline"
)

var (
	normModel       string
	normBLStart     int
	normBLMiddle    string
	normBLYear      int
	normInstruction string
	normNoEnrich    bool
	normStrategy    string
	normOut         string
	normCeisaOut    string
	normKPPBC       string
	normVessel      string
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <spreadsheet>",
	Short: "Normalize a manifest spreadsheet into canonical line items",
	Long: `Reads the first sheet of an .xlsx workbook, or a UTF-8 .csv file, asks the
model to map it onto the configured column schema, assigns missing B/L numbers
and fills HS codes. Legacy .xls workbooks are rejected; save them as .xlsx
first. The result is printed as JSON or written to --out.`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVarP(&normModel, "model", "m", "", "model source (gemini, deepseek, groq)")
	normalizeCmd.Flags().IntVar(&normBLStart, "bl-start", -1, "first generated B/L sequence number")
	normalizeCmd.Flags().StringVar(&normBLMiddle, "bl-middle", "", "middle segment of generated B/L numbers")
	normalizeCmd.Flags().IntVar(&normBLYear, "bl-year", 0, "year of generated B/L numbers (default current year)")
	normalizeCmd.Flags().StringVar(&normInstruction, "instruction", "", "extra instruction appended to the prompt")
	normalizeCmd.Flags().BoolVar(&normNoEnrich, "no-enrich", false, "skip HS code enrichment")
	normalizeCmd.Flags().StringVar(&normStrategy, "strategy", "", "enrichment strategy (sequential, batch)")
	normalizeCmd.Flags().StringVarP(&normOut, "out", "o", "", "write the JSON result to this file")
	normalizeCmd.Flags().StringVar(&normCeisaOut, "ceisa-out", "", "also write a CEISA workbook built from the items")
	normalizeCmd.Flags().StringVar(&normKPPBC, "kppbc", "", "customs office code for the CEISA header")
	normalizeCmd.Flags().StringVar(&normVessel, "vessel", "", "vessel name for the CEISA header")

	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	src := args[0]
	file, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer file.Close()

	model := firstNonEmpty(normModel, cfg.LLM.DefaultSource)
	svc, cleanup, err := service(ctx, model)
	if err != nil {
		return describe(err)
	}
	defer cleanup()

	req := pipeline.NormalizeRequest{
		Filename:          filepath.Base(src),
		Source:            file,
		ModelSource:       model,
		BLStartNumber:     cfg.Normalize.BLStartNumber,
		BLMiddleFormat:    firstNonEmpty(normBLMiddle, cfg.Normalize.BLMiddleFormat),
		BLYear:            cfg.Normalize.BLYear,
		CustomInstruction: normInstruction,
		Enrich:            cfg.Normalize.Enrich && !normNoEnrich,
		Strategy:          firstNonEmpty(normStrategy, cfg.Enrichment.Strategy),
	}
	if normBLStart >= 0 {
		req.BLStartNumber = normBLStart
	}
	if normBLYear > 0 {
		req.BLYear = normBLYear
	}

	eventCh := make(chan domain.StreamEvent, 100)
	done := make(chan struct{})
	go func() {
		watch(eventCh)
		close(done)
	}()

	result, err := svc.Normalize(ctx, req, eventCh)
	close(eventCh)
	<-done
	if err != nil {
		return describe(err)
	}

	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if normOut == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
	} else {
		if err := os.WriteFile(normOut, body, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", normOut, err)
		}
		ui.Success("Wrote %d items to %s", result.Metadata.TotalItems, normOut)
	}

	if normCeisaOut != "" {
		manifest := ceisa.FromLineItems(result.Data, ceisa.HeaderInfo{
			KPPBC:        normKPPBC,
			SaranaAngkut: normVessel,
		})
		if err := ceisa.ExportFile(normCeisaOut, manifest); err != nil {
			return describe(err)
		}
		ui.Success("Wrote CEISA workbook to %s", normCeisaOut)
	}

	if normOut != "" || normCeisaOut != "" {
		printNormalizeSummary(result)
	}
	return nil
}

func printNormalizeSummary(result *domain.NormalizeResult) {
	ui.Section("Normalize Summary")
	rows := [][]string{
		{"File", result.Metadata.Filename},
		{"Model", result.Metadata.ModelUsed},
		{"Items", strconv.Itoa(result.Metadata.TotalItems)},
	}
	if e := result.Metadata.Enrichment; e != nil {
		rows = append(rows,
			[]string{"HS codes added", strconv.Itoa(e.HSCodesAdded)},
			[]string{"HS codes validated", strconv.Itoa(e.ValidationsRun)},
			[]string{"HS lookups failed", strconv.Itoa(e.Failed)},
		)
	}
	ui.Table([]string{"Field", "Value"}, rows)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
