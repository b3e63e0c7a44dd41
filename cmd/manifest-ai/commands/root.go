package commands

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Atarvano/ManifestAi/cmd/manifest-ai/ui"
	"github.com/Atarvano/ManifestAi/internal/config"
	"github.com/Atarvano/ManifestAi/internal/metrics"
	"github.com/Atarvano/ManifestAi/internal/observability"
)

var (
	cfgFile     string
	verbose     bool
	noColor     bool
	metricsFile string

	cfg    *config.Config
	logger *observability.Logger
)

var rootCmd = &cobra.Command{
	Use:   "manifest-ai",
	Short: "Normalize cargo manifests and fill HS codes with AI",
	Long: `manifest-ai turns arbitrary cargo manifest spreadsheets into a canonical
line-item list, assigns missing B/L numbers, classifies goods into HS tariff
codes and reads or writes the seven-sheet CEISA manifest workbook.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load() // .env is optional

		ui.InitUI(noColor, verbose)

		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if verbose {
			loaded.Observability.LogLevel = "debug"
		}
		if metricsFile != "" {
			loaded.Observability.MetricsFile = metricsFile
		}
		cfg = loaded

		logger = observability.NewLogger(observability.LogConfig{
			Level:       cfg.Observability.LogLevel,
			Format:      cfg.Observability.LogFormat,
			Output:      os.Stderr,
			ServiceName: "manifest-ai",
		})
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil || cfg.Observability.MetricsFile == "" {
			return nil
		}
		return metrics.WriteFile(cfg.Observability.MetricsFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
