package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bimmerbailey/tracecompact/internal/analyzer"
	"github.com/bimmerbailey/tracecompact/internal/output"
	"github.com/bimmerbailey/tracecompact/internal/tokens"
)

var statsCmd = &cobra.Command{
	Use:   "stats [flags] [file|glob...]",
	Short: "Show traceback statistics and compaction savings",
	Long: `Display a summary of the tracebacks in one or more files: how many there
are, which fingerprints repeat, the most common exception kinds, and how many
characters and tokens compaction saves.

Examples:
  tracecompact stats worker.log
  tracecompact stats --format json 'logs/*.log'
  pytest 2>&1 | tracecompact stats --stdin --encoding o200k_base`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().Bool("stdin", false, "read input from stdin")
	statsCmd.Flags().Int("top", analyzer.DefaultTopN, "number of repeated fingerprints and exception kinds to show")
	statsCmd.Flags().String("encoding", "", "tiktoken encoding used to count tokens (default from config)")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	useStdin, _ := cmd.Flags().GetBool("stdin")
	sources, err := readSources(cmd, args, useStdin)
	if err != nil {
		return err
	}

	compactor, err := newCompactor(cfg)
	if err != nil {
		return err
	}

	encoding := cfg.TokenEncoding
	if e, _ := cmd.Flags().GetString("encoding"); e != "" {
		encoding = e
	}
	counter := tokens.New(encoding)
	if _, estimated := counter.(tokens.EstimateCounter); estimated {
		logger.Warn("Unknown token encoding, estimating tokens from length",
			zap.String("encoding", encoding))
	}

	topN, _ := cmd.Flags().GetInt("top")

	inputs := make([]analyzer.Input, 0, len(sources))
	for _, src := range sources {
		inputs = append(inputs, analyzer.Input{
			Name:    src.name,
			Text:    src.text,
			Results: compactor.Summarize(src.text),
		})
	}

	report := analyzer.New(counter, topN).Analyze(inputs...)
	return output.New(cmd.OutOrStdout(), cfg.OutputFormat()).WriteReport(report)
}
