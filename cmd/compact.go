package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bimmerbailey/tracecompact/internal/analyzer"
	"github.com/bimmerbailey/tracecompact/internal/config"
	"github.com/bimmerbailey/tracecompact/internal/output"
	"github.com/bimmerbailey/tracecompact/internal/tokens"
	"github.com/bimmerbailey/tracecompact/internal/traceback"
)

// errNoInput is returned when compact has nothing to read.
var errNoInput = errors.New("no input: pass files or --stdin")

var compactCmd = &cobra.Command{
	Use:   "compact [flags] [file|glob...]",
	Short: "Replace tracebacks with compact summaries",
	Long: `Read text from files or stdin, replace every Python traceback with a compact
summary, and write the result to stdout. Text without a traceback is written
back unchanged.

Examples:
  pytest 2>&1 | tracecompact compact --stdin
  tracecompact compact --project-root ~/src/app --max-frames 3 crash.log
  tracecompact compact --format json 'logs/*.log'
  tracecompact compact --report --stdin < prompt.txt`,
	RunE: runCompact,
}

func init() {
	compactCmd.Flags().Bool("stdin", false, "read input from stdin")
	compactCmd.Flags().Bool("report", false, "print a one-line savings summary to stderr")

	rootCmd.AddCommand(compactCmd)
}

// source is one named input.
type source struct {
	name string
	text string
}

func runCompact(cmd *cobra.Command, args []string) error {
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

	docs := make([]output.Document, 0, len(sources))
	inputs := make([]analyzer.Input, 0, len(sources))
	for _, src := range sources {
		results := compactor.Summarize(src.text)
		logger.Debug("Compacted input",
			zap.String("source", src.name),
			zap.Int("tracebacks", len(results)))

		doc := output.NewDocument(src.text, results)
		if len(sources) > 1 {
			doc.Source = src.name
		}
		docs = append(docs, doc)
		inputs = append(inputs, analyzer.Input{Name: src.name, Text: src.text, Results: results})
	}

	writer := output.New(cmd.OutOrStdout(), cfg.OutputFormat()).WithColor(cfg.ColorMode())
	if err := writer.WriteDocuments(docs); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if report, _ := cmd.Flags().GetBool("report"); report {
		r := analyzer.New(tokens.New(cfg.TokenEncoding), 0).Analyze(inputs...)
		fmt.Fprintln(cmd.ErrOrStderr(), output.SavingsLine(r))
	}

	return nil
}

func newCompactor(cfg *config.Config) (*traceback.Compactor, error) {
	opts := append(cfg.CompactorOptions(), traceback.WithLogger(logger))
	c, err := traceback.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create compactor: %w", err)
	}
	return c, nil
}

// readSources reads the named files, or stdin when asked to or when stdin
// is piped and no files are named.
func readSources(cmd *cobra.Command, args []string, useStdin bool) ([]source, error) {
	if len(args) > 0 {
		files, err := config.ExpandGlobs(args)
		if err != nil {
			return nil, err
		}
		sources := make([]source, 0, len(files))
		for _, file := range files {
			data, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", file, err)
			}
			sources = append(sources, source{name: file, text: string(data)})
		}
		return sources, nil
	}

	in := cmd.InOrStdin()
	if !useStdin && !isPiped(in) {
		return nil, errNoInput
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return []source{{name: "-", text: string(data)}}, nil
}

// isPiped reports whether r is a file that is not a terminal.
func isPiped(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && !output.IsTerminal(f)
}
