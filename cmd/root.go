package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bimmerbailey/tracecompact/internal/config"
	"github.com/bimmerbailey/tracecompact/internal/traceback"
)

var (
	cfgFile string
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "tracecompact",
	Short: "Compact Python tracebacks before they reach an LLM",
	Long: `Tracecompact finds Python tracebacks in text and replaces each one with a
short summary: the exception, the few frames most likely to matter, and a
fingerprint that identifies the error across runs.

Text outside tracebacks is passed through unchanged, so tracecompact works as
a filter on logs, test output, and prompts.

Examples:
  pytest 2>&1 | tracecompact compact --stdin --project-root .
  tracecompact compact --max-frames 3 app.log
  tracecompact stats 'logs/*.log'
  tracecompact watch --follow-rotate /var/log/worker.log`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if viper.GetBool("verbose") {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("Using config file", zap.String("path", used))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute is called by main.main(). It runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tracecompact.yaml)")
	flags.StringP("format", "f", config.DefaultFormat, "output format (text, json, yaml)")
	flags.BoolP("verbose", "v", false, "enable debug logging on stderr")
	flags.String("color", config.DefaultColor, "highlight summaries (auto, always, never)")
	flags.StringP("project-root", "p", "", "prefer frames under this path")
	flags.IntP("max-frames", "n", traceback.DefaultMaxFrames, "maximum frames kept per traceback")
	flags.Bool("redact", false, "redact secrets in exception messages and source lines")

	_ = viper.BindPFlag("format", flags.Lookup("format"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("color", flags.Lookup("color"))
	_ = viper.BindPFlag("project_root", flags.Lookup("project-root"))
	_ = viper.BindPFlag("max_frames", flags.Lookup("max-frames"))
	_ = viper.BindPFlag("redaction.enabled", flags.Lookup("redact"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".tracecompact")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TRACECOMPACT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}

// loadConfig returns the validated configuration from the global viper
// instance.
func loadConfig() (*config.Config, error) {
	config.SetDefaults(viper.GetViper())
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
