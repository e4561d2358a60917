package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/tracecompact/internal/config"
	"github.com/bimmerbailey/tracecompact/internal/output"
	"github.com/bimmerbailey/tracecompact/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <file>",
	Short: "Follow a file and compact tracebacks as they are written",
	Long: `Follow a file like "tail -f" and write its new lines to stdout, replacing
each traceback with its summary as soon as the traceback is complete.

Examples:
  tracecompact watch /var/log/worker.log
  tracecompact watch --from-start --project-root ~/src/app app.log
  tracecompact watch --follow-rotate --rotate-timeout 30s /var/log/worker.log`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Bool("from-start", false, "compact the existing content before following")
	watchCmd.Flags().Bool("no-follow", false, "compact the current content and exit")
	watchCmd.Flags().Bool("follow-rotate", false, "keep following when the file is rotated")
	watchCmd.Flags().String("rotate-timeout", "", "how long to wait for a rotated file to reappear (default from config, 10s)")
	watchCmd.Flags().String("idle-flush", "", "release a partial traceback after this much quiet (e.g. 5s)")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts, err := watchOptions(cmd, cfg, args[0])
	if err != nil {
		return err
	}

	compactor, err := newCompactor(cfg)
	if err != nil {
		return err
	}

	writer := output.New(cmd.OutOrStdout(), output.FormatText).WithColor(cfg.ColorMode())
	opts.OutputFunc = writer.WriteChunk
	opts.Logger = logger

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = watch.New(compactor, opts).Run(ctx)
	if errors.Is(err, watch.ErrFileRotated) {
		return fmt.Errorf("%w; use --follow-rotate to follow through rotations", err)
	}
	return err
}

func watchOptions(cmd *cobra.Command, cfg *config.Config, path string) (watch.Options, error) {
	fromStart, _ := cmd.Flags().GetBool("from-start")
	noFollow, _ := cmd.Flags().GetBool("no-follow")
	followRotate, _ := cmd.Flags().GetBool("follow-rotate")

	opts := watch.Options{
		FilePath:      path,
		FromStart:     fromStart,
		Follow:        !noFollow,
		FollowRotate:  followRotate,
		RotateTimeout: cfg.RotateTimeout(),
	}

	if s, _ := cmd.Flags().GetString("rotate-timeout"); s != "" {
		d, err := config.ParseDuration(s)
		if err != nil {
			return opts, fmt.Errorf("invalid --rotate-timeout: %w", err)
		}
		opts.RotateTimeout = d
	}

	if s, _ := cmd.Flags().GetString("idle-flush"); s != "" {
		d, err := config.ParseDuration(s)
		if err != nil {
			return opts, fmt.Errorf("invalid --idle-flush: %w", err)
		}
		opts.IdleFlush = d
	}

	return opts, nil
}
