package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bimmerbailey/tracecompact/internal/hook"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Compact tracebacks in agent hook events",
	Long: `Read one hook event as JSON from stdin and, when compaction changes the text
it carries, write the replacement as JSON to stdout.

Handled events:
  UserPromptSubmit   the submitted prompt
  PostToolUse        stdout and stderr of the tools listed in hook.tools

Every other event, and any input that is not a hook event, passes through
with no output and exit status 0.

Example hook command:
  tracecompact hook --project-root "$CLAUDE_PROJECT_DIR"`,
	Args: cobra.NoArgs,
	RunE: runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func runHook(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	adapter := hook.NewAdapter(cfg.CompactorOptions(), cfg.ProjectRoot, cfg.Hook.Tools, logger)
	return adapter.Run(cmd.InOrStdin(), cmd.OutOrStdout())
}
