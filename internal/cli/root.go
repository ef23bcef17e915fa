package cli

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/open-code-labs/open-code/internal/branding"
	"github.com/open-code-labs/open-code/internal/config"
	"github.com/open-code-labs/open-code/internal/errs"
	"github.com/open-code-labs/open-code/internal/logging"
	"github.com/open-code-labs/open-code/internal/ui"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	rootCwd      string
	rootLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` tracks components copied out of upstream git repositories,
detects local modifications, resyncs them safely and contributes changes back
as pull requests.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()

		level := rootLogLevel
		if level == "" {
			level = config.LogLevel()
		}
		lvl, err := logging.ParseLevel(level)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		logger := logging.New(cmd.ErrOrStderr(), lvl)
		cmd.SetContext(logger.WithContext(ctx))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootCwd, "cwd", "c", "", "Project directory (defaults to the current directory)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Diagnostic log level (trace, debug, info, warn, error)")
}

// Execute runs the root command with build info injected via ldflags.
// Interrupts cancel the command context.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// reportError prints err with a hint for the kinds a user can act on.
func reportError(w io.Writer, err error) {
	p := ui.New(w)
	p.Error("%v", err)
	switch errs.KindOf(err) {
	case errs.ConfigMissing:
		p.Info("Run %s to create a configuration.", p.Highlight(branding.CLIName()+" init"))
	case errs.Auth:
		p.Info("Run %s or %s.", p.Highlight("gh auth login"),
			p.Highlight(branding.CLIName()+" config set "+config.KeyGitHubToken+" <token>"))
	}
}
