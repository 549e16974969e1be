package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vslauncher/launcher/internal/config"
	"github.com/vslauncher/launcher/internal/domain"
)

// Version is set via -ldflags
var Version = "dev"

// cliState carries global flags and the application built for the running command
type cliState struct {
	dataDir  string
	logLevel string

	app *launcherApp
}

// newRootCmd builds the command tree. The caller closes state after Execute,
// since post-run hooks are skipped when a command fails.
func newRootCmd(state *cliState) *cobra.Command {
	root := &cobra.Command{
		Use:   "vslauncher",
		Short: "Install Vintage Story versions and run isolated game instances",
		Long: titleStyle.Render("vslauncher") + mutedStyle.Render(" - Vintage Story version manager and launcher") + `

Downloads game versions from the official catalog into a shared version
cache, manages instances (profiles) with their own mods folder and
launches the game for an instance.

` + mutedStyle.Render("Examples:") + `
  vslauncher versions --channel stable        List stable releases
  vslauncher download 1.20.11                 Install a version
  vslauncher instances create survival 1.20.11
  vslauncher launch survival
  vslauncher serve                            Start the local HTTP API`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if state.dataDir != "" {
				cfg.Storage.DataDir = state.dataDir
			}
			if state.logLevel != "" {
				cfg.Logging.Level = state.logLevel
				if err := config.Validate(cfg); err != nil {
					return err
				}
			}

			app, err := newLauncherApp(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			state.app = app
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return state.close()
		},
	}

	root.PersistentFlags().StringVar(&state.dataDir, "data-dir", "", "data root (default $DATA_DIR or ~/.local/share/vs_launcher)")
	root.PersistentFlags().StringVar(&state.logLevel, "log-level", "", "log level: debug, info, warn, error (default $LOG_LEVEL)")

	root.AddCommand(
		newVersionsCmd(state),
		newDownloadCmd(state),
		newInstancesCmd(state),
		newLaunchCmd(state),
		newModsCmd(state),
		newServeCmd(state),
	)

	return root
}

func (s *cliState) close() error {
	if s.app == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.app.Close(ctx)
	s.app = nil
	return err
}

// formatError renders an error for the terminal, using the AppError code when there is one
func formatError(err error) string {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		msg := errorStyle.Render("Error: ") + appErr.Message + mutedStyle.Render(" ("+appErr.Code+")")
		if appErr.Cause != nil {
			msg += "\n  " + mutedStyle.Render(appErr.Cause.Error())
		}
		return msg
	}
	return errorStyle.Render("Error: ") + fmt.Sprint(err)
}
