// Package main is the entry point for the sovereign CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flemzord/sovereign/pkg/app"
	"github.com/spf13/cobra"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// closeTimeout bounds span flushing and gateway shutdown on exit.
const closeTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sovereign",
		Short:         "Chat with a self-hosted model through a bounded, compressible session",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	root.AddCommand(
		versionCmd(),
		chatCmd(),
		planCmd(),
		pingCmd(),
		sessionsCmd(),
		configCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sovereign %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// buildRuntime loads the configuration named by --config and builds the
// runtime. Logs go to the command's error stream.
func buildRuntime(cmd *cobra.Command) (*app.Runtime, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	return app.Build(cmd.Context(), app.RunParams{
		ConfigPath: cfgPath,
		Version:    version,
		Commit:     commit,
		Date:       date,
		Stderr:     cmd.ErrOrStderr(),
	})
}

// closeRuntime releases rt with a fresh deadline, since the command
// context is usually cancelled by then.
func closeRuntime(rt *app.Runtime) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := rt.Close(ctx); err != nil {
		rt.Logger.Warn("shutdown incomplete", "error", err)
	}
}
