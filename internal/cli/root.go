// Package cli defines Cobra command definitions for the nexus CLI.
// This file contains the root command, shared bootstrap, and help output.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nexus-ai/nexus/internal/api"
	"github.com/nexus-ai/nexus/internal/config"
	"github.com/nexus-ai/nexus/internal/history"
	"github.com/nexus-ai/nexus/internal/log"
	"github.com/nexus-ai/nexus/internal/store"
	"github.com/nexus-ai/nexus/internal/tui"
	"github.com/nexus-ai/nexus/internal/tui/app"
)

var (
	demoFlag   bool
	serverFlag string
	version    = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "nexus",
	Short: "Terminal client for the Nexus AI chatbot platform",
	Long: `Nexus is a terminal client for the Nexus AI chatbot platform.
It drives the tenant chat widget, manages your token balance, and shows
the account dashboard with captured leads.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is provided, launch TUI if TTY, show help otherwise
		if !tui.IsTTY() {
			return cmd.Help()
		}

		env, err := setup(true)
		if err != nil {
			return err
		}
		defer env.close()

		manager, err := env.manager()
		if err != nil {
			return err
		}
		manager.Init()

		return tui.Run(app.New(env.cfg, env.client, manager, env.state, env.archive))
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cliEnv bundles the wired-up client pieces every command needs.
type cliEnv struct {
	dir     string
	cfg     *config.Config
	client  *api.Client
	state   store.Store
	events  *log.Logger
	archive *history.Store
}

func (e *cliEnv) close() {
	if e.archive != nil {
		if err := e.archive.Close(); err != nil {
			log.Diag.Warn().Err(err).Msg("failed to close history database")
		}
	}
}

// setup loads config from the home directory, applies flag overrides, and
// wires the API client, state store, event log, and local archive.
// quiet suppresses stderr diagnostics while the TUI owns the terminal.
func setup(quiet bool) (*cliEnv, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		if dir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("resolving base directory: %w", err)
		}
	}

	cfg, err := config.ReadConfig(dir)
	if err != nil {
		return nil, err
	}
	if demoFlag {
		cfg.DemoMode = true
	}
	if serverFlag != "" {
		cfg.Server.BaseURL = serverFlag
	}

	log.SetupDiag(dir, cfg.LogLevel, quiet)

	state, err := store.NewFileStore(dir)
	if err != nil {
		return nil, err
	}

	events, err := log.NewLogger(dir)
	if err != nil {
		return nil, err
	}

	// The archive is best-effort: a broken local database disables the
	// offline cache but never blocks the client.
	archive, err := history.NewStore(historyDBPath(dir))
	if err != nil {
		log.Diag.Warn().Err(err).Msg("local history unavailable")
		archive = nil
	}

	return &cliEnv{
		dir:     dir,
		cfg:     cfg,
		client:  api.NewClient(cfg.Server.BaseURL, cfg.Timeout()),
		state:   state,
		events:  events,
		archive: archive,
	}, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&demoFlag, "demo", false, "Run the chat widget in demo mode (no token accounting)")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Override the backend base URL")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(resetPasswordCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(leadsCmd)
	rootCmd.AddCommand(buyCmd)
	rootCmd.AddCommand(integrationsCmd)
	rootCmd.AddCommand(historyCmd)
}
