package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-realloc-api/internal/bootstrap"
	"github.com/noah-isme/faculty-realloc-api/pkg/config"
	"github.com/noah-isme/faculty-realloc-api/pkg/logger"
)

// cliApp holds what every command shares. The service container is only
// built by commands that need the database.
type cliApp struct {
	cfg    *config.Config
	logger *zap.Logger
	deps   *bootstrap.Container
}

func (a *cliApp) container() (*bootstrap.Container, error) {
	if a.deps != nil {
		return a.deps, nil
	}
	deps, err := bootstrap.New(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.deps = deps
	return deps, nil
}

func (a *cliApp) close() {
	if a.deps != nil {
		_ = a.deps.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func newRootCmd() *cobra.Command {
	app := &cliApp{}
	rootCmd := &cobra.Command{
		Use:           "realloc-cli",
		Short:         "Operator tooling for faculty substitute reallocation",
		Long:          `Re-trigger reallocation runs, inspect suggestions, apply migrations and mint operator tokens.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logr, err := logger.New(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			app.cfg, app.logger = cfg, logr
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.close()
		},
	}

	rootCmd.AddCommand(generateCmd(app))
	rootCmd.AddCommand(listCmd(app))
	rootCmd.AddCommand(migrateCmd(app))
	rootCmd.AddCommand(tokenCmd(app))
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
