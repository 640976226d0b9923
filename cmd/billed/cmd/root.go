// Package cmd provides CLI commands for billed.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pigeonworks-llc/billed/pkg/config"
	"github.com/pigeonworks-llc/billed/pkg/pathutil"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "billed",
	Short: "Expense report front end for employees",
	Long: `billed serves the employee side of an expense report application:
the bills page, receipt previews and the new bill form.

It supports:
- Serving the pages and a JSON bill API
- Reading bills from the local store or a remote bill API
- Seeding the local store with fixture bills
- Reporting page visit statistics

Example:
  billed seed
  billed serve --port 8080
  billed stats`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(statsCmd)
}

// loadConfig loads configuration and resolves data paths.
func loadConfig(required ...string) (*config.Config, *pathutil.PathResolver, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if debug {
		cfg.Debug = true
	}

	if err := cfg.Validate(required...); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	paths := pathutil.New(pathutil.Config{
		DataDir:     cfg.Storage.DataDir,
		StorePath:   cfg.Storage.StorePath,
		HistoryPath: cfg.Storage.HistoryPath,
	})
	if err := paths.EnsureDirs(); err != nil {
		return nil, nil, err
	}
	return cfg, paths, nil
}
