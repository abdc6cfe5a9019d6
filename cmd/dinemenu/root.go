package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukerupert/dinemenu/internal/config"
	"github.com/dukerupert/dinemenu/internal/logging"
)

var v = config.New()

var rootCmd = &cobra.Command{
	Use:   "dinemenu",
	Short: "Restaurant digital menu service",
	Long: `dinemenu serves restaurant menus: category tabs, search and diet filters,
scroll-synced section navigation and a local cart, driven over a JSON API
with live updates on a websocket.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initLogging)

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("menu-api-url", "", "base URL of the menu API")
	flags.String("asset-base-url", "", "base URL for relative image and video paths")
	flags.Duration("fetch-timeout", 0, "menu API request timeout")
	flags.String("db-path", "dinemenu.db", "path of the snapshot database")

	// Flags override the environment only when set.
	v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))
	v.BindPFlag(config.KeyMenuAPIURL, flags.Lookup("menu-api-url"))
	v.BindPFlag(config.KeyAssetBaseURL, flags.Lookup("asset-base-url"))
	v.BindPFlag(config.KeyFetchTimeout, flags.Lookup("fetch-timeout"))
	v.BindPFlag(config.KeyDBPath, flags.Lookup("db-path"))

	rootCmd.AddCommand(serveCmd, showCmd, snapshotsCmd)
}

func initLogging() {
	cfg := config.Load(v)
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Debug("command failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
