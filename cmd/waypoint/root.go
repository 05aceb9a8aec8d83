package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/waypoint/internal/config"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "waypoint",
	Short: "Waypoint replays Dijkstra's shortest-path algorithm one step at a time",
	Long: `Waypoint records every state transition of Dijkstra's single-source
shortest-path algorithm and plays the recording back: in the terminal,
over HTTP with live Server-Sent Events, or as MCP tools.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "waypoint.yaml", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides config)")
}

// loadConfig reads the config named by --config and applies --log-level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		if _, err := logging.ParseLevel(level); err != nil {
			return nil, err
		}
		cfg.Log.Level = level
	}
	return cfg, nil
}

// newLogger writes to Stderr so Stdout stays clean for traces and MCP traffic.
func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(cfg.LogLevel())
}
