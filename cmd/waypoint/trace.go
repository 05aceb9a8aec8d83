package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/config"
	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Print the full step trace",
	Long:  `Generates the trace of the configured graph and prints every step as text, JSON, YAML or a rendered markdown table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")

		trace, err := generateTrace(cmd, cfg)
		if err != nil {
			return err
		}
		return writeTrace(cmd.OutOrStdout(), trace, format)
	},
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.Flags().StringP("format", "f", "text", "Output format: text, json, yaml or markdown")
	traceCmd.Flags().Int("start", -1, "Source vertex (overrides config)")
}

// generateTrace runs the engine once, honoring a --start override.
func generateTrace(cmd *cobra.Command, cfg *config.Config) (*domain.Trace, error) {
	if cmd.Flags().Changed("start") {
		cfg.Start, _ = cmd.Flags().GetInt("start")
	}
	vis, err := waypoint.New(
		waypoint.WithGraph(cfg.BuildGraph()),
		waypoint.WithStart(cfg.StartVertex()),
		waypoint.WithLogger(newLogger(cfg)),
	)
	if err != nil {
		return nil, err
	}
	defer vis.Close()
	return vis.GenerateTrace()
}

func writeTrace(w io.Writer, trace *domain.Trace, format string) error {
	switch strings.ToLower(format) {
	case "text":
		for i, step := range trace.Steps {
			fmt.Fprintf(w, "%3d  %-16s line %-3d %-28s %s\n", i, step.Kind, step.SourceLine, fmt.Sprint(step.Distances), step.Message)
		}
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(trace)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(trace); err != nil {
			return err
		}
		return enc.Close()
	case "markdown", "md":
		render, err := tui.NewRenderer("")
		if err != nil {
			return err
		}
		out, err := render(tui.TraceMarkdown(trace))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	}
	return fmt.Errorf("unknown format %q (want text, json, yaml or markdown)", format)
}
