package main

import (
	"fmt"

	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the graph visualization",
	Long: `Outputs a Mermaid flowchart of the configured graph.
With --step, vertices and the relaxed edge are highlighted as they are at that step.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		g := cfg.BuildGraph()

		var overlay *graph.GraphOverlay
		if cmd.Flags().Changed("step") {
			index, _ := cmd.Flags().GetInt("step")
			trace, err := generateTrace(cmd, cfg)
			if err != nil {
				return err
			}
			step, err := trace.Step(index)
			if err != nil {
				return err
			}
			overlay = graph.OverlayFromStep(&step)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, cfg.StartVertex(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Int("step", 0, "Highlight the state at this step index")
}
