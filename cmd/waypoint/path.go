package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/spf13/cobra"
)

var pathCmd = &cobra.Command{
	Use:   "path [vertex...]",
	Short: "Print shortest paths from the source",
	Long:  `Prints the shortest path and distance from the source to each given vertex, or to every vertex when none is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		trace, err := generateTrace(cmd, cfg)
		if err != nil {
			return err
		}

		targets := trace.Final().Vertices()
		if len(args) > 0 {
			targets = targets[:0]
			for _, arg := range args {
				v, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid vertex %q: %w", arg, err)
				}
				targets = append(targets, domain.Vertex(v))
			}
		}

		w := cmd.OutOrStdout()
		final := trace.Final()
		for _, v := range targets {
			path, err := trace.PathTo(v)
			switch {
			case errors.Is(err, domain.ErrUnreachable):
				fmt.Fprintf(w, "%d  unreachable\n", v)
			case err != nil:
				return err
			default:
				fmt.Fprintf(w, "%d  %-4s %s\n", v, final.Get(v), joinPath(path))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathCmd)
	pathCmd.Flags().Int("start", -1, "Source vertex (overrides config)")
}

func joinPath(path []domain.Vertex) string {
	parts := make([]string, len(path))
	for i, v := range path {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, " → ")
}
