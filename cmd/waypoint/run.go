package main

import (
	"context"

	"github.com/aretw0/waypoint/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play the trace interactively in the terminal",
	Long: `Builds the trace of the configured graph and renders it step by step.

Keys: n/→ next, p/← previous, space play/pause, +/- speed, b rebuild, q quit.
With --autoplay the trace plays to the end without reading keys.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		autoplay, _ := cmd.Flags().GetBool("autoplay")
		plain, _ := cmd.Flags().GetBool("plain")
		quiet, _ := cmd.Flags().GetBool("quiet")
		if cmd.Flags().Changed("speed") {
			cfg.Playback.Speed, _ = cmd.Flags().GetFloat64("speed")
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.RunSession(sigCtx, cli.RunOptions{
			Config:   cfg,
			Autoplay: autoplay,
			Plain:    plain,
			Quiet:    quiet,
			In:       cmd.InOrStdin(),
			Out:      cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("autoplay", false, "Play to the end without reading keys, then exit")
	runCmd.Flags().Bool("plain", false, "Disable colors and in-place redraws")
	runCmd.Flags().BoolP("quiet", "q", false, "Suppress the banner and system messages")
	runCmd.Flags().Float64P("speed", "s", 0, "Speed multiplier (overrides config)")

	// Make 'run' the default if no command is provided
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
