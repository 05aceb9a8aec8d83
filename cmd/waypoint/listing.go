package main

import (
	"fmt"

	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var listingCmd = &cobra.Command{
	Use:   "listing",
	Short: "Show the reference listing that steps point into",
	RunE: func(cmd *cobra.Command, args []string) error {
		line, _ := cmd.Flags().GetInt("line")
		style, _ := cmd.Flags().GetString("style")

		render, err := tui.NewRenderer(style)
		if err != nil {
			return err
		}
		out, err := render(tui.ListingMarkdown(line))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listingCmd)
	listingCmd.Flags().IntP("line", "l", 0, "Mark this line")
	listingCmd.Flags().String("style", "", "Glamour style (dark, light, notty); detected when empty")
}
