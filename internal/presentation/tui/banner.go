package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Waypoint banner to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	// Green to blue, the visited and current colors.
	rows := []struct{ text, color string }{
		{` __      __                      _       _   `, "#4caf50"},
		{` \ \    / /_ _ _  _ _ __  ___ (_)_ _ | |_ `, "#3f9f7a"},
		{`  \ \/\/ / _' | || | '_ \/ _ \| | ' \|  _|`, "#34809a"},
		{`   \_/\_/\__,_|\_, | .__/\___/|_|_||_|\__|`, "#2c66a0"},
		{`               |__/|_|                    `, "#264f78"},
	}

	fmt.Fprintln(w)
	for _, r := range rows {
		fmt.Fprintln(w, out.String(r.text).Foreground(out.Color(r.color)))
	}
	fmt.Fprintln(w, out.String("  shortest paths, one step at a time  v"+version).Foreground(out.Color("#666666")))
	fmt.Fprintln(w)
}
