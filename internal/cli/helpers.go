package cli

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
)

// createLogger configures the application logger.
// Below debug level the interactive session stays silent, since log lines
// would interleave with the redrawn frame.
func createLogger(level slog.Level, interactive bool) *slog.Logger {
	if interactive && level > slog.LevelDebug {
		return logging.NewNop()
	}
	return logging.New(level)
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBuild: func(e *domain.BuildEvent) {
			logger.Debug("Trace Built", "build_id", e.BuildID, "source", e.Source, "steps", e.Steps)
		},
		OnRender: func(e *domain.RenderEvent) {
			logger.Debug("Step Rendered", "index", e.Index, "total", e.Total, "kind", e.Kind)
		},
		OnStateChange: func(e *domain.StateChangeEvent) {
			logger.Debug("Playback State", "from", e.From, "to", e.To)
		},
		OnSpeedChange: func(e *domain.SpeedChangeEvent) {
			logger.Debug("Playback Speed", "interval", e.Interval)
		},
	}
}

// crlfWriter translates "\n" to "\r\n". A terminal in raw mode does no
// output processing, so bare line feeds would not return the carriage.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
