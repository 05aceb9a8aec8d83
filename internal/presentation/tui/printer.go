package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/muesli/termenv"
)

// Palette mirrors the graph overlay colors.
const (
	colorVisited  = "#4caf50"
	colorCurrent  = "#264f78"
	colorNeighbor = "#ff69b4"
	colorMuted    = "#666666"
	colorLine     = "#ffd54f"
)

// StepPrinter draws steps on a terminal: the distance array, the message log
// and a window of the reference listing around the executing line.
// A footer with the step counter and playback state is drawn by its hooks.
type StepPrinter struct {
	mu  sync.Mutex
	out *termenv.Output

	lines   []string
	window  int
	log     []string
	logSize int
	clear   bool

	state    domain.PlayState
	interval time.Duration
}

// PrinterOption configures a StepPrinter.
type PrinterOption func(*StepPrinter)

// WithProfile forces a color profile (termenv.Ascii disables colors).
func WithProfile(p termenv.Profile) PrinterOption {
	return func(s *StepPrinter) {
		s.out = termenv.NewOutput(s.out.Writer(), termenv.WithProfile(p))
	}
}

// WithClearScreen redraws in place instead of appending frames.
func WithClearScreen(clear bool) PrinterOption {
	return func(s *StepPrinter) {
		s.clear = clear
	}
}

// WithLogSize bounds how many log messages are shown.
func WithLogSize(n int) PrinterOption {
	return func(s *StepPrinter) {
		s.logSize = n
	}
}

// NewStepPrinter creates a printer writing to w.
func NewStepPrinter(w io.Writer, opts ...PrinterOption) *StepPrinter {
	s := &StepPrinter{
		out:     termenv.NewOutput(w),
		lines:   runtime.ListingLines(),
		window:  3,
		logSize: 6,
		state:   domain.StatePaused,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset clears the message log. It is meant to run before a rebuild.
func (s *StepPrinter) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = nil
}

// Render draws one step. It matches playback.RenderFunc.
func (s *StepPrinter) Render(step domain.Step) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log = append(s.log, step.Message)
	if s.logSize > 0 && len(s.log) > s.logSize {
		s.log = s.log[len(s.log)-s.logSize:]
	}

	if s.clear {
		s.out.ClearScreen()
		s.out.MoveCursor(1, 1)
	}

	var sb strings.Builder
	sb.WriteString(s.style(string(step.Kind), "").Bold().String())
	sb.WriteString("\n\n")
	sb.WriteString(s.distances(step))
	sb.WriteString("\n\n")
	for _, msg := range s.log {
		sb.WriteString(s.style("> ", colorMuted).String())
		sb.WriteString(msg)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(s.listing(step.SourceLine))
	fmt.Fprint(s.out, sb.String())
}

// Hooks returns lifecycle hooks that keep the footer current.
func (s *StepPrinter) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRender: func(e *domain.RenderEvent) {
			s.mu.Lock()
			defer s.mu.Unlock()
			fmt.Fprintf(s.out, "\n%s  %s  %s\n",
				s.style(fmt.Sprintf("%d/%d", e.Index+1, e.Total), "").Bold(),
				s.style(string(s.state), colorMuted),
				s.style(s.interval.String(), colorMuted),
			)
		},
		OnStateChange: func(e *domain.StateChangeEvent) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.state = e.To
		},
		OnSpeedChange: func(e *domain.SpeedChangeEvent) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.interval = e.Interval
		},
	}
}

// SetInterval seeds the interval shown before any speed change.
func (s *StepPrinter) SetInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = d
}

// distances draws the array widget: one cell per vertex, colored by the same
// precedence as the graph overlay (the neighbor is not highlighted here).
func (s *StepPrinter) distances(step domain.Step) string {
	overlay := graph.OverlayFromStep(&step)
	overlay.Neighbor = nil

	var idx, val []string
	for _, v := range step.Distances.Vertices() {
		cellIdx := fmt.Sprintf("%4d", v)
		cellVal := fmt.Sprintf("%4s", step.Distances[v])
		switch overlay.Classify(v) {
		case graph.ClassVisited:
			cellVal = s.style(cellVal, colorVisited).String()
		case graph.ClassCurrent:
			cellVal = s.style(cellVal, "").Background(s.out.Color(colorCurrent)).String()
		}
		idx = append(idx, cellIdx)
		val = append(val, cellVal)
	}
	if len(idx) == 0 {
		return s.style("(no distances yet)", colorMuted).String()
	}
	return s.style(strings.Join(idx, " "), colorMuted).String() + "\n" + strings.Join(val, " ")
}

// listing draws the lines around the executing one with a gutter marker.
func (s *StepPrinter) listing(line int) string {
	if line < 1 || line > len(s.lines) {
		return ""
	}
	from := max(1, line-s.window)
	to := min(len(s.lines), line+s.window)

	var sb strings.Builder
	for n := from; n <= to; n++ {
		text := fmt.Sprintf("%3d  %s", n, s.lines[n-1])
		if n == line {
			sb.WriteString(s.style("▶", colorLine).String())
			sb.WriteString(s.style(text, colorLine).Bold().String())
		} else {
			sb.WriteString(" ")
			sb.WriteString(s.style(text, colorMuted).String())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (s *StepPrinter) style(text, color string) termenv.Style {
	st := s.out.String(text)
	if color != "" {
		st = st.Foreground(s.out.Color(color))
	}
	return st
}
