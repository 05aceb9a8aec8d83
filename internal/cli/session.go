package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/config"
	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/playback"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Config *config.Config

	// Autoplay plays the trace to the end without reading keys, then returns.
	Autoplay bool
	// Plain disables colors and in-place redraws.
	Plain bool
	// Quiet suppresses the banner and system messages.
	Quiet bool

	In     io.Reader
	Out    io.Writer
	Logger *slog.Logger

	// Playback holds extra controller options, appended after the configured ones.
	Playback []playback.Option
}

// session is one interactive or autoplay run of the visualizer.
type session struct {
	opts    RunOptions
	out     io.Writer
	vis     *waypoint.Visualizer
	printer *tui.StepPrinter
	speed   float64
	stopped chan struct{}
}

// RunSession builds the trace and plays it on the terminal until the user
// quits, the trace ends (autoplay) or ctx is cancelled.
func RunSession(ctx context.Context, opts RunOptions) error {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = createLogger(opts.Config.LogLevel(), !opts.Autoplay)
	}

	s := &session{
		opts:    opts,
		out:     opts.Out,
		speed:   opts.Config.Playback.Speed,
		stopped: make(chan struct{}, 1),
	}

	if !opts.Autoplay {
		if f, ok := opts.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			fd := int(f.Fd())
			oldState, err := term.MakeRaw(fd)
			if err != nil {
				return fmt.Errorf("failed to enter raw mode: %w", err)
			}
			defer func() { _ = term.Restore(fd, oldState) }()
			s.out = crlfWriter{w: opts.Out}
		}
	}

	if !opts.Quiet {
		tui.PrintBanner(s.out, waypoint.Version)
	}

	if err := s.setup(); err != nil {
		return err
	}
	defer s.vis.Close()

	if _, err := s.vis.Build(); err != nil {
		return fmt.Errorf("failed to build trace: %w", err)
	}

	if opts.Autoplay {
		return s.autoplay(ctx)
	}
	return s.interactive(ctx)
}

func (s *session) setup() error {
	var printerOpts []tui.PrinterOption
	if s.opts.Plain {
		printerOpts = append(printerOpts, tui.WithProfile(termenv.Ascii))
	} else if !s.opts.Autoplay {
		printerOpts = append(printerOpts, tui.WithClearScreen(true))
	}
	s.printer = tui.NewStepPrinter(s.out, printerOpts...)

	playOpts, err := s.opts.Config.PlaybackOptions()
	if err != nil {
		return err
	}
	playOpts = append(playOpts, s.opts.Playback...)

	hooks := domain.CombineHooks(
		s.printer.Hooks(),
		createDebugHooks(s.opts.Logger),
		domain.LifecycleHooks{
			OnStateChange: func(e *domain.StateChangeEvent) {
				if e.From == domain.StatePlaying && e.To == domain.StatePaused {
					select {
					case s.stopped <- struct{}{}:
					default:
					}
				}
			},
		},
	)

	vis, err := waypoint.New(
		waypoint.WithGraph(s.opts.Config.BuildGraph()),
		waypoint.WithStart(s.opts.Config.StartVertex()),
		waypoint.WithLogger(s.opts.Logger),
		waypoint.WithLifecycleHooks(hooks),
		waypoint.WithRenderer(s.printer.Render),
		waypoint.WithResetFunc(s.printer.Reset),
		waypoint.WithPlaybackOptions(playOpts...),
	)
	if err != nil {
		return fmt.Errorf("error initializing waypoint: %w", err)
	}
	s.vis = vis
	s.printer.SetInterval(vis.Controller().Interval())
	return nil
}

func (s *session) autoplay(ctx context.Context) error {
	ctrl := s.vis.Controller()
	if err := ctrl.Play(); err != nil {
		return err
	}

	select {
	case <-s.stopped:
	case <-ctx.Done():
		ctrl.Pause()
		return nil
	}

	if !s.opts.Quiet {
		_, total := ctrl.Position()
		printSystemMessage(s.out, "Finished after %d steps.", total)
	}
	return nil
}

func (s *session) interactive(ctx context.Context) error {
	input := make(chan []byte)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := s.opts.In.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case input <- chunk:
				case <-done:
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	if !s.opts.Quiet {
		printSystemMessage(s.out, "%s", keyHelp)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		case chunk := <-input:
			for _, cmd := range ParseKeys(chunk) {
				quit, err := s.apply(cmd)
				if err != nil {
					s.opts.Logger.Warn("Command failed", "err", err)
				}
				if quit {
					return nil
				}
			}
		}
	}
}

// apply runs one command against the controller and reports whether the
// session should end.
func (s *session) apply(cmd Command) (bool, error) {
	ctrl := s.vis.Controller()
	switch cmd {
	case CmdForward:
		ctrl.StepForward()
	case CmdBackward:
		ctrl.StepBackward()
	case CmdToggle:
		_, err := ctrl.Toggle()
		return false, err
	case CmdFaster:
		return false, s.setSpeed(s.speed + 1)
	case CmdSlower:
		return false, s.setSpeed(s.speed - 1)
	case CmdRebuild:
		_, err := s.vis.Build()
		return false, err
	case CmdHelp:
		printSystemMessage(s.out, "%s", keyHelp)
	case CmdQuit:
		return true, nil
	}
	return false, nil
}

func (s *session) setSpeed(multiplier float64) error {
	cfg := s.opts.Config.Playback
	multiplier = max(cfg.MinSpeed, min(cfg.MaxSpeed, multiplier))
	if err := s.vis.Controller().SetSpeed(multiplier); err != nil {
		return err
	}
	s.speed = multiplier
	return nil
}
