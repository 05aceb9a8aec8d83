package waypoint

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/playback"
)

// Version is the release of the waypoint library and CLI.
const Version = "0.3.0"

// Visualizer is the high-level entry point for the Waypoint library.
// It couples a fixed graph and start vertex with the trace engine and a
// playback controller, so that a front end only has to supply a renderer.
type Visualizer struct {
	graph      *domain.Graph
	start      domain.Vertex
	engine     *runtime.Engine
	controller *playback.Controller

	playbackOpts []playback.Option
	hooks        domain.LifecycleHooks
	onReset      func()
	logger       *slog.Logger
}

// Option defines a functional option for configuring the Visualizer.
type Option func(*Visualizer)

// WithGraph sets the graph to trace (default: domain.ReferenceGraph).
func WithGraph(g *domain.Graph) Option {
	return func(v *Visualizer) {
		v.graph = g
	}
}

// WithStart sets the source vertex (default: 0).
func WithStart(start domain.Vertex) Option {
	return func(v *Visualizer) {
		v.start = start
	}
}

// WithLogger sets a custom structured logger for the visualizer.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Visualizer) {
		v.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks on the playback controller.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(v *Visualizer) {
		v.hooks = hooks
	}
}

// WithRenderer sets the callback that draws each step.
func WithRenderer(fn playback.RenderFunc) Option {
	return func(v *Visualizer) {
		v.playbackOpts = append(v.playbackOpts, playback.WithRenderer(fn))
	}
}

// WithResetFunc registers a callback run before every build, ahead of the
// render of step 0. Front ends use it to clear accumulated output such as the
// message log.
func WithResetFunc(fn func()) Option {
	return func(v *Visualizer) {
		v.onReset = fn
	}
}

// WithPlaybackOptions forwards options to the playback controller
// (clock, speed range, initial interval).
func WithPlaybackOptions(opts ...playback.Option) Option {
	return func(v *Visualizer) {
		v.playbackOpts = append(v.playbackOpts, opts...)
	}
}

// New initializes a Visualizer. The graph and start vertex are validated
// eagerly, so a Visualizer that was created can always build.
func New(opts ...Option) (*Visualizer, error) {
	v := &Visualizer{}
	for _, opt := range opts {
		opt(v)
	}

	if v.graph == nil {
		v.graph = domain.ReferenceGraph()
	}
	if v.logger == nil {
		v.logger = logging.NewNop()
	}
	if err := v.graph.Validate(v.start); err != nil {
		return nil, err
	}

	v.engine = runtime.NewEngine(runtime.WithLogger(v.logger))

	controllerOpts := []playback.Option{
		playback.WithLogger(v.logger),
		playback.WithLifecycleHooks(v.hooks),
	}
	controllerOpts = append(controllerOpts, v.playbackOpts...)

	ctrl, err := playback.NewController(controllerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create playback controller: %w", err)
	}
	v.controller = ctrl

	return v, nil
}

// GenerateTrace runs the trace engine on the configured graph without
// touching playback.
func (v *Visualizer) GenerateTrace() (*domain.Trace, error) {
	return v.engine.GenerateTrace(v.graph, v.start)
}

// Build generates a fresh trace and loads it into the controller, replacing
// any previous one. Playback is paused and step 0 is rendered.
func (v *Visualizer) Build() (*domain.Trace, error) {
	trace, err := v.GenerateTrace()
	if err != nil {
		return nil, err
	}
	if v.onReset != nil {
		v.onReset()
	}
	if err := v.controller.Build(trace); err != nil {
		return nil, err
	}
	return trace, nil
}

// Controller returns the playback controller.
func (v *Visualizer) Controller() *playback.Controller {
	return v.controller
}

// Graph returns the traced graph.
func (v *Visualizer) Graph() *domain.Graph {
	return v.graph
}

// Start returns the source vertex.
func (v *Visualizer) Start() domain.Vertex {
	return v.start
}

// Close stops any pending playback tick.
func (v *Visualizer) Close() {
	v.controller.Close()
}
