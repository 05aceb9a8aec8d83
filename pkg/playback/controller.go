package playback

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/google/uuid"
)

// RenderFunc draws a step. It receives a private copy and runs on the
// controller's control flow, so it must not call back into the Controller.
type RenderFunc func(domain.Step)

// Controller replays a trace: it owns the current index, the paused/playing
// state and the single autoplay timer.
//
// Every index change invokes the renderer exactly once. Navigation past
// either end is a no-op, not an error.
type Controller struct {
	mu sync.Mutex

	trace   *domain.Trace
	buildID string
	index   int
	state   domain.PlayState

	speed    SpeedRange
	interval time.Duration

	clock      Clock
	timer      Timer
	generation uint64 // bumped on every cancel; stale ticks compare unequal

	render RenderFunc
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithRenderer sets the callback invoked on every index change.
func WithRenderer(fn RenderFunc) Option {
	return func(c *Controller) {
		c.render = fn
	}
}

// WithClock replaces the timer source (tests use a manual clock).
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithSpeedRange sets the slider bounds and the base interval.
func WithSpeedRange(r SpeedRange) Option {
	return func(c *Controller) {
		c.speed = r
	}
}

// WithInterval sets the initial step interval directly.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		c.interval = d
	}
}

// NewController creates a paused controller with no trace loaded.
func NewController(opts ...Option) (*Controller, error) {
	c := &Controller{
		state:  domain.StatePaused,
		speed:  DefaultSpeedRange,
		clock:  RealClock,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.speed.Validate(); err != nil {
		return nil, err
	}
	if c.interval == 0 {
		c.interval, _ = c.speed.Interval(DefaultSpeed)
	}
	if c.interval < MinInterval {
		return nil, fmt.Errorf("%w: interval %v", domain.ErrInvalidSpeed, c.interval)
	}
	return c, nil
}

// Build replaces the loaded trace wholesale: any pending tick is cancelled,
// the index resets to 0, playback is paused and step 0 is rendered.
func (c *Controller) Build(trace *domain.Trace) error {
	if trace.Len() == 0 {
		return domain.ErrNoTrace
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.setState(domain.StatePaused)
	c.trace = trace
	c.buildID = uuid.NewString()
	c.index = 0

	c.logger.Info("trace loaded", "build_id", c.buildID, "steps", trace.Len())
	if c.hooks.OnBuild != nil {
		c.hooks.OnBuild(&domain.BuildEvent{
			EventBase: c.base(domain.EventBuild),
			Source:    trace.Source,
			Steps:     trace.Len(),
		})
	}
	c.renderCurrent()
	return nil
}

// StepForward advances one step. It reports false (and renders nothing)
// at the last index or when no trace is loaded.
func (c *Controller) StepForward() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forward()
}

// StepBackward moves back one step. It reports false (and renders nothing)
// at index 0 or when no trace is loaded.
func (c *Controller) StepBackward() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.trace == nil || c.index == 0 {
		return false
	}
	c.index--
	c.renderCurrent()
	return true
}

// Seek jumps to index i. Seeking to the current index renders nothing.
func (c *Controller) Seek(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.trace == nil {
		return domain.ErrNoTrace
	}
	if i < 0 || i >= c.trace.Len() {
		return fmt.Errorf("%w: %d not in [0, %d)", domain.ErrStepOutOfRange, i, c.trace.Len())
	}
	if i == c.index {
		return nil
	}
	c.index = i
	c.renderCurrent()
	return nil
}

// Play starts autoplay. Each tick advances one step; the tick that finds the
// last index pauses instead. Playing while already playing is a no-op.
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.trace == nil {
		return domain.ErrNoTrace
	}
	if c.state == domain.StatePlaying {
		return nil
	}
	c.setState(domain.StatePlaying)
	return nil
}

// Pause stops autoplay and cancels the pending tick. It is idempotent.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setState(domain.StatePaused)
}

// Toggle flips between playing and paused and returns the new state.
func (c *Controller) Toggle() (domain.PlayState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.trace == nil {
		return c.state, domain.ErrNoTrace
	}
	if c.state == domain.StatePlaying {
		c.setState(domain.StatePaused)
	} else {
		c.setState(domain.StatePlaying)
	}
	return c.state, nil
}

// SetSpeed maps a multiplier onto the speed range and applies the interval.
// On error the previous interval is kept.
func (c *Controller) SetSpeed(multiplier float64) error {
	d, err := c.speed.Interval(multiplier)
	if err != nil {
		c.logger.Warn("speed rejected", "multiplier", multiplier, "error", err)
		return err
	}
	return c.SetInterval(d)
}

// SetInterval changes the step interval. While playing, the pending tick is
// replaced so the new interval applies immediately.
func (c *Controller) SetInterval(d time.Duration) error {
	if d <= 0 {
		c.logger.Warn("interval rejected", "interval", d)
		return fmt.Errorf("%w: interval %v", domain.ErrInvalidSpeed, d)
	}
	d = max(d, MinInterval)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.interval = d
	if c.hooks.OnSpeedChange != nil {
		c.hooks.OnSpeedChange(&domain.SpeedChangeEvent{
			EventBase: c.base(domain.EventSpeedChange),
			Interval:  d,
		})
	}
	if c.state == domain.StatePlaying {
		c.cancel()
		c.arm()
	}
	return nil
}

// Close cancels any pending tick. The controller stays usable.
func (c *Controller) Close() {
	c.Pause()
}

// State returns the current playback state.
func (c *Controller) State() domain.PlayState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Interval returns the current step interval.
func (c *Controller) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// Position returns the current index and the trace length.
func (c *Controller) Position() (index, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index, c.trace.Len()
}

// BuildID identifies the loaded trace; it changes on every Build.
func (c *Controller) BuildID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buildID
}

// Current returns a copy of the step at the current index.
func (c *Controller) Current() (domain.Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.trace == nil {
		return domain.Step{}, domain.ErrNoTrace
	}
	return c.trace.Step(c.index)
}

// Trace returns the loaded trace, or nil.
func (c *Controller) Trace() *domain.Trace {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trace
}

// -- internals; callers hold c.mu --

func (c *Controller) forward() bool {
	if c.trace == nil || c.index >= c.trace.Len()-1 {
		return false
	}
	c.index++
	c.renderCurrent()
	return true
}

func (c *Controller) setState(next domain.PlayState) {
	prev := c.state
	switch next {
	case domain.StatePlaying:
		if prev != domain.StatePlaying {
			c.state = next
			c.arm()
		}
	case domain.StatePaused:
		c.cancel()
		c.state = next
	}
	if prev == c.state {
		return
	}

	c.logger.Debug("playback state changed", "build_id", c.buildID, "from", prev, "to", c.state, "index", c.index)
	if c.hooks.OnStateChange != nil {
		c.hooks.OnStateChange(&domain.StateChangeEvent{
			EventBase: c.base(domain.EventStateChange),
			From:      prev,
			To:        c.state,
		})
	}
}

// arm schedules the next tick. The generation captured here invalidates the
// tick if anything cancels it before it runs.
func (c *Controller) arm() {
	c.generation++
	gen := c.generation
	c.timer = c.clock.AfterFunc(c.interval, func() { c.tick(gen) })
}

func (c *Controller) cancel() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.state != domain.StatePlaying {
		return
	}
	c.timer = nil

	if !c.forward() {
		c.setState(domain.StatePaused)
		return
	}
	c.arm()
}

func (c *Controller) renderCurrent() {
	step := c.trace.Steps[c.index]
	if c.render != nil {
		c.render(step.Clone())
	}
	if c.hooks.OnRender != nil {
		c.hooks.OnRender(&domain.RenderEvent{
			EventBase: c.base(domain.EventRender),
			Index:     c.index,
			Total:     c.trace.Len(),
			Kind:      step.Kind,
		})
	}
}

func (c *Controller) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: c.now(), Type: t, BuildID: c.buildID}
}
