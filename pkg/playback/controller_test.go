package playback_test

import (
	"testing"
	"time"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/internal/testutils"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	steps []domain.Step
}

func (r *recorder) render(s domain.Step) { r.steps = append(r.steps, s) }

func newTrace(t *testing.T) *domain.Trace {
	t.Helper()
	trace, err := runtime.GenerateTrace(domain.ReferenceGraph(), 0)
	require.NoError(t, err)
	return trace
}

func newController(t *testing.T, opts ...playback.Option) (*playback.Controller, *testutils.ManualClock, *recorder) {
	t.Helper()
	clock := &testutils.ManualClock{}
	rec := &recorder{}
	opts = append([]playback.Option{
		playback.WithClock(clock),
		playback.WithRenderer(rec.render),
	}, opts...)
	c, err := playback.NewController(opts...)
	require.NoError(t, err)
	return c, clock, rec
}

func TestController_BuildRendersFirstStep(t *testing.T) {
	c, _, rec := newController(t)
	trace := newTrace(t)

	require.NoError(t, c.Build(trace))

	require.Len(t, rec.steps, 1)
	assert.Equal(t, domain.StepStart, rec.steps[0].Kind)
	idx, total := c.Position()
	assert.Equal(t, 0, idx)
	assert.Equal(t, trace.Len(), total)
	assert.Equal(t, domain.StatePaused, c.State())
	assert.NotEmpty(t, c.BuildID())
}

func TestController_BuildRejectsEmptyTrace(t *testing.T) {
	c, _, rec := newController(t)
	assert.ErrorIs(t, c.Build(nil), domain.ErrNoTrace)
	assert.ErrorIs(t, c.Build(&domain.Trace{}), domain.ErrNoTrace)
	assert.Empty(t, rec.steps)
}

func TestController_NavigationBoundaries(t *testing.T) {
	c, _, rec := newController(t)
	trace := newTrace(t)
	require.NoError(t, c.Build(trace))

	assert.False(t, c.StepBackward())
	idx, _ := c.Position()
	assert.Equal(t, 0, idx)
	assert.Len(t, rec.steps, 1, "no render at the lower boundary")

	require.NoError(t, c.Seek(trace.Len()-1))
	renders := len(rec.steps)
	assert.False(t, c.StepForward())
	idx, _ = c.Position()
	assert.Equal(t, trace.Len()-1, idx)
	assert.Len(t, rec.steps, renders, "no render at the upper boundary")
}

func TestController_ForwardBackwardIsIdempotent(t *testing.T) {
	c, _, rec := newController(t)
	trace := newTrace(t)
	require.NoError(t, c.Build(trace))

	for i := 1; i < trace.Len()-1; i++ {
		require.NoError(t, c.Seek(i))
		before, err := c.Current()
		require.NoError(t, err)

		require.True(t, c.StepForward())
		require.True(t, c.StepBackward())

		after, err := c.Current()
		require.NoError(t, err)
		assert.Equal(t, before, after, "index %d", i)
		assert.Equal(t, before, rec.steps[len(rec.steps)-1])
	}
}

func TestController_PlayRunsToEndAndStops(t *testing.T) {
	c, clock, rec := newController(t)
	trace := newTrace(t)
	require.NoError(t, c.Build(trace))

	require.NoError(t, c.Play())
	assert.Equal(t, domain.StatePlaying, c.State())

	ticks := 0
	for clock.Fire() {
		ticks++
		assert.LessOrEqual(t, len(clock.Pending()), 1, "at most one pending tick")
		require.Less(t, ticks, 10*trace.Len(), "playback did not stop")
	}

	// N-1 advances plus the tick that finds the last index and pauses.
	assert.Equal(t, trace.Len(), ticks)
	assert.Len(t, rec.steps, trace.Len())
	idx, _ := c.Position()
	assert.Equal(t, trace.Len()-1, idx)
	assert.Equal(t, domain.StatePaused, c.State())
	assert.Empty(t, clock.Pending())
	assert.Equal(t, domain.StepComplete, rec.steps[len(rec.steps)-1].Kind)
}

func TestController_PauseDropsQueuedTick(t *testing.T) {
	c, clock, rec := newController(t)
	require.NoError(t, c.Build(newTrace(t)))
	require.NoError(t, c.Play())

	queued := clock.Pending()
	require.Len(t, queued, 1)

	c.Pause()
	c.Pause()
	assert.Equal(t, domain.StatePaused, c.State())
	assert.True(t, queued[0].Stopped())

	// The callback may already be running when Stop is called.
	queued[0].Run()
	idx, _ := c.Position()
	assert.Equal(t, 0, idx)
	assert.Len(t, rec.steps, 1)
}

func TestController_RebuildCancelsPlayback(t *testing.T) {
	c, clock, rec := newController(t)
	require.NoError(t, c.Build(newTrace(t)))
	require.NoError(t, c.Play())
	require.True(t, clock.Fire())
	require.True(t, clock.Fire())
	firstBuild := c.BuildID()

	queued := clock.Pending()
	require.Len(t, queued, 1)

	require.NoError(t, c.Build(newTrace(t)))
	assert.Equal(t, domain.StatePaused, c.State())
	assert.NotEqual(t, firstBuild, c.BuildID())
	assert.Empty(t, clock.Pending())

	queued[0].Run()
	idx, _ := c.Position()
	assert.Equal(t, 0, idx)
	assert.Equal(t, domain.StepStart, rec.steps[len(rec.steps)-1].Kind)
}

func TestController_SetSpeedRestartsTimer(t *testing.T) {
	c, clock, _ := newController(t)
	assert.Equal(t, time.Second, c.Interval())

	require.NoError(t, c.Build(newTrace(t)))
	require.NoError(t, c.Play())
	old := clock.Pending()
	require.Len(t, old, 1)
	assert.Equal(t, time.Second, old[0].Duration())

	require.NoError(t, c.SetSpeed(4))
	assert.Equal(t, 500*time.Millisecond, c.Interval())
	assert.True(t, old[0].Stopped())

	p := clock.Pending()
	require.Len(t, p, 1)
	assert.Equal(t, 500*time.Millisecond, p[0].Duration())
}

func TestController_SetSpeedWhilePausedDoesNotSchedule(t *testing.T) {
	c, clock, _ := newController(t)
	require.NoError(t, c.Build(newTrace(t)))

	require.NoError(t, c.SetSpeed(10))
	assert.Equal(t, 200*time.Millisecond, c.Interval())
	assert.Empty(t, clock.Pending())
}

func TestController_InvalidSpeedKeepsInterval(t *testing.T) {
	c, _, _ := newController(t)
	before := c.Interval()

	assert.ErrorIs(t, c.SetSpeed(0), domain.ErrInvalidSpeed)
	assert.ErrorIs(t, c.SetSpeed(-3), domain.ErrInvalidSpeed)
	assert.ErrorIs(t, c.SetInterval(0), domain.ErrInvalidSpeed)
	assert.ErrorIs(t, c.SetInterval(-time.Second), domain.ErrInvalidSpeed)
	assert.Equal(t, before, c.Interval())
}

func TestController_PlayWithoutTrace(t *testing.T) {
	c, clock, _ := newController(t)
	assert.ErrorIs(t, c.Play(), domain.ErrNoTrace)
	assert.False(t, c.StepForward())
	assert.False(t, c.StepBackward())
	assert.Empty(t, clock.Pending())
}

func TestController_Toggle(t *testing.T) {
	c, clock, _ := newController(t)
	require.NoError(t, c.Build(newTrace(t)))

	state, err := c.Toggle()
	require.NoError(t, err)
	assert.Equal(t, domain.StatePlaying, state)
	assert.Len(t, clock.Pending(), 1)

	state, err = c.Toggle()
	require.NoError(t, err)
	assert.Equal(t, domain.StatePaused, state)
	assert.Empty(t, clock.Pending())
}

func TestController_SeekOutOfRange(t *testing.T) {
	c, _, rec := newController(t)
	require.NoError(t, c.Build(newTrace(t)))

	assert.ErrorIs(t, c.Seek(-1), domain.ErrStepOutOfRange)
	assert.ErrorIs(t, c.Seek(1000), domain.ErrStepOutOfRange)
	require.NoError(t, c.Seek(0))
	assert.Len(t, rec.steps, 1)
}

func TestController_RendererCannotCorruptTrace(t *testing.T) {
	trace := newTrace(t)
	c, err := playback.NewController(
		playback.WithClock(&testutils.ManualClock{}),
		playback.WithRenderer(func(s domain.Step) {
			s.Distances[0] = 1234
			s.Visited = append(s.Visited, 99)
		}),
	)
	require.NoError(t, err)
	require.NoError(t, c.Build(trace))
	require.NoError(t, c.Seek(20))

	assert.Equal(t, domain.Distance(0), trace.Steps[20].Distances[0])
	assert.NotContains(t, trace.Steps[20].Visited, domain.Vertex(99))
}

func TestController_Hooks(t *testing.T) {
	var (
		builds  int
		renders []int
		changes []domain.PlayState
		speeds  []time.Duration
	)
	hooks := domain.LifecycleHooks{
		OnBuild:       func(e *domain.BuildEvent) { builds++ },
		OnRender:      func(e *domain.RenderEvent) { renders = append(renders, e.Index) },
		OnStateChange: func(e *domain.StateChangeEvent) { changes = append(changes, e.To) },
		OnSpeedChange: func(e *domain.SpeedChangeEvent) { speeds = append(speeds, e.Interval) },
	}
	c, clock, _ := newController(t, playback.WithLifecycleHooks(hooks))
	require.NoError(t, c.Build(newTrace(t)))
	require.NoError(t, c.Play())
	require.True(t, clock.Fire())
	require.NoError(t, c.SetSpeed(1))
	c.Pause()

	assert.Equal(t, 1, builds)
	assert.Equal(t, []int{0, 1}, renders)
	assert.Equal(t, []domain.PlayState{domain.StatePlaying, domain.StatePaused}, changes)
	assert.Equal(t, []time.Duration{2 * time.Second}, speeds)
}

func TestNewController_InvalidConfig(t *testing.T) {
	_, err := playback.NewController(playback.WithInterval(-time.Second))
	assert.ErrorIs(t, err, domain.ErrInvalidSpeed)

	_, err = playback.NewController(playback.WithSpeedRange(playback.SpeedRange{Base: time.Second, Min: 5, Max: 1}))
	assert.ErrorIs(t, err, domain.ErrInvalidSpeed)
}
