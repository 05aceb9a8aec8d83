package domain

import "time"

// PlayState is the mode of the playback controller.
type PlayState string

const (
	StatePaused  PlayState = "paused"
	StatePlaying PlayState = "playing"
)

// EventType defines the category of the event.
type EventType string

const (
	EventBuild       EventType = "build"
	EventRender      EventType = "render"
	EventStateChange EventType = "state_change"
	EventSpeedChange EventType = "speed_change"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	BuildID   string    `json:"build_id,omitempty"`
}

// BuildEvent is emitted when a new trace replaces the previous one.
type BuildEvent struct {
	EventBase
	Source Vertex `json:"source"`
	Steps  int    `json:"steps"`
}

// RenderEvent is emitted once per index change, after the render callback ran.
type RenderEvent struct {
	EventBase
	Index int      `json:"index"`
	Total int      `json:"total"`
	Kind  StepKind `json:"kind"`
}

// StateChangeEvent is emitted when playback switches between paused and playing.
type StateChangeEvent struct {
	EventBase
	From PlayState `json:"from"`
	To   PlayState `json:"to"`
}

// SpeedChangeEvent is emitted when the step interval changes.
type SpeedChangeEvent struct {
	EventBase
	Interval time.Duration `json:"interval"`
}

// LifecycleHooks defines callbacks for playback observability.
// Hooks run synchronously on the controller's control flow and must not call back into it.
type LifecycleHooks struct {
	OnBuild       func(*BuildEvent)
	OnRender      func(*RenderEvent)
	OnStateChange func(*StateChangeEvent)
	OnSpeedChange func(*SpeedChangeEvent)
}

// CombineHooks fans every event out to each of the given hook sets, in order.
func CombineHooks(sets ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnBuild: func(e *BuildEvent) {
			for _, h := range sets {
				if h.OnBuild != nil {
					h.OnBuild(e)
				}
			}
		},
		OnRender: func(e *RenderEvent) {
			for _, h := range sets {
				if h.OnRender != nil {
					h.OnRender(e)
				}
			}
		},
		OnStateChange: func(e *StateChangeEvent) {
			for _, h := range sets {
				if h.OnStateChange != nil {
					h.OnStateChange(e)
				}
			}
		},
		OnSpeedChange: func(e *SpeedChangeEvent) {
			for _, h := range sets {
				if h.OnSpeedChange != nil {
					h.OnSpeedChange(e)
				}
			}
		},
	}
}
