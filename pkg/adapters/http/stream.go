package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Event names carried on the SSE stream.
const (
	EventStep     = "step"
	EventPosition = "position"
	EventState    = "state"
	EventSpeed    = "speed"
	EventBuild    = "build"
)

// Message is one server-sent event.
type Message struct {
	Event string
	Data  string
}

// StreamManager fans playback events out to active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- Message]struct{}
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		subscribers: make(map[chan<- Message]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel and returns it with its cancel func.
func (sm *StreamManager) Subscribe() (chan Message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Message, 64)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Subscribers returns the number of open streams.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast never blocks: it runs on the playback control flow.
func (sm *StreamManager) Broadcast(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		sm.logger.Error("StreamManager: encode failed", "event", event, "error", err)
		return
	}
	msg := Message{Event: event, Data: string(data)}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "event", event)
		}
	}
}

// Render broadcasts a rendered step. It matches playback.RenderFunc.
func (sm *StreamManager) Render(step domain.Step) {
	sm.Broadcast(EventStep, step)
}

// Hooks returns lifecycle hooks that broadcast playback events.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBuild: func(e *domain.BuildEvent) {
			sm.Broadcast(EventBuild, e)
		},
		OnRender: func(e *domain.RenderEvent) {
			sm.Broadcast(EventPosition, e)
		},
		OnStateChange: func(e *domain.StateChangeEvent) {
			sm.Broadcast(EventState, e)
		},
		OnSpeedChange: func(e *domain.SpeedChangeEvent) {
			sm.Broadcast(EventSpeed, struct {
				domain.EventBase
				IntervalMs int64 `json:"interval_ms"`
			}{e.EventBase, e.Interval.Milliseconds()})
		},
	}
}
