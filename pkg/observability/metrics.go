package observability

import (
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the playback collectors.
type Metrics struct {
	builds       prometheus.Counter
	renders      *prometheus.CounterVec
	stateChanges *prometheus.CounterVec
	traceSteps   prometheus.Gauge
	interval     prometheus.Gauge
	playing      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg registers on prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		builds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waypoint_builds_total",
			Help: "Total number of traces loaded into playback",
		}),
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waypoint_renders_total",
				Help: "Total number of rendered steps, by step kind",
			},
			[]string{"kind"},
		),
		stateChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waypoint_state_changes_total",
				Help: "Playback state transitions, by target state",
			},
			[]string{"to"},
		),
		traceSteps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "waypoint_trace_steps",
			Help: "Number of steps in the loaded trace",
		}),
		interval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "waypoint_step_interval_seconds",
			Help: "Current autoplay step interval",
		}),
		playing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "waypoint_playing",
			Help: "1 while autoplay is running",
		}),
	}

	for _, c := range []prometheus.Collector{m.builds, m.renders, m.stateChanges, m.traceSteps, m.interval, m.playing} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBuild: func(e *domain.BuildEvent) {
			m.builds.Inc()
			m.traceSteps.Set(float64(e.Steps))
		},
		OnRender: func(e *domain.RenderEvent) {
			m.renders.WithLabelValues(string(e.Kind)).Inc()
		},
		OnStateChange: func(e *domain.StateChangeEvent) {
			m.stateChanges.WithLabelValues(string(e.To)).Inc()
			if e.To == domain.StatePlaying {
				m.playing.Set(1)
			} else {
				m.playing.Set(0)
			}
		},
		OnSpeedChange: func(e *domain.SpeedChangeEvent) {
			m.interval.Set(e.Interval.Seconds())
		},
	}
}

// SetInterval records the interval a controller starts with, before any
// speed change event.
func (m *Metrics) SetInterval(seconds float64) {
	m.interval.Set(seconds)
}
