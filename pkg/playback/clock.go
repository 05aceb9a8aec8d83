package playback

import "time"

// Timer is a handle on a scheduled callback.
type Timer interface {
	Stop() bool
}

// Clock schedules one-shot callbacks. The controller never holds more than
// one outstanding Timer.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock is backed by the runtime timer wheel.
var RealClock Clock = realClock{}
