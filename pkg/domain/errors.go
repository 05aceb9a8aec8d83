package domain

import "errors"

// ErrInvalidGraph is returned when a graph or start vertex fails validation.
// No steps are produced when it is returned.
var ErrInvalidGraph = errors.New("invalid graph")

// ErrInvalidSpeed is returned when a playback interval or speed multiplier is not positive.
var ErrInvalidSpeed = errors.New("invalid speed")

// ErrNoTrace is returned when an operation needs a built trace and none exists.
var ErrNoTrace = errors.New("no trace built")

// ErrStepOutOfRange is returned when a step index lies outside the trace.
var ErrStepOutOfRange = errors.New("step index out of range")

// ErrUnknownVertex is returned when a vertex is not part of the traced graph.
var ErrUnknownVertex = errors.New("unknown vertex")

// ErrUnreachable is returned when no path exists from the source to a vertex.
var ErrUnreachable = errors.New("vertex unreachable")
