package domain

import (
	"fmt"
	"slices"
)

// Trace is the ordered, immutable step sequence of one algorithm run.
type Trace struct {
	Source Vertex `json:"source" yaml:"source"`
	Steps  []Step `json:"steps" yaml:"steps"`

	// Previous holds the final predecessor of every reached vertex except
	// the source. Unreached vertices are absent.
	Previous map[Vertex]Vertex `json:"previous" yaml:"previous"`
}

// Len returns the number of steps.
func (t *Trace) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Steps)
}

// Step returns a copy of the step at index i.
func (t *Trace) Step(i int) (Step, error) {
	if i < 0 || i >= t.Len() {
		return Step{}, fmt.Errorf("%w: %d not in [0, %d)", ErrStepOutOfRange, i, t.Len())
	}
	return t.Steps[i].Clone(), nil
}

// Final returns a copy of the distances recorded by the last step.
func (t *Trace) Final() DistanceTable {
	if t.Len() == 0 {
		return DistanceTable{}
	}
	return t.Steps[t.Len()-1].Distances.Clone()
}

// Count returns how many steps of the given kind the trace holds.
func (t *Trace) Count(kind StepKind) int {
	if t == nil {
		return 0
	}
	n := 0
	for _, s := range t.Steps {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

// PathTo reconstructs the shortest path from the source to v.
// It returns ErrUnreachable when v has no finite distance.
func (t *Trace) PathTo(v Vertex) ([]Vertex, error) {
	final := t.Final()
	if _, known := final[v]; !known {
		return nil, fmt.Errorf("%w: vertex %d", ErrUnknownVertex, v)
	}
	if final[v].IsInfinite() {
		return nil, fmt.Errorf("%w: vertex %d", ErrUnreachable, v)
	}

	path := []Vertex{v}
	for cur := v; cur != t.Source; {
		prev, ok := t.Previous[cur]
		if !ok || len(path) > len(final) {
			return nil, fmt.Errorf("%w: broken predecessor chain at %d", ErrUnreachable, cur)
		}
		path = append(path, prev)
		cur = prev
	}
	slices.Reverse(path)
	return path, nil
}
