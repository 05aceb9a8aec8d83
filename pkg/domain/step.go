package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

// StepKind tags the transition a Step records.
type StepKind string

const (
	StepStart          StepKind = "start"
	StepInitDistance   StepKind = "init-distance"
	StepInitSource     StepKind = "init-source"
	StepLoopStart      StepKind = "loop-start"
	StepProbeCandidate StepKind = "probe-candidate"
	StepNewMinimum     StepKind = "new-minimum"
	StepNoCandidate    StepKind = "no-candidate"
	StepFinalizeVertex StepKind = "finalize-vertex"
	StepProbeNeighbor  StepKind = "probe-neighbor"
	StepRelaxEdge      StepKind = "relax-edge"
	StepComplete       StepKind = "complete"
)

// StepKinds lists every kind in the order the algorithm first emits them.
var StepKinds = []StepKind{
	StepStart, StepInitDistance, StepInitSource, StepLoopStart,
	StepProbeCandidate, StepNewMinimum, StepNoCandidate, StepFinalizeVertex,
	StepProbeNeighbor, StepRelaxEdge, StepComplete,
}

// Step is one replayable snapshot of the algorithm.
// Distances and Visited are owned by the step; no two steps share them.
type Step struct {
	Kind       StepKind      `json:"kind" yaml:"kind"`
	Distances  DistanceTable `json:"distances" yaml:"distances"`
	Visited    []Vertex      `json:"visited" yaml:"visited"`
	Current    *Vertex       `json:"current" yaml:"current"`
	Neighbor   *Vertex       `json:"neighbor,omitempty" yaml:"neighbor,omitempty"`
	Message    string        `json:"message" yaml:"message"`
	SourceLine int           `json:"source_line" yaml:"source_line"`
	Detail     StepDetail    `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// IsVisited reports whether v was finalized at this step.
func (s Step) IsVisited(v Vertex) bool {
	return slices.Contains(s.Visited, v)
}

// Clone returns a deep copy of the step.
func (s Step) Clone() Step {
	out := s
	out.Distances = s.Distances.Clone()
	out.Visited = slices.Clone(s.Visited)
	out.Current = cloneVertex(s.Current)
	out.Neighbor = cloneVertex(s.Neighbor)
	if s.Detail != nil {
		out.Detail = s.Detail.clone()
	}
	return out
}

// UnmarshalJSON decodes the detail payload into the type matching Kind.
func (s *Step) UnmarshalJSON(data []byte) error {
	type plain Step
	var raw struct {
		plain
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Step(raw.plain)
	s.Detail = nil

	if len(raw.Detail) == 0 || string(raw.Detail) == "null" {
		return nil
	}
	decode, ok := detailDecoders[s.Kind]
	if !ok {
		return fmt.Errorf("unknown step kind %q", s.Kind)
	}
	detail, err := decode(raw.Detail)
	if err != nil {
		return fmt.Errorf("step %s detail: %w", s.Kind, err)
	}
	s.Detail = detail
	return nil
}

// VertexRef returns a pointer to a copy of v, for the optional Step fields.
func VertexRef(v Vertex) *Vertex { return &v }

func cloneVertex(v *Vertex) *Vertex {
	if v == nil {
		return nil
	}
	return VertexRef(*v)
}

// StepDetail is the kind-specific payload of a Step.
// The set of implementations is closed; each one answers a single StepKind.
type StepDetail interface {
	Kind() StepKind
	clone() StepDetail
}

// StartDetail accompanies StepStart.
type StartDetail struct {
	Source Vertex `json:"source" yaml:"source"`
}

// InitDistanceDetail accompanies StepInitDistance.
type InitDistanceDetail struct {
	Vertex Vertex `json:"vertex" yaml:"vertex"`
}

// InitSourceDetail accompanies StepInitSource.
type InitSourceDetail struct {
	Source Vertex `json:"source" yaml:"source"`
}

// LoopStartDetail accompanies StepLoopStart.
type LoopStartDetail struct {
	Iteration int `json:"iteration" yaml:"iteration"`
	Remaining int `json:"remaining" yaml:"remaining"`
}

// ProbeCandidateDetail accompanies StepProbeCandidate.
type ProbeCandidateDetail struct {
	Vertex   Vertex   `json:"vertex" yaml:"vertex"`
	Distance Distance `json:"distance" yaml:"distance"`
	Visited  bool     `json:"visited" yaml:"visited"`
}

// NewMinimumDetail accompanies StepNewMinimum.
type NewMinimumDetail struct {
	Vertex   Vertex   `json:"vertex" yaml:"vertex"`
	Distance Distance `json:"distance" yaml:"distance"`
}

// NoCandidateDetail accompanies StepNoCandidate.
type NoCandidateDetail struct {
	Unreached []Vertex `json:"unreached" yaml:"unreached"`
}

// FinalizeVertexDetail accompanies StepFinalizeVertex.
type FinalizeVertexDetail struct {
	Vertex   Vertex   `json:"vertex" yaml:"vertex"`
	Distance Distance `json:"distance" yaml:"distance"`
}

// ProbeNeighborDetail accompanies StepProbeNeighbor.
type ProbeNeighborDetail struct {
	Edge      Edge     `json:"edge" yaml:"edge"`
	Candidate Distance `json:"candidate" yaml:"candidate"`
	Known     Distance `json:"known" yaml:"known"`
}

// RelaxEdgeDetail accompanies StepRelaxEdge.
type RelaxEdgeDetail struct {
	Edge     Edge     `json:"edge" yaml:"edge"`
	Previous Distance `json:"previous" yaml:"previous"`
	Distance Distance `json:"distance" yaml:"distance"`
}

// CompleteDetail accompanies StepComplete.
type CompleteDetail struct {
	Visited   int `json:"visited" yaml:"visited"`
	Reachable int `json:"reachable" yaml:"reachable"`
}

func (StartDetail) Kind() StepKind          { return StepStart }
func (InitDistanceDetail) Kind() StepKind   { return StepInitDistance }
func (InitSourceDetail) Kind() StepKind     { return StepInitSource }
func (LoopStartDetail) Kind() StepKind      { return StepLoopStart }
func (ProbeCandidateDetail) Kind() StepKind { return StepProbeCandidate }
func (NewMinimumDetail) Kind() StepKind     { return StepNewMinimum }
func (NoCandidateDetail) Kind() StepKind    { return StepNoCandidate }
func (FinalizeVertexDetail) Kind() StepKind { return StepFinalizeVertex }
func (ProbeNeighborDetail) Kind() StepKind  { return StepProbeNeighbor }
func (RelaxEdgeDetail) Kind() StepKind      { return StepRelaxEdge }
func (CompleteDetail) Kind() StepKind       { return StepComplete }

func (d StartDetail) clone() StepDetail          { return d }
func (d InitDistanceDetail) clone() StepDetail   { return d }
func (d InitSourceDetail) clone() StepDetail     { return d }
func (d LoopStartDetail) clone() StepDetail      { return d }
func (d ProbeCandidateDetail) clone() StepDetail { return d }
func (d NewMinimumDetail) clone() StepDetail     { return d }
func (d FinalizeVertexDetail) clone() StepDetail { return d }
func (d ProbeNeighborDetail) clone() StepDetail  { return d }
func (d RelaxEdgeDetail) clone() StepDetail      { return d }
func (d CompleteDetail) clone() StepDetail       { return d }

func (d NoCandidateDetail) clone() StepDetail {
	d.Unreached = slices.Clone(d.Unreached)
	return d
}

var detailDecoders = map[StepKind]func([]byte) (StepDetail, error){
	StepStart:          decodeDetail[StartDetail],
	StepInitDistance:   decodeDetail[InitDistanceDetail],
	StepInitSource:     decodeDetail[InitSourceDetail],
	StepLoopStart:      decodeDetail[LoopStartDetail],
	StepProbeCandidate: decodeDetail[ProbeCandidateDetail],
	StepNewMinimum:     decodeDetail[NewMinimumDetail],
	StepNoCandidate:    decodeDetail[NoCandidateDetail],
	StepFinalizeVertex: decodeDetail[FinalizeVertexDetail],
	StepProbeNeighbor:  decodeDetail[ProbeNeighborDetail],
	StepRelaxEdge:      decodeDetail[RelaxEdgeDetail],
	StepComplete:       decodeDetail[CompleteDetail],
}

func decodeDetail[T StepDetail](data []byte) (StepDetail, error) {
	var d T
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d, nil
}
