package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedTrace() *domain.Trace {
	final := domain.DistanceTable{0: 0, 1: 3, 2: 2, 3: 8, 4: 10, 5: domain.Infinite}
	return &domain.Trace{
		Source: 0,
		Steps: []domain.Step{
			{Kind: domain.StepStart, Distances: domain.DistanceTable{}, Detail: domain.StartDetail{Source: 0}},
			{
				Kind:      domain.StepNoCandidate,
				Distances: final,
				Visited:   []domain.Vertex{0, 2, 1, 3, 4},
				Detail:    domain.NoCandidateDetail{Unreached: []domain.Vertex{5}},
			},
			{Kind: domain.StepComplete, Distances: final, Visited: []domain.Vertex{0, 2, 1, 3, 4}},
		},
		Previous: map[domain.Vertex]domain.Vertex{1: 2, 2: 0, 3: 1, 4: 3},
	}
}

func TestTrace_PathTo(t *testing.T) {
	trace := finishedTrace()

	path, err := trace.PathTo(4)
	require.NoError(t, err)
	assert.Equal(t, []domain.Vertex{0, 2, 1, 3, 4}, path)

	path, err = trace.PathTo(0)
	require.NoError(t, err)
	assert.Equal(t, []domain.Vertex{0}, path)

	_, err = trace.PathTo(5)
	assert.ErrorIs(t, err, domain.ErrUnreachable)

	_, err = trace.PathTo(9)
	assert.ErrorIs(t, err, domain.ErrUnknownVertex)
}

func TestTrace_Step(t *testing.T) {
	trace := finishedTrace()

	s, err := trace.Step(1)
	require.NoError(t, err)
	s.Distances[1] = 100
	s.Visited[0] = 9
	s.Detail.(domain.NoCandidateDetail).Unreached[0] = 7

	orig := trace.Steps[1]
	assert.Equal(t, domain.Distance(3), orig.Distances[1])
	assert.Equal(t, domain.Vertex(0), orig.Visited[0])
	assert.Equal(t, domain.Vertex(5), orig.Detail.(domain.NoCandidateDetail).Unreached[0])

	_, err = trace.Step(3)
	assert.ErrorIs(t, err, domain.ErrStepOutOfRange)
	_, err = trace.Step(-1)
	assert.ErrorIs(t, err, domain.ErrStepOutOfRange)
}

func TestTrace_CountAndFinal(t *testing.T) {
	trace := finishedTrace()
	assert.Equal(t, 1, trace.Count(domain.StepComplete))
	assert.Equal(t, 0, trace.Count(domain.StepRelaxEdge))
	assert.Equal(t, domain.Distance(10), trace.Final()[4])

	var none *domain.Trace
	assert.Equal(t, 0, none.Len())
	assert.Empty(t, none.Final())
}

func TestStep_CloneCopiesPointers(t *testing.T) {
	s := domain.Step{Current: domain.VertexRef(2), Neighbor: domain.VertexRef(3)}
	c := s.Clone()
	*c.Current = 8
	*c.Neighbor = 8

	assert.Equal(t, domain.Vertex(2), *s.Current)
	assert.Equal(t, domain.Vertex(3), *s.Neighbor)
	assert.True(t, domain.Step{Visited: []domain.Vertex{4}}.IsVisited(4))
}

func TestDetails_MatchKinds(t *testing.T) {
	details := []domain.StepDetail{
		domain.StartDetail{}, domain.InitDistanceDetail{}, domain.InitSourceDetail{},
		domain.LoopStartDetail{}, domain.ProbeCandidateDetail{}, domain.NewMinimumDetail{},
		domain.NoCandidateDetail{}, domain.FinalizeVertexDetail{}, domain.ProbeNeighborDetail{},
		domain.RelaxEdgeDetail{}, domain.CompleteDetail{},
	}
	require.Len(t, details, len(domain.StepKinds))
	for i, d := range details {
		assert.Equal(t, domain.StepKinds[i], d.Kind())
	}
}

func TestStep_JSONRoundTrip(t *testing.T) {
	in := domain.Step{
		Kind:       domain.StepRelaxEdge,
		Distances:  domain.DistanceTable{0: 0, 1: 4, 2: domain.Infinite},
		Visited:    []domain.Vertex{0},
		Current:    domain.VertexRef(0),
		Neighbor:   domain.VertexRef(1),
		Message:    "Updated distance to vertex 1: 4",
		SourceLine: 32,
		Detail: domain.RelaxEdgeDetail{
			Edge:     domain.Edge{From: 0, To: 1, Weight: 4},
			Previous: domain.Infinite,
			Distance: 4,
		},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out domain.Step
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	var bad domain.Step
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"teleport","detail":{}}`), &bad))
}
