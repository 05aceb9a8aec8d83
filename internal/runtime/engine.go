package runtime

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Engine generates step traces of the single-source shortest-path algorithm.
// It holds no per-run state and is safe for concurrent use.
type Engine struct {
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger used for generation diagnostics.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a trace engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerateTrace runs the instrumented algorithm on g from start and returns
// every state transition it makes. It validates the input first and returns
// an error wrapping domain.ErrInvalidGraph without producing any step.
func (e *Engine) GenerateTrace(g *domain.Graph, start domain.Vertex) (*domain.Trace, error) {
	if err := g.Validate(start); err != nil {
		return nil, err
	}

	t := newTracer(g, start)
	for p := phaseStart; p != phaseDone; {
		p = t.advance(p)
	}

	trace := &domain.Trace{
		Source:   start,
		Steps:    t.steps,
		Previous: maps.Clone(t.prev),
	}
	e.logger.Debug("trace generated",
		"source", start,
		"vertices", g.Len(),
		"steps", trace.Len(),
		"reachable", trace.Final().Reachable(),
	)
	return trace, nil
}

// GenerateTrace is a convenience wrapper around a default Engine.
func GenerateTrace(g *domain.Graph, start domain.Vertex) (*domain.Trace, error) {
	return NewEngine().GenerateTrace(g, start)
}

// phase is a state of the generation state machine. Each phase emits the
// steps of one well-defined transition and names its successor.
type phase int

const (
	phaseStart phase = iota
	phaseInit
	phaseSeed
	phaseLoopCheck
	phaseScan
	phaseSelect
	phaseRelax
	phaseComplete
	phaseDone
)

// tracer holds the mutable state of a single generation.
type tracer struct {
	g      *domain.Graph
	source domain.Vertex

	dist    domain.DistanceTable
	prev    map[domain.Vertex]domain.Vertex
	visited []domain.Vertex
	settled map[domain.Vertex]bool

	iteration int
	best      *domain.Vertex // selected by the last scan; nil when none qualified
	bestDist  domain.Distance

	steps []domain.Step
}

func newTracer(g *domain.Graph, source domain.Vertex) *tracer {
	return &tracer{
		g:       g,
		source:  source,
		dist:    make(domain.DistanceTable, g.Len()),
		prev:    make(map[domain.Vertex]domain.Vertex, g.Len()),
		visited: make([]domain.Vertex, 0, g.Len()),
		settled: make(map[domain.Vertex]bool, g.Len()),
	}
}

func (t *tracer) advance(p phase) phase {
	switch p {
	case phaseStart:
		return t.start()
	case phaseInit:
		return t.initDistances()
	case phaseSeed:
		return t.seed()
	case phaseLoopCheck:
		return t.loopCheck()
	case phaseScan:
		return t.scan()
	case phaseSelect:
		return t.selectMinimum()
	case phaseRelax:
		return t.relax()
	case phaseComplete:
		return t.complete()
	}
	return phaseDone
}

func (t *tracer) start() phase {
	t.emit(domain.StepStart, nil, nil, LineStart,
		"Starting Dijkstra's algorithm",
		domain.StartDetail{Source: t.source})
	return phaseInit
}

func (t *tracer) initDistances() phase {
	for _, v := range t.g.Vertices() {
		t.dist[v] = domain.Infinite
		delete(t.prev, v)
		t.emit(domain.StepInitDistance, nil, nil, LineInitDistance,
			fmt.Sprintf("Initializing distance to vertex %d as %s", v, domain.Infinite),
			domain.InitDistanceDetail{Vertex: v})
	}
	return phaseSeed
}

func (t *tracer) seed() phase {
	t.dist[t.source] = 0
	t.emit(domain.StepInitSource, domain.VertexRef(t.source), nil, LineInitSource,
		fmt.Sprintf("Setting distance to start vertex (%d) as 0", t.source),
		domain.InitSourceDetail{Source: t.source})
	return phaseLoopCheck
}

func (t *tracer) loopCheck() phase {
	if len(t.visited) >= t.g.Len() {
		return phaseComplete
	}
	t.iteration++
	t.emit(domain.StepLoopStart, nil, nil, LineLoopStart,
		"Starting new iteration of main loop",
		domain.LoopStartDetail{Iteration: t.iteration, Remaining: t.g.Len() - len(t.visited)})
	return phaseScan
}

// scan walks the distance table, not the graph keys, looking for the
// unvisited vertex with the smallest distance. Ties keep the first seen.
func (t *tracer) scan() phase {
	t.best, t.bestDist = nil, domain.Infinite
	for _, v := range t.dist.Vertices() {
		d := t.dist[v]
		t.emit(domain.StepProbeCandidate, domain.VertexRef(v), nil, LineProbeCandidate,
			fmt.Sprintf("Checking vertex %d (distance: %s)", v, d),
			domain.ProbeCandidateDetail{Vertex: v, Distance: d, Visited: t.settled[v]})

		if !t.settled[v] && d < t.bestDist {
			t.best, t.bestDist = domain.VertexRef(v), d
			t.emit(domain.StepNewMinimum, domain.VertexRef(v), nil, LineNewMinimum,
				fmt.Sprintf("Found new minimum at vertex %d (distance: %s)", v, d),
				domain.NewMinimumDetail{Vertex: v, Distance: d})
		}
	}
	return phaseSelect
}

func (t *tracer) selectMinimum() phase {
	if t.best == nil {
		var unreached []domain.Vertex
		for _, v := range t.dist.Vertices() {
			if !t.settled[v] {
				unreached = append(unreached, v)
			}
		}
		t.emit(domain.StepNoCandidate, nil, nil, LineNoCandidate,
			"No more reachable vertices found",
			domain.NoCandidateDetail{Unreached: unreached})
		return phaseComplete
	}

	v := *t.best
	t.settled[v] = true
	t.visited = append(t.visited, v)
	t.emit(domain.StepFinalizeVertex, domain.VertexRef(v), nil, LineFinalizeVertex,
		fmt.Sprintf("Marking vertex %d as visited", v),
		domain.FinalizeVertexDetail{Vertex: v, Distance: t.dist[v]})
	return phaseRelax
}

func (t *tracer) relax() phase {
	u := *t.best
	for _, e := range t.g.Neighbors(u) {
		candidate := t.dist[u].Add(e.Weight)
		known := t.dist.Get(e.To)
		t.emit(domain.StepProbeNeighbor, domain.VertexRef(u), domain.VertexRef(e.To), LineProbeNeighbor,
			fmt.Sprintf("Checking neighbor %d of vertex %d", e.To, u),
			domain.ProbeNeighborDetail{Edge: e, Candidate: candidate, Known: known})

		if candidate < known {
			t.dist[e.To] = candidate
			t.prev[e.To] = u
			t.emit(domain.StepRelaxEdge, domain.VertexRef(u), domain.VertexRef(e.To), LineRelaxEdge,
				fmt.Sprintf("Updated distance to vertex %d: %s", e.To, candidate),
				domain.RelaxEdgeDetail{Edge: e, Previous: known, Distance: candidate})
		}
	}
	return phaseLoopCheck
}

func (t *tracer) complete() phase {
	t.emit(domain.StepComplete, nil, nil, LineComplete,
		"Algorithm complete",
		domain.CompleteDetail{Visited: len(t.visited), Reachable: t.dist.Reachable()})
	return phaseDone
}

// emit appends a step carrying independent copies of the mutable state.
func (t *tracer) emit(kind domain.StepKind, current, neighbor *domain.Vertex, line int, msg string, detail domain.StepDetail) {
	t.steps = append(t.steps, domain.Step{
		Kind:       kind,
		Distances:  t.dist.Clone(),
		Visited:    append([]domain.Vertex{}, t.visited...),
		Current:    current,
		Neighbor:   neighbor,
		Message:    msg,
		SourceLine: line,
		Detail:     detail,
	})
}
