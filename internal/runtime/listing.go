package runtime

import "strings"

// Listing is the reference rendition of the algorithm that Step.SourceLine
// points into. Lines are 1-based.
const Listing = `// Dijkstra's algorithm, linear-scan selection
func dijkstra(graph Graph, start Vertex) (Distances, Previous) {
	dist := Distances{}
	visited := Set{}
	prev := Previous{}

	// Initialize distances
	for v := range graph {
		dist[v] = Infinity
		prev[v] = None
	}
	dist[start] = 0

	for len(visited) < len(graph) {
		current, best := None, Infinity

		// Find unvisited vertex with smallest distance
		for v := range dist {
			if !visited[v] && dist[v] < best {
				current, best = v, dist[v]
			}
		}

		if current == None {
			break
		}
		visited.Add(current)

		// Relax edges to neighbors
		for n, w := range graph[current] {
			if d := dist[current] + w; d < dist[n] {
				dist[n] = d
				prev[n] = current
			}
		}
	}
	return dist, prev
}`

// Listing lines referenced by each step kind.
const (
	LineStart          = 2
	LineInitDistance   = 9
	LineInitSource     = 12
	LineLoopStart      = 14
	LineProbeCandidate = 19
	LineNewMinimum     = 20
	LineNoCandidate    = 25
	LineFinalizeVertex = 27
	LineProbeNeighbor  = 30
	LineRelaxEdge      = 32
	LineComplete       = 37
)

// ListingLines returns the listing split into lines; index 0 is line 1.
func ListingLines() []string {
	return strings.Split(Listing, "\n")
}
