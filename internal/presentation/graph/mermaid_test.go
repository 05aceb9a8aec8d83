package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	current, neighbor := domain.Vertex(1), domain.Vertex(3)

	tests := []struct {
		name     string
		graph    *domain.Graph
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name:  "Undirected Edges Drawn Once",
			graph: domain.ReferenceGraph(),
			contains: []string{
				"graph LR",
				`v0((("0")))`,
				`v4(("4"))`,
				"v0 ---|4| v1",
				"v3 ---|2| v4",
			},
			excludes: []string{"v1 ---|4| v0", "classDef"},
		},
		{
			name:     "Directed Edges",
			graph:    domain.FromAdjacency(domain.ReferenceAdjacency()),
			contains: []string{"v2 -->|10| v4"},
		},
		{
			name:  "Overlay",
			graph: domain.ReferenceGraph(),
			overlay: &graph.GraphOverlay{
				Visited:   []domain.Vertex{0, 2},
				Current:   &current,
				Neighbor:  &neighbor,
				Distances: domain.DistanceTable{0: 0, 1: 3, 2: 2, 3: domain.Infinite, 4: 12},
			},
			contains: []string{
				`v1(("1<br/>3"))`,
				`v3(("3<br/>∞"))`,
				"class v0,v2 visited;",
				"class v1 current;",
				"class v3 neighbor;",
				// Links in order: 0-1, 0-2, 1-2, 1-3 ...
				"linkStyle 3 stroke:#ff69b4",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.graph, 0, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
		})
	}
}

func TestGraphOverlay_Classify(t *testing.T) {
	v := domain.Vertex(2)
	o := &graph.GraphOverlay{Visited: []domain.Vertex{2}, Current: &v, Neighbor: &v}

	if got := o.Classify(2); got != graph.ClassVisited {
		t.Errorf("visited must win over current, got %q", got)
	}
	o.Visited = nil
	if got := o.Classify(2); got != graph.ClassCurrent {
		t.Errorf("current must win over neighbor, got %q", got)
	}

	var none *graph.GraphOverlay
	if got := none.Classify(2); got != graph.ClassNone {
		t.Errorf("nil overlay must not classify, got %q", got)
	}
	if graph.OverlayFromStep(nil) != nil {
		t.Error("expected nil overlay for nil step")
	}
}
