package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Class is the highlight a vertex receives for a given step.
type Class string

const (
	ClassNone     Class = ""
	ClassVisited  Class = "visited"
	ClassCurrent  Class = "current"
	ClassNeighbor Class = "neighbor"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	Visited   []domain.Vertex
	Current   *domain.Vertex
	Neighbor  *domain.Vertex
	Distances domain.DistanceTable
}

// OverlayFromStep extracts the overlay of a step. A nil step yields nil.
func OverlayFromStep(step *domain.Step) *GraphOverlay {
	if step == nil {
		return nil
	}
	return &GraphOverlay{
		Visited:   step.Visited,
		Current:   step.Current,
		Neighbor:  step.Neighbor,
		Distances: step.Distances,
	}
}

// Classify applies the highlighting precedence: visited, then current, then
// the probed neighbor.
func (o *GraphOverlay) Classify(v domain.Vertex) Class {
	switch {
	case o == nil:
		return ClassNone
	case slices.Contains(o.Visited, v):
		return ClassVisited
	case o.Current != nil && *o.Current == v:
		return ClassCurrent
	case o.Neighbor != nil && *o.Neighbor == v:
		return ClassNeighbor
	}
	return ClassNone
}

// Highlights reports whether e joins the current vertex and the probed
// neighbor, in either direction.
func (o *GraphOverlay) Highlights(e domain.Edge) bool {
	if o == nil || o.Current == nil || o.Neighbor == nil {
		return false
	}
	c, n := *o.Current, *o.Neighbor
	return (e.From == c && e.To == n) || (e.From == n && e.To == c)
}

// GenerateMermaid produces a Mermaid flowchart of g.
// The source vertex is drawn as a double circle, the others as circles.
// Undirected graphs draw each mirrored edge pair once.
// When an overlay is given, vertices are labelled with their distance and
// styled as visited (green), current (blue) or neighbor (pink), and the
// edge being relaxed is highlighted.
func GenerateMermaid(g *domain.Graph, source domain.Vertex, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, v := range g.Vertices() {
		label := fmt.Sprintf("%d", v)
		if overlay != nil && overlay.Distances != nil {
			label = fmt.Sprintf("%d<br/>%s", v, overlay.Distances.Get(v))
		}
		opener, closer := "((", "))"
		if v == source {
			opener, closer = "(((", ")))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", mermaidID(v), opener, label, closer))
	}

	arrow := "-->"
	if !g.Directed() {
		arrow = "---"
	}
	var highlighted []int
	link := 0
	for _, e := range g.Edges() {
		if !g.Directed() && e.From > e.To {
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s %s|%d| %s\n", mermaidID(e.From), arrow, e.Weight, mermaidID(e.To)))
		if overlay.Highlights(e) {
			highlighted = append(highlighted, link)
		}
		link++
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#4caf50,stroke:#666666,color:#fff;\n")
		sb.WriteString("    classDef current fill:#264f78,stroke:#ffffff,stroke-width:3px,color:#fff;\n")
		sb.WriteString("    classDef neighbor fill:#ff69b4,stroke:#ffffff,color:#000;\n")

		byClass := make(map[Class][]string)
		for _, v := range g.Vertices() {
			if c := overlay.Classify(v); c != ClassNone {
				byClass[c] = append(byClass[c], mermaidID(v))
			}
		}
		for _, c := range []Class{ClassVisited, ClassCurrent, ClassNeighbor} {
			if ids := byClass[c]; len(ids) > 0 {
				sb.WriteString(fmt.Sprintf("    class %s %s;\n", strings.Join(ids, ","), c))
			}
		}
		for _, i := range highlighted {
			sb.WriteString(fmt.Sprintf("    linkStyle %d stroke:#ff69b4,stroke-width:4px;\n", i))
		}
	}

	return sb.String()
}

func mermaidID(v domain.Vertex) string {
	return fmt.Sprintf("v%d", v)
}

