package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// An empty style detects a light or dark background; "notty" disables ANSI output.
func NewRenderer(style string) (func(string) (string, error), error) {
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(100))
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// ListingMarkdown returns the reference listing as a fenced code block with
// line numbers, optionally marking one line.
func ListingMarkdown(highlight int) string {
	var sb strings.Builder
	sb.WriteString("## Reference listing\n\n```go\n")
	for i, line := range runtime.ListingLines() {
		marker := "  "
		if i+1 == highlight {
			marker = "▶ "
		}
		sb.WriteString(fmt.Sprintf("%s%2d  %s\n", marker, i+1, line))
	}
	sb.WriteString("```\n")
	return sb.String()
}

// TraceMarkdown renders a trace as a markdown table, one row per step.
func TraceMarkdown(trace *domain.Trace) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Trace from vertex %d\n\n", trace.Source))
	sb.WriteString("| # | Kind | Line | Distances | Visited | Message |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for i, s := range trace.Steps {
		sb.WriteString(fmt.Sprintf("| %d | %s | %d | %s | %s | %s |\n",
			i+1, s.Kind, s.SourceLine, formatDistances(s.Distances), formatVertices(s.Visited), s.Message))
	}

	final := trace.Final()
	sb.WriteString("\n## Shortest paths\n\n")
	sb.WriteString("| Vertex | Distance | Path |\n|---|---|---|\n")
	for _, v := range final.Vertices() {
		path := "unreachable"
		if p, err := trace.PathTo(v); err == nil {
			path = formatPath(p)
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s |\n", v, final[v], path))
	}
	return sb.String()
}

func formatDistances(t domain.DistanceTable) string {
	if len(t) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(t))
	for _, v := range t.Vertices() {
		parts = append(parts, fmt.Sprintf("%d:%s", v, t[v]))
	}
	return strings.Join(parts, " ")
}

func formatVertices(vs []domain.Vertex) string {
	if len(vs) == 0 {
		return "-"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}

func formatPath(p []domain.Vertex) string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " → ")
}
