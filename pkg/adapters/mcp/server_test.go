package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, g *domain.Graph) *client.Client {
	t.Helper()
	srv := NewServer(g, 0)

	c, err := client.NewInProcessClient(srv.MCPServer())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{Name: "waypoint-test", Version: "1.0.0"}
	result, err := c.Initialize(ctx, initRequest)
	require.NoError(t, err)
	assert.Equal(t, "waypoint-mcp", result.ServerInfo.Name)
	return c
}

// callTool invokes a tool and decodes its JSON text content into out.
func callTool(t *testing.T, c *client.Client, name string, args map[string]any, out any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := c.CallTool(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)

	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	if !res.IsError && out != nil {
		require.NoError(t, json.Unmarshal([]byte(text.Text), out), text.Text)
	}
	return res
}

func TestMCP_ListTools(t *testing.T) {
	c := newTestClient(t, domain.ReferenceGraph())

	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"generate_trace", "get_step", "shortest_path"}, names)
}

func TestMCP_GenerateTrace(t *testing.T) {
	c := newTestClient(t, domain.ReferenceGraph())

	var out TraceSummary
	res := callTool(t, c, "generate_trace", map[string]any{}, &out)
	require.False(t, res.IsError)

	assert.Equal(t, domain.Vertex(0), out.Source)
	assert.Equal(t, 70, out.Steps)
	assert.Equal(t, 5, out.Counts[domain.StepInitDistance])
	assert.Equal(t, 5, out.Counts[domain.StepFinalizeVertex])
	assert.Equal(t, 1, out.Counts[domain.StepComplete])
	assert.Equal(t, domain.DistanceTable{0: 0, 1: 3, 2: 2, 3: 8, 4: 10}, out.Distances)
	assert.Equal(t, []domain.Vertex{0, 2, 1, 3, 4}, out.Paths["4"])
	assert.Nil(t, out.Trace)

	out = TraceSummary{}
	callTool(t, c, "generate_trace", map[string]any{"start": 4, "include_steps": true}, &out)
	assert.Equal(t, domain.Vertex(4), out.Source)
	require.NotNil(t, out.Trace)
	assert.Len(t, out.Trace.Steps, out.Steps)
	assert.Equal(t, domain.StepComplete, out.Trace.Steps[out.Steps-1].Kind)
}

func TestMCP_GenerateTraceInvalidStart(t *testing.T) {
	c := newTestClient(t, domain.ReferenceGraph())

	res := callTool(t, c, "generate_trace", map[string]any{"start": 42}, nil)
	assert.True(t, res.IsError)

	res = callTool(t, c, "generate_trace", map[string]any{"start": "zero"}, nil)
	assert.True(t, res.IsError)
}

func TestMCP_GetStep(t *testing.T) {
	c := newTestClient(t, domain.ReferenceGraph())

	var step domain.Step
	res := callTool(t, c, "get_step", map[string]any{"index": 16}, &step)
	require.False(t, res.IsError)

	assert.Equal(t, domain.StepRelaxEdge, step.Kind)
	require.NotNil(t, step.Current)
	require.NotNil(t, step.Neighbor)
	assert.Equal(t, domain.Vertex(0), *step.Current)
	assert.Equal(t, domain.Vertex(1), *step.Neighbor)
	assert.Equal(t, 32, step.SourceLine)
	assert.IsType(t, domain.RelaxEdgeDetail{}, step.Detail)

	res = callTool(t, c, "get_step", map[string]any{"index": 70}, nil)
	assert.True(t, res.IsError)
}

func TestMCP_ShortestPath(t *testing.T) {
	g := domain.ReferenceGraph()
	g.AddVertex(5)
	c := newTestClient(t, g)

	var out PathResult
	callTool(t, c, "shortest_path", map[string]any{"target": 3}, &out)
	assert.True(t, out.Reachable)
	assert.Equal(t, domain.Distance(8), out.Distance)
	assert.Equal(t, []domain.Vertex{0, 2, 1, 3}, out.Path)

	out = PathResult{}
	callTool(t, c, "shortest_path", map[string]any{"target": 5}, &out)
	assert.False(t, out.Reachable)
	assert.True(t, out.Distance.IsInfinite())
	assert.Empty(t, out.Path)

	res := callTool(t, c, "shortest_path", map[string]any{"target": 9}, nil)
	assert.True(t, res.IsError)
}

func TestMCP_Resources(t *testing.T) {
	c := newTestClient(t, domain.ReferenceGraph())

	read := func(uri string) string {
		t.Helper()
		req := mcp.ReadResourceRequest{}
		req.Params.URI = uri
		res, err := c.ReadResource(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		text, ok := mcp.AsTextResourceContents(res.Contents[0])
		require.True(t, ok)
		return text.Text
	}

	assert.Contains(t, read(graphURI), "graph LR")
	assert.Contains(t, read(graphURI), "v0 ---|4| v1")
	assert.Contains(t, read(listingURI), "## Reference listing")

	var def struct {
		Directed  bool                                `json:"directed"`
		Start     int                                 `json:"start"`
		Adjacency map[string]map[string]domain.Weight `json:"adjacency"`
	}
	require.NoError(t, json.Unmarshal([]byte(read(graphJSONURI)), &def))
	assert.False(t, def.Directed)
	assert.Equal(t, domain.Weight(4), def.Adjacency["0"]["1"])
}
