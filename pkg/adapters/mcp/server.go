package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/sync/errgroup"
)

const (
	graphURI     = "waypoint://graph"
	graphJSONURI = "waypoint://graph.json"
	listingURI   = "waypoint://listing"
)

// TraceSummary aligns with the OpenAPI trace schema and is shared by the
// generate_trace tool.
type TraceSummary struct {
	Source    domain.Vertex              `json:"source" jsonschema_description:"The start vertex"`
	Steps     int                        `json:"steps" jsonschema_description:"Number of recorded steps"`
	Counts    map[domain.StepKind]int    `json:"counts" jsonschema_description:"Number of steps per kind"`
	Distances domain.DistanceTable       `json:"distances" jsonschema_description:"Final distances; null means unreachable"`
	Paths     map[string][]domain.Vertex `json:"paths" jsonschema_description:"Shortest path to every reachable vertex"`
	Trace     *domain.Trace              `json:"trace,omitempty" jsonschema_description:"The full step list, when requested"`
}

// PathResult is the output of the shortest_path tool.
type PathResult struct {
	Source    domain.Vertex   `json:"source" jsonschema_description:"The start vertex"`
	Target    domain.Vertex   `json:"target" jsonschema_description:"The requested vertex"`
	Reachable bool            `json:"reachable" jsonschema_description:"Whether a path exists"`
	Distance  domain.Distance `json:"distance" jsonschema_description:"Total weight of the path; null when unreachable"`
	Path      []domain.Vertex `json:"path" jsonschema_description:"Vertices from source to target"`
}

type traceArgs struct {
	Start        *int `mapstructure:"start"`
	IncludeSteps bool `mapstructure:"include_steps"`
}

type stepArgs struct {
	Start *int `mapstructure:"start"`
	Index int  `mapstructure:"index"`
}

type pathArgs struct {
	Start  *int `mapstructure:"start"`
	Target int  `mapstructure:"target"`
}

// Server exposes the trace engine of a fixed graph as an MCP server.
// Every tool call generates its trace afresh; the server holds no playback state.
type Server struct {
	graph     *domain.Graph
	start     domain.Vertex
	engine    *runtime.Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for tool diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance for g, defaulting tool calls to start.
func NewServer(g *domain.Graph, start domain.Vertex, opts ...Option) *Server {
	s := &Server{
		graph:     g,
		start:     start,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("waypoint-mcp", waypoint.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = runtime.NewEngine(runtime.WithLogger(s.logger))
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for in-process transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts it down
// when ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: generate_trace
	traceTool := mcp.NewTool("generate_trace",
		mcp.WithDescription("Run Dijkstra's algorithm on the configured graph and summarize the recorded steps."),
		mcp.WithNumber("start", mcp.Description("Source vertex (defaults to the configured start)")),
		mcp.WithBoolean("include_steps", mcp.Description("Include the full step list in the result")),
		mcp.WithOutputSchema[TraceSummary](),
	)
	s.mcpServer.AddTool(traceTool, mcp.NewStructuredToolHandler(s.handleGenerateTrace))

	// TOOL: get_step
	stepTool := mcp.NewTool("get_step",
		mcp.WithDescription("Return one recorded step: its kind, distance snapshot, visited set, focus vertices and listing line."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based step index")),
		mcp.WithNumber("start", mcp.Description("Source vertex (defaults to the configured start)")),
	)
	s.mcpServer.AddTool(stepTool, mcp.NewStructuredToolHandler(s.handleGetStep))

	// TOOL: shortest_path
	pathTool := mcp.NewTool("shortest_path",
		mcp.WithDescription("Reconstruct the shortest path from the source to a target vertex."),
		mcp.WithNumber("target", mcp.Required(), mcp.Description("Destination vertex")),
		mcp.WithNumber("start", mcp.Description("Source vertex (defaults to the configured start)")),
		mcp.WithOutputSchema[PathResult](),
	)
	s.mcpServer.AddTool(pathTool, mcp.NewStructuredToolHandler(s.handleShortestPath))
}

func (s *Server) trace(start *int) (*domain.Trace, error) {
	source := s.start
	if start != nil {
		source = domain.Vertex(*start)
	}
	return s.engine.GenerateTrace(s.graph, source)
}

// decodeArgs maps loosely typed tool arguments (JSON numbers arrive as
// float64) onto a typed struct.
func decodeArgs(args map[string]any, target any) error {
	if err := mapstructure.Decode(args, target); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (s *Server) handleGenerateTrace(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (TraceSummary, error) {
	var in traceArgs
	if err := decodeArgs(args, &in); err != nil {
		return TraceSummary{}, err
	}

	trace, err := s.trace(in.Start)
	if err != nil {
		return TraceSummary{}, err
	}

	out := TraceSummary{
		Source:    trace.Source,
		Steps:     trace.Len(),
		Counts:    make(map[domain.StepKind]int),
		Distances: trace.Final(),
		Paths:     make(map[string][]domain.Vertex),
	}
	for _, kind := range domain.StepKinds {
		if n := trace.Count(kind); n > 0 {
			out.Counts[kind] = n
		}
	}
	for _, v := range out.Distances.Vertices() {
		if path, err := trace.PathTo(v); err == nil {
			out.Paths[strconv.Itoa(int(v))] = path
		}
	}
	if in.IncludeSteps {
		out.Trace = trace
	}

	s.logger.Debug("mcp generate_trace", "source", trace.Source, "steps", out.Steps)
	return out, nil
}

func (s *Server) handleGetStep(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (domain.Step, error) {
	var in stepArgs
	if err := decodeArgs(args, &in); err != nil {
		return domain.Step{}, err
	}

	trace, err := s.trace(in.Start)
	if err != nil {
		return domain.Step{}, err
	}
	return trace.Step(in.Index)
}

func (s *Server) handleShortestPath(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (PathResult, error) {
	var in pathArgs
	if err := decodeArgs(args, &in); err != nil {
		return PathResult{}, err
	}

	trace, err := s.trace(in.Start)
	if err != nil {
		return PathResult{}, err
	}

	target := domain.Vertex(in.Target)
	out := PathResult{
		Source:   trace.Source,
		Target:   target,
		Distance: trace.Final().Get(target),
		Path:     []domain.Vertex{},
	}
	path, err := trace.PathTo(target)
	switch {
	case errors.Is(err, domain.ErrUnreachable):
		return out, nil
	case err != nil:
		return PathResult{}, err
	}
	out.Reachable = true
	out.Path = path
	return out, nil
}

func (s *Server) registerResources() {
	// EXPOSE: waypoint://graph
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Graph Diagram",
		mcp.WithResourceDescription("Mermaid flowchart of the traced graph"),
		mcp.WithMIMEType("text/vnd.mermaid"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      graphURI,
				MIMEType: "text/vnd.mermaid",
				Text:     graph.GenerateMermaid(s.graph, s.start, nil),
			},
		}, nil
	})

	// EXPOSE: waypoint://graph.json
	s.mcpServer.AddResource(mcp.NewResource(graphJSONURI, "Graph Definition",
		mcp.WithResourceDescription("Adjacency map of the traced graph"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(map[string]any{
			"directed":  s.graph.Directed(),
			"start":     s.start,
			"adjacency": s.graph.Adjacency(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      graphJSONURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	// EXPOSE: waypoint://listing
	s.mcpServer.AddResource(mcp.NewResource(listingURI, "Reference Listing",
		mcp.WithResourceDescription("The listing that step source lines point into"),
		mcp.WithMIMEType("text/markdown"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      listingURI,
				MIMEType: "text/markdown",
				Text:     tui.ListingMarkdown(0),
			},
		}, nil
	})
}
