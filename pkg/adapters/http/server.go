package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/playback"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var rawSpec []byte

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	return doc, nil
}

// Visualizer is the playback surface the server drives.
type Visualizer interface {
	Build() (*domain.Trace, error)
	Graph() *domain.Graph
	Start() domain.Vertex
	Controller() *playback.Controller
}

// Server serves the playback API.
type Server struct {
	Vis     Visualizer
	Streams *StreamManager

	spec    *openapi3.T
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager whose Render and Hooks are already
// attached to the visualizer. Without it /events never receives anything.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics serves /metrics from g instead of the default registry.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}
}

// WithLogger sets the logger for handler failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the visualizer.
func NewHandler(vis Visualizer, opts ...Option) (http.Handler, error) {
	spec, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}

	s := &Server{
		Vis:     vis,
		spec:    spec,
		metrics: promhttp.Handler(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	return enableCORS(s.Routes()), nil
}

// Routes registers every endpoint on a chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Method(http.MethodGet, "/metrics", s.metrics)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graph", s.GetGraph)
	r.Get("/graph.mmd", s.GetGraphMermaid)
	r.Post("/build", s.Build)
	r.Get("/trace", s.GetTrace)
	r.Get("/step", s.GetCurrentStep)
	r.Get("/steps/{index}", s.GetStep)
	r.Post("/step/forward", s.StepForward)
	r.Post("/step/backward", s.StepBackward)
	r.Post("/seek", s.Seek)
	r.Post("/play", s.Play)
	r.Post("/pause", s.Pause)
	r.Post("/toggle", s.Toggle)
	r.Post("/speed", s.SetSpeed)
	r.Get("/events", s.SubscribeEvents)
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Waypoint API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// StatusResponse describes the playback position.
type StatusResponse struct {
	BuildID    string           `json:"build_id,omitempty"`
	Index      int              `json:"index"`
	Total      int              `json:"total"`
	State      domain.PlayState `json:"state"`
	IntervalMs int64            `json:"interval_ms"`
	Moved      *bool            `json:"moved,omitempty"`
	Step       *domain.Step     `json:"step,omitempty"`
}

// GraphResponse is the JSON form of the traced graph.
type GraphResponse struct {
	Directed bool            `json:"directed"`
	Source   domain.Vertex   `json:"source"`
	Vertices []domain.Vertex `json:"vertices"`
	Edges    []domain.Edge   `json:"edges"`
}

type seekRequest struct {
	Index *int `json:"index"`
}

type speedRequest struct {
	Multiplier *float64 `json:"multiplier"`
	IntervalMs *int64   `json:"interval_ms"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec != nil && s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	s.writeJSON(w, map[string]string{
		"app":         "waypoint-http",
		"version":     strings.TrimSpace(waypoint.Version),
		"api_version": apiVersion,
	})
}

// GetGraph handles the GET /graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	g := s.Vis.Graph()
	s.writeJSON(w, GraphResponse{
		Directed: g.Directed(),
		Source:   s.Vis.Start(),
		Vertices: g.Vertices(),
		Edges:    g.Edges(),
	})
}

// GetGraphMermaid handles the GET /graph.mmd request. Without ?step the
// overlay follows the current step, if a trace is loaded.
func (s *Server) GetGraphMermaid(w http.ResponseWriter, r *http.Request) {
	ctrl := s.Vis.Controller()

	var overlay *graph.GraphOverlay
	if raw := r.URL.Query().Get("step"); raw != "" {
		i, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, fmt.Errorf("%w: step %q", errBadRequest, raw))
			return
		}
		trace := ctrl.Trace()
		if trace == nil {
			s.writeError(w, domain.ErrNoTrace)
			return
		}
		step, err := trace.Step(i)
		if err != nil {
			s.writeError(w, err)
			return
		}
		overlay = graph.OverlayFromStep(&step)
	} else if step, err := ctrl.Current(); err == nil {
		overlay = graph.OverlayFromStep(&step)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(s.Vis.Graph(), s.Vis.Start(), overlay))
}

// Build handles the POST /build request.
func (s *Server) Build(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Vis.Build(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeStatus(w, nil)
}

// GetTrace handles the GET /trace request.
func (s *Server) GetTrace(w http.ResponseWriter, r *http.Request) {
	trace := s.Vis.Controller().Trace()
	if trace == nil {
		s.writeError(w, domain.ErrNoTrace)
		return
	}
	s.writeJSON(w, trace)
}

// GetCurrentStep handles the GET /step request.
func (s *Server) GetCurrentStep(w http.ResponseWriter, r *http.Request) {
	if !s.requireTrace(w) {
		return
	}
	s.writeStatus(w, nil)
}

// GetStep handles the GET /steps/{index} request.
func (s *Server) GetStep(w http.ResponseWriter, r *http.Request) {
	trace := s.Vis.Controller().Trace()
	if trace == nil {
		s.writeError(w, domain.ErrNoTrace)
		return
	}
	raw := chi.URLParam(r, "index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: index %q", errBadRequest, raw))
		return
	}
	step, err := trace.Step(i)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, step)
}

// StepForward handles the POST /step/forward request.
func (s *Server) StepForward(w http.ResponseWriter, r *http.Request) {
	if !s.requireTrace(w) {
		return
	}
	moved := s.Vis.Controller().StepForward()
	s.writeStatus(w, &moved)
}

// StepBackward handles the POST /step/backward request.
func (s *Server) StepBackward(w http.ResponseWriter, r *http.Request) {
	if !s.requireTrace(w) {
		return
	}
	moved := s.Vis.Controller().StepBackward()
	s.writeStatus(w, &moved)
}

// Seek handles the POST /seek request.
func (s *Server) Seek(w http.ResponseWriter, r *http.Request) {
	var body seekRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Index == nil {
		s.writeError(w, fmt.Errorf("%w: expected {\"index\": n}", errBadRequest))
		return
	}
	if err := s.Vis.Controller().Seek(*body.Index); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeStatus(w, nil)
}

// Play handles the POST /play request.
func (s *Server) Play(w http.ResponseWriter, r *http.Request) {
	if err := s.Vis.Controller().Play(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeStatus(w, nil)
}

// Pause handles the POST /pause request.
func (s *Server) Pause(w http.ResponseWriter, r *http.Request) {
	s.Vis.Controller().Pause()
	s.writeStatus(w, nil)
}

// Toggle handles the POST /toggle request.
func (s *Server) Toggle(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Vis.Controller().Toggle(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeStatus(w, nil)
}

// SetSpeed handles the POST /speed request.
func (s *Server) SetSpeed(w http.ResponseWriter, r *http.Request) {
	var body speedRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid request body", errBadRequest))
		return
	}

	ctrl := s.Vis.Controller()
	var err error
	switch {
	case body.Multiplier != nil && body.IntervalMs == nil:
		err = ctrl.SetSpeed(*body.Multiplier)
	case body.IntervalMs != nil && body.Multiplier == nil:
		err = ctrl.SetInterval(time.Duration(*body.IntervalMs) * time.Millisecond)
	default:
		err = fmt.Errorf("%w: expected exactly one of multiplier or interval_ms", errBadRequest)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeStatus(w, nil)
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	// Parse 'watch' filter
	watch := make(map[string]bool)
	if raw := r.URL.Query().Get("watch"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			watch[strings.TrimSpace(name)] = true
		}
	}

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !watch[msg.Event] {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
			flusher.Flush()
		}
	}
}

// -- Helpers --

var errBadRequest = errors.New("bad request")

func (s *Server) requireTrace(w http.ResponseWriter) bool {
	if s.Vis.Controller().Trace() == nil {
		s.writeError(w, domain.ErrNoTrace)
		return false
	}
	return true
}

func (s *Server) status(moved *bool) StatusResponse {
	ctrl := s.Vis.Controller()
	index, total := ctrl.Position()
	resp := StatusResponse{
		BuildID:    ctrl.BuildID(),
		Index:      index,
		Total:      total,
		State:      ctrl.State(),
		IntervalMs: ctrl.Interval().Milliseconds(),
		Moved:      moved,
	}
	if step, err := ctrl.Current(); err == nil {
		resp.Step = &step
	}
	return resp
}

func (s *Server) writeStatus(w http.ResponseWriter, moved *bool) {
	s.writeJSON(w, s.status(moved))
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// statusCode maps domain errors onto HTTP statuses.
func statusCode(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrInvalidGraph),
		errors.Is(err, domain.ErrInvalidSpeed):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoTrace):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStepOutOfRange):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := statusCode(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	} else {
		s.logger.Warn("request rejected", "status", code, "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
