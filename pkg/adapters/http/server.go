package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/sluice/internal/logging"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/schema"
	"github.com/go-chi/chi/v5"
)

// Editor is the slice of the sluice editor the HTTP API drives.
type Editor interface {
	View() domain.GraphView
	Definition() *schema.Definition
	Results() map[string]float64
	AddNode(n *domain.Node) error
	RemoveNode(id string) error
	SetValue(id string, v float64) error
	Connect(source, output, target, input string) (domain.Connection, error)
	DisconnectID(id string) error
	Process(ctx context.Context) error
}

// Server serves the editor API.
type Server struct {
	Editor  Editor
	Streams *StreamManager
	logger  *slog.Logger
	mounts  map[string]http.Handler
}

// Option configures the handler.
type Option func(*Server)

// WithStreams sets the stream manager fed by the editor's notifications.
// Without it /events only ever sends the initial ping.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHandler mounts an extra handler (e.g. Prometheus metrics) at path.
func WithHandler(path string, h http.Handler) Option {
	return func(s *Server) {
		s.mounts[path] = h
	}
}

// NewHandler creates a new HTTP handler for the editor.
func NewHandler(editor Editor, opts ...Option) http.Handler {
	s := &Server{
		Editor: editor,
		logger: logging.NewNop(),
		mounts: make(map[string]http.Handler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(WithStreamLogger(s.logger))
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/graph", s.GetGraph)
	r.Get("/definition", s.GetDefinition)
	r.Get("/results", s.GetResults)
	r.Post("/process", s.Process)
	r.Post("/nodes", s.AddNode)
	r.Delete("/nodes/{id}", s.RemoveNode)
	r.Put("/nodes/{id}/value", s.SetValue)
	r.Post("/connections", s.Connect)
	r.Delete("/connections/{id}", s.Disconnect)
	r.Get("/events", s.SubscribeEvents)
	for path, h := range s.mounts {
		r.Handle(path, h)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetGraph handles the GET /graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.View())
}

// GetDefinition handles the GET /definition request.
func (s *Server) GetDefinition(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.Definition())
}

// GetResults handles the GET /results request.
func (s *Server) GetResults(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.Results())
}

// Process handles the POST /process request.
func (s *Server) Process(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.Process(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Editor.Results())
}

// AddNode handles the POST /nodes request.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	var spec schema.NodeSpec
	if !s.decode(w, r, &spec) {
		return
	}
	n, err := spec.Node()
	if err == nil {
		err = s.Editor.AddNode(n)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, n.View())
}

// RemoveNode handles the DELETE /nodes/{id} request.
func (s *Server) RemoveNode(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.RemoveNode(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type valueRequest struct {
	Value *float64 `json:"value"`
}

// SetValue handles the PUT /nodes/{id}/value request.
func (s *Server) SetValue(w http.ResponseWriter, r *http.Request) {
	var body valueRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.Value == nil {
		http.Error(w, "Invalid request body: value is required", http.StatusBadRequest)
		return
	}
	if err := s.Editor.SetValue(chi.URLParam(r, "id"), *body.Value); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Editor.Results())
}

// Connect handles the POST /connections request.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	var spec schema.ConnectionSpec
	if !s.decode(w, r, &spec) {
		return
	}
	c, err := spec.Connection()
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidEndpoint, err))
		return
	}
	if _, err := s.Editor.Connect(c.Source, c.SourceOutput, c.Target, c.TargetInput); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, c)
}

// Disconnect handles the DELETE /connections/{id} request.
// The id is "src.out->dst.in", URL-escaped.
func (s *Server) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.DisconnectID(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles the GET /events request (SSE).
// Every display notification is sent as a JSON data line.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// StatusOf maps editor errors to HTTP status codes.
func StatusOf(err error) int {
	var aggr *schema.AggregateError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateID),
		errors.Is(err, domain.ErrPortOccupied),
		errors.Is(err, domain.ErrCycle):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidEndpoint),
		errors.Is(err, domain.ErrKindMismatch),
		errors.Is(err, domain.ErrUnknownKind),
		errors.As(err, &aggr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
