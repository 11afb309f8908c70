package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lavoz-media/centralita/internal/callstore"
	"github.com/lavoz-media/centralita/internal/events"
	"github.com/lavoz-media/centralita/internal/pipeline"
	"github.com/lavoz-media/centralita/internal/similarity"
	"github.com/lavoz-media/centralita/internal/transcript"
)

type Server struct {
	router   *chi.Mux
	port     int
	pipeline *pipeline.Pipeline
	engine   *similarity.Engine
	store    *callstore.Store
	sink     events.Sink
}

func NewServer(port int, p *pipeline.Pipeline, e *similarity.Engine, s *callstore.Store, sink events.Sink) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	srv := &Server{
		router:   router,
		port:     port,
		pipeline: p,
		engine:   e,
		store:    s,
		sink:     sink,
	}

	router.Get("/health", srv.health)
	router.Get("/api/v1/centralita/status", srv.status)
	router.Post("/api/v1/centralita/separate", srv.separate)
	router.Post("/api/v1/centralita/process", srv.process)

	return srv
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "centralita",
		"status":  "ready",
	})
}

type separateRequest struct {
	Source   string               `json:"source"`
	Segments []transcript.Segment `json:"segments"`
}

func (s *Server) separate(w http.ResponseWriter, r *http.Request) {
	var req separateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse request: %w", err))
		return
	}
	if len(req.Segments) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("segments are required"))
		return
	}

	calls, err := s.pipeline.SeparateCalls(r.Context(), req.Segments, req.Source, s.sink)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"calls": calls})
}

type processRequest struct {
	FileName string `json:"fileName"`
}

func (s *Server) process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse request: %w", err))
		return
	}
	if req.FileName == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("fileName is required"))
		return
	}

	rec, err := s.store.Read(req.FileName)
	if err != nil {
		if errors.Is(err, callstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	result, err := s.engine.ProcessCall(r.Context(), rec)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
