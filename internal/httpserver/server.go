// Package httpserver wires the API façade onto net/http, translating
// JSON request bodies into façade calls and façade responses back into
// JSON, with trace context extraction and structured request logging
// as middleware.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ignition/internal/api"
	"ignition/internal/logging"
	"ignition/internal/tracectx"
)

// Server is the HTTP front end for the infrastructure API façade.
type Server struct {
	facade *api.Facade
	mux    *http.ServeMux
}

// New constructs a Server and registers its routes.
func New(facade *api.Facade) *Server {
	s := &Server{facade: facade, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("POST /infrastructure", s.handleCreate)
	s.mux.HandleFunc("DELETE /infrastructure", s.handleDelete)
	s.mux.HandleFunc("POST /infrastructure/query", s.handleQuery)
	s.mux.HandleFunc("POST /infrastructure/find", s.handleFind)
}

// ServeHTTP makes Server an http.Handler, with trace context extraction
// and access logging applied to every request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := tracectx.FromHeaders(r.Context(), r.Header)
	r = r.WithContext(ctx)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)

	logging.Info(ctx, "httpserver", "%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func decodeBody(r *http.Request) (map[string]interface{}, error) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body, nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, s.facade.Create)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, s.facade.Delete)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, s.facade.Query)
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, s.facade.Find)
}

type facadeOp func(ctx context.Context, body map[string]interface{}) (map[string]interface{}, int, error)

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, op facadeOp) {
	body, err := decodeBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid JSON request body"})
		return
	}

	resp, status, err := op(r.Context(), body)
	if err != nil {
		var badRequest *api.BadRequestError
		if errors.As(err, &badRequest) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
			return
		}
		logging.Error(r.Context(), "httpserver", err, "request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
		return
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
