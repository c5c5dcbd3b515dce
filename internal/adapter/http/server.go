// Package http serves the risk API alongside the health, readiness and
// metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

const maxBodyBytes = 1 << 20

// RiskService is the scoring surface the API exposes.
type RiskService interface {
	Assess(reading domain.ClimateReading) (domain.RiskReport, error)
	Compare(a, b domain.ClimateReading) (domain.Comparison, error)
	ModelInfo() (domain.ModelInfo, error)
	StartTraining() error
	SeasonalProfile() domain.SeasonalProfile
	CheckReadiness(ctx context.Context) error
}

// CompareRequest is the body of POST /v1/compare. Both readings are required.
type CompareRequest struct {
	RegionA *domain.ClimateReading `json:"region_a"`
	RegionB *domain.ClimateReading `json:"region_b"`
}

// Server exposes the risk API plus /healthz, /readyz and /metrics.
type Server struct {
	httpServer *http.Server
	svc        RiskService
	logger     *slog.Logger
}

// NewServer wires the routes. Readiness follows the service: ready once a
// trained model is live.
func NewServer(addr string, svc RiskService, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/predict", s.handlePredict)
	mux.HandleFunc("POST /v1/compare", s.handleCompare)
	mux.HandleFunc("GET /v1/model", s.handleModelInfo)
	mux.HandleFunc("POST /v1/model/retrain", s.handleRetrain)
	mux.HandleFunc("GET /v1/analytics/seasonal", s.handleSeasonal)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var reading domain.ClimateReading
	if !decodeBody(w, r, &reading) {
		return
	}
	report, err := s.svc.Assess(reading)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RegionA == nil || req.RegionB == nil {
		s.writeError(w, fmt.Errorf("%w: region_a and region_b are required", domain.ErrInvalidReading))
		return
	}
	cmp, err := s.svc.Compare(*req.RegionA, *req.RegionB)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleModelInfo(w http.ResponseWriter, _ *http.Request) {
	info, err := s.svc.ModelInfo()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleRetrain(w http.ResponseWriter, _ *http.Request) {
	if err := s.svc.StartTraining(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "training started"})
}

func (s *Server) handleSeasonal(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.SeasonalProfile())
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidReading):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotTrained):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrTrainingInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody reads a JSON body into v, answering itself on failure: 422 when
// a reading is missing a measurement, 400 otherwise.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, domain.ErrInvalidReading) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("malformed request body: %v", err),
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
