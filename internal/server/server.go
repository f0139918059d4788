// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xeipuuv/gojsonschema"

	"workspace-assistant/internal/common/config"
	"workspace-assistant/internal/common/logger"
	"workspace-assistant/internal/models"
)

// requestSchema validates the query payload before it reaches the pipeline.
const requestSchema = `{
	"type": "object",
	"required": ["message", "workspace_id", "user_id"],
	"properties": {
		"message": {"type": "string", "minLength": 1},
		"workspace_id": {"type": "string", "minLength": 1},
		"user_id": {"type": "string", "minLength": 1},
		"channel_name": {"type": "string"},
		"user": {
			"type": "object",
			"properties": {
				"username": {"type": "string"},
				"full_name": {"type": "string"}
			}
		}
	}
}`

// QueryProcessor is the pipeline boundary the server calls into.
type QueryProcessor interface {
	Process(ctx context.Context, req models.AssistantRequest) (*models.AssistantResponse, error)
}

// healthCheck is one named dependency probe run by the liveness endpoint.
type healthCheck struct {
	name string
	ping func(ctx context.Context) error
}

// Server exposes the assistant over HTTP.
type Server struct {
	httpServer *http.Server
	processor  QueryProcessor
	schema     *gojsonschema.Schema
	checks     []healthCheck
	log        logger.Logger
}

func New(cfg config.ServerConfig, processor QueryProcessor, log logger.Logger) (*Server, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(requestSchema))
	if err != nil {
		return nil, fmt.Errorf("compile request schema: %w", err)
	}

	s := &Server{
		processor: processor,
		schema:    schema,
		log:       log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/assistant/query", s.handleQuery)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}
	return s, nil
}

// AddHealthCheck registers a dependency probe for /healthz.
func (s *Server) AddHealthCheck(name string, ping func(ctx context.Context) error) {
	s.checks = append(s.checks, healthCheck{name: name, ping: ping})
}

// Handler exposes the routing mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.log.Info("http server listening", map[string]interface{}{"addr": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	requestID := uuid.NewString()
	log := s.log.With(map[string]interface{}{"request_id": requestID})

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", "failed to read body")
		return
	}

	if details, ok := s.validate(body); !ok {
		log.Warn("request failed validation", map[string]interface{}{"details": details})
		writeError(w, http.StatusBadRequest, "invalid request", details)
		return
	}

	var req models.AssistantRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	resp, err := s.processor.Process(r.Context(), req)
	if err != nil {
		log.WithError(err).Error("query processing failed", map[string]interface{}{
			"workspace_id": req.WorkspaceID,
		})
		writeError(w, http.StatusInternalServerError, "query processing failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) validate(body []byte) (string, bool) {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return "body is not valid JSON", false
	}
	if result.Valid() {
		return "", true
	}

	var details []string
	for _, e := range result.Errors() {
		details = append(details, e.String())
	}
	return strings.Join(details, "; "), false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	payload := map[string]string{"status": "ok"}
	for _, check := range s.checks {
		if err := check.ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			payload["status"] = "degraded"
			payload[check.name] = err.Error()
			continue
		}
		payload[check.name] = "ok"
	}
	writeJSON(w, status, payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, models.ErrorResponse{Error: message, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
