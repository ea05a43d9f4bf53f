package forgeterm

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// maxRequestBody caps the size of JSON request bodies.
const maxRequestBody = 64 * 1024

// ExecuteRequest is the body of POST /api/execute.
type ExecuteRequest struct {
	Command   string `json:"command"`
	SessionID string `json:"session_id,omitempty"`
}

// ExecuteResponse is a CommandResult tagged with its session.
type ExecuteResponse struct {
	CommandResult
	SessionID string `json:"session_id,omitempty"`
}

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	Cwd       string `json:"cwd"`
}

// HistoryResponse lists a session's accepted commands.
type HistoryResponse struct {
	History []string `json:"history"`
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	Sessions  int       `json:"sessions"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the body of every non-2xx API reply.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// APIServer exposes a SessionManager over HTTP.
type APIServer struct {
	manager *SessionManager
	logger  *zap.Logger
}

// NewAPIRouter returns the HTTP handler for the terminal API.
func NewAPIRouter(manager *SessionManager, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &APIServer{manager: manager, logger: logger.Named("api")}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/execute", s.handleExecute).Methods(http.MethodPost)
	api.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", s.handleCloseSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", MetricsHandler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.sendError(w, http.StatusNotFound, "path not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.sendError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Use(metricsMiddleware)
	return s.loggingMiddleware(corsMiddleware(r))
}

func (s *APIServer) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Without a session id the command runs on a fresh session that is
	// discarded afterwards.
	sessionID := req.SessionID
	var result CommandResult
	if sessionID == "" {
		result = s.manager.ExecuteEphemeral(r.Context(), req.Command)
	} else {
		var err error
		result, err = s.manager.Execute(r.Context(), sessionID, req.Command)
		if err != nil {
			s.sendManagerError(w, err)
			return
		}
	}

	s.logger.Debug("command executed",
		zap.String("session_id", sessionID),
		zap.String("command", result.Command),
		zap.Int("exit_code", result.ExitCode))

	s.sendJSON(w, http.StatusOK, ExecuteResponse{CommandResult: result, SessionID: sessionID})
}

func (s *APIServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Create()
	if err != nil {
		s.sendManagerError(w, err)
		return
	}
	s.sendJSON(w, http.StatusCreated, SessionResponse{SessionID: sess.ID(), Cwd: sess.Cwd()})
}

func (s *APIServer) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Close(mux.Vars(r)["id"]); err != nil {
		s.sendManagerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *APIServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.manager.History(mux.Vars(r)["id"])
	if err != nil {
		s.sendManagerError(w, err)
		return
	}
	if history == nil {
		history = []string{}
	}
	s.sendJSON(w, http.StatusOK, HistoryResponse{History: history})
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Sessions:  s.manager.Len(),
		Timestamp: time.Now().UTC(),
	})
}

func (s *APIServer) sendManagerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		s.sendError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrTooManySessions):
		s.sendError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("session manager failure", zap.Error(err))
		s.sendError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *APIServer) sendJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *APIServer) sendError(w http.ResponseWriter, code int, message string) {
	s.sendJSON(w, code, ErrorResponse{Error: message, Status: code})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *APIServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.statusCode),
			zap.Duration("duration", time.Since(start)))
	})
}

// metricsMiddleware runs inside the router so the matched path template is
// available as the route label.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := r.URL.Path
		if m := mux.CurrentRoute(r); m != nil {
			if tpl, err := m.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		RecordHTTPRequest(r.Method, route, rw.statusCode)
	})
}

// corsMiddleware wraps the whole router so preflight requests, which match
// no route, are still answered.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
