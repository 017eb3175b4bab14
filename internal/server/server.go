// Package server exposes the calculator over HTTP and WebSocket.
//
// Endpoints:
//
//	POST /api/evaluate  Input -> Result
//	POST /api/sweep     {"input": Input, "steps": n} -> sweep rows
//	POST /tool          ToolRequest -> ToolResponse
//	GET  /schema        tool schema for agent registration
//	GET  /health        liveness check
//	GET  /ws            live session, one Result per Input
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/njchilds90/diffcalc"
	"github.com/njchilds90/diffcalc/internal/config"
	"github.com/njchilds90/diffcalc/internal/logging"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Server serves one Calculator. It keeps no per-request state.
type Server struct {
	calc *diffcalc.Calculator
	cfg  config.ServerConfig
	log  *slog.Logger
	mux  *http.ServeMux
}

// New builds a Server. A nil logger discards output.
func New(calc *diffcalc.Calculator, cfg config.ServerConfig, log *slog.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	s := &Server{calc: calc, cfg: cfg, log: log, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/evaluate", s.handleEvaluate)
	s.mux.HandleFunc("/api/sweep", s.handleSweep)
	s.mux.HandleFunc("/tool", s.handleTool)
	s.mux.HandleFunc("/schema", s.handleSchema)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/ws", newWSHandler(s.calc, s.log, s.cfg.MaxBodyBytes, s.cfg.AllowedOrigins))
}

// Handler returns the routed handler with request ids and panic recovery.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withRecover(s.mux))
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: orDefault(s.cfg.ReadHeaderTimeout.Duration, 5*time.Second),
		ReadTimeout:       orDefault(s.cfg.ReadTimeout.Duration, 15*time.Second),
		WriteTimeout:      orDefault(s.cfg.WriteTimeout.Duration, 15*time.Second),
		IdleTimeout:       orDefault(s.cfg.IdleTimeout.Duration, 60*time.Second),
	}

	s.log.Info("diffcalc server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), orDefault(s.cfg.ShutdownTimeout.Duration, 10*time.Second))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var in diffcalc.Input
	if err := s.decode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res := s.calc.Evaluate(r.Context(), in)
	logging.FromContext(r.Context(), s.log).Debug("evaluated",
		"function", in.Function, "point", in.Point, "step", in.Step, "status", res.Status)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req diffcalc.SweepRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp := s.calc.SweepStatus(r.Context(), req)
	logging.FromContext(r.Context(), s.log).Debug("swept",
		"function", req.Input.Function, "rows", len(resp.Rows), "status", resp.Status)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req diffcalc.ToolRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp := s.calc.HandleToolCall(r.Context(), req)
	logging.FromContext(r.Context(), s.log).Debug("tool call", "tool", req.Tool, "error", resp.Error)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, diffcalc.ToolSpec())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// decode reads exactly one JSON value, rejecting unknown fields and trailing data.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("invalid JSON: trailing data")
	}
	return nil
}

func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.FromContext(r.Context(), s.log).Error("panic in handler",
					"path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = logging.NewRequestID()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := logging.WithRequestID(r.Context(), id)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.FromContext(ctx, s.log).Info("request",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
