package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/openclaw/clawshield/internal/clawshield/pipeline"
	"github.com/openclaw/clawshield/internal/clawshield/policy"
	"github.com/openclaw/clawshield/internal/clawshield/resolver"
	"github.com/openclaw/clawshield/internal/clawshield/stats"
	"github.com/openclaw/clawshield/internal/clawshield/store"
)

type Dependencies struct {
	Logger       *log.Logger
	Addr         string
	Orchestrator *pipeline.Orchestrator
	Validator    *policy.Validator
	Audit        store.AuditStore
	Stats        *stats.Aggregator
}

type Server struct {
	httpServer   *http.Server
	logger       *log.Logger
	mux          *http.ServeMux
	orchestrator *pipeline.Orchestrator
	validator    *policy.Validator
	audit        store.AuditStore
	stats        *stats.Aggregator
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:       d.Logger,
		mux:          mux,
		orchestrator: d.Orchestrator,
		validator:    d.Validator,
		audit:        d.Audit,
		stats:        d.Stats,
	}

	mux.HandleFunc("POST /v1/execute", s.handleExecute)
	mux.HandleFunc("GET /v1/execute/stream", s.handleExecuteStream)
	mux.HandleFunc("GET /v1/audit", s.handleAudit)
	mux.HandleFunc("GET /v1/stats", s.handleStats)
	mux.HandleFunc("GET /v1/policy", s.handlePolicy)

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type executeRequest struct {
	Instruction string `json:"instruction"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	rec, entry, err := s.orchestrator.Run(r.Context(), req.Instruction)
	if err != nil {
		s.writeRunError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, executeResponse{Trace: rec, LogEntry: entry})
}

func (s *Server) writeRunError(w http.ResponseWriter, err error) {
	var (
		resErr   *resolver.ResolutionError
		auditErr *pipeline.AuditFault
	)
	switch {
	case errors.Is(err, pipeline.ErrRunActive):
		writeError(w, http.StatusConflict, "run_active", "another instruction is still executing")
	case errors.As(err, &resErr):
		writeError(w, http.StatusUnprocessableEntity, "unresolvable_instruction", resErr.Detail)
	case errors.As(err, &auditErr):
		// Distinct from a policy block: the decision was reached but the
		// record of it is lost.
		writeError(w, http.StatusInternalServerError, "audit_failure", "run completed but could not be recorded")
	default:
		s.logger.Printf("execute error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
	}
}

// handleExecuteStream runs the pipeline and emits one SSE event per state
// transition, so a console UI can render incremental progress without
// artificial delays server-side.
func (s *Server) handleExecuteStream(w http.ResponseWriter, r *http.Request) {
	instruction := r.URL.Query().Get("instruction")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "no_stream", "streaming unsupported")
		return
	}

	ch, err := s.orchestrator.Submit(r.Context(), instruction)
	if err != nil {
		s.writeRunError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	for ev := range ch {
		if _, err := w.Write([]byte("event: " + string(ev.State) + "\ndata: ")); err != nil {
			return
		}
		if err := enc.Encode(streamEventFrom(ev)); err != nil {
			return
		}
		if _, err := w.Write([]byte("\n")); err != nil {
			return
		}
		flusher.Flush()
	}
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	f := store.Filter{Search: r.URL.Query().Get("search")}

	switch status := r.URL.Query().Get("status"); strings.ToLower(status) {
	case "", "all":
	case "success":
		f.Status = store.StatusSuccess
	case "blocked":
		f.Status = store.StatusBlocked
	default:
		writeError(w, http.StatusBadRequest, "bad_status", "status must be All, Success or Blocked")
		return
	}

	entries, err := s.audit.Query(r.Context(), f)
	if err != nil {
		s.logger.Printf("audit query error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	if entries == nil {
		entries = []store.LogEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.stats.Snapshot(r.Context())
	if err != nil {
		s.logger.Printf("stats error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// handlePolicy exposes the active rule set read-only; rule authoring is not
// this server's job.
func (s *Server) handlePolicy(w http.ResponseWriter, _ *http.Request) {
	rs := s.validator.Snapshot()
	if rs == nil {
		rs = &policy.RuleSet{}
	}
	writeJSON(w, http.StatusOK, rs)
}
