package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/openclaw/clawshield/internal/clawshield/pipeline"
	"github.com/openclaw/clawshield/internal/clawshield/store"
	"github.com/openclaw/clawshield/internal/clawshield/types"
)

type executeResponse struct {
	Trace    types.ExecutionRecord `json:"trace"`
	LogEntry store.LogEntry        `json:"log_entry"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// streamEvent is the SSE wire shape of a pipeline progress event.
type streamEvent struct {
	RunID    string                 `json:"run_id"`
	State    pipeline.State         `json:"state"`
	Intent   *types.Intent          `json:"intent,omitempty"`
	Decision *types.Decision        `json:"decision,omitempty"`
	Record   *types.ExecutionRecord `json:"record,omitempty"`
	LogEntry *store.LogEntry        `json:"log_entry,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

func streamEventFrom(ev pipeline.Event) streamEvent {
	out := streamEvent{
		RunID:    ev.RunID.String(),
		State:    ev.State,
		Intent:   ev.Intent,
		Decision: ev.Decision,
		Record:   ev.Record,
		LogEntry: ev.Entry,
	}
	if ev.Err != nil {
		out.Error = ev.Err.Error()
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}
