package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openclaw/clawshield/internal/clawshield/executor"
	"github.com/openclaw/clawshield/internal/clawshield/policy"
	"github.com/openclaw/clawshield/internal/clawshield/resolver"
	"github.com/openclaw/clawshield/internal/clawshield/store"
	"github.com/openclaw/clawshield/internal/clawshield/types"
)

// State names a stage of a pipeline run.
type State string

const (
	StateResolving  State = "RESOLVING"
	StateValidating State = "VALIDATING"
	StateExecuting  State = "EXECUTING"
	StateCompleted  State = "COMPLETED"
	StateFailed     State = "FAILED"
)

// Event is one progress notification. Events arrive in strict transition
// order; the last event on a run's channel is terminal (Completed or
// Failed) and the channel is closed after it, even under timeout or fault.
type Event struct {
	RunID    uuid.UUID
	State    State
	Intent   *types.Intent
	Decision *types.Decision

	// Terminal payload: Record and Entry on Completed, Err on Failed.
	Record *types.ExecutionRecord
	Entry  *store.LogEntry
	Err    error
}

// Terminal reports whether this is the run's final event.
func (e Event) Terminal() bool {
	return e.State == StateCompleted || e.State == StateFailed
}

// ErrRunActive is returned by Submit while another run is in flight.
// Concurrent submissions are rejected, not queued; callers retry once the
// active run completes.
var ErrRunActive = errors.New("pipeline: a run is already in progress")

// AuditFault reports that a completed run could not be appended to the
// audit log. It is deliberately distinct from a policy block: the action
// may have happened, but the record of it is lost.
type AuditFault struct {
	Err error
}

func (e *AuditFault) Error() string { return fmt.Sprintf("audit append failed: %v", e.Err) }
func (e *AuditFault) Unwrap() error { return e.Err }

// Config bounds the two external calls a run makes. Zero values mean no
// timeout.
type Config struct {
	ResolveTimeout time.Duration
	ExecuteTimeout time.Duration
}

// Orchestrator sequences resolution, validation, execution and audit for
// one instruction at a time. The single-flight guard is a mutex-guarded run
// slot so it can grow into a multi-slot pool without changing callers.
type Orchestrator struct {
	resolver  resolver.Resolver
	validator *policy.Validator
	executor  executor.Executor
	audit     store.AuditStore
	logger    *log.Logger
	cfg       Config

	mu     sync.Mutex
	active *run
}

type run struct {
	id        uuid.UUID
	startedAt time.Time
}

type Dependencies struct {
	Resolver  resolver.Resolver
	Validator *policy.Validator
	Executor  executor.Executor
	Audit     store.AuditStore
	Logger    *log.Logger
}

func NewOrchestrator(d Dependencies, cfg Config) *Orchestrator {
	return &Orchestrator{
		resolver:  d.Resolver,
		validator: d.Validator,
		executor:  d.Executor,
		audit:     d.Audit,
		logger:    d.Logger,
		cfg:       cfg,
	}
}

// Submit starts a pipeline run for the instruction text and returns its
// event channel. Returns ErrRunActive if a run is already in flight.
//
// The channel is buffered for a full run's worth of events, so a caller
// that stops reading cannot stall the pipeline; it may simply ignore late
// notifications. There is no cancellation: once resolving begins, the run
// proceeds to a terminal state even if the caller's context expires.
func (o *Orchestrator) Submit(ctx context.Context, text string) (<-chan Event, error) {
	r := &run{id: uuid.New(), startedAt: time.Now().UTC()}

	o.mu.Lock()
	if o.active != nil {
		o.mu.Unlock()
		return nil, ErrRunActive
	}
	o.active = r
	o.mu.Unlock()

	// A run holds at most four events (three transitions plus terminal).
	ch := make(chan Event, 4)

	// Detach from the caller's cancellation; the run must reach a terminal
	// state and deliver its events regardless of the caller's fate.
	go o.execute(context.WithoutCancel(ctx), r, text, ch)

	return ch, nil
}

// Run submits the instruction and blocks until the terminal event, for
// callers that don't want incremental progress.
func (o *Orchestrator) Run(ctx context.Context, text string) (types.ExecutionRecord, store.LogEntry, error) {
	ch, err := o.Submit(ctx, text)
	if err != nil {
		return types.ExecutionRecord{}, store.LogEntry{}, err
	}

	var last Event
	for ev := range ch {
		last = ev
	}

	if last.Err != nil {
		return types.ExecutionRecord{}, store.LogEntry{}, last.Err
	}
	return *last.Record, *last.Entry, nil
}

func (o *Orchestrator) execute(ctx context.Context, r *run, text string, ch chan<- Event) {
	defer close(ch)
	defer func() {
		o.mu.Lock()
		o.active = nil
		o.mu.Unlock()
	}()

	in := types.Instruction{Text: text, SubmittedAt: r.startedAt}

	// Resolving.
	ch <- Event{RunID: r.id, State: StateResolving}

	intent, err := o.resolveStage(ctx, in)
	if err != nil {
		o.logger.Printf("run %s failed during resolution: %v", r.id, err)
		ch <- Event{RunID: r.id, State: StateFailed, Err: err}
		return
	}

	// Validating.
	ch <- Event{RunID: r.id, State: StateValidating, Intent: &intent}

	decision, verr := o.validator.Validate(intent)
	if verr != nil {
		// The run continues with the default-deny decision; the broken
		// rule set is an operator problem, not a reason to hang the run.
		o.logger.Printf("run %s: %v", r.id, verr)
	}

	rec := types.ExecutionRecord{Intent: intent, Decision: decision}

	if decision.Status == types.DecisionApproved {
		// Executing. Never entered for a blocked decision.
		ch <- Event{RunID: r.id, State: StateExecuting, Intent: &intent, Decision: &decision}
		rec.Status, rec.Message = o.executeStage(ctx, intent)
	} else {
		rec.Status = types.RunBlocked
		rec.Message = "Security Alert: Operation Blocked."
	}
	rec.Timestamp = time.Now().UTC()

	entry, err := o.audit.Append(ctx, rec)
	if err != nil {
		fault := &AuditFault{Err: err}
		o.logger.Printf("run %s: %v", r.id, fault)
		ch <- Event{RunID: r.id, State: StateFailed, Intent: &intent, Decision: &decision, Err: fault}
		return
	}

	ch <- Event{
		RunID:    r.id,
		State:    StateCompleted,
		Intent:   &intent,
		Decision: &decision,
		Record:   &rec,
		Entry:    &entry,
	}
}

// resolveStage runs intent resolution under its timeout. A timeout here is
// reported like a resolution failure: with no intent there is nothing to
// audit.
func (o *Orchestrator) resolveStage(ctx context.Context, in types.Instruction) (types.Intent, error) {
	if o.cfg.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.ResolveTimeout)
		defer cancel()
	}

	intent, err := o.resolver.Resolve(ctx, in)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return types.Intent{}, &resolver.ResolutionError{Text: in.Text, Detail: "intent resolution timed out"}
		}
		return types.Intent{}, err
	}
	return intent, nil
}

// executeStage runs the approved side effect under its timeout. Faults and
// timeouts surface as a blocked outcome with the reason in the message,
// never as silent success.
func (o *Orchestrator) executeStage(ctx context.Context, intent types.Intent) (types.RunStatus, string) {
	if o.cfg.ExecuteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.ExecuteTimeout)
		defer cancel()
	}

	msg, err := o.executor.Execute(ctx, intent)
	switch {
	case err == nil:
		return types.RunSucceeded, msg
	case errors.Is(err, context.DeadlineExceeded):
		return types.RunBlocked, "Execution timed out before completing."
	default:
		fault := &executor.Fault{Intent: intent, Detail: err.Error()}
		return types.RunBlocked, fault.Error()
	}
}
