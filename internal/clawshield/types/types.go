package types

import "time"

// Instruction is the raw operator input. It is never persisted on its own;
// it exists only long enough to produce an Intent.
type Instruction struct {
	Text        string    `json:"text"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Intent is the structured interpretation of an Instruction: what the agent
// wants to do, and to what.
type Intent struct {
	Action     string   `json:"action"`
	Target     string   `json:"target"`
	Confidence *float64 `json:"confidence,omitempty"` // opaque resolver metadata
}

// RunStatus is the terminal outcome of a pipeline run.
type RunStatus string

const (
	RunSucceeded RunStatus = "SUCCESS"
	RunBlocked   RunStatus = "BLOCKED_OP"
)

// ExecutionRecord is the full result of one pipeline run. Exactly one is
// produced per accepted instruction; the orchestrator owns it until it is
// handed to the audit store.
type ExecutionRecord struct {
	Intent    Intent    `json:"intent"`
	Decision  Decision  `json:"decision"`
	Status    RunStatus `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// DecisionStatus is the policy verdict applied to an intent.
type DecisionStatus string

const (
	DecisionApproved DecisionStatus = "APPROVED"
	DecisionBlocked  DecisionStatus = "BLOCKED"
)

// Decision is the outcome of validating an intent against the rule set.
// MatchedRuleID is empty when no rule matched (default deny).
type Decision struct {
	Status        DecisionStatus `json:"status"`
	MatchedRuleID string         `json:"matched_rule_id,omitempty"`
	Reason        string         `json:"reason,omitempty"`
}

// StatsSnapshot is the dashboard view derived from the audit store. It is
// recomputed on every call, never cached.
type StatsSnapshot struct {
	TotalExecutions int64  `json:"total_executions"`
	PolicyBlocks    int64  `json:"policy_blocks"`
	SystemHealth    string `json:"system_health"`
	ActiveAgents    int    `json:"active_agents"`
}
