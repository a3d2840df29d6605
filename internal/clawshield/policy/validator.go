package policy

import (
	"fmt"
	"sync/atomic"

	"github.com/openclaw/clawshield/internal/clawshield/types"
)

// EvaluationFault reports a malformed rule set encountered during
// validation. The affected run still receives a default-deny decision; the
// fault is surfaced so the operator learns the rule set needs fixing.
type EvaluationFault struct {
	RuleID string
	Detail string
}

func (e *EvaluationFault) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("policy evaluation fault: %s", e.Detail)
	}
	return fmt.Sprintf("policy evaluation fault at rule %s: %s", e.RuleID, e.Detail)
}

// Validator evaluates intents against the active rule-set snapshot.
//
// The snapshot is held behind an atomic pointer: Validate reads it without
// locking, and Swap replaces it wholesale. An in-flight validation always
// sees one consistent rule set; a reload never interleaves with it.
type Validator struct {
	rules atomic.Pointer[RuleSet]
}

func NewValidator(rs *RuleSet) *Validator {
	v := &Validator{}
	if rs != nil {
		v.rules.Store(rs)
	}
	return v
}

// Swap atomically replaces the active rule set. In-flight validations keep
// the snapshot they started with.
func (v *Validator) Swap(rs *RuleSet) { v.rules.Store(rs) }

// Snapshot returns the currently active rule set, or nil if none is loaded.
func (v *Validator) Snapshot() *RuleSet { return v.rules.Load() }

// Validate scans the rules in authoring order and returns the decision of
// the first matching rule. Deny-by-default: no match, no rule set, or a
// malformed rule all yield a Blocked decision. Absence of an explicit
// allow is never permission. The error, when non-nil, is an
// *EvaluationFault; the decision is valid either way.
func (v *Validator) Validate(intent types.Intent) (types.Decision, error) {
	rs := v.rules.Load()
	if rs == nil {
		return defaultDeny(), &EvaluationFault{Detail: "no rule set loaded"}
	}

	for _, r := range rs.Rules {
		if !r.Matches(intent) {
			continue
		}
		switch r.Verdict {
		case VerdictAllowed:
			return types.Decision{
				Status:        types.DecisionApproved,
				MatchedRuleID: r.ID,
			}, nil
		case VerdictBlocked:
			return types.Decision{
				Status:        types.DecisionBlocked,
				MatchedRuleID: r.ID,
				Reason:        fmt.Sprintf("Blocked by rule %s: %s", r.ID, r.Scope),
			}, nil
		case VerdictRestricted:
			// No synchronous approval channel exists, so a Restricted match
			// blocks. The conservative default, never an implicit allow.
			return types.Decision{
				Status:        types.DecisionBlocked,
				MatchedRuleID: r.ID,
				Reason:        "Restricted: requires manual approval",
			}, nil
		default:
			return defaultDeny(), &EvaluationFault{
				RuleID: r.ID,
				Detail: fmt.Sprintf("unknown verdict %q", r.Verdict),
			}
		}
	}

	return defaultDeny(), nil
}

func defaultDeny() types.Decision {
	return types.Decision{
		Status: types.DecisionBlocked,
		Reason: "No applicable policy: default deny",
	}
}
