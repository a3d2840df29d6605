package policy

import (
	"fmt"
	"strings"

	"github.com/openclaw/clawshield/internal/clawshield/types"
)

// Verdict is the outcome a rule assigns to a matching intent.
type Verdict string

const (
	VerdictAllowed    Verdict = "Allowed"
	VerdictRestricted Verdict = "Restricted"
	VerdictBlocked    Verdict = "Blocked"
)

// Rule is a single governance entry. Scope is matched against the intent
// target (prefix or glob, see MatchScope); Action matches the intent action,
// "All", or a "/"-separated list of alternatives (e.g. "Read/Write").
type Rule struct {
	ID      string  `yaml:"id" json:"id"`
	Scope   string  `yaml:"scope" json:"scope"`
	Action  string  `yaml:"action" json:"action"`
	Verdict Verdict `yaml:"verdict" json:"verdict"`
}

// Matches reports whether the rule applies to the intent.
func (r Rule) Matches(intent types.Intent) bool {
	return MatchScope(r.Scope, intent.Target) && matchAction(r.Action, intent.Action)
}

func matchAction(matcher, action string) bool {
	if strings.EqualFold(matcher, "All") {
		return true
	}
	for _, alt := range strings.Split(matcher, "/") {
		if strings.EqualFold(strings.TrimSpace(alt), action) {
			return true
		}
	}
	return false
}

// RuleSet is an immutable, ordered snapshot of the active rules. Authoring
// order is priority order: the first matching rule wins.
type RuleSet struct {
	Version string `yaml:"version" json:"version"`
	Rules   []Rule `yaml:"rules" json:"rules"`
}

// Check verifies the rule set is well formed: every rule needs a unique id,
// a scope, an action matcher, and a known verdict.
func (rs *RuleSet) Check() error {
	seen := make(map[string]struct{}, len(rs.Rules))
	for i, r := range rs.Rules {
		if strings.TrimSpace(r.ID) == "" {
			return fmt.Errorf("rule %d: missing id", i)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("rule %s: duplicate id", r.ID)
		}
		seen[r.ID] = struct{}{}
		if strings.TrimSpace(r.Scope) == "" {
			return fmt.Errorf("rule %s: missing scope", r.ID)
		}
		if strings.TrimSpace(r.Action) == "" {
			return fmt.Errorf("rule %s: missing action matcher", r.ID)
		}
		switch r.Verdict {
		case VerdictAllowed, VerdictRestricted, VerdictBlocked:
		default:
			return fmt.Errorf("rule %s: unknown verdict %q", r.ID, r.Verdict)
		}
	}
	return nil
}

// DefaultRuleSet returns the built-in governance rules used when no policy
// file is configured: directory access control plus a high-risk command
// filter.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Version: "builtin-1",
		Rules: []Rule{
			{ID: "POL-001-1", Scope: "/project/src", Action: "Read/Write", Verdict: VerdictAllowed},
			{ID: "POL-001-2", Scope: "/project/temp", Action: "All", Verdict: VerdictAllowed},
			{ID: "POL-001-3", Scope: "/project/config", Action: "Write", Verdict: VerdictRestricted},
			{ID: "POL-001-4", Scope: "/usr/local/bin", Action: "Execute", Verdict: VerdictBlocked},
			{ID: "POL-002-1", Scope: "npm install", Action: "Execute", Verdict: VerdictAllowed},
			{ID: "POL-002-2", Scope: "rm -rf", Action: "All", Verdict: VerdictBlocked},
			{ID: "POL-002-3", Scope: "sudo", Action: "All", Verdict: VerdictBlocked},
			{ID: "POL-002-4", Scope: "git push", Action: "Execute", Verdict: VerdictRestricted},
		},
	}
}
