package policy

import (
	"path"
	"strings"
)

// MatchScope checks whether an intent target falls inside a rule's scope.
//
// Plain patterns (no glob metacharacters) use prefix semantics:
// "/project/config" covers "/project/config/secrets.yaml", and "rm -rf"
// covers "rm -rf /tmp". Patterns containing *, ? or [ use glob semantics
// over "/"-separated segments:
//
//   - "*" matches within a single segment ("/project/*" matches
//     "/project/src" but not "/project/src/main.go")
//   - "**" spans zero or more whole segments ("/project/**" matches
//     everything under /project)
//   - "?" and character classes follow path.Match
//
// Malformed glob patterns never match; a broken rule must not grant access.
func MatchScope(pattern, target string) bool {
	if pattern == "" {
		return false
	}
	if !strings.ContainsAny(pattern, "*?[") {
		return target == pattern || strings.HasPrefix(target, pattern)
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(target, "/"))
}

// matchSegments matches glob pattern segments against target segments.
// A "**" segment spans zero or more target segments; every other segment
// is matched with path.Match.
func matchSegments(pat, tgt []string) bool {
	if len(pat) == 0 {
		return len(tgt) == 0
	}
	if pat[0] == "**" {
		if matchSegments(pat[1:], tgt) {
			return true
		}
		if len(tgt) == 0 {
			return false
		}
		return matchSegments(pat, tgt[1:])
	}
	if len(tgt) == 0 {
		return false
	}
	ok, err := path.Match(pat[0], tgt[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pat[1:], tgt[1:])
}
