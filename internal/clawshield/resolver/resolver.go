package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openclaw/clawshield/internal/clawshield/types"
)

// Resolver turns a raw instruction into a structured intent. The pipeline
// treats implementations as opaque; anything satisfying the contract is
// substitutable (a real NLU model, a remote service, a test fake).
type Resolver interface {
	Resolve(ctx context.Context, in types.Instruction) (types.Intent, error)
}

// ResolutionError reports that an instruction could not be mapped to an
// action/target pair. Runs failing here are never persisted.
type ResolutionError struct {
	Text   string // the offending instruction text
	Detail string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve instruction: %s", e.Detail)
}

// IsResolutionError reports whether err is a ResolutionError.
func IsResolutionError(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re)
}

var verbActions = map[string]string{
	"delete": "Delete", "remove": "Delete", "clean": "Delete",
	"clear": "Delete", "erase": "Delete", "unlink": "Delete",

	"read": "Read", "list": "Read", "show": "Read",
	"view": "Read", "inspect": "Read", "cat": "Read",

	"write": "Write", "modify": "Write", "update": "Write",
	"create": "Write", "edit": "Write", "append": "Write", "patch": "Write",

	"run": "Execute", "execute": "Execute", "install": "Execute",
	"launch": "Execute", "start": "Execute", "deploy": "Execute",
}

// KeywordResolver is the deterministic built-in resolver: the first known
// verb picks the action, the first path-like token (or the remaining text)
// becomes the target. It exists so the pipeline works end to end without a
// language model behind it.
type KeywordResolver struct{}

func NewKeywordResolver() *KeywordResolver { return &KeywordResolver{} }

func (r *KeywordResolver) Resolve(_ context.Context, in types.Instruction) (types.Intent, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return types.Intent{}, &ResolutionError{Text: in.Text, Detail: "empty instruction"}
	}

	tokens := strings.Fields(text)

	action := ""
	verbIdx := -1
	for i, tok := range tokens {
		if a, ok := verbActions[normalizeToken(tok)]; ok {
			action = a
			verbIdx = i
			break
		}
	}
	if action == "" {
		return types.Intent{}, &ResolutionError{Text: in.Text, Detail: "no recognizable action verb"}
	}

	// Prefer an explicit path-like token after the verb; otherwise the rest
	// of the instruction is the target (e.g. "clean temp folder").
	target := ""
	confidence := 0.61
	for _, tok := range tokens[verbIdx+1:] {
		t := strings.Trim(tok, `"'`)
		if strings.Contains(t, "/") || strings.HasPrefix(t, ".") {
			target = strings.TrimRight(t, ".,;")
			confidence = 0.92
			break
		}
	}
	if target == "" {
		target = strings.Join(tokens[verbIdx+1:], " ")
	}
	if target == "" {
		return types.Intent{}, &ResolutionError{Text: in.Text, Detail: "no target in instruction"}
	}

	return types.Intent{Action: action, Target: target, Confidence: &confidence}, nil
}

func normalizeToken(tok string) string {
	return strings.ToLower(strings.Trim(tok, `"'.,;:!?`))
}
