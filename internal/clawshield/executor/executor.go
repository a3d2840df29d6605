package executor

import (
	"context"
	"fmt"

	"github.com/openclaw/clawshield/internal/clawshield/types"
)

// Executor performs the side effect for an approved intent and returns a
// human-readable result message. The pipeline treats it as an opaque,
// bounded external call; implementations are substitutable.
type Executor interface {
	Execute(ctx context.Context, intent types.Intent) (string, error)
}

// Func adapts a plain function to the Executor interface.
type Func func(ctx context.Context, intent types.Intent) (string, error)

func (f Func) Execute(ctx context.Context, intent types.Intent) (string, error) {
	return f(ctx, intent)
}

// Fault reports that an approved action failed during execution. The run is
// persisted as blocked with the fault reason, never downgraded to success.
type Fault struct {
	Intent types.Intent
	Detail string
}

func (e *Fault) Error() string {
	return fmt.Sprintf("execution fault for %s %s: %s", e.Intent.Action, e.Intent.Target, e.Detail)
}

// Simulated is the built-in executor: it performs no real side effect and
// reports success. Real command/filesystem execution lives outside this
// server.
type Simulated struct{}

func NewSimulated() *Simulated { return &Simulated{} }

func (*Simulated) Execute(ctx context.Context, _ types.Intent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "Execution verified and completed successfully.", nil
}
