package policy_test

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/openclaw/clawshield/internal/clawshield/policy"
)

const watcherWait = 3 * time.Second

// waitForVersion polls the validator until its snapshot reports the wanted
// version or the deadline passes.
func waitForVersion(t *testing.T, v *policy.Validator, want string) bool {
	t.Helper()
	deadline := time.Now().Add(watcherWait)
	for time.Now().Before(deadline) {
		if rs := v.Snapshot(); rs != nil && rs.Version == want {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

func TestWatcher_SwapsOnFileChange(t *testing.T) {
	path := writePolicyFile(t, `
version: v1
rules:
  - id: R1
    scope: /project
    action: All
    verdict: Allowed
`)

	rs, err := policy.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	v := policy.NewValidator(rs)

	w := policy.NewWatcher(path, v, log.New(io.Discard, "", 0))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(w.Stop)

	updated := `
version: v2
rules:
  - id: R1
    scope: /project
    action: All
    verdict: Blocked
`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("rewrite policy file: %v", err)
	}

	if !waitForVersion(t, v, "v2") {
		t.Fatal("validator never picked up the rewritten policy file")
	}
}

func TestWatcher_KeepsPreviousOnInvalidFile(t *testing.T) {
	path := writePolicyFile(t, `
version: v1
rules:
  - id: R1
    scope: /project
    action: All
    verdict: Allowed
`)

	rs, err := policy.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	v := policy.NewValidator(rs)

	w := policy.NewWatcher(path, v, log.New(io.Discard, "", 0))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(w.Stop)

	if err := os.WriteFile(path, []byte(`rules: [junk`), 0o644); err != nil {
		t.Fatalf("rewrite policy file: %v", err)
	}

	// Give the watcher a moment to observe and reject the broken file.
	time.Sleep(300 * time.Millisecond)

	if got := v.Snapshot().Version; got != "v1" {
		t.Fatalf("expected v1 to stay active after bad reload, got %q", got)
	}
}
