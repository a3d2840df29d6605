package resolver_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openclaw/clawshield/internal/clawshield/resolver"
	"github.com/openclaw/clawshield/internal/clawshield/types"
)

func resolve(t *testing.T, text string) (types.Intent, error) {
	t.Helper()
	r := resolver.NewKeywordResolver()
	return r.Resolve(context.Background(), types.Instruction{
		Text:        text,
		SubmittedAt: time.Now().UTC(),
	})
}

func TestResolve_EmptyInstruction(t *testing.T) {
	_, err := resolve(t, "   ")
	var re *resolver.ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
}

func TestResolve_NoKnownVerb(t *testing.T) {
	_, err := resolve(t, "please summon the daemon of chaos")
	if !resolver.IsResolutionError(err) {
		t.Fatalf("expected ResolutionError for unintelligible text, got %v", err)
	}
}

func TestResolve_VerbWithoutTarget(t *testing.T) {
	_, err := resolve(t, "delete")
	if !resolver.IsResolutionError(err) {
		t.Fatalf("expected ResolutionError for missing target, got %v", err)
	}
}

func TestResolve_DeleteWithPath(t *testing.T) {
	intent, err := resolve(t, "delete /project/config/secrets.yaml")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if intent.Action != "Delete" {
		t.Errorf("expected action Delete, got %q", intent.Action)
	}
	if intent.Target != "/project/config/secrets.yaml" {
		t.Errorf("expected path target, got %q", intent.Target)
	}
	if intent.Confidence == nil {
		t.Error("expected confidence to be set")
	}
}

func TestResolve_ListMapsToRead(t *testing.T) {
	intent, err := resolve(t, "list /project/temp")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if intent.Action != "Read" {
		t.Errorf("expected action Read, got %q", intent.Action)
	}
	if intent.Target != "/project/temp" {
		t.Errorf("expected target /project/temp, got %q", intent.Target)
	}
}

func TestResolve_VerbMidSentence(t *testing.T) {
	intent, err := resolve(t, "Please run npm install in the repo")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if intent.Action != "Execute" {
		t.Errorf("expected action Execute, got %q", intent.Action)
	}
}

func TestResolve_FreeTextTarget(t *testing.T) {
	intent, err := resolve(t, "clean temp folder")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if intent.Action != "Delete" {
		t.Errorf("expected action Delete, got %q", intent.Action)
	}
	if intent.Target != "temp folder" {
		t.Errorf("expected free-text target, got %q", intent.Target)
	}
}

func TestResolve_QuotedPath(t *testing.T) {
	intent, err := resolve(t, `modify "/project/src/auth.go" carefully`)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if intent.Target != "/project/src/auth.go" {
		t.Errorf("expected unquoted path, got %q", intent.Target)
	}
}
