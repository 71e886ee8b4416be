package sandbox

import (
	"strings"
	"testing"
)

func TestCallGuardCompleteFlow(t *testing.T) {
	g := newCallGuard()
	if g.Phase() != "Loaded" {
		t.Fatalf("expected Loaded, got %s", g.Phase())
	}

	g.begin()
	if g.Phase() != "Running" {
		t.Fatalf("expected Running, got %s", g.Phase())
	}

	g.complete()
	if g.Phase() != "Completed" {
		t.Fatalf("expected Completed, got %s", g.Phase())
	}
}

func TestCallGuardFaultFlow(t *testing.T) {
	g := newCallGuard()
	g.begin()
	g.fault()
	if g.Phase() != "Faulted" {
		t.Fatalf("expected Faulted, got %s", g.Phase())
	}
}

func expectPanic(t *testing.T, contains string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic")
		}
		msg, ok := r.(string)
		if !ok {
			t.Fatalf("expected string panic, got %T", r)
		}
		if !strings.Contains(msg, contains) {
			t.Errorf("panic %q does not mention %q", msg, contains)
		}
	}()
	fn()
}

func TestCallGuardInvalidTransitions(t *testing.T) {
	t.Run("complete before begin", func(t *testing.T) {
		g := newCallGuard()
		expectPanic(t, "expected Running", g.complete)
	})

	t.Run("fault before begin", func(t *testing.T) {
		g := newCallGuard()
		expectPanic(t, "expected Running", g.fault)
	})

	t.Run("double begin", func(t *testing.T) {
		g := newCallGuard()
		g.begin()
		expectPanic(t, "expected Loaded", g.begin)
	})

	t.Run("complete after fault", func(t *testing.T) {
		g := newCallGuard()
		g.begin()
		g.fault()
		expectPanic(t, "expected Running", g.complete)
	})
}
