package sandbox

import (
	"strings"
	"testing"
)

func TestLocate(t *testing.T) {
	tests := []struct {
		msg  string
		line int
		ok   bool
	}{
		{`[string "..."]:12: attempt to call a nil value`, 12, true},
		{`[string "..."]:3: quota exceeded`, 3, true},
		{`quota exceeded`, 0, false},
		{``, 0, false},
	}
	for _, tt := range tests {
		line, ok := LuaLocator.Locate(tt.msg)
		if ok != tt.ok || line != tt.line {
			t.Errorf("Locate(%q) = (%d, %v), expected (%d, %v)",
				tt.msg, line, ok, tt.line, tt.ok)
		}
	}
}

func TestLocateNil(t *testing.T) {
	var l *FaultLocator
	if _, ok := l.Locate(":5: boom"); ok {
		t.Errorf("nil locator located a line")
	}
}

func TestAnnotateWindow(t *testing.T) {
	source := "line one\nline two\nline three\nline four\nline five\nline six\nline seven\nline eight\nline nine"
	msg := `[string "..."]:5: boom`

	out := LuaLocator.Annotate(msg, source)

	if !strings.HasPrefix(out, msg) {
		t.Fatalf("annotation does not keep the original message: %q", out)
	}
	for _, want := range []string{"  2 line two", "  5 line five", "  8 line eight"} {
		if !strings.Contains(out, want) {
			t.Errorf("annotation missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "line one") || strings.Contains(out, "line nine") {
		t.Errorf("annotation window too wide:\n%s", out)
	}
}

func TestAnnotateClampsToSource(t *testing.T) {
	source := "only\ntwo"
	out := LuaLocator.Annotate(":1: boom", source)
	if !strings.Contains(out, "  1 only") || !strings.Contains(out, "  2 two") {
		t.Errorf("expected both lines in window:\n%s", out)
	}
}

func TestAnnotateNoLine(t *testing.T) {
	msg := "quota exceeded"
	if out := LuaLocator.Annotate(msg, "whatever"); out != msg {
		t.Errorf("expected unmodified message, got %q", out)
	}
}
