package sandbox

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FaultLocator extracts a 1-based source line number from an
// interpreter fault message. The pattern is backend-specific; when it
// does not match, annotation degrades to the raw message. This is
// best-effort by design and never fails.
type FaultLocator struct {
	pattern *regexp.Regexp
	window  int
}

// NewFaultLocator builds a locator from a pattern whose first capture
// group is the line number, and a context window of lines rendered
// before and after the faulting line.
func NewFaultLocator(pattern string, window int) *FaultLocator {
	return &FaultLocator{
		pattern: regexp.MustCompile(pattern),
		window:  window,
	}
}

// LuaLocator matches the `[string "..."]:12: message` shape of Lua
// runtime and syntax errors.
var LuaLocator = NewFaultLocator(`:(\d+):`, 3)

// Locate extracts the faulting line number from a fault message.
func (l *FaultLocator) Locate(msg string) (int, bool) {
	if l == nil {
		return 0, false
	}
	m := l.pattern.FindStringSubmatch(msg)
	if len(m) < 2 {
		return 0, false
	}
	line, err := strconv.Atoi(m[1])
	if err != nil || line < 1 {
		return 0, false
	}
	return line, true
}

// Annotate appends a numbered window of source lines around the
// faulting line to the fault message. If no line can be extracted the
// message is returned unmodified.
func (l *FaultLocator) Annotate(msg, source string) string {
	line, ok := l.Locate(msg)
	if !ok {
		return msg
	}

	lines := strings.Split(source, "\n")
	var b strings.Builder
	b.WriteString(msg)
	for i := line - l.window; i <= line+l.window; i++ {
		if i < 1 || i > len(lines) {
			continue
		}
		fmt.Fprintf(&b, "\n%3d %s", i, lines[i-1])
	}
	return b.String()
}
