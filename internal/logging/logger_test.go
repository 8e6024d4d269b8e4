package logging

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLogger(debugEnabled bool) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	l := &Logger{debugEnabled: debugEnabled, out: out, errOut: errOut}
	return l, out, errOut
}

func TestDebugGatedByFlag(t *testing.T) {
	l, out, _ := newTestLogger(false)
	l.Debug("hidden %d", 1)
	if out.Len() != 0 {
		t.Errorf("expected no debug output when disabled, got %q", out.String())
	}

	l.SetDebugEnabled(true)
	l.Debug("shown %d", 2)
	if !strings.Contains(out.String(), "[DEBUG] shown 2") {
		t.Errorf("expected debug line, got %q", out.String())
	}
}

func TestBugWarningSurpriseAlwaysEmit(t *testing.T) {
	l, _, errOut := newTestLogger(false)

	l.Bug("bad state %s", "x")
	l.Warning("dropped send")
	l.Surprise("missing env %v", 1)

	got := errOut.String()
	for _, want := range []string{"[BUG] bad state x", "[WARN] dropped send", "[SURPRISE] missing env 1"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got %q", want, got)
		}
	}
}

func TestDebugEnabledRoundTrip(t *testing.T) {
	l := New(false)
	if l.DebugEnabled() {
		t.Fatal("expected debug disabled by default")
	}
	l.SetDebugEnabled(true)
	if !l.DebugEnabled() {
		t.Fatal("expected debug enabled after SetDebugEnabled(true)")
	}
}
