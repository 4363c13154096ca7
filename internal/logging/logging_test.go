package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"ERROR", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept %d", 1)
	l.Error("kept %d", 2)

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("low-level messages leaked: %q", out)
	}
	if !strings.Contains(out, "kept 1") || !strings.Contains(out, "kept 2") {
		t.Errorf("high-level messages missing: %q", out)
	}
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "[ERROR]") {
		t.Errorf("level tags missing: %q", out)
	}
}

func TestSessionTag(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)

	if l.Session() == "" {
		t.Fatal("session id should not be empty")
	}
	l.Info("hello")
	if !strings.Contains(buf.String(), l.Session()) {
		t.Errorf("log line %q missing session id %q", buf.String(), l.Session())
	}
}

func TestDiscard(t *testing.T) {
	// Must not panic with a nil writer.
	Discard.Info("nothing")
	Discard.Error("nothing")
}
