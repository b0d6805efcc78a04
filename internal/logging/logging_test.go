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
		{"error", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf})

	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept")
	l.Error("kept too")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("below-level messages leaked: %q", out)
	}
	if !strings.Contains(out, "kept") || !strings.Contains(out, "kept too") {
		t.Errorf("expected warn and error messages in %q", out)
	}
}

func TestLogger_FieldsAndFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf, Prefix: "test"})

	l.WithComponent("engine").WithField("editor", "ed-1").Info("mounted %s", "hover")

	out := buf.String()
	for _, want := range []string{"[INFO]", "test:", "mounted hover", "component=engine", "editor=ed-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q missing %q", out, want)
		}
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("should not panic or write")
	l.WithComponent("x").Info("still silent")
}
