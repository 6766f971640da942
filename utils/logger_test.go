package utils

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
		{" warn ", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %d; want %d", tt.in, got, tt.want)
		}
	}
}

func TestLoggerLevelGating(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, LevelWarn)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below warn should be dropped, got:\n%s", out)
	}
	if !strings.Contains(out, "warn 3") || !strings.Contains(out, "error 4") {
		t.Errorf("warn and error should be written, got:\n%s", out)
	}
}

func TestLoggerDebugLevelWritesEverything(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, LevelDebug)

	l.Debug("[cleaner] dropped row %d", 7)
	if !strings.Contains(buf.String(), "[cleaner] dropped row 7") {
		t.Errorf("debug message missing, got %q", buf.String())
	}
}
