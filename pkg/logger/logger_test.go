package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		l := newWithWriter(&buf, tt.in, false)
		if got := l.GetLevel(); got != tt.want {
			t.Errorf("level(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, "info", false)
	l.Debug().Msg("hidden")
	l.Info().Str("component", "engine").Msg("ready")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line written at info level: %s", out)
	}
	if !strings.Contains(out, `"component":"engine"`) || !strings.Contains(out, `"message":"ready"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}
