package applog

import (
	"log/slog"
	"testing"
)

func TestLevelForVerbosity(t *testing.T) {
	cases := []struct {
		verbose int
		want    slog.Level
	}{
		{0, slog.LevelWarn},
		{1, slog.LevelInfo},
		{2, slog.LevelDebug},
		{5, slog.LevelDebug},
	}
	for _, c := range cases {
		if got := LevelForVerbosity(c.verbose); got != c.want {
			t.Errorf("LevelForVerbosity(%d) = %v, want %v", c.verbose, got, c.want)
		}
	}
}

func TestNewReturnsUsableLogger(t *testing.T) {
	logger := New(discardWriter{}, slog.LevelWarn)
	if logger == nil {
		t.Fatal("expected a non-nil logger")
	}
	logger.Warn("test message")
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
