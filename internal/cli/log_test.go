package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerWritesTimestampedOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Info("decoded file")

	out := buf.String()
	if !strings.Contains(out, "decoded file") {
		t.Errorf("output %q missing message", out)
	}
	if !strings.Contains(out, ":") {
		t.Errorf("output %q missing timestamp", out)
	}
}

func TestNewLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		emit    func(*log.Logger)
		wantLog bool
	}{
		{"info passes at info", log.InfoLevel, func(l *log.Logger) { l.Info("x") }, true},
		{"debug filtered at info", log.InfoLevel, func(l *log.Logger) { l.Debug("x") }, false},
		{"debug passes at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("x") }, true},
		{"warn passes at info", log.InfoLevel, func(l *log.Logger) { l.Warn("x") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressReportsElapsed(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	prog := newProgress(logger)
	time.Sleep(5 * time.Millisecond)
	prog.done("conversion finished")

	out := buf.String()
	if !strings.Contains(out, "conversion finished") {
		t.Errorf("output %q missing message", out)
	}
	if !strings.Contains(out, "ms") {
		t.Errorf("output %q missing elapsed duration", out)
	}
}
