package cmd

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
		ok    bool
	}{
		{"", zerolog.InfoLevel, true},
		{"debug", zerolog.DebugLevel, true},
		{"warn", zerolog.WarnLevel, true},
		{"loud", zerolog.InfoLevel, false},
	}

	for _, tt := range tests {
		got, ok := logLevel(tt.level)
		assert.Equal(t, tt.want, got, tt.level)
		assert.Equal(t, tt.ok, ok, tt.level)
	}
}

func TestLogWriters(t *testing.T) {
	assert.Empty(t, logWriters(&logConfig{}))
	assert.Len(t, logWriters(&logConfig{Console: true}), 1)
	assert.Len(t, logWriters(&logConfig{
		Console: true,
		File:    filepath.Join(t.TempDir(), "playback.log"),
	}), 2)
}
