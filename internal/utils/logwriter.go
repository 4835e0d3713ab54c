package utils

import (
	"strings"

	"github.com/rs/zerolog"
)

type LogWriterCtx struct {
	logger zerolog.Logger
	level  zerolog.Level
}

// LogWriter forwards every written chunk (usually a line of ffmpeg
// stderr) to the logger at warn level.
func LogWriter(l zerolog.Logger) *LogWriterCtx {
	return &LogWriterCtx{
		logger: l,
		level:  zerolog.WarnLevel,
	}
}

func (l *LogWriterCtx) WithLevel(level zerolog.Level) *LogWriterCtx {
	return &LogWriterCtx{
		logger: l.logger,
		level:  level,
	}
}

func (l LogWriterCtx) Write(p []byte) (n int, err error) {
	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		l.logger.WithLevel(l.level).Msg(line)
	}
	return len(p), nil
}
