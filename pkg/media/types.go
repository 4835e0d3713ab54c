package media

import (
	"context"
	"time"
)

// fallback when the container does not carry a usable frame rate
const DefaultFPS = 30.0

type ProbeConfig struct {
	FFprobeBinary string

	Cache    bool
	CacheDir string // if not empty, cache folder will be used instead of media path
}

func (c ProbeConfig) withDefaultValues() ProbeConfig {
	if c.FFprobeBinary == "" {
		c.FFprobeBinary = "ffprobe"
	}
	return c
}

type ProbeData struct {
	FormatName []string
	Duration   time.Duration
	Size       int64

	Video *ProbeVideoData
}

type ProbeVideoData struct {
	Codec    string
	Width    int
	Height   int
	FPS      float64
	Frames   int
	Duration time.Duration
}

type Prober interface {
	Probe(ctx context.Context, mediaPath string) (*ProbeData, error)
}

type DecoderConfig struct {
	FFmpegBinary string
	MediaPath    string

	Width  int
	Height int
}

func (c DecoderConfig) withDefaultValues() DecoderConfig {
	if c.FFmpegBinary == "" {
		c.FFmpegBinary = "ffmpeg"
	}
	return c
}
