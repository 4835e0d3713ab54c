package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrNoVideoStream = errors.New("no video stream found")

type ProberCtx struct {
	logger zerolog.Logger
	config ProbeConfig
}

func NewProber(config ProbeConfig) *ProberCtx {
	return &ProberCtx{
		logger: log.With().Str("module", "media").Str("submodule", "probe").Logger(),
		config: config.withDefaultValues(),
	}
}

// Probe returns metadata of the media, served from cache when enabled.
func (p *ProberCtx) Probe(ctx context.Context, mediaPath string) (*ProbeData, error) {
	// bypass cache if not enabled
	if !p.config.Cache {
		return p.fetch(ctx, mediaPath)
	}

	// try to get cached data
	data, err := p.getCacheData(mediaPath)
	if err == nil {
		var metadata ProbeData
		err := json.Unmarshal(data, &metadata)
		if err == nil && metadata.Video != nil {
			return &metadata, nil
		}

		p.logger.Err(err).Str("path", mediaPath).Msg("cache unmarshalling returned error, replacing")
	} else if !errors.Is(err, os.ErrNotExist) {
		p.logger.Err(err).Str("path", mediaPath).Msg("cache hit returned error, replacing")
	}

	// fetch fresh metadata from a file
	metadata, err := p.fetch(ctx, mediaPath)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(metadata)
	if err != nil {
		return nil, err
	}

	if p.config.CacheDir != "" {
		err = p.saveGlobalCacheData(mediaPath, data)
	} else {
		err = p.saveLocalCacheData(mediaPath, data)
	}

	// media is usable even if caching failed
	if err != nil {
		p.logger.Warn().Err(err).Str("path", mediaPath).Msg("unable to save metadata cache")
	}

	return metadata, nil
}

func (p *ProberCtx) fetch(ctx context.Context, mediaPath string) (*ProbeData, error) {
	start := time.Now()

	args := []string{
		"-v", "error", // Hide debug information
		"-show_format",  // Show container information
		"-show_streams", // Show codec information
		"-select_streams", "v",
		"-of", "json",
		mediaPath,
	}

	cmd := exec.CommandContext(ctx, p.config.FFprobeBinary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	data, err := ParseProbeOutput(stdout.Bytes())
	if err != nil {
		return nil, err
	}

	if fi, err := os.Stat(mediaPath); err == nil {
		data.Size = fi.Size()
	}

	p.logger.Info().
		Str("path", mediaPath).
		Str("size", humanize.Bytes(uint64(data.Size))).
		Str("codec", data.Video.Codec).
		Int("frames", data.Video.Frames).
		Float64("fps", data.Video.FPS).
		Dur("elapsed", time.Since(start)).
		Msg("fetched metadata")

	return data, nil
}

// ParseProbeOutput reads JSON printed by ffprobe -show_format -show_streams.
func ParseProbeOutput(output []byte) (*ProbeData, error) {
	out := struct {
		Streams []struct {
			CodecName    string `json:"codec_name"`
			CodecType    string `json:"codec_type"`
			Duration     string `json:"duration"`
			Width        int    `json:"width"`
			Height       int    `json:"height"`
			RFrameRate   string `json:"r_frame_rate"`
			AvgFrameRate string `json:"avg_frame_rate"`
			NbFrames     string `json:"nb_frames"`
		} `json:"streams"`
		Format struct {
			FormatName string `json:"format_name"`
			Duration   string `json:"duration"`
		} `json:"format"`
	}{}

	if err := json.Unmarshal(output, &out); err != nil {
		return nil, fmt.Errorf("unable to parse ffprobe output: %w", err)
	}

	data := ProbeData{}

	if out.Format.FormatName != "" {
		data.FormatName = strings.Split(out.Format.FormatName, ",")
	}

	if out.Format.Duration != "" {
		duration, err := parseSeconds(out.Format.Duration)
		if err != nil {
			return nil, fmt.Errorf("unable to parse format duration: %w", err)
		}
		data.Duration = duration
	}

	for _, stream := range out.Streams {
		if stream.CodecType != "video" {
			continue
		}

		// only first video stream is played
		if data.Video != nil {
			break
		}

		var duration time.Duration
		if stream.Duration != "" {
			var err error
			duration, err = parseSeconds(stream.Duration)
			if err != nil {
				return nil, fmt.Errorf("unable to parse stream duration: %w", err)
			}
		}
		if duration == 0 {
			duration = data.Duration
		}

		fps := ParseFrameRate(stream.AvgFrameRate)
		if fps <= 0 {
			fps = ParseFrameRate(stream.RFrameRate)
		}
		if fps <= 0 {
			fps = DefaultFPS
		}

		frames, _ := strconv.Atoi(stream.NbFrames)
		if frames <= 0 {
			frames = int(duration.Seconds() * fps)
		}

		data.Video = &ProbeVideoData{
			Codec:    stream.CodecName,
			Width:    stream.Width,
			Height:   stream.Height,
			FPS:      fps,
			Frames:   frames,
			Duration: duration,
		}
	}

	if data.Video == nil || data.Video.Width <= 0 || data.Video.Height <= 0 {
		return nil, ErrNoVideoStream
	}

	return &data, nil
}

// ParseFrameRate converts ffprobe rational rates ("30000/1001") to float,
// returns 0 when the rate is unknown.
func ParseFrameRate(rate string) float64 {
	num, den, ok := strings.Cut(rate, "/")
	if !ok {
		fps, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return 0
		}
		return fps
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}

	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}

	return n / d
}

func parseSeconds(s string) (time.Duration, error) {
	if s == "N/A" {
		return 0, nil
	}
	return time.ParseDuration(s + "s")
}
