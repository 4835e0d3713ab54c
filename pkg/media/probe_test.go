package media

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const ffprobeOutput = `{
	"streams": [
		{
			"codec_name": "h264",
			"codec_type": "video",
			"width": 1280,
			"height": 720,
			"r_frame_rate": "30000/1001",
			"avg_frame_rate": "30000/1001",
			"duration": "10.010000",
			"nb_frames": "300"
		}
	],
	"format": {
		"format_name": "mov,mp4,m4a,3gp,3g2,mj2",
		"duration": "10.026000"
	}
}`

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		rate string
		want float64
	}{
		{"30/1", 30},
		{"25", 25},
		{"30000/1001", 30000.0 / 1001.0},
		{"0/0", 0},
		{"", 0},
		{"abc/1", 0},
	}

	for _, tt := range tests {
		if got := ParseFrameRate(tt.rate); got != tt.want {
			t.Errorf("ParseFrameRate(%q) = %v, want %v", tt.rate, got, tt.want)
		}
	}
}

func TestParseProbeOutput(t *testing.T) {
	t.Run("video stream metadata", func(t *testing.T) {
		data, err := ParseProbeOutput([]byte(ffprobeOutput))
		if err != nil {
			t.Fatalf("ParseProbeOutput() error = %v", err)
		}

		if len(data.FormatName) != 6 || data.FormatName[0] != "mov" {
			t.Errorf("FormatName = %v", data.FormatName)
		}
		if data.Duration != 10026*time.Millisecond {
			t.Errorf("Duration = %v", data.Duration)
		}

		video := data.Video
		if video == nil {
			t.Fatal("Video is nil")
		}
		if video.Codec != "h264" || video.Width != 1280 || video.Height != 720 {
			t.Errorf("Video = %+v", video)
		}
		if video.Frames != 300 {
			t.Errorf("Frames = %d, want 300", video.Frames)
		}
		if video.FPS < 29.97 || video.FPS > 29.98 {
			t.Errorf("FPS = %v, want 29.97", video.FPS)
		}
	})

	t.Run("missing frame count and rate", func(t *testing.T) {
		data, err := ParseProbeOutput([]byte(`{
			"streams": [{"codec_type": "video", "width": 2, "height": 2, "r_frame_rate": "0/0"}],
			"format": {"duration": "2.000000"}
		}`))
		if err != nil {
			t.Fatalf("ParseProbeOutput() error = %v", err)
		}

		if data.Video.FPS != DefaultFPS {
			t.Errorf("FPS = %v, want %v", data.Video.FPS, DefaultFPS)
		}
		if data.Video.Frames != 60 {
			t.Errorf("Frames = %d, want 60", data.Video.Frames)
		}
	})

	t.Run("audio only", func(t *testing.T) {
		_, err := ParseProbeOutput([]byte(`{"streams": [{"codec_type": "audio"}], "format": {}}`))
		if err != ErrNoVideoStream {
			t.Errorf("ParseProbeOutput() error = %v, want %v", err, ErrNoVideoStream)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := ParseProbeOutput([]byte("not json")); err == nil {
			t.Error("ParseProbeOutput() expected error")
		}
	})
}

func TestProbeCache(t *testing.T) {
	cached := &ProbeData{
		Duration: time.Second,
		Video: &ProbeVideoData{
			Codec:  "vp9",
			Width:  640,
			Height: 360,
			FPS:    24,
			Frames: 24,
		},
	}

	data, err := json.Marshal(cached)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("local cache is used instead of ffprobe", func(t *testing.T) {
		dir := t.TempDir()
		mediaPath := filepath.Join(dir, "video.webm")
		if err := os.WriteFile(mediaPath+cacheFileSuffix, data, 0644); err != nil {
			t.Fatal(err)
		}

		prober := NewProber(ProbeConfig{
			FFprobeBinary: filepath.Join(dir, "missing-ffprobe"),
			Cache:         true,
		})

		got, err := prober.Probe(context.Background(), mediaPath)
		if err != nil {
			t.Fatalf("Probe() error = %v", err)
		}
		if got.Video.Codec != "vp9" || got.Video.Frames != 24 {
			t.Errorf("Probe() = %+v", got.Video)
		}
	})

	t.Run("global cache is used instead of ffprobe", func(t *testing.T) {
		dir := t.TempDir()
		prober := NewProber(ProbeConfig{
			FFprobeBinary: filepath.Join(dir, "missing-ffprobe"),
			Cache:         true,
			CacheDir:      filepath.Join(dir, "cache"),
		})

		mediaPath := filepath.Join(dir, "video.webm")
		if err := prober.saveGlobalCacheData(mediaPath, data); err != nil {
			t.Fatal(err)
		}

		got, err := prober.Probe(context.Background(), mediaPath)
		if err != nil {
			t.Fatalf("Probe() error = %v", err)
		}
		if got.Video.Width != 640 {
			t.Errorf("Probe() = %+v", got.Video)
		}
	})

	t.Run("disabled cache runs ffprobe", func(t *testing.T) {
		dir := t.TempDir()
		mediaPath := filepath.Join(dir, "video.webm")
		if err := os.WriteFile(mediaPath+cacheFileSuffix, data, 0644); err != nil {
			t.Fatal(err)
		}

		prober := NewProber(ProbeConfig{
			FFprobeBinary: filepath.Join(dir, "missing-ffprobe"),
		})

		if _, err := prober.Probe(context.Background(), mediaPath); err == nil {
			t.Error("Probe() expected error from missing ffprobe")
		}
	})
}
