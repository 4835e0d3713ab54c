package player

import (
	"errors"
	"image"
	"time"
)

// ValidSpeeds lists supported playback speed multipliers.
var ValidSpeeds = []float64{0.5, 1.0, 2.0, 4.0}

var (
	ErrInvalidSpeed = errors.New("Invalid speed. Must be one of: [0.5, 1.0, 2.0, 4.0]")
	ErrPlayerClosed = errors.New("Video was unloaded")
)

// how often paused worker checks whether it was resumed
const pausePollInterval = 100 * time.Millisecond

type Decoder interface {
	Read() (*image.RGBA, error)
	Rewind() error
	Close() error
}

type Display interface {
	Show(img *image.RGBA) (quit bool, err error)
	Close() error
}

type Overlay interface {
	Draw(img *image.RGBA, lines ...string)
}

type Metadata struct {
	FPS         float64
	TotalFrames int
	Width       int
	Height      int
	Duration    time.Duration
	Codec       string
}

type Config struct {
	VideoPath string
	Metadata  Metadata

	Decoder Decoder
	Display Display
	Overlay Overlay
}

type Status struct {
	SessionID    string  `json:"session_id"`
	IsPlaying    bool    `json:"is_playing"`
	IsPaused     bool    `json:"is_paused"`
	CurrentFrame int     `json:"current_frame"`
	TotalFrames  int     `json:"total_frames"`
	Speed        float64 `json:"speed"`
	Timestamp    string  `json:"timestamp"`
	VideoPath    string  `json:"video_path"`
	FPS          float64 `json:"fps"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Duration     float64 `json:"duration"` // in seconds
	Codec        string  `json:"codec"`
}
