package control

import (
	"context"
	"image"
	"net/http"

	"github.com/m1k1o/go-playback/pkg/player"
)

type Player interface {
	Play(speed *float64) error
	Pause()
	Stop()
	Reset() error
	SetSpeed(speed float64) error
	Speed() float64
	Status() player.Status
	Snapshot() *image.RGBA
	Close() error
}

// OpenFunc prepares player for the video, error means the file can not
// be played.
type OpenFunc func(ctx context.Context, videoPath string) (Player, error)

type Config struct {
	Open OpenFunc

	SnapshotQuality int
}

func (c Config) withDefaultValues() Config {
	if c.SnapshotQuality <= 0 || c.SnapshotQuality > 100 {
		c.SnapshotQuality = 85
	}
	return c
}

// Error carries HTTP status code together with the detail message.
type Error struct {
	Code   int
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

func badRequest(detail string) *Error {
	return &Error{Code: http.StatusBadRequest, Detail: detail}
}

var (
	ErrNoVideoLoaded = badRequest("No video loaded")
	ErrVideoNotFound = &Error{Code: http.StatusNotFound, Detail: "Video file not found"}
	ErrNoFrame       = &Error{Code: http.StatusNotFound, Detail: "No frame rendered yet"}
)

type MessageResponse struct {
	Message string `json:"message"`
}

type LoadResponse struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

type SpeedResponse struct {
	Message string  `json:"message"`
	Speed   float64 `json:"speed"`
}

type StatusResponse struct {
	Loaded bool `json:"loaded"`
	*player.Status
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type SpeedRequest struct {
	Speed *float64 `json:"speed"`
}
