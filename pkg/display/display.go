package display

import (
	"fmt"
	"image"
)

const (
	DriverFFplay = "ffplay"
	DriverNone   = "none"
)

// Display shows frames on screen. Show reports quit when the viewer asked
// to end playback, e.g. by closing the window.
type Display interface {
	Show(img *image.RGBA) (quit bool, err error)
	Close() error
}

type Config struct {
	Driver       string
	Title        string
	FFplayBinary string
}

func (c Config) withDefaultValues() Config {
	if c.Driver == "" {
		c.Driver = DriverFFplay
	}
	if c.Title == "" {
		c.Title = "Video Player"
	}
	if c.FFplayBinary == "" {
		c.FFplayBinary = "ffplay"
	}
	return c
}

func New(config Config) (Display, error) {
	config = config.withDefaultValues()

	switch config.Driver {
	case DriverFFplay:
		return NewFFplay(config), nil
	case DriverNone:
		return NewNone(), nil
	default:
		return nil, fmt.Errorf("unknown display driver %q", config.Driver)
	}
}
