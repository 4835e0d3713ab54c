// Package overlay draws playback information on top of decoded frames.
package overlay

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	marginLeft  = 10
	firstLine   = 30 // baseline of the first line
	lineSpacing = 40
	outline     = 2
)

type Config struct {
	FontSize float64
}

func (c Config) withDefaultValues() Config {
	if c.FontSize <= 0 {
		c.FontSize = 24
	}
	return c
}

// Overlay is not safe for concurrent use, every player owns its own.
type Overlay struct {
	face font.Face
}

func New(config Config) (*Overlay, error) {
	config = config.withDefaultValues()

	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("unable to parse font: %w", err)
	}

	return &Overlay{
		face: truetype.NewFace(f, &truetype.Options{
			Size:    config.FontSize,
			Hinting: font.HintingFull,
		}),
	}, nil
}

// Draw writes lines of white text in the top left corner of the frame,
// one line under another.
func (o *Overlay) Draw(img *image.RGBA, lines ...string) {
	dc := gg.NewContextForRGBA(img)
	dc.SetFontFace(o.face)

	for i, line := range lines {
		x := float64(marginLeft)
		y := float64(firstLine + i*lineSpacing)

		dc.SetRGB(0, 0, 0)
		for dy := -outline; dy <= outline; dy += outline {
			for dx := -outline; dx <= outline; dx += outline {
				if dx != 0 || dy != 0 {
					dc.DrawString(line, x+float64(dx), y+float64(dy))
				}
			}
		}

		dc.SetRGB(1, 1, 1)
		dc.DrawString(line, x, y)
	}
}
