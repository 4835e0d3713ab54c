package display

import (
	"image"
	"sync/atomic"
)

// None drops all frames, used when no screen is available.
type None struct {
	frames int64
}

func NewNone() *None {
	return &None{}
}

func (n *None) Show(img *image.RGBA) (bool, error) {
	atomic.AddInt64(&n.frames, 1)
	return false, nil
}

func (n *None) Frames() int64 {
	return atomic.LoadInt64(&n.frames)
}

func (n *None) Close() error {
	return nil
}
