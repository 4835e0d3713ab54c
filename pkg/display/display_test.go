package display

import (
	"image"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	d, err := New(Config{Driver: DriverNone})
	require.NoError(t, err)
	assert.IsType(t, &None{}, d)

	d, err = New(Config{})
	require.NoError(t, err)
	assert.IsType(t, &FFplay{}, d)

	_, err = New(Config{Driver: "opengl"})
	assert.Error(t, err)
}

func TestNone(t *testing.T) {
	n := NewNone()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))

	for i := 0; i < 3; i++ {
		quit, err := n.Show(img)
		require.NoError(t, err)
		assert.False(t, quit)
	}

	assert.EqualValues(t, 3, n.Frames())
	assert.NoError(t, n.Close())
}

func TestFFplayArgs(t *testing.T) {
	f := NewFFplay(Config{Title: "Preview"})
	args := f.args(640, 360)

	assert.Contains(t, args, "640x360")
	assert.Contains(t, args, "Preview")
	assert.Equal(t, "-", args[len(args)-1])
}

func TestRawPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}

	assert.Len(t, rawPixels(img), 64)

	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	raw := rawPixels(sub)
	require.Len(t, raw, 16)

	// first pixel of the sub image is (1,1)
	assert.Equal(t, img.Pix[img.PixOffset(1, 1)], raw[0])
	// first pixel of the second row is (1,2)
	assert.Equal(t, img.Pix[img.PixOffset(1, 2)], raw[8])
}

func TestFFplayWindowClosed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script ffplay stub is not supported on windows")
	}

	// exits after the first frame, like a viewer closing the window
	script := filepath.Join(t.TempDir(), "ffplay")
	err := os.WriteFile(script, []byte("#!/bin/sh\nhead -c 16 > /dev/null\n"), 0755)
	require.NoError(t, err)

	f := NewFFplay(Config{FFplayBinary: script})
	defer f.Close()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))

	quit := false
	for i := 0; i < 200 && !quit; i++ {
		quit, err = f.Show(img)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}

	assert.True(t, quit, "closed window should request quit")
}
