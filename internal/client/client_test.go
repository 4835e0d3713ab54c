package client

import (
	"context"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m1k1o/go-playback/modules/control"
	"github.com/m1k1o/go-playback/pkg/display"
	"github.com/m1k1o/go-playback/pkg/player"
)

type stillDecoder struct{}

func (stillDecoder) Read() (*image.RGBA, error) { return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil }
func (stillDecoder) Rewind() error { return nil }
func (stillDecoder) Close() error { return nil }

type noOverlay struct{}

func (noOverlay) Draw(img *image.RGBA, lines ...string) {}

func newTestClient(t *testing.T) (*ClientCtx, string) {
	t.Helper()

	video := filepath.Join(t.TempDir(), "video.mp4")
	require.NoError(t, os.WriteFile(video, []byte("video"), 0644))

	module := control.New(&control.Config{
		Open: func(ctx context.Context, videoPath string) (control.Player, error) {
			return player.New(player.Config{
				VideoPath: videoPath,
				Metadata:  player.Metadata{FPS: 50, TotalFrames: 100},
				Decoder:   stillDecoder{},
				Display:   display.NewNone(),
				Overlay:   noOverlay{},
			}), nil
		},
	})

	ts := httptest.NewServer(module)
	t.Cleanup(func() {
		ts.Close()
		module.Shutdown()
	})

	return New(Config{Server: ts.URL}), video
}

func TestClientFlow(t *testing.T) {
	c, video := newTestClient(t)
	ctx := context.Background()

	status, err := c.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.Loaded)
	assert.Nil(t, status.Status)

	loaded, err := c.Load(ctx, video)
	require.NoError(t, err)
	assert.Equal(t, "Video loaded successfully", loaded.Message)
	assert.Equal(t, video, loaded.Path)

	speed := 2.0
	played, err := c.Play(ctx, &speed)
	require.NoError(t, err)
	assert.Equal(t, "Video playback started", played.Message)
	assert.Equal(t, 2.0, played.Speed)

	paused, err := c.Pause(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Video playback paused", paused.Message)

	changed, err := c.SetSpeed(ctx, 0.5)
	require.NoError(t, err)
	assert.Equal(t, "Speed set to 0.5x", changed.Message)

	status, err = c.Status(ctx)
	require.NoError(t, err)
	require.True(t, status.Loaded)
	require.NotNil(t, status.Status)
	assert.Equal(t, 0.5, status.Speed)
	assert.True(t, status.IsPaused)
	assert.Equal(t, video, status.VideoPath)

	stopped, err := c.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Video playback stopped", stopped.Message)

	reset, err := c.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Video reset to beginning", reset.Message)
}

func TestClientErrors(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, err := c.Play(ctx, nil)
	var e *control.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, http.StatusBadRequest, e.Code)
	assert.Equal(t, "No video loaded", e.Detail)

	_, err = c.Load(ctx, "/does/not/exist.mp4")
	require.True(t, errors.As(err, &e))
	assert.Equal(t, http.StatusNotFound, e.Code)
	assert.Equal(t, "Video file not found", e.Detail)
}

func TestClientUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := New(Config{Server: url}).Status(context.Background())
	require.Error(t, err)

	var e *control.Error
	assert.False(t, errors.As(err, &e))
}
