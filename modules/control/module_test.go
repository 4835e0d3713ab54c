package control

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m1k1o/go-playback/pkg/display"
	"github.com/m1k1o/go-playback/pkg/player"
)

type endlessDecoder struct {
	mu     sync.Mutex
	closed bool
}

func (d *endlessDecoder) Read() (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, 64, 32)), nil
}

func (d *endlessDecoder) Rewind() error { return nil }

func (d *endlessDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	return nil
}

type noOverlay struct{}

func (noOverlay) Draw(img *image.RGBA, lines ...string) {}

type testEnv struct {
	module *ModuleCtx
	server *httptest.Server
	video  string

	mu       sync.Mutex
	decoders []*endlessDecoder
}

func (env *testEnv) decoder(t *testing.T, index int) *endlessDecoder {
	t.Helper()

	env.mu.Lock()
	defer env.mu.Unlock()

	require.Greater(t, len(env.decoders), index)
	return env.decoders[index]
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{}

	dir := t.TempDir()
	env.video = filepath.Join(dir, "video.mp4")
	require.NoError(t, os.WriteFile(env.video, []byte("not really a video"), 0644))

	broken := filepath.Join(dir, "broken.mp4")
	require.NoError(t, os.WriteFile(broken, nil, 0644))

	env.module = New(&Config{
		Open: func(ctx context.Context, videoPath string) (Player, error) {
			if videoPath == broken {
				return nil, errors.New("Could not open video file: " + videoPath)
			}

			decoder := &endlessDecoder{}
			env.mu.Lock()
			env.decoders = append(env.decoders, decoder)
			env.mu.Unlock()

			return player.New(player.Config{
				VideoPath: videoPath,
				Metadata: player.Metadata{
					FPS:         100,
					TotalFrames: 1000,
					Width:       64,
					Height:      32,
				},
				Decoder: decoder,
				Display: display.NewNone(),
				Overlay: noOverlay{},
			}), nil
		},
	})

	env.server = httptest.NewServer(env.module)
	t.Cleanup(func() {
		env.server.Close()
		env.module.Shutdown()
	})

	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewBuffer(data)
		}
	}

	req, err := http.NewRequest(method, env.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	out := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))

	return res.StatusCode, out
}

func (env *testEnv) load(t *testing.T) {
	t.Helper()

	code, res := env.do(t, http.MethodPost, "/load_video?video_path="+url.QueryEscape(env.video), nil)
	require.Equal(t, http.StatusOK, code, res)
}

func TestStatusBeforeLoad(t *testing.T) {
	env := newTestEnv(t)

	code, res := env.do(t, http.MethodGet, "/status", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]interface{}{"loaded": false}, res)
}

func TestControlBeforeLoad(t *testing.T) {
	env := newTestEnv(t)

	requests := []struct {
		path string
		body interface{}
	}{
		{"/play", nil},
		{"/play", map[string]float64{"speed": 2}},
		{"/pause", nil},
		{"/stop", nil},
		{"/reset", nil},
		{"/set_speed", map[string]float64{"speed": 2}},
	}

	for _, req := range requests {
		code, res := env.do(t, http.MethodPost, req.path, req.body)
		assert.Equal(t, http.StatusBadRequest, code, req.path)
		assert.Equal(t, "No video loaded", res["detail"], req.path)
	}
}

func TestLoadVideo(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing file", func(t *testing.T) {
		code, res := env.do(t, http.MethodPost, "/load_video?video_path=/does/not/exist.mp4", nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "Video file not found", res["detail"])
	})

	t.Run("missing parameter", func(t *testing.T) {
		code, _ := env.do(t, http.MethodPost, "/load_video", nil)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("directory", func(t *testing.T) {
		code, _ := env.do(t, http.MethodPost, "/load_video?video_path="+url.QueryEscape(filepath.Dir(env.video)), nil)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("invalid video", func(t *testing.T) {
		broken := filepath.Join(filepath.Dir(env.video), "broken.mp4")
		code, res := env.do(t, http.MethodPost, "/load_video?video_path="+url.QueryEscape(broken), nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, res["detail"], "Could not open video file")

		_, status := env.do(t, http.MethodGet, "/status", nil)
		assert.Equal(t, false, status["loaded"])
	})

	t.Run("success", func(t *testing.T) {
		code, res := env.do(t, http.MethodPost, "/load_video?video_path="+url.QueryEscape(env.video), nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Video loaded successfully", res["message"])
		assert.Equal(t, env.video, res["path"])

		_, status := env.do(t, http.MethodGet, "/status", nil)
		assert.Equal(t, true, status["loaded"])
		assert.Equal(t, false, status["is_playing"])
		assert.Equal(t, 1.0, status["speed"])
		assert.Equal(t, env.video, status["video_path"])
		assert.Equal(t, "00:00:000", status["timestamp"])
		assert.EqualValues(t, 1000, status["total_frames"])
	})

	t.Run("reload closes previous player", func(t *testing.T) {
		env.load(t)

		first := env.decoder(t, 0)
		env.decoder(t, 1)

		first.mu.Lock()
		assert.True(t, first.closed)
		first.mu.Unlock()
	})
}

func TestSetSpeed(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)

	code, res := env.do(t, http.MethodPost, "/set_speed", map[string]float64{"speed": 2})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Speed set to 2.0x", res["message"])
	assert.Equal(t, 2.0, res["speed"])

	code, res = env.do(t, http.MethodPost, "/set_speed", map[string]float64{"speed": 3})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, player.ErrInvalidSpeed.Error(), res["detail"])

	code, _ = env.do(t, http.MethodPost, "/set_speed", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, "/set_speed", "{not json")
	assert.Equal(t, http.StatusBadRequest, code)

	_, status := env.do(t, http.MethodGet, "/status", nil)
	assert.Equal(t, 2.0, status["speed"], "prior speed must be kept")
}

func TestPlaybackControl(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)

	code, res := env.do(t, http.MethodPost, "/play", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Video playback started", res["message"])
	assert.Equal(t, 1.0, res["speed"])

	code, res = env.do(t, http.MethodPost, "/play", map[string]float64{"speed": 0.5})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0.5, res["speed"])

	code, _ = env.do(t, http.MethodPost, "/play", map[string]float64{"speed": 7})
	assert.Equal(t, http.StatusBadRequest, code)

	code, res = env.do(t, http.MethodPost, "/pause", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Video playback paused", res["message"])

	_, status := env.do(t, http.MethodGet, "/status", nil)
	assert.Equal(t, true, status["is_playing"])
	assert.Equal(t, true, status["is_paused"])
	assert.Equal(t, 0.5, status["speed"])

	code, res = env.do(t, http.MethodPost, "/stop", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Video playback stopped", res["message"])

	_, status = env.do(t, http.MethodGet, "/status", nil)
	assert.Equal(t, false, status["is_playing"])
	assert.Equal(t, false, status["is_paused"])

	code, res = env.do(t, http.MethodPost, "/reset", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Video reset to beginning", res["message"])

	_, status = env.do(t, http.MethodGet, "/status", nil)
	assert.EqualValues(t, 0, status["current_frame"])
}

func TestSnapshot(t *testing.T) {
	env := newTestEnv(t)

	res, err := http.Get(env.server.URL + "/snapshot.jpg")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	env.load(t)

	res, err = http.Get(env.server.URL + "/snapshot.jpg")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	code, _ := env.do(t, http.MethodPost, "/play", map[string]float64{"speed": 4})
	require.Equal(t, http.StatusOK, code)

	require.Eventually(t, func() bool {
		_, status := env.do(t, http.MethodGet, "/status", nil)
		return status["current_frame"].(float64) > 0
	}, 5*time.Second, 10*time.Millisecond)

	res, err = http.Get(env.server.URL + "/snapshot.jpg?width=32")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/jpeg", res.Header.Get("Content-Type"))

	img, err := jpeg.Decode(res.Body)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)

	res, err := http.Get(env.server.URL + "/ping")
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))
}

func TestUnknownRoutes(t *testing.T) {
	env := newTestEnv(t)

	code, res := env.do(t, http.MethodGet, "/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Not Found", res["detail"])

	code, res = env.do(t, http.MethodGet, "/play", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, code)
	assert.Equal(t, "Method Not Allowed", res["detail"])
}
