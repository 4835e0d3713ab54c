package display

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/m1k1o/go-playback/internal/utils"
)

// frames are paced by the writer, ffplay must not hold them back
const ffplayInputRate = 240

// FFplay renders raw frames in an ffplay window fed through stdin. The
// window is opened with the first frame and closed by Close.
type FFplay struct {
	logger zerolog.Logger
	config Config

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	width  int
	height int
}

func NewFFplay(config Config) *FFplay {
	return &FFplay{
		logger: log.With().Str("module", "display").Str("submodule", "ffplay").Logger(),
		config: config.withDefaultValues(),
	}
}

func (f *FFplay) args(width, height int) []string {
	return []string{
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%d", ffplayInputRate),
		"-fflags", "nobuffer",
		"-flags", "low_delay",
		"-framedrop",
		"-window_title", f.config.Title,
		"-i", "-", // Read from stdin
	}
}

func (f *FFplay) start(width, height int) error {
	cmd := exec.Command(f.config.FFplayBinary, f.args(width, height)...)
	cmd.Stderr = utils.LogWriter(f.logger)
	utils.ConfigureAsProcessGroup(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("unable to start ffplay: %w", err)
	}

	f.logger.Info().
		Int("pid", cmd.Process.Pid).
		Str("size", fmt.Sprintf("%dx%d", width, height)).
		Msg("window opened")

	f.cmd = cmd
	f.stdin = stdin
	f.width = width
	f.height = height
	return nil
}

func (f *FFplay) close() {
	if f.cmd == nil {
		return
	}

	_ = f.stdin.Close()

	if err := utils.KillProcessGroup(f.cmd); err != nil {
		f.logger.Warn().Err(err).Msg("unable to kill ffplay")
	}

	_ = f.cmd.Wait()
	f.logger.Info().Msg("window closed")

	f.cmd = nil
	f.stdin = nil
}

func (f *FFplay) Show(img *image.RGBA) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	// frame size can not change within one ffplay session
	if f.cmd != nil && (f.width != width || f.height != height) {
		f.close()
	}

	if f.cmd == nil {
		if err := f.start(width, height); err != nil {
			return false, err
		}
	}

	_, err := f.stdin.Write(rawPixels(img))
	if err != nil {
		// ffplay quits on q / ESC or when its window is closed
		if errors.Is(err, io.ErrClosedPipe) || isBrokenPipe(err) {
			f.logger.Info().Msg("window closed by viewer")
			f.close()
			return true, nil
		}

		f.close()
		return false, fmt.Errorf("unable to write frame: %w", err)
	}

	return false, nil
}

func (f *FFplay) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.close()
	return nil
}

// rawPixels returns tightly packed RGBA bytes of the image.
func rawPixels(img *image.RGBA) []byte {
	bounds := img.Bounds()
	rowLen := bounds.Dx() * 4

	if img.Stride == rowLen && bounds.Min == (image.Point{}) {
		return img.Pix[:rowLen*bounds.Dy()]
	}

	buf := make([]byte, 0, rowLen*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		offset := img.PixOffset(bounds.Min.X, y)
		buf = append(buf, img.Pix[offset:offset+rowLen]...)
	}
	return buf
}
