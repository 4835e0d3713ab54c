package media

import (
	"bufio"
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

// Decoder streams raw RGBA frames out of an ffmpeg process. It keeps its
// position between reads, so playback can be resumed where it stopped.
type Decoder struct {
	logger zerolog.Logger
	config DecoderConfig

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdout io.ReadCloser
	reader *bufio.Reader
	frames int // read from current process
	eof    bool
}

func NewDecoder(config DecoderConfig) *Decoder {
	return &Decoder{
		logger: log.With().Str("module", "media").Str("submodule", "decoder").Logger(),
		config: config.withDefaultValues(),
	}
}

func (d *Decoder) args() []string {
	return []string{
		"-loglevel", "error",
		"-nostdin",
		"-noautorotate", // keep probed dimensions
		"-i", d.config.MediaPath,
		"-an", // No audio
		"-sn", // No subtitles
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	}
}

func (d *Decoder) start() error {
	if d.config.Width <= 0 || d.config.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", d.config.Width, d.config.Height)
	}

	cmd := exec.Command(d.config.FFmpegBinary, d.args()...)
	cmd.Stderr = utils.LogWriter(d.logger).WithLevel(zerolog.ErrorLevel)
	utils.ConfigureAsProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("unable to start ffmpeg: %w", err)
	}

	d.logger.Debug().
		Str("path", d.config.MediaPath).
		Int("pid", cmd.Process.Pid).
		Msg("decoder started")

	d.cmd = cmd
	d.stdout = stdout
	d.reader = bufio.NewReaderSize(stdout, d.frameSize())
	d.frames = 0
	return nil
}

func (d *Decoder) stop() {
	if d.cmd == nil {
		return
	}

	if err := utils.KillProcessGroup(d.cmd); err != nil {
		d.logger.Warn().Err(err).Msg("unable to kill decoder")
	}

	// reap the process, exit error is expected after kill
	_ = d.cmd.Wait()

	d.logger.Debug().Str("path", d.config.MediaPath).Msg("decoder stopped")

	d.cmd = nil
	d.stdout = nil
	d.reader = nil
}

// exit waits for ffmpeg that already closed its output and returns its
// exit error.
func (d *Decoder) exit() error {
	err := d.cmd.Wait()

	d.cmd = nil
	d.stdout = nil
	d.reader = nil
	return err
}

func (d *Decoder) frameSize() int {
	return d.config.Width * d.config.Height * 4
}

// Read returns next decoded frame, or io.EOF when the stream is exhausted.
func (d *Decoder) Read() (*image.RGBA, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.eof {
		return nil, io.EOF
	}

	if d.cmd == nil {
		if err := d.start(); err != nil {
			return nil, err
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, d.config.Width, d.config.Height))
	if _, err := io.ReadFull(d.reader, img.Pix); err != nil {
		// partial frame at the end is dropped
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// nothing decoded, ffmpeg exit status tells whether it failed
			if d.frames == 0 {
				if err := d.exit(); err != nil {
					return nil, fmt.Errorf("ffmpeg failed before first frame: %w", err)
				}
			}

			d.eof = true
			d.stop()
			return nil, io.EOF
		}

		d.stop()
		return nil, fmt.Errorf("unable to read frame: %w", err)
	}

	d.frames++
	return img, nil
}

// Rewind moves decoder to the first frame.
func (d *Decoder) Rewind() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stop()
	d.eof = false
	return nil
}

func (d *Decoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stop()
	return nil
}
