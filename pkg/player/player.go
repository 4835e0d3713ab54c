package player

import (
	"errors"
	"image"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MediaPlayer plays one video file. A single worker goroutine decodes
// frames, draws the overlay and shows them, while the exported methods
// only flip its state.
type MediaPlayer struct {
	logger    zerolog.Logger
	sessionID string
	videoPath string
	metadata  Metadata

	decoder Decoder
	display Display
	overlay Overlay

	mu           sync.Mutex
	playing      bool
	paused       bool
	currentFrame int
	speed        float64
	lastFrame    *image.RGBA
	closed       bool

	// current worker
	quit     chan struct{}
	done     chan struct{}
	quitOnce *sync.Once
}

func New(config Config) *MediaPlayer {
	sessionID := uuid.New().String()

	metadata := config.Metadata
	if metadata.FPS <= 0 {
		metadata.FPS = 30
	}

	return &MediaPlayer{
		logger: log.With().
			Str("module", "player").
			Str("session", sessionID).
			Logger(),
		sessionID: sessionID,
		videoPath: config.VideoPath,
		metadata:  metadata,

		decoder: config.Decoder,
		display: config.Display,
		overlay: config.Overlay,

		speed: 1.0,
	}
}

// Play starts or resumes playback. When speed is set, it is applied first
// and playback does not start if it is invalid.
func (p *MediaPlayer) Play(speed *float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// previous worker may still be shutting down
	for !p.playing && p.done != nil && !isDone(p.done) {
		done := p.done
		p.mu.Unlock()
		<-done
		p.mu.Lock()
	}

	if p.closed {
		return ErrPlayerClosed
	}

	if speed != nil {
		if err := p.setSpeed(*speed); err != nil {
			return err
		}
	}

	if p.playing {
		p.paused = false
		p.logger.Info().Msg("playback resumed")
		return nil
	}

	p.playing = true
	p.paused = false

	p.quit = make(chan struct{})
	p.done = make(chan struct{})
	p.quitOnce = &sync.Once{}

	go p.run(p.quit, p.done)

	p.logger.Info().
		Int("frame", p.currentFrame).
		Float64("speed", p.speed).
		Msg("playback started")
	return nil
}

// Pause has effect only while playing.
func (p *MediaPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing {
		p.paused = true
		p.logger.Info().Int("frame", p.currentFrame).Msg("playback paused")
	}
}

// Stop ends playback, waits for the worker to exit and closes the window.
// Position is kept, next Play continues from the same frame.
func (p *MediaPlayer) Stop() {
	p.mu.Lock()
	p.playing = false
	p.paused = false

	done := p.done
	if p.quitOnce != nil {
		quit := p.quit
		p.quitOnce.Do(func() { close(quit) })
	}
	p.mu.Unlock()

	if done != nil {
		<-done
	}

	if err := p.display.Close(); err != nil {
		p.logger.Warn().Err(err).Msg("unable to close display")
	}

	p.logger.Info().Msg("playback stopped")
}

// Reset stops playback and moves back to the first frame.
func (p *MediaPlayer) Reset() error {
	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.currentFrame = 0
	if err := p.decoder.Rewind(); err != nil {
		return err
	}

	p.logger.Info().Msg("playback reset")
	return nil
}

func (p *MediaPlayer) SetSpeed(speed float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.setSpeed(speed)
}

func (p *MediaPlayer) setSpeed(speed float64) error {
	if !IsValidSpeed(speed) {
		return ErrInvalidSpeed
	}

	p.speed = speed
	p.logger.Info().Float64("speed", speed).Msg("speed changed")
	return nil
}

func (p *MediaPlayer) Speed() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.speed
}

func (p *MediaPlayer) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Status{
		SessionID:    p.sessionID,
		IsPlaying:    p.playing,
		IsPaused:     p.paused,
		CurrentFrame: p.currentFrame,
		TotalFrames:  p.metadata.TotalFrames,
		Speed:        p.speed,
		Timestamp:    FormatTimestamp(p.currentFrame, p.metadata.FPS),
		VideoPath:    p.videoPath,
		FPS:          p.metadata.FPS,
		Width:        p.metadata.Width,
		Height:       p.metadata.Height,
		Duration:     p.metadata.Duration.Seconds(),
		Codec:        p.metadata.Codec,
	}
}

// Snapshot returns last shown frame including overlay, nil if none.
func (p *MediaPlayer) Snapshot() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.lastFrame
}

// Close stops playback and releases decoder and display.
func (p *MediaPlayer) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.Stop()

	return p.decoder.Close()
}

func isDone(done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}

func (p *MediaPlayer) run(quit <-chan struct{}, done chan struct{}) {
	defer close(done)

	defer func() {
		p.mu.Lock()
		// newer worker might already be running
		if p.done == done {
			p.playing = false
		}
		p.mu.Unlock()

		if err := p.display.Close(); err != nil {
			p.logger.Warn().Err(err).Msg("unable to close display")
		}
	}()

	for {
		if isDone(quit) {
			return
		}

		p.mu.Lock()
		playing, paused := p.playing, p.paused
		p.mu.Unlock()

		if !playing {
			return
		}

		if paused {
			select {
			case <-quit:
			case <-time.After(pausePollInterval):
			}
			continue
		}

		frame, err := p.decoder.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				p.logger.Info().Msg("end of video reached")
			} else {
				p.logger.Err(err).Msg("unable to decode frame")
			}
			return
		}

		p.mu.Lock()
		timestamp := FormatTimestamp(p.currentFrame, p.metadata.FPS)
		speed := p.speed
		p.mu.Unlock()

		p.overlay.Draw(frame, timestamp, "Speed: "+FormatSpeed(speed)+"x")

		exit, err := p.display.Show(frame)
		if err != nil {
			p.logger.Err(err).Msg("unable to show frame")
			return
		}

		p.mu.Lock()
		p.lastFrame = frame
		p.mu.Unlock()

		delay := time.Duration(float64(time.Second) / p.metadata.FPS / speed)
		select {
		case <-quit:
		case <-time.After(delay):
		}

		p.mu.Lock()
		p.currentFrame++
		p.mu.Unlock()

		if exit {
			p.logger.Info().Msg("quit requested from window")
			return
		}
	}
}
