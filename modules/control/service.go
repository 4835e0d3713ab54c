package control

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/m1k1o/go-playback/pkg/player"
)

func (m *ModuleCtx) current() (Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.player == nil {
		return nil, ErrNoVideoLoaded
	}
	return m.player, nil
}

func (m *ModuleCtx) LoadVideo(ctx context.Context, videoPath string) (*LoadResponse, error) {
	if videoPath == "" {
		return nil, badRequest("video_path is required")
	}

	fi, err := os.Stat(videoPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrVideoNotFound
	}
	if err != nil {
		return nil, badRequest(err.Error())
	}
	if fi.IsDir() {
		return nil, badRequest(fmt.Sprintf("Could not open video file: %s", videoPath))
	}

	p, err := m.config.Open(ctx, videoPath)
	if err != nil {
		return nil, badRequest(err.Error())
	}

	m.mu.Lock()
	previous := m.player
	m.player = p
	m.mu.Unlock()

	// only one video can be played at a time
	if previous != nil {
		if err := previous.Close(); err != nil {
			m.logger.Warn().Err(err).Msg("unable to close previous player")
		}
	}

	m.logger.Info().Str("path", videoPath).Msg("video loaded")

	return &LoadResponse{
		Message: "Video loaded successfully",
		Path:    videoPath,
	}, nil
}

func (m *ModuleCtx) PlayVideo(speed *float64) (*SpeedResponse, error) {
	p, err := m.current()
	if err != nil {
		return nil, err
	}

	if err := p.Play(speed); err != nil {
		return nil, badRequest(err.Error())
	}

	return &SpeedResponse{
		Message: "Video playback started",
		Speed:   p.Speed(),
	}, nil
}

func (m *ModuleCtx) PauseVideo() (*MessageResponse, error) {
	p, err := m.current()
	if err != nil {
		return nil, err
	}

	p.Pause()
	return &MessageResponse{Message: "Video playback paused"}, nil
}

func (m *ModuleCtx) StopVideo() (*MessageResponse, error) {
	p, err := m.current()
	if err != nil {
		return nil, err
	}

	p.Stop()
	return &MessageResponse{Message: "Video playback stopped"}, nil
}

func (m *ModuleCtx) ResetVideo() (*MessageResponse, error) {
	p, err := m.current()
	if err != nil {
		return nil, err
	}

	if err := p.Reset(); err != nil {
		return nil, badRequest(err.Error())
	}

	return &MessageResponse{Message: "Video reset to beginning"}, nil
}

func (m *ModuleCtx) SetSpeed(speed float64) (*SpeedResponse, error) {
	p, err := m.current()
	if err != nil {
		return nil, err
	}

	if err := p.SetSpeed(speed); err != nil {
		return nil, badRequest(err.Error())
	}

	return &SpeedResponse{
		Message: fmt.Sprintf("Speed set to %sx", player.FormatSpeed(speed)),
		Speed:   speed,
	}, nil
}

func (m *ModuleCtx) GetStatus() *StatusResponse {
	p, err := m.current()
	if err != nil {
		return &StatusResponse{Loaded: false}
	}

	status := p.Status()
	return &StatusResponse{
		Loaded: true,
		Status: &status,
	}
}
