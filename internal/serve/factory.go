package serve

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/m1k1o/go-playback/modules/control"
	"github.com/m1k1o/go-playback/pkg/display"
	"github.com/m1k1o/go-playback/pkg/media"
	"github.com/m1k1o/go-playback/pkg/overlay"
	"github.com/m1k1o/go-playback/pkg/player"
)

// factory builds players from the config snapshot taken at load time.
type factory struct {
	logger zerolog.Logger
	config Config
	prober media.Prober
}

func newFactory(config Config) *factory {
	return &factory{
		logger: log.With().Str("module", "factory").Logger(),
		config: config,
		prober: media.NewProber(media.ProbeConfig{
			FFprobeBinary: config.FFprobeBinary,
			Cache:         config.Probe.Cache,
			CacheDir:      config.Probe.CacheDir,
		}),
	}
}

func (f *factory) open(ctx context.Context, videoPath string) (control.Player, error) {
	openErr := fmt.Errorf("Could not open video file: %s", videoPath)

	data, err := f.prober.Probe(ctx, videoPath)
	if err != nil {
		f.logger.Warn().Err(err).Str("path", videoPath).Msg("unable to probe video")
		return nil, openErr
	}
	if data.Video == nil {
		return nil, openErr
	}

	out, err := display.New(display.Config{
		Driver:       f.config.Display.Driver,
		Title:        f.config.Display.Title,
		FFplayBinary: f.config.FFplayBinary,
	})
	if err != nil {
		return nil, err
	}

	text, err := overlay.New(overlay.Config{
		FontSize: f.config.Overlay.FontSize,
	})
	if err != nil {
		return nil, err
	}

	video := data.Video
	return player.New(player.Config{
		VideoPath: videoPath,
		Metadata: player.Metadata{
			FPS:         video.FPS,
			TotalFrames: video.Frames,
			Width:       video.Width,
			Height:      video.Height,
			Duration:    data.Duration,
			Codec:       video.Codec,
		},
		Decoder: media.NewDecoder(media.DecoderConfig{
			FFmpegBinary: f.config.FFmpegBinary,
			MediaPath:    videoPath,
			Width:        video.Width,
			Height:       video.Height,
		}),
		Display: out,
		Overlay: text,
	}), nil
}
