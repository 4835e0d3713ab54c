package serve

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/m1k1o/go-playback/internal/server"
	"github.com/m1k1o/go-playback/modules"
	"github.com/m1k1o/go-playback/modules/control"
	"github.com/m1k1o/go-playback/modules/player"
)

func NewCommand() *Main {
	return &Main{
		Config: &Config{},
	}
}

type Main struct {
	Config *Config

	logger  zerolog.Logger
	server  *server.ServerManagerCtx
	control *control.ModuleCtx
	player  *player.ModuleCtx

	mu      sync.RWMutex
	factory *factory
}

func (main *Main) Preflight() {
	main.logger = log.With().Str("service", "main").Logger()
}

func (main *Main) openPlayer(ctx context.Context, videoPath string) (control.Player, error) {
	main.mu.RLock()
	factory := main.factory
	main.mu.RUnlock()

	return factory.open(ctx, videoPath)
}

func (main *Main) start() {
	config := main.Config

	main.mu.Lock()
	main.factory = newFactory(*config)
	main.mu.Unlock()

	main.server = server.New(&server.Config{
		Bind:    config.Bind,
		SSLCert: config.Cert,
		SSLKey:  config.Key,
		Proxy:   config.Proxy,
		PProf:   config.PProf,
		CORS:    config.CORS,
	})

	main.player = player.New(&player.Config{
		ApiURL: config.Player.ApiURL,
	})
	main.server.Handle("/player", main.player)
	main.logger.Info().Msg("player registered")

	main.control = control.New(&control.Config{
		Open:            main.openPlayer,
		SnapshotQuality: config.SnapshotQuality,
	})
	main.server.Handle("/", main.control)
	main.logger.Info().Msg("control registered")

	main.server.Start()
	main.logger.Info().
		Str("display", config.Display.Driver).
		Bool("probe-cache", config.Probe.Cache).
		Msg("ready to play videos")
}

// ConfigReload applies new settings to videos loaded from now on.
func (main *Main) ConfigReload() {
	main.mu.Lock()
	if main.factory == nil {
		// not started yet
		main.mu.Unlock()
		return
	}
	main.factory = newFactory(*main.Config)
	main.mu.Unlock()

	if main.player != nil {
		main.player.ConfigReload(&player.Config{
			ApiURL: main.Config.Player.ApiURL,
		})
	}

	main.logger.Info().Msg("config reloaded")
}

func (main *Main) shutdown() {
	err := main.server.Shutdown()
	main.logger.Err(err).Msg("http manager shutdown")

	for name, module := range map[string]modules.Module{
		"control": main.control,
		"player":  main.player,
	} {
		module.Shutdown()
		main.logger.Info().Msgf("%s shutdown", name)
	}
}

func (main *Main) Run(cmd *cobra.Command, args []string) {
	main.logger.Info().Msg("starting main server")
	main.start()
	main.logger.Info().Msg("main ready")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit

	main.logger.Warn().Msgf("received %s, attempting graceful shutdown", sig)
	main.shutdown()
	main.logger.Info().Msg("shutdown complete")
}
