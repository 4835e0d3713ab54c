package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/m1k1o/go-playback/internal/serve"
)

func init() {
	service := serve.NewCommand()

	command := &cobra.Command{
		Use:   "serve",
		Short: "serve video playback API",
		Long:  `serve video playback API`,
		Run:   service.Run,
	}

	onConfigLoad = append(onConfigLoad, func() {
		service.Config.Set()
		service.ConfigReload()
	})

	cobra.OnInitialize(func() {
		service.Preflight()
	})

	configs := []Config{
		service.Config,
	}

	for _, cfg := range configs {
		if err := cfg.Init(command); err != nil {
			log.Panic().Err(err).Msg("unable to run serve command")
		}
	}

	rootCmd.AddCommand(command)
}
