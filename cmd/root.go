package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configDir  = "/etc/go-playback/"
	envPrefix  = "PLAYBACK"
)

var rootCmd = &cobra.Command{
	Use:     "go-playback",
	Short:   "Video playback server CLI.",
	Long:    `Video playback controlled over HTTP API.`,
	Version: "1.0.0",
}

// onConfigLoad is called once at startup and on every config file change.
var onConfigLoad []func()

type Config interface {
	Init(cmd *cobra.Command) error
	Set()
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	var configFile string
	logging := &logConfig{}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "configuration file path")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	if err := logging.Init(rootCmd); err != nil {
		log.Panic().Err(err).Msg("unable to register log flags")
	}

	cobra.OnInitialize(func() {
		if err := loadConfiguration(configFile); err != nil {
			panic(err)
		}

		logging.Set()
		initLogging(logging)

		if file := viper.ConfigFileUsed(); file != "" {
			watchConfiguration(file)
		} else {
			log.Warn().Msg("running without config file")
		}

		reloadConfiguration()
	})
}

// loadConfiguration reads the given file, or searches for config.* when
// empty. Environment variables PLAYBACK_* override file values.
func loadConfiguration(file string) error {
	if file != "" {
		viper.SetConfigFile(file)
	} else {
		viper.SetConfigName(configName)
		if runtime.GOOS == "linux" {
			viper.AddConfigPath(configDir)
		}
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}

	// missing file is fine only when it was not requested explicitly
	if _, ok := err.(viper.ConfigFileNotFoundError); ok && file == "" {
		return nil
	}

	return fmt.Errorf("unable to read config file: %w", err)
}

func watchConfiguration(file string) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Info().
			Str("config", e.Name).
			Str("op", e.Op.String()).
			Msg("config file changed")

		reloadConfiguration()
	})
	viper.WatchConfig()

	log.Info().Str("config", file).Msg("using config file")
}

func reloadConfiguration() {
	for _, fn := range onConfigLoad {
		fn()
	}
}
