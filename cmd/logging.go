package cmd

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

type logConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    string `mapstructure:"file"`

	// rotation of the log file
	MaxAge     int `mapstructure:"maxage"`     // days
	MaxSize    int `mapstructure:"maxsize"`    // megabytes
	MaxBackups int `mapstructure:"maxbackups"` // files
}

func (logConfig) Init(cmd *cobra.Command) error {
	cmd.PersistentFlags().String("log.level", "info", "log level (trace, debug, info, warn, error)")
	if err := viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log.level")); err != nil {
		return err
	}

	cmd.PersistentFlags().Bool("log.console", true, "log to stderr")
	if err := viper.BindPFlag("log.console", cmd.PersistentFlags().Lookup("log.console")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("log.file", "", "also log to this file, rotated on SIGHUP")
	if err := viper.BindPFlag("log.file", cmd.PersistentFlags().Lookup("log.file")); err != nil {
		return err
	}

	cmd.PersistentFlags().Int("log.maxage", 0, "days to keep rotated log files")
	if err := viper.BindPFlag("log.maxage", cmd.PersistentFlags().Lookup("log.maxage")); err != nil {
		return err
	}

	cmd.PersistentFlags().Int("log.maxsize", 100, "megabytes after which the log file is rotated")
	if err := viper.BindPFlag("log.maxsize", cmd.PersistentFlags().Lookup("log.maxsize")); err != nil {
		return err
	}

	cmd.PersistentFlags().Int("log.maxbackups", 0, "number of rotated log files to keep")
	if err := viper.BindPFlag("log.maxbackups", cmd.PersistentFlags().Lookup("log.maxbackups")); err != nil {
		return err
	}

	return nil
}

func (c *logConfig) Set() {
	// whole tree is unmarshalled, so that nested flag values are included
	settings := struct {
		Log *logConfig `mapstructure:"log"`
	}{c}

	if err := viper.Unmarshal(&settings); err != nil {
		log.Panic().Err(err).Msg("unable to unmarshal log config")
	}
}

// logWriters returns console and file outputs enabled by the config.
func logWriters(config *logConfig) []io.Writer {
	var writers []io.Writer

	if config.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:     os.Stderr,
			NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
		})
	}

	if config.File != "" {
		file := &lumberjack.Logger{
			Filename:   config.File,
			MaxAge:     config.MaxAge,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
		}

		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		go func() {
			for range hup {
				if err := file.Rotate(); err != nil {
					log.Err(err).Msg("unable to rotate log file")
				}
			}
		}()

		writers = append(writers, file)
	}

	return writers
}

// logLevel falls back to info for empty or unknown levels.
func logLevel(level string) (zerolog.Level, bool) {
	if level == "" {
		return zerolog.InfoLevel, true
	}

	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel, false
	}
	return parsed, true
}

func initLogging(config *logConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(io.MultiWriter(logWriters(config)...))

	level, ok := logLevel(config.Level)
	zerolog.SetGlobalLevel(level)
	if !ok {
		log.Warn().Str("level", config.Level).Msg("unknown log level, using info")
	}

	log.Debug().
		Str("level", level.String()).
		Bool("console", config.Console).
		Str("file", config.File).
		Msg("logging configured")
}
