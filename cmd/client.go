package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/m1k1o/go-playback/internal/client"
)

type ctlConfig struct {
	Server  string
	Timeout time.Duration
}

func (ctlConfig) Init(cmd *cobra.Command) error {
	cmd.PersistentFlags().String("server", "http://127.0.0.1:8000", "address of the playback server")
	if err := viper.BindPFlag("ctl.server", cmd.PersistentFlags().Lookup("server")); err != nil {
		return err
	}

	cmd.PersistentFlags().Duration("timeout", 10*time.Second, "request timeout")
	if err := viper.BindPFlag("ctl.timeout", cmd.PersistentFlags().Lookup("timeout")); err != nil {
		return err
	}

	return nil
}

func (c *ctlConfig) Set() {
	c.Server = viper.GetString("ctl.server")
	c.Timeout = viper.GetDuration("ctl.timeout")
}

type ctlFunc func(ctx context.Context, c *client.ClientCtx, args []string) (interface{}, error)

func init() {
	var config ctlConfig

	command := &cobra.Command{
		Use:   "ctl",
		Short: "control a running playback server",
		Long:  `control a running playback server`,
	}

	run := func(fn ctlFunc) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			// arguments are valid, do not print usage on server errors
			cmd.SilenceUsage = true
			config.Set()

			ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
			defer cancel()

			c := client.New(client.Config{
				Server:  config.Server,
				Timeout: config.Timeout,
			})

			res, err := fn(ctx, c, args)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(os.Stdout, string(out))
			return err
		}
	}

	command.AddCommand(
		&cobra.Command{
			Use:   "load <video_path>",
			Short: "load video file",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, c *client.ClientCtx, args []string) (interface{}, error) {
				return c.Load(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "play [speed]",
			Short: "start or resume playback",
			Args:  cobra.MaximumNArgs(1),
			RunE: run(func(ctx context.Context, c *client.ClientCtx, args []string) (interface{}, error) {
				if len(args) == 0 {
					return c.Play(ctx, nil)
				}

				speed, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return nil, fmt.Errorf("invalid speed %q: %w", args[0], err)
				}
				return c.Play(ctx, &speed)
			}),
		},
		&cobra.Command{
			Use:   "pause",
			Short: "pause playback",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, c *client.ClientCtx, args []string) (interface{}, error) {
				return c.Pause(ctx)
			}),
		},
		&cobra.Command{
			Use:   "stop",
			Short: "stop playback",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, c *client.ClientCtx, args []string) (interface{}, error) {
				return c.Stop(ctx)
			}),
		},
		&cobra.Command{
			Use:   "reset",
			Short: "stop playback and rewind to the beginning",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, c *client.ClientCtx, args []string) (interface{}, error) {
				return c.Reset(ctx)
			}),
		},
		&cobra.Command{
			Use:   "speed <speed>",
			Short: "set playback speed (0.5, 1, 2, 4)",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, c *client.ClientCtx, args []string) (interface{}, error) {
				speed, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return nil, fmt.Errorf("invalid speed %q: %w", args[0], err)
				}
				return c.SetSpeed(ctx, speed)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "show playback status",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, c *client.ClientCtx, args []string) (interface{}, error) {
				return c.Status(ctx)
			}),
		},
	)

	var cfg Config = &config
	if err := cfg.Init(command); err != nil {
		log.Panic().Err(err).Msg("unable to run ctl command")
	}

	rootCmd.AddCommand(command)
}
