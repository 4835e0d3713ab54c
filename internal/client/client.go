package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/m1k1o/go-playback/modules/control"
)

type Config struct {
	Server  string
	Timeout time.Duration
}

func (c Config) withDefaultValues() Config {
	if c.Server == "" {
		c.Server = "http://127.0.0.1:8000"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return c
}

// ClientCtx talks to a running playback server.
type ClientCtx struct {
	logger zerolog.Logger
	resty  *resty.Client
}

func New(config Config) *ClientCtx {
	config = config.withDefaultValues()

	logger := log.With().Str("module", "client").Logger()

	client := resty.New().
		SetBaseURL(config.Server).
		SetTimeout(config.Timeout).
		SetHeader("Accept", "application/json").
		SetError(&control.ErrorResponse{})

	client.OnAfterResponse(func(c *resty.Client, r *resty.Response) error {
		logger.Debug().
			Str("method", r.Request.Method).
			Str("url", r.Request.URL).
			Int("status", r.StatusCode()).
			Dur("time", r.Time()).
			Msg("response received")
		return nil
	})

	return &ClientCtx{
		logger: logger,
		resty:  client,
	}
}

// do sends the request and converts error replies into *control.Error.
func (c *ClientCtx) do(req *resty.Request, method, path string) error {
	res, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}

	if res.IsError() {
		detail := res.String()
		if e, ok := res.Error().(*control.ErrorResponse); ok && e.Detail != "" {
			detail = e.Detail
		}
		return &control.Error{Code: res.StatusCode(), Detail: detail}
	}

	return nil
}

func (c *ClientCtx) Load(ctx context.Context, videoPath string) (*control.LoadResponse, error) {
	out := &control.LoadResponse{}
	req := c.resty.R().
		SetContext(ctx).
		SetQueryParam("video_path", videoPath).
		SetResult(out)
	return out, c.do(req, resty.MethodPost, "/load_video")
}

// Play starts playback, speed is optional.
func (c *ClientCtx) Play(ctx context.Context, speed *float64) (*control.SpeedResponse, error) {
	out := &control.SpeedResponse{}
	req := c.resty.R().
		SetContext(ctx).
		SetResult(out)
	if speed != nil {
		req.SetBody(&control.SpeedRequest{Speed: speed})
	}
	return out, c.do(req, resty.MethodPost, "/play")
}

func (c *ClientCtx) Pause(ctx context.Context) (*control.MessageResponse, error) {
	return c.message(ctx, "/pause")
}

func (c *ClientCtx) Stop(ctx context.Context) (*control.MessageResponse, error) {
	return c.message(ctx, "/stop")
}

func (c *ClientCtx) Reset(ctx context.Context) (*control.MessageResponse, error) {
	return c.message(ctx, "/reset")
}

func (c *ClientCtx) message(ctx context.Context, path string) (*control.MessageResponse, error) {
	out := &control.MessageResponse{}
	req := c.resty.R().
		SetContext(ctx).
		SetResult(out)
	return out, c.do(req, resty.MethodPost, path)
}

func (c *ClientCtx) SetSpeed(ctx context.Context, speed float64) (*control.SpeedResponse, error) {
	out := &control.SpeedResponse{}
	req := c.resty.R().
		SetContext(ctx).
		SetBody(&control.SpeedRequest{Speed: &speed}).
		SetResult(out)
	return out, c.do(req, resty.MethodPost, "/set_speed")
}

func (c *ClientCtx) Status(ctx context.Context) (*control.StatusResponse, error) {
	out := &control.StatusResponse{}
	req := c.resty.R().
		SetContext(ctx).
		SetResult(out)
	return out, c.do(req, resty.MethodGet, "/status")
}
