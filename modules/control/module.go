package control

import (
	"errors"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

type ModuleCtx struct {
	logger zerolog.Logger
	config Config
	router *chi.Mux

	mu     sync.Mutex
	player Player
}

func New(config *Config) *ModuleCtx {
	module := &ModuleCtx{
		logger: log.With().Str("module", "control").Logger(),
		config: config.withDefaultValues(),
		router: chi.NewRouter(),
	}

	module.Route(module.router)
	return module
}

func (m *ModuleCtx) Route(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})

	r.Post("/load_video", func(w http.ResponseWriter, r *http.Request) {
		res, err := m.LoadVideo(r.Context(), r.URL.Query().Get("video_path"))
		m.respond(w, r, res, err)
	})

	r.Post("/play", func(w http.ResponseWriter, r *http.Request) {
		// body is optional
		req := SpeedRequest{}
		if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
			m.respond(w, r, nil, badRequest("invalid request body: "+err.Error()))
			return
		}

		res, err := m.PlayVideo(req.Speed)
		m.respond(w, r, res, err)
	})

	r.Post("/pause", func(w http.ResponseWriter, r *http.Request) {
		res, err := m.PauseVideo()
		m.respond(w, r, res, err)
	})

	r.Post("/stop", func(w http.ResponseWriter, r *http.Request) {
		res, err := m.StopVideo()
		m.respond(w, r, res, err)
	})

	r.Post("/reset", func(w http.ResponseWriter, r *http.Request) {
		res, err := m.ResetVideo()
		m.respond(w, r, res, err)
	})

	r.Post("/set_speed", func(w http.ResponseWriter, r *http.Request) {
		req := SpeedRequest{}
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			m.respond(w, r, nil, badRequest("invalid request body: "+err.Error()))
			return
		}

		if req.Speed == nil {
			m.respond(w, r, nil, badRequest("speed is required"))
			return
		}

		res, err := m.SetSpeed(*req.Speed)
		m.respond(w, r, res, err)
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, m.GetStatus())
	})

	r.Get("/snapshot.jpg", m.serveSnapshot)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, &ErrorResponse{Detail: "Not Found"})
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusMethodNotAllowed)
		render.JSON(w, r, &ErrorResponse{Detail: "Method Not Allowed"})
	})
}

func (m *ModuleCtx) respond(w http.ResponseWriter, r *http.Request, res interface{}, err error) {
	if err == nil {
		render.JSON(w, r, res)
		return
	}

	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Code: http.StatusInternalServerError, Detail: err.Error()}
	}

	m.logger.Warn().
		Str("path", r.URL.Path).
		Int("code", e.Code).
		Str("detail", e.Detail).
		Msg("request rejected")

	render.Status(r, e.Code)
	render.JSON(w, r, &ErrorResponse{Detail: e.Detail})
}

func (m *ModuleCtx) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	p, err := m.current()
	if err != nil {
		m.respond(w, r, nil, err)
		return
	}

	frame := p.Snapshot()
	if frame == nil {
		m.respond(w, r, nil, ErrNoFrame)
		return
	}

	var img image.Image = frame

	if value := r.URL.Query().Get("width"); value != "" {
		width, err := strconv.Atoi(value)
		if err != nil || width <= 0 {
			m.respond(w, r, nil, badRequest("width must be a positive number"))
			return
		}

		img = scaleToWidth(img, width)
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")

	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: m.config.SnapshotQuality}); err != nil {
		m.logger.Warn().Err(err).Msg("unable to encode snapshot")
	}
}

// scaleToWidth only downscales, keeping aspect ratio.
func scaleToWidth(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	if width >= bounds.Dx() {
		return img
	}

	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func (m *ModuleCtx) Shutdown() {
	m.mu.Lock()
	p := m.player
	m.player = nil
	m.mu.Unlock()

	if p != nil {
		if err := p.Close(); err != nil {
			m.logger.Warn().Err(err).Msg("unable to close player")
		}
	}
}

func (m *ModuleCtx) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.router.ServeHTTP(w, r)
}
