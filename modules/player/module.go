package player

import (
	_ "embed"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

//go:embed player.html
var playerHTML string

type ModuleCtx struct {
	logger zerolog.Logger

	mu     sync.RWMutex
	config Config
}

func New(config *Config) *ModuleCtx {
	return &ModuleCtx{
		logger: log.With().Str("module", "player").Logger(),
		config: config.withDefaultValues(),
	}
}

func (m *ModuleCtx) Shutdown() {}

func (m *ModuleCtx) ConfigReload(config *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = config.withDefaultValues()
	m.logger.Info().Str("api-url", m.config.ApiURL).Msg("config reloaded")
}

func (m *ModuleCtx) render() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return strings.NewReplacer(
		"{{API_URL}}", strings.TrimSuffix(m.config.ApiURL, "/"),
		"{{REFRESH_MS}}", strconv.Itoa(m.config.RefreshMs),
	).Replace(playerHTML)
}

func (m *ModuleCtx) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(m.render()))
}
