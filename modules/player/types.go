package player

type Config struct {
	// base URL of the control API, empty for same origin
	ApiURL string
	// how often the page refreshes status and snapshot
	RefreshMs int
}

func (c Config) withDefaultValues() Config {
	if c.RefreshMs <= 0 {
		c.RefreshMs = 500
	}
	return c
}
