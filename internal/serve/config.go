package serve

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type Probe struct {
	Cache    bool   `mapstructure:"cache"`
	CacheDir string `mapstructure:"cache-dir"`
}

type Display struct {
	Driver string `mapstructure:"driver"`
	Title  string `mapstructure:"title"`
}

type Overlay struct {
	FontSize float64 `mapstructure:"font-size"`
}

type Player struct {
	ApiURL string `mapstructure:"api-url"`
}

type Config struct {
	Bind  string `mapstructure:"bind"`
	Cert  string `mapstructure:"cert"`
	Key   string `mapstructure:"key"`
	Proxy bool   `mapstructure:"proxy"`
	PProf bool   `mapstructure:"pprof"`
	CORS  bool   `mapstructure:"cors"`

	FFmpegBinary  string `mapstructure:"ffmpeg-binary"`
	FFprobeBinary string `mapstructure:"ffprobe-binary"`
	FFplayBinary  string `mapstructure:"ffplay-binary"`

	SnapshotQuality int `mapstructure:"snapshot-quality"`

	Probe   Probe   `mapstructure:"probe"`
	Display Display `mapstructure:"display"`
	Overlay Overlay `mapstructure:"overlay"`
	Player  Player  `mapstructure:"player"`
}

func (Config) Init(cmd *cobra.Command) error {
	cmd.PersistentFlags().String("bind", "127.0.0.1:8000", "address/port/socket to serve http")
	if err := viper.BindPFlag("bind", cmd.PersistentFlags().Lookup("bind")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("cert", "", "path to the SSL cert")
	if err := viper.BindPFlag("cert", cmd.PersistentFlags().Lookup("cert")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("key", "", "path to the SSL key")
	if err := viper.BindPFlag("key", cmd.PersistentFlags().Lookup("key")); err != nil {
		return err
	}

	cmd.PersistentFlags().Bool("proxy", false, "allow reverse proxies")
	if err := viper.BindPFlag("proxy", cmd.PersistentFlags().Lookup("proxy")); err != nil {
		return err
	}

	cmd.PersistentFlags().Bool("pprof", false, "enable pprof endpoint available at /debug/pprof")
	if err := viper.BindPFlag("pprof", cmd.PersistentFlags().Lookup("pprof")); err != nil {
		return err
	}

	cmd.PersistentFlags().Bool("cors", true, "allow cross-origin requests from any origin")
	if err := viper.BindPFlag("cors", cmd.PersistentFlags().Lookup("cors")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("ffmpeg-binary", "ffmpeg", "path to the ffmpeg binary used for decoding")
	if err := viper.BindPFlag("ffmpeg-binary", cmd.PersistentFlags().Lookup("ffmpeg-binary")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("ffprobe-binary", "ffprobe", "path to the ffprobe binary used for metadata")
	if err := viper.BindPFlag("ffprobe-binary", cmd.PersistentFlags().Lookup("ffprobe-binary")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("ffplay-binary", "ffplay", "path to the ffplay binary used as playback window")
	if err := viper.BindPFlag("ffplay-binary", cmd.PersistentFlags().Lookup("ffplay-binary")); err != nil {
		return err
	}

	cmd.PersistentFlags().Int("snapshot-quality", 85, "jpeg quality of /snapshot.jpg")
	if err := viper.BindPFlag("snapshot-quality", cmd.PersistentFlags().Lookup("snapshot-quality")); err != nil {
		return err
	}

	cmd.PersistentFlags().Bool("probe.cache", false, "cache video metadata")
	if err := viper.BindPFlag("probe.cache", cmd.PersistentFlags().Lookup("probe.cache")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("probe.cache-dir", "", "store metadata cache in this folder instead of next to the video")
	if err := viper.BindPFlag("probe.cache-dir", cmd.PersistentFlags().Lookup("probe.cache-dir")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("display.driver", "ffplay", "playback window driver (ffplay, none)")
	if err := viper.BindPFlag("display.driver", cmd.PersistentFlags().Lookup("display.driver")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("display.title", "Video Player", "playback window title")
	if err := viper.BindPFlag("display.title", cmd.PersistentFlags().Lookup("display.title")); err != nil {
		return err
	}

	cmd.PersistentFlags().Float64("overlay.font-size", 24, "overlay font size in points")
	if err := viper.BindPFlag("overlay.font-size", cmd.PersistentFlags().Lookup("overlay.font-size")); err != nil {
		return err
	}

	cmd.PersistentFlags().String("player.api-url", "", "control API used by the web player, empty for same origin")
	if err := viper.BindPFlag("player.api-url", cmd.PersistentFlags().Lookup("player.api-url")); err != nil {
		return err
	}

	return nil
}

func (c *Config) Set() {
	if err := viper.Unmarshal(c); err != nil {
		log.Panic().Err(err).Msg("unable to unmarshal config structure")
	}
}
