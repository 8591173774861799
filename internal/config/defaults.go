package config

const (
	defaultConfigPath   = "~/.config/witchcraft/config.toml"
	defaultLogFormat    = "console"
	defaultLogLevel     = "warn"
	defaultPlayerBinary = "mpv"
	defaultNoVideoFlag  = "--no-video"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Player: Player{
			Program: defaultPlayerBinary,
			Flags:   []string{defaultNoVideoFlag},
		},
	}
}
