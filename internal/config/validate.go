package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validatePlayer()
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validatePlayer() error {
	if strings.ContainsRune(c.Player.Program, 0) {
		return errors.New("player.program contains a NUL byte")
	}
	for i, flag := range c.Player.Flags {
		if strings.ContainsRune(flag, 0) {
			return fmt.Errorf("player.flags[%d] contains a NUL byte", i)
		}
	}
	return nil
}
