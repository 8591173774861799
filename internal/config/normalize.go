package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.normalizePlayer()
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		path, err := expandPath(strings.TrimSpace(c.Logging.File))
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = path
	}
	return nil
}

func (c *Config) normalizePlayer() {
	c.Player.Program = strings.TrimSpace(c.Player.Program)
	if c.Player.Program == "" {
		c.Player.Program = defaultPlayerBinary
	}
	// nil means the key was absent; an explicit empty list is kept
	if c.Player.Flags == nil {
		c.Player.Flags = []string{defaultNoVideoFlag}
	}
}
