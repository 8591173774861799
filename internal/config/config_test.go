package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"witchcraft/internal/config"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv(config.EnvConfigPath, "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	want := filepath.Join(tempHome, ".config", "witchcraft", "config.toml")
	if resolved != want {
		t.Fatalf("resolved path = %q, want %q", resolved, want)
	}
	if cfg.Player.Program != "mpv" {
		t.Fatalf("unexpected player: %q", cfg.Player.Program)
	}
	if !reflect.DeepEqual(cfg.Player.Flags, []string{"--no-video"}) {
		t.Fatalf("unexpected player flags: %#v", cfg.Player.Flags)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "console" {
		t.Fatalf("unexpected logging defaults: %#v", cfg.Logging)
	}
}

func TestLoadHonoursEnvPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.toml")
	body := "[logging]\nlevel = \"DEBUG\"\nformat = \"json\"\nfile = \"logs/client.log\"\n\n[player]\nprogram = \"mpv2\"\nflags = []\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(config.EnvConfigPath, path)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected %s to be loaded, got %s (exists=%v)", path, resolved, exists)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging not normalized: %#v", cfg.Logging)
	}
	if !filepath.IsAbs(cfg.Logging.File) {
		t.Fatalf("expected absolute log file path, got %q", cfg.Logging.File)
	}
	if cfg.Player.Program != "mpv2" {
		t.Fatalf("unexpected player: %q", cfg.Player.Program)
	}
	if len(cfg.Player.Flags) != 0 {
		t.Fatalf("explicit empty flags should be kept, got %#v", cfg.Player.Flags)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"format":  "[logging]\nformat = \"xml\"\n",
		"level":   "[logging]\nlevel = \"loud\"\n",
		"unknown": "[server]\nsocket = \"/tmp/x.sock\"\n",
		"syntax":  "[logging\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatalf("expected error for %s config", name)
			}
		})
	}
}

func TestSampleConfigRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var parsed config.Config
	if err := toml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if parsed.Player.Program != "mpv" {
		t.Fatalf("sample player = %q", parsed.Player.Program)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil || !exists {
		t.Fatalf("Load sample: exists=%v err=%v", exists, err)
	}
	if !strings.EqualFold(cfg.Logging.Level, "warn") {
		t.Fatalf("unexpected sample level %q", cfg.Logging.Level)
	}
}
