// Package config loads, normalizes, and validates witchcraft client settings.
//
// Settings live in a small TOML file: log output and the media player used for
// the play handoff. The server socket location is not configured here; it
// follows the music-home environment rule in package ipc so the client and
// the server always agree on it.
package config
