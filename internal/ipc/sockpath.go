package ipc

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const (
	// DefaultMusicHome is the server's music directory when no override is set.
	DefaultMusicHome = "/var/lib/witchcraft"
	// SocketName is the server socket's file name inside the music home.
	SocketName = ".cli-server.sock"
	// EnvMusicHome is the override the server itself reads.
	EnvMusicHome = "WITCHCRAFT_MUSIC_HOME"
	// EnvOverrideRoot is accepted as a generic alias for EnvMusicHome.
	EnvOverrideRoot = "OVERRIDE_ROOT"
)

// SocketPathCapacity is the size of sockaddr_un.sun_path, terminator included.
const SocketPathCapacity = len(unix.RawSockaddrUnix{}.Path)

// Resolver computes the server socket path from the environment.
type Resolver struct {
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// MusicHome returns the first override that is set, even if empty, or
// DefaultMusicHome.
func (r Resolver) MusicHome() string {
	home, _ := r.Lookup()
	return home
}

// Lookup returns the music home and the environment variable it came from.
// source is empty when DefaultMusicHome applies.
func (r Resolver) Lookup() (home, source string) {
	lookup := r.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range []string{EnvMusicHome, EnvOverrideRoot} {
		if value, ok := lookup(key); ok {
			return value, key
		}
	}
	return DefaultMusicHome, ""
}

// Source names the variable that set the music home, or describes how to set
// one when the default applies.
func (r Resolver) Source() string {
	if _, source := r.Lookup(); source != "" {
		return source
	}
	return EnvMusicHome + " or " + EnvOverrideRoot
}

// Resolve returns "<music home>/.cli-server.sock". The path plus its NUL
// terminator must fit in capacity bytes; otherwise ErrPathTooLong is returned
// and nothing is assembled.
func (r Resolver) Resolve(capacity int) (string, error) {
	home, source := r.Lookup()
	// separator and terminator
	total := len(home) + len(SocketName) + 2
	if total > capacity {
		if source == "" {
			source = "default"
		}
		return "", fmt.Errorf("%w: socket_path length cannot exceed %d bytes, got: %d (music home from %s)", ErrPathTooLong, capacity, total, source)
	}
	return home + "/" + SocketName, nil
}

// ResolveSocketPath resolves against the process environment and the
// platform sun_path size.
func ResolveSocketPath() (string, error) {
	return Resolver{}.Resolve(SocketPathCapacity)
}
