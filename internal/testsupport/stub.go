package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"witchcraft/internal/ipc"
	"witchcraft/internal/logging"
)

// StubServer is a running loopback server rooted in its own music home.
type StubServer struct {
	*ipc.Server
	MusicHome string
}

// Resolver returns an ipc.Resolver that points at the stub's music home
// without touching the process environment.
func (s *StubServer) Resolver() ipc.Resolver {
	return ipc.Resolver{LookupEnv: func(key string) (string, bool) {
		if key == ipc.EnvMusicHome {
			return s.MusicHome, true
		}
		return "", false
	}}
}

// StartStub serves handler on <short temp dir>/.cli-server.sock until the
// test ends.
func StartStub(t testing.TB, handler ipc.Handler) *StubServer {
	t.Helper()

	home := ShortTempDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv, err := ipc.NewServer(ctx, filepath.Join(home, ipc.SocketName), handler, logging.NewNop())
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)
	return &StubServer{Server: srv, MusicHome: home}
}

// StaticReply returns a handler that always answers with reply.
func StaticReply(reply ipc.Reply) ipc.Handler {
	return func(context.Context, []string) ipc.Reply {
		return reply
	}
}
