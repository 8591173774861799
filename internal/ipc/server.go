package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"witchcraft/internal/logging"
)

// Handler answers one decoded command.
type Handler func(ctx context.Context, args []string) Reply

// Server is a loopback implementation of the command server, used by the
// development stub and by tests. It answers each connection with exactly one
// reply and closes it.
type Server struct {
	path     string
	lockPath string
	handler  Handler
	logger   *slog.Logger
	listener net.Listener
	lock     *flock.Flock

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ServerOption customizes a Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	permissions os.FileMode
}

// WithSocketPermissions chmods the socket after binding.
func WithSocketPermissions(mode os.FileMode) ServerOption {
	return func(o *serverOptions) {
		o.permissions = mode
	}
}

// NewServer takes the lock at path+".lock", replaces any stale socket at path,
// and starts listening. Serve must be called to accept connections.
func NewServer(ctx context.Context, path string, handler Handler, logger *slog.Logger, opts ...ServerOption) (*Server, error) {
	if handler == nil {
		return nil, errors.New("ipc server requires handler")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	var options serverOptions
	for _, opt := range opts {
		opt(&options)
	}

	lockPath := path + ".lock"
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another server already owns %s", path)
	}

	if err := os.RemoveAll(path); err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("listen on socket: %w", err)
	}
	if options.permissions != 0 {
		if err := os.Chmod(path, options.permissions); err != nil {
			_ = listener.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("chmod socket: %w", err)
		}
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:     path,
		lockPath: lockPath,
		handler:  handler,
		logger:   logging.NewComponentLogger(logger, "ipc"),
		listener: listener,
		lock:     lock,
		ctx:      serverCtx,
		cancel:   cancel,
	}, nil
}

// Path returns the socket path the server listens on.
func (s *Server) Path() string { return s.path }

// LockPath returns the lock file guarding the socket path.
func (s *Server) LockPath() string { return s.lockPath }

// Serve starts accepting connections until the context is canceled or Close
// is called.
func (s *Server) Serve() {
	s.logger.Debug("stub server listening", logging.String(logging.FieldSocket, s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the stub"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.serveConn(c)
			}(conn)
		}
	}()
	go func() {
		<-s.ctx.Done()
		_ = s.listener.Close()
	}()
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	logger := logging.WithInvocationID(s.logger, uuid.NewString())

	args, err := ReadCommand(conn)
	if err != nil {
		logging.WarnWithContext(logger, "read command failed", "ipc_read_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "client receives no reply"))
		return
	}
	reply := s.handler(s.ctx, args)
	logger.Debug("command handled",
		logging.Strings("args", args),
		logging.Int("status", reply.Status.ExitCode()),
		logging.Int("stdout_bytes", len(reply.Stdout)),
		logging.Int("stderr_bytes", len(reply.Stderr)))

	if err := WriteReply(conn, reply); err != nil {
		logging.WarnWithContext(logger, "write reply failed", "ipc_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "client sees a truncated reply"))
	}
}

// Close stops the server, removes the socket file, and releases the lock.
func (s *Server) Close() {
	s.cancel()
	_ = s.listener.Close()
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String(logging.FieldSocket, s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually"))
	}
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release server lock", logging.Error(err))
	}
}
