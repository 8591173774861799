// Package dispatch runs one client invocation: it forwards the command-line
// arguments to the witchcraft server, relays the reply, and either exits with
// the server's status or hands a "play" track list to the player.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"witchcraft/internal/ipc"
	"witchcraft/internal/logging"
)

// ExitLocalFailure is the exit code for any failure on the client side.
const ExitLocalFailure = 255

// Command is the client-side classification of an invocation.
type Command int

const (
	// CommandNormal relays the reply and exits with the server's status.
	CommandNormal Command = iota
	// CommandPlayback feeds a successful reply to the player.
	CommandPlayback
)

func (c Command) String() string {
	switch c {
	case CommandPlayback:
		return "playback"
	default:
		return "normal"
	}
}

// Classify decides the command kind from the first argument only.
func Classify(args []string) Command {
	if len(args) >= 1 && args[0] == "play" {
		return CommandPlayback
	}
	return CommandNormal
}

// Handoff consumes the primary stream of a successful play reply. A
// successful Run does not return in production.
type Handoff interface {
	Run(ctx context.Context, primary []byte) error
}

// Client runs one request/response exchange.
type Client struct {
	Resolver ipc.Resolver
	// Capacity bounds the socket path, terminator included. Zero means
	// ipc.SocketPathCapacity.
	Capacity int
	// NewSocket defaults to ipc.NewSocket.
	NewSocket func() (*ipc.Socket, error)
	Handoff   Handoff
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
}

// Run executes args against the server and returns the process exit code.
func (c *Client) Run(ctx context.Context, args []string) int {
	logger := c.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "dispatch")
	command := Classify(args)
	logger.Debug("dispatching command",
		logging.String("command", command.String()),
		logging.Int("argc", len(args)))

	reply, err := c.exchange(args)
	if err != nil {
		event, hint := describe(err, c.Resolver)
		attrs := []logging.Attr{logging.Error(err)}
		if hint != "" {
			attrs = append(attrs, logging.String(logging.FieldErrorHint, hint))
		}
		logging.ErrorWithContext(logger, "command exchange failed", event, attrs...)
		return ExitLocalFailure
	}

	handoff := command == CommandPlayback && reply.Status.Success()
	if !handoff {
		c.relay(logger, c.stdout(), "stdout", reply.Stdout)
	}
	c.relay(logger, c.stderr(), "stderr", reply.Stderr)

	if !handoff {
		return reply.Status.ExitCode()
	}
	if c.Handoff == nil {
		logging.ErrorWithContext(logger, "no player configured", "playback_unconfigured")
		return ExitLocalFailure
	}
	if err := c.Handoff.Run(ctx, reply.Stdout); err != nil {
		logging.ErrorWithContext(logger, "player handoff failed", "playback_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check [player] program in the config and that it is on PATH"))
		return ExitLocalFailure
	}
	return reply.Status.ExitCode()
}

// exchange owns the connection; it is closed before any handoff.
func (c *Client) exchange(args []string) (*ipc.Reply, error) {
	newSocket := c.NewSocket
	if newSocket == nil {
		newSocket = ipc.NewSocket
	}
	sock, err := newSocket()
	if err != nil {
		return nil, err
	}
	defer sock.Close()

	capacity := c.Capacity
	if capacity == 0 {
		capacity = ipc.SocketPathCapacity
	}
	path, err := c.Resolver.Resolve(capacity)
	if err != nil {
		return nil, err
	}
	client, err := sock.Connect(path)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return client.Exchange(args)
}

func (c *Client) relay(logger *slog.Logger, w io.Writer, stream string, data []byte) {
	if len(data) == 0 {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.WarnWithContext(logger, "failed to relay server output", "relay_failed",
			logging.String("stream", stream),
			logging.Error(err),
			logging.String(logging.FieldImpact, fmt.Sprintf("%d bytes of server %s were lost", len(data), stream)))
	}
}

func (c *Client) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

func (c *Client) stderr() io.Writer {
	if c.Stderr != nil {
		return c.Stderr
	}
	return os.Stderr
}

func describe(err error, resolver ipc.Resolver) (event, hint string) {
	switch {
	case errors.Is(err, ipc.ErrSocketCreate):
		return "socket_create_failed", "check the process file descriptor limit"
	case errors.Is(err, ipc.ErrPathTooLong):
		if _, source := resolver.Lookup(); source != "" {
			return "socket_path_too_long", "shorten " + source
		}
		return "socket_path_too_long", "set " + resolver.Source() + " to a shorter directory"
	case errors.Is(err, ipc.ErrConnect):
		return "connect_failed", "is the witchcraft server running? check " + resolver.Source()
	case errors.Is(err, ipc.ErrFrameTooLarge), errors.Is(err, ipc.ErrArgumentTooLarge):
		return "command_too_large", "pass fewer or shorter arguments"
	case errors.Is(err, ipc.ErrIO):
		return "io_failed", "the server closed the connection early; check its log"
	default:
		return "exchange_failed", ""
	}
}
