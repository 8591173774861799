package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"witchcraft/internal/config"
	"witchcraft/internal/logging"
	"witchcraft/internal/reflist"
)

// ErrExec reports that the player could not be started.
var ErrExec = errors.New("failed to exec player")

// Player is the program that receives the track list.
type Player struct {
	Program string
	Flags   []string
}

// DefaultPlayer is mpv with video disabled.
func DefaultPlayer() Player {
	return FromConfig(config.Default().Player)
}

// FromConfig copies the player section so later edits to cfg do not leak in.
func FromConfig(cfg config.Player) Player {
	return Player{
		Program: cfg.Program,
		Flags:   append([]string(nil), cfg.Flags...),
	}
}

// Execer replaces the current process image.
type Execer interface {
	Exec(path string, argv []string, env []string) error
}

// ExecFunc adapts a function to Execer.
type ExecFunc func(path string, argv []string, env []string) error

// Exec calls f.
func (f ExecFunc) Exec(path string, argv []string, env []string) error {
	return f(path, argv, env)
}

// SystemExec calls execve(2).
var SystemExec Execer = ExecFunc(unix.Exec)

// BuildArgv assembles program, one entry per newline-terminated line of
// primary, then the player flags, and terminates the list. Bytes after the
// last newline are not a complete line and are left out. Empty lines are
// kept as empty arguments.
func BuildArgv(player Player, primary []byte, opts ...reflist.Option) (*reflist.List, error) {
	argv := reflist.New(opts...)
	if err := argv.Push(player.Program); err != nil {
		return nil, fmt.Errorf("push program: %w", err)
	}
	start := 0
	for ix, b := range primary {
		if b != '\n' {
			continue
		}
		if err := argv.Push(string(primary[start:ix])); err != nil {
			return nil, fmt.Errorf("push track %d: %w", argv.Len(), err)
		}
		start = ix + 1
	}
	for _, flag := range player.Flags {
		if err := argv.Push(flag); err != nil {
			return nil, fmt.Errorf("push flag %q: %w", flag, err)
		}
	}
	if err := argv.Terminate(); err != nil {
		return nil, fmt.Errorf("terminate argv: %w", err)
	}
	return argv, nil
}

// Handoff replaces the running process with the player.
type Handoff struct {
	Player Player
	Execer Execer
	Logger *slog.Logger

	// LookPath resolves Player.Program; defaults to exec.LookPath.
	LookPath func(string) (string, error)
	// Environ supplies the player's environment; defaults to os.Environ.
	Environ func() []string
}

// NewHandoff returns a Handoff that execs player for real.
func NewHandoff(player Player, logger *slog.Logger) *Handoff {
	return &Handoff{Player: player, Execer: SystemExec, Logger: logger}
}

// Run builds the argument vector from primary and execs the player. It only
// returns on failure.
func (h *Handoff) Run(ctx context.Context, primary []byte) error {
	logger := h.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	argv, err := BuildArgv(h.Player, primary)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrExec, err)
	}

	lookPath := h.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(h.Player.Program)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExec, h.Player.Program, err)
	}
	environ := h.Environ
	if environ == nil {
		environ = os.Environ
	}
	execer := h.Execer
	if execer == nil {
		execer = SystemExec
	}

	logger.Debug("handing off to player",
		logging.String(logging.FieldEventType, "playback_exec"),
		logging.String("program", path),
		logging.Int("argc", argv.Len()-1))
	if err := execer.Exec(path, argv.Strings(), environ()); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExec, path, err)
	}
	// execve does not return on success; a fake Execer may.
	return nil
}
