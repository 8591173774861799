package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// Socket is an AF_UNIX stream socket that has not been connected yet.
// Creating it and connecting it are separate steps so each failure is
// reported on its own.
type Socket struct {
	fd int
}

// NewSocket creates a close-on-exec AF_UNIX stream socket.
func NewSocket() (*Socket, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSocketCreate, err)
	}
	unix.CloseOnExec(fd)
	return &Socket{fd: fd}, nil
}

// Connect connects to the server socket at path and hands the descriptor to
// a Client. After a successful Connect the Socket is spent and Close is a
// no-op; after a failure the caller still owns the descriptor.
func (s *Socket) Connect(path string) (*Client, error) {
	if s.fd < 0 {
		return nil, fmt.Errorf("%w: socket already used", ErrConnect)
	}
	addr := &unix.SockaddrUnix{Name: path}
	var err error
	for {
		err = unix.Connect(s.fd, addr)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, path, err)
	}

	file := os.NewFile(uintptr(s.fd), path)
	s.fd = -1
	conn, err := net.FileConn(file)
	_ = file.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, path, err)
	}
	return NewClient(conn), nil
}

// Close releases the descriptor if Connect has not taken it.
func (s *Socket) Close() error {
	if s == nil || s.fd < 0 {
		return nil
	}
	err := unix.Close(s.fd)
	s.fd = -1
	return err
}

// Dial creates a socket and connects it to path.
func Dial(path string) (*Client, error) {
	sock, err := NewSocket()
	if err != nil {
		return nil, err
	}
	client, err := sock.Connect(path)
	if err != nil {
		_ = sock.Close()
		return nil, err
	}
	return client, nil
}

// Client drives one command exchange over a connected socket.
type Client struct {
	conn net.Conn
}

// NewClient wraps an already connected stream.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn}
}

// Send writes the command frame for args.
func (c *Client) Send(args []string) error {
	return WriteCommand(c.conn, args)
}

// ReadStatus reads the status byte that follows a command frame.
func (c *Client) ReadStatus() (Status, error) {
	return ReadStatus(c.conn)
}

// ReadFrame reads one response frame.
func (c *Client) ReadFrame() ([]byte, error) {
	return ReadFrame(c.conn)
}

// Exchange performs a full round trip: send, status, primary, diagnostic.
func (c *Client) Exchange(args []string) (*Reply, error) {
	if err := c.Send(args); err != nil {
		return nil, err
	}
	status, err := c.ReadStatus()
	if err != nil {
		return nil, err
	}
	stdout, err := c.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("failed to read stdout: %w", err)
	}
	stderr, err := c.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("failed to read stderr: %w", err)
	}
	return &Reply{Status: status, Stdout: stdout, Stderr: stderr}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
