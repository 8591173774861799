package ipc

import "errors"

var (
	// ErrPathTooLong reports a socket path that does not fit sun_path.
	ErrPathTooLong = errors.New("socket path too long")
	// ErrSocketCreate reports a failure to create the local socket.
	ErrSocketCreate = errors.New("failed to create socket")
	// ErrConnect reports a failure to connect to the server socket.
	ErrConnect = errors.New("failed to connect")
	// ErrFrameTooLarge reports a frame whose length does not fit in 32 bits.
	ErrFrameTooLarge = errors.New("msg length would overflow a 32 bit unsigned integer")
	// ErrArgumentTooLarge reports a single argument longer than a signed size.
	ErrArgumentTooLarge = errors.New("argument length exceeds the signed size maximum")
	// ErrIO reports a failed or short transfer on the connection.
	ErrIO = errors.New("i/o failure")
)
