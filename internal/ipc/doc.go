// Package ipc speaks the witchcraft command-server protocol over a unix
// domain stream socket.
//
// One exchange per connection:
//
//	client -> server  [u32 length][args joined by ' ']
//	server -> client  [u8 status]
//	server -> client  [u32 length][primary output]
//	server -> client  [u32 length][diagnostic output]
//
// Lengths use the host's native byte order. The server reads little-endian,
// so client and server only agree on little-endian hosts. The package owns socket
// path resolution, the raw socket/connect steps, frame encoding and decoding,
// and a loopback Server used by the development stub and tests.
package ipc
