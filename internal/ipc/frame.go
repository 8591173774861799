package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// byteOrder is the host order. The server reads the prefix the same way; a
// cross-endian client/server pair is not supported.
var byteOrder = binary.NativeEndian

// maxArgumentLength is the signed-size maximum for a single argument.
var maxArgumentLength uint64 = math.MaxInt

// maxFrameLength bounds a declared frame length so the payload plus its
// terminator still fits in an int.
var maxFrameLength uint64 = math.MaxInt - 1

const lengthPrefixSize = 4

// Status is the one-byte result the server sends after a command frame.
type Status byte

// Success reports whether the command succeeded.
func (s Status) Success() bool { return s == 0 }

// ExitCode is the status as a process exit code.
func (s Status) ExitCode() int { return int(s) }

// Reply is everything the server sends back for one command.
type Reply struct {
	Status Status
	Stdout []byte
	Stderr []byte
}

// FrameLength returns the payload length of the command frame for args: the
// argument bytes plus one separator between neighbours. It fails before
// anything is written if the total would not fit in 32 bits.
func FrameLength(args []string) (uint32, error) {
	var total uint64
	for ix, arg := range args {
		length := uint64(len(arg))
		if length > maxArgumentLength {
			return 0, fmt.Errorf("%w: strlen(argv[%d]) = %d", ErrArgumentTooLarge, ix, length)
		}
		total += length
		if total > math.MaxUint32 {
			return 0, fmt.Errorf("%w: argv[0..%d] already %d bytes", ErrFrameTooLarge, ix, total)
		}
	}
	if len(args) > 0 {
		total += uint64(len(args) - 1)
		if total > math.MaxUint32 {
			return 0, fmt.Errorf("%w: %d bytes with separators", ErrFrameTooLarge, total)
		}
	}
	return uint32(total), nil
}

// WriteCommand sends args as one frame: the 4-byte length, then each argument
// with a single space between consecutive arguments. Every piece must be
// written in full; the first failed or short write aborts with ErrIO.
func WriteCommand(w io.Writer, args []string) error {
	total, err := FrameLength(args)
	if err != nil {
		return err
	}

	var prefix [lengthPrefixSize]byte
	byteOrder.PutUint32(prefix[:], total)
	if err := writeFull(w, prefix[:]); err != nil {
		return fmt.Errorf("%w: failed to write msg length: %w", ErrIO, err)
	}

	for ix, arg := range args {
		if err := writeString(w, arg); err != nil {
			return fmt.Errorf("%w: failed to write argv[%d]: %w", ErrIO, ix, err)
		}
		if ix != len(args)-1 {
			if err := writeString(w, " "); err != nil {
				return fmt.Errorf("%w: failed to write ' ' after argv[%d]: %w", ErrIO, ix, err)
			}
		}
	}
	return nil
}

// ReadFrame reads one length-prefixed frame. The returned slice has the
// declared length and one extra byte of capacity holding a 0 terminator,
// so buf[:len(buf)+1] is NUL-terminated. Short reads of the payload are
// retried; only a read error, or the stream ending early, fails.
func ReadFrame(r io.Reader) ([]byte, error) {
	var prefix [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, fmt.Errorf("%w: failed to read msg length: %w", ErrIO, err)
	}
	declared := uint64(byteOrder.Uint32(prefix[:]))
	if declared > maxFrameLength {
		return nil, fmt.Errorf("%w: msg length %d exceeds %d", ErrIO, declared, maxFrameLength)
	}
	size := int(declared)

	out := make([]byte, size+1)
	out[size] = 0

	offset := 0
	for offset != size {
		n, err := r.Read(out[offset:size])
		offset += n
		if offset == size {
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("%w: failed to read msg (%d of %d bytes): %w", ErrIO, offset, size, err)
		}
	}
	return out[:size], nil
}

// ReadStatus reads the single status byte.
func ReadStatus(r io.Reader) (Status, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("%w: failed to read process result: %w", ErrIO, err)
	}
	return Status(b[0]), nil
}

// ReadCommand is the server side of WriteCommand. An empty payload is an
// empty argument list; otherwise the payload is split on every single space.
func ReadCommand(r io.Reader) ([]string, error) {
	payload, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, nil
	}
	return strings.Split(string(payload), " "), nil
}

// WriteReply is the server side of the reply: status byte, then the primary
// and diagnostic frames.
func WriteReply(w io.Writer, reply Reply) error {
	if err := writeFull(w, []byte{byte(reply.Status)}); err != nil {
		return fmt.Errorf("%w: failed to write status: %w", ErrIO, err)
	}
	if err := writeFrame(w, reply.Stdout); err != nil {
		return fmt.Errorf("stdout: %w", err)
	}
	if err := writeFrame(w, reply.Stderr); err != nil {
		return fmt.Errorf("stderr: %w", err)
	}
	return nil
}

func writeFrame(w io.Writer, payload []byte) error {
	if uint64(len(payload)) > math.MaxUint32 {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}
	var prefix [lengthPrefixSize]byte
	byteOrder.PutUint32(prefix[:], uint32(len(payload)))
	if err := writeFull(w, prefix[:]); err != nil {
		return fmt.Errorf("%w: failed to write msg length: %w", ErrIO, err)
	}
	if err := writeFull(w, payload); err != nil {
		return fmt.Errorf("%w: failed to write msg: %w", ErrIO, err)
	}
	return nil
}

func writeFull(w io.Writer, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	n, err := w.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return io.ErrShortWrite
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if len(s) == 0 {
		return nil
	}
	n, err := io.WriteString(w, s)
	if err != nil {
		return err
	}
	if n != len(s) {
		return io.ErrShortWrite
	}
	return nil
}
