package ipc_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"pgregory.net/rapid"

	"witchcraft/internal/ipc"
	"witchcraft/internal/testsupport"
)

func envFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestResolveSocketPath(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"default", nil, "/var/lib/witchcraft/.cli-server.sock"},
		{"override root", map[string]string{"OVERRIDE_ROOT": "/tmp/x"}, "/tmp/x/.cli-server.sock"},
		{"music home", map[string]string{"WITCHCRAFT_MUSIC_HOME": "/srv/music"}, "/srv/music/.cli-server.sock"},
		{"music home wins", map[string]string{"WITCHCRAFT_MUSIC_HOME": "/a", "OVERRIDE_ROOT": "/b"}, "/a/.cli-server.sock"},
		{"set but empty", map[string]string{"WITCHCRAFT_MUSIC_HOME": ""}, "/.cli-server.sock"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ipc.Resolver{LookupEnv: envFrom(tt.env)}.Resolve(ipc.SocketPathCapacity)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveSocketPathUsesProcessEnv(t *testing.T) {
	t.Setenv(ipc.EnvMusicHome, "/tmp/x")
	got, err := ipc.ResolveSocketPath()
	if err != nil {
		t.Fatalf("ResolveSocketPath: %v", err)
	}
	if got != "/tmp/x/.cli-server.sock" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestResolveSocketPathRejectsLongRoot(t *testing.T) {
	if ipc.SocketPathCapacity != 108 && ipc.SocketPathCapacity != 104 {
		t.Fatalf("unexpected sun_path capacity %d", ipc.SocketPathCapacity)
	}
	// root + "/" + ".cli-server.sock" + NUL == capacity fits exactly
	fits := "/" + strings.Repeat("a", ipc.SocketPathCapacity-len(ipc.SocketName)-3)
	path, err := ipc.Resolver{LookupEnv: envFrom(map[string]string{"OVERRIDE_ROOT": fits})}.Resolve(ipc.SocketPathCapacity)
	if err != nil {
		t.Fatalf("expected boundary path to fit: %v", err)
	}
	if len(path)+1 != ipc.SocketPathCapacity {
		t.Fatalf("boundary path length %d", len(path))
	}

	tooLong := fits + "b"
	path, err = ipc.Resolver{LookupEnv: envFrom(map[string]string{"OVERRIDE_ROOT": tooLong})}.Resolve(ipc.SocketPathCapacity)
	if !errors.Is(err, ipc.ErrPathTooLong) {
		t.Fatalf("expected ErrPathTooLong, got %v", err)
	}
	if path != "" {
		t.Fatalf("failed resolution must not return a truncated path, got %q", path)
	}
}

func TestWriteCommandEncodesJoinedArgs(t *testing.T) {
	var buf bytes.Buffer
	if err := ipc.WriteCommand(&buf, []string{"play", "artist", "=", "x"}); err != nil {
		t.Fatalf("WriteCommand: %v", err)
	}
	raw := buf.Bytes()
	if got := binary.NativeEndian.Uint32(raw[:4]); got != uint32(len("play artist = x")) {
		t.Fatalf("length prefix = %d", got)
	}
	if string(raw[4:]) != "play artist = x" {
		t.Fatalf("payload = %q", raw[4:])
	}
}

func TestWriteCommandEmptyArgs(t *testing.T) {
	var buf bytes.Buffer
	if err := ipc.WriteCommand(&buf, nil); err != nil {
		t.Fatalf("WriteCommand: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0, 0, 0, 0}) {
		t.Fatalf("expected bare zero prefix, got %v", buf.Bytes())
	}
}

func TestFrameRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		args := rapid.SliceOfN(rapid.String(), 1, 16).Draw(t, "args")

		var buf bytes.Buffer
		if err := ipc.WriteCommand(&buf, args); err != nil {
			t.Fatalf("WriteCommand: %v", err)
		}
		joined := strings.Join(args, " ")
		if got := binary.NativeEndian.Uint32(buf.Bytes()[:4]); got != uint32(len(joined)) {
			t.Fatalf("prefix %d, want %d", got, len(joined))
		}

		payload, err := ipc.ReadFrame(iotest.OneByteReader(&buf))
		if err != nil {
			t.Fatalf("ReadFrame: %v", err)
		}
		if string(payload) != joined {
			t.Fatalf("payload %q, want %q", payload, joined)
		}
		if buf.Len() != 0 {
			t.Fatalf("%d bytes left unread", buf.Len())
		}
	})
}

func frame(payload string) []byte {
	out := make([]byte, 4, 4+len(payload))
	binary.NativeEndian.PutUint32(out, uint32(len(payload)))
	return append(out, payload...)
}

func TestReadFrameToleratesPartialReads(t *testing.T) {
	payload := "a.mp3\nb.mp3\n"
	got, err := ipc.ReadFrame(iotest.OneByteReader(bytes.NewReader(frame(payload))))
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if string(got) != payload {
		t.Fatalf("ReadFrame = %q", got)
	}
	if cap(got) != len(payload)+1 {
		t.Fatalf("expected exactly one extra byte of capacity, cap=%d", cap(got))
	}
	if got[:len(got)+1][len(got)] != 0 {
		t.Fatal("expected terminator beyond the declared length")
	}
}

func TestReadFrameEmpty(t *testing.T) {
	got, err := ipc.ReadFrame(bytes.NewReader(frame("")))
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if len(got) != 0 || cap(got) != 1 {
		t.Fatalf("unexpected empty frame len=%d cap=%d", len(got), cap(got))
	}
}

func TestReadFrameErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		reader io.Reader
		cause  error
	}{
		{"short prefix", bytes.NewReader([]byte{3, 0}), io.ErrUnexpectedEOF},
		{"no prefix", bytes.NewReader(nil), io.EOF},
		{"truncated payload", bytes.NewReader(frame("hello")[:6]), io.ErrUnexpectedEOF},
		{"read error", io.MultiReader(bytes.NewReader(frame("hello")[:5]), iotest.ErrReader(boom)), boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ipc.ReadFrame(tt.reader)
			if !errors.Is(err, ipc.ErrIO) {
				t.Fatalf("expected ErrIO, got %v", err)
			}
			if !errors.Is(err, tt.cause) {
				t.Fatalf("expected cause %v, got %v", tt.cause, err)
			}
		})
	}
}

func TestReadStatus(t *testing.T) {
	status, err := ipc.ReadStatus(bytes.NewReader([]byte{2}))
	if err != nil {
		t.Fatalf("ReadStatus: %v", err)
	}
	if status.Success() || status.ExitCode() != 2 {
		t.Fatalf("unexpected status %d", status)
	}
	if _, err := ipc.ReadStatus(bytes.NewReader(nil)); !errors.Is(err, ipc.ErrIO) {
		t.Fatalf("expected ErrIO on missing status, got %v", err)
	}
}

// shortWriter accepts at most limit bytes per call and records every call.
type shortWriter struct {
	limit int
	calls int
	buf   bytes.Buffer
}

func (w *shortWriter) Write(p []byte) (int, error) {
	w.calls++
	if len(p) > w.limit {
		p = p[:w.limit]
	}
	return w.buf.Write(p)
}

func TestWriteCommandShortWriteAborts(t *testing.T) {
	w := &shortWriter{limit: 4}
	err := ipc.WriteCommand(w, []string{"status", "now"})
	if !errors.Is(err, ipc.ErrIO) || !errors.Is(err, io.ErrShortWrite) {
		t.Fatalf("expected ErrIO wrapping ErrShortWrite, got %v", err)
	}
	if !strings.Contains(err.Error(), "argv[0]") {
		t.Fatalf("expected failing piece in error, got %v", err)
	}
	if w.calls != 2 {
		t.Fatalf("expected send to stop after the short write, saw %d writes", w.calls)
	}
}

type countingWriter struct{ n int }

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += len(p)
	return len(p), nil
}

func TestWriteCommandRejectsOversizedFrame(t *testing.T) {
	chunk := strings.Repeat("x", 1<<20)
	// 4097 MiB of references to one MiB of memory
	args := make([]string, 4097)
	for i := range args {
		args[i] = chunk
	}

	w := &countingWriter{}
	err := ipc.WriteCommand(w, args)
	if !errors.Is(err, ipc.ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
	if w.n != 0 {
		t.Fatalf("expected nothing written, got %d bytes", w.n)
	}
}

func TestWriteCommandSeparatorsOverflow(t *testing.T) {
	chunk := strings.Repeat("x", 1<<20)
	args := make([]string, 4096)
	for i := range args {
		args[i] = chunk
	}
	// argument bytes sum to exactly MaxUint32; the separators push it over
	args[len(args)-1] = chunk[:len(chunk)-1]

	w := &countingWriter{}
	err := ipc.WriteCommand(w, args)
	if !errors.Is(err, ipc.ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
	if w.n != 0 {
		t.Fatalf("expected nothing written, got %d bytes", w.n)
	}
}

func TestReadCommandSplitsOnSpaces(t *testing.T) {
	var buf bytes.Buffer
	if err := ipc.WriteCommand(&buf, []string{"play", "a b"}); err != nil {
		t.Fatalf("WriteCommand: %v", err)
	}
	args, err := ipc.ReadCommand(&buf)
	if err != nil {
		t.Fatalf("ReadCommand: %v", err)
	}
	// the wire joins with spaces, so embedded spaces split on the server
	if strings.Join(args, "|") != "play|a|b" {
		t.Fatalf("unexpected args %#v", args)
	}

	buf.Reset()
	_ = ipc.WriteCommand(&buf, nil)
	args, err = ipc.ReadCommand(&buf)
	if err != nil || args != nil {
		t.Fatalf("expected no args, got %#v (%v)", args, err)
	}
}

func TestLoopbackExchange(t *testing.T) {
	var mu sync.Mutex
	var seen [][]string
	stub := testsupport.StartStub(t, func(_ context.Context, args []string) ipc.Reply {
		mu.Lock()
		seen = append(seen, args)
		mu.Unlock()
		return ipc.Reply{Status: 3, Stdout: []byte("OK\n"), Stderr: []byte("warn\n")}
	})

	path, err := stub.Resolver().Resolve(ipc.SocketPathCapacity)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if path != stub.Path() {
		t.Fatalf("resolver path %q != server path %q", path, stub.Path())
	}

	client, err := ipc.Dial(path)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	reply, err := client.Exchange([]string{"status", "--verbose"})
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if reply.Status != 3 || string(reply.Stdout) != "OK\n" || string(reply.Stderr) != "warn\n" {
		t.Fatalf("unexpected reply %#v", reply)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || strings.Join(seen[0], " ") != "status --verbose" {
		t.Fatalf("server saw %#v", seen)
	}
}

func TestConnectMissingSocket(t *testing.T) {
	sock, err := ipc.NewSocket()
	if err != nil {
		t.Fatalf("NewSocket: %v", err)
	}
	t.Cleanup(func() { sock.Close() })

	_, err = sock.Connect(filepath.Join(testsupport.ShortTempDir(t), ipc.SocketName))
	if !errors.Is(err, ipc.ErrConnect) {
		t.Fatalf("expected ErrConnect, got %v", err)
	}
}

func TestServerRefusesSecondOwner(t *testing.T) {
	stub := testsupport.StartStub(t, testsupport.StaticReply(ipc.Reply{}))

	_, err := ipc.NewServer(context.Background(), stub.Path(), testsupport.StaticReply(ipc.Reply{}), nil)
	if err == nil {
		t.Fatal("expected second server on the same path to fail")
	}
	if !strings.Contains(err.Error(), "already owns") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEchoHandler(t *testing.T) {
	reply := ipc.EchoHandler(0)(context.Background(), []string{"status", "now"})
	if string(reply.Stdout) != "status now\n" || len(reply.Stderr) != 0 {
		t.Fatalf("unexpected reply %#v", reply)
	}

	reply = ipc.EchoHandler(0)(context.Background(), []string{"play", "a.mp3", "b.mp3"})
	if string(reply.Stdout) != "a.mp3\nb.mp3\n" {
		t.Fatalf("unexpected play reply %q", reply.Stdout)
	}

	reply = ipc.EchoHandler(2)(context.Background(), nil)
	if reply.Status != 2 || string(reply.Stdout) != "\n" || !strings.Contains(string(reply.Stderr), "forced status 2") {
		t.Fatalf("unexpected forced reply %#v", reply)
	}
}

func TestResolverReportsSource(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		wantSource string
		wantHint   string
	}{
		{"default", nil, "", "WITCHCRAFT_MUSIC_HOME or OVERRIDE_ROOT"},
		{"override root", map[string]string{"OVERRIDE_ROOT": "/tmp/x"}, "OVERRIDE_ROOT", "OVERRIDE_ROOT"},
		{"music home", map[string]string{"WITCHCRAFT_MUSIC_HOME": "/tmp/x", "OVERRIDE_ROOT": "/b"}, "WITCHCRAFT_MUSIC_HOME", "WITCHCRAFT_MUSIC_HOME"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ipc.Resolver{LookupEnv: envFrom(tt.env)}
			if _, source := r.Lookup(); source != tt.wantSource {
				t.Fatalf("Lookup source = %q, want %q", source, tt.wantSource)
			}
			if got := r.Source(); got != tt.wantHint {
				t.Fatalf("Source = %q, want %q", got, tt.wantHint)
			}
		})
	}
}

func TestResolveTooLongNamesSource(t *testing.T) {
	long := "/" + strings.Repeat("a", ipc.SocketPathCapacity)
	_, err := ipc.Resolver{LookupEnv: envFrom(map[string]string{"OVERRIDE_ROOT": long})}.Resolve(ipc.SocketPathCapacity)
	if !errors.Is(err, ipc.ErrPathTooLong) || !strings.Contains(err.Error(), "from OVERRIDE_ROOT") {
		t.Fatalf("expected ErrPathTooLong naming OVERRIDE_ROOT, got %v", err)
	}
}
