package ipc

import (
	"context"
	"fmt"
	"strings"
)

// EchoHandler answers like a server that only reflects its input: the
// arguments joined by spaces plus a newline, or for "play" one remaining
// argument per line so the reply reads as a track list. A non-zero status
// is also reported on the diagnostic stream.
func EchoHandler(status Status) Handler {
	return func(_ context.Context, args []string) Reply {
		reply := Reply{Status: status}
		if len(args) > 0 && args[0] == "play" {
			var b strings.Builder
			for _, arg := range args[1:] {
				b.WriteString(arg)
				b.WriteByte('\n')
			}
			reply.Stdout = []byte(b.String())
		} else {
			reply.Stdout = []byte(strings.Join(args, " ") + "\n")
		}
		if !status.Success() {
			reply.Stderr = []byte(fmt.Sprintf("stub: forced status %d\n", status))
		}
		return reply
	}
}
