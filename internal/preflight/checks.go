package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"witchcraft/internal/ipc"
)

// CheckDirectoryAccess verifies that the directory exists and can be searched,
// which is all connect(2) needs to reach a socket inside it.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (search ok)", path)}
}

// CheckSocketPath resolves the socket path with the platform sun_path size.
func CheckSocketPath(resolver ipc.Resolver) (string, Result) {
	const name = "Socket path"
	path, err := resolver.Resolve(ipc.SocketPathCapacity)
	if err != nil {
		return "", Result{Name: name, Detail: err.Error()}
	}
	return path, Result{Name: name, Passed: true, Detail: path}
}

// CheckSocket verifies that path is a socket and that the server on it
// completes a round trip. It sends an empty command and reads the whole reply
// before closing, since the server writes a reply for every connection.
func CheckSocket(path string) Result {
	const name = "Server"
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: "not running (no socket)"}
		}
		return Result{Name: name, Detail: fmt.Sprintf("stat: %v", err)}
	}
	if info.Mode()&os.ModeSocket == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not a socket", path)}
	}
	client, err := ipc.Dial(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer client.Close()
	reply, err := client.Exchange(nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("no reply: %v", err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("accepting connections (empty command, status %d)", reply.Status)}
}

// CheckConfigFile reports which config file applies. It never fails: a
// missing file means defaults.
func CheckConfigFile(path string, exists bool) Result {
	const name = "Config"
	if path == "" {
		return Result{Name: name, Passed: true, Optional: true, Detail: "defaults"}
	}
	if !exists {
		return Result{Name: name, Passed: true, Optional: true, Detail: fmt.Sprintf("%s (not found, using defaults)", path)}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: path}
}
