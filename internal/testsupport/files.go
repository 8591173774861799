package testsupport

import (
	"os"
	"testing"
)

// ShortTempDir returns a fresh directory directly under the system temp dir.
// t.TempDir paths embed the test name and can exceed the 108-byte sun_path
// limit once a socket name is appended.
func ShortTempDir(t testing.TB) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "wc")
	if err != nil {
		t.Fatalf("mkdir temp: %v", err)
	}
	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})
	return dir
}
