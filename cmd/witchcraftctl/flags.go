package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
)

// fileMode is an octal permission flag such as 0660.
type fileMode os.FileMode

var _ pflag.Value = (*fileMode)(nil)

func (m *fileMode) String() string {
	if *m == 0 {
		return ""
	}
	return fmt.Sprintf("%#o", uint32(*m))
}

func (m *fileMode) Set(value string) error {
	parsed, err := strconv.ParseUint(value, 8, 32)
	if err != nil {
		return fmt.Errorf("invalid octal mode %q", value)
	}
	if parsed&^uint64(os.ModePerm) != 0 {
		return fmt.Errorf("mode %q has bits outside 0777", value)
	}
	*m = fileMode(parsed)
	return nil
}

func (m *fileMode) Type() string { return "mode" }

type serveOptions struct {
	socket      string
	status      uint8
	permissions fileMode
	logLevel    string
	logFormat   string
	logOutputs  []string
	logSource   bool
}

func bindServeFlags(fs *pflag.FlagSet, opts *serveOptions) {
	fs.StringVar(&opts.socket, "socket", "", "Socket path (default: resolved from WITCHCRAFT_MUSIC_HOME or OVERRIDE_ROOT)")
	fs.Uint8Var(&opts.status, "status", 0, "Status byte sent with every reply")
	fs.Var(&opts.permissions, "permissions", "Octal socket permissions applied after binding, e.g. 0660")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFormat, "log-format", "console", "Log format (console, json)")
	fs.StringSliceVar(&opts.logOutputs, "log-output", []string{"stderr"}, "Log destinations: stderr, stdout, or file paths (repeatable)")
	fs.BoolVar(&opts.logSource, "log-source", false, "Include source locations on every log record")
}
