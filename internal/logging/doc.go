// Package logging assembles the structured slog loggers used by the witchcraft
// client and its development tooling.
//
// It owns the console and JSON handlers, level parsing, and output routing.
// The client writes its own diagnostics to stderr only, because stdout carries
// the relayed server output byte-for-byte. Helpers attach an invocation ID to
// every record so a failure can be matched with the server's logs, and
// ErrorWithContext keeps failure records shaped the same way everywhere.
//
// Prefer these constructors over hand-rolled slog setup.
package logging
