// Package playback turns a successful "play" reply into a player process.
//
// The reply's primary stream is a newline-separated track list. Each
// terminated line becomes one player argument, between the program name and
// the configured flags, and the current process image is then replaced by
// the player. Nothing runs after a successful handoff.
package playback
