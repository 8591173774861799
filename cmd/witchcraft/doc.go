// Package main is the witchcraft command-line client.
//
// Every argument, flags included, is forwarded verbatim to the witchcraft
// server over its unix socket; the client interprets none of them. The
// server's output is relayed and its status becomes the exit code, except
// for a successful "play", whose track list is handed to the player.
package main
