// Package main hosts witchcraftctl, the companion tool for the witchcraft
// client.
//
// It does not talk to a real server on the user's behalf. "serve" runs a
// loopback stub that speaks the client protocol, "doctor" reports whether a
// client invocation would succeed, and "config init" writes a sample config.
package main
