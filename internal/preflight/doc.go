// Package preflight provides the readiness checks behind "witchcraftctl
// doctor": where the client will look for the server socket, whether a
// server answers there, and whether the configured player can be exec'd.
//
// Checks never fail the process themselves. Each returns a Result and the
// caller decides what to do with failures; optional checks are informational.
package preflight
