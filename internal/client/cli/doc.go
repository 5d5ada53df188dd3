// Package cli is the interactive dream journal client. It reads commands
// from a terminal, keeps the journal in the local store and talks to the
// server through the services package.
package cli
