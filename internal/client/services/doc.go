// Package services contains the client application services: dream sync
// between the local store and the remote collection, the social graph,
// the user directory and the session.
//
// Services absorb remote failures at their boundary. Reads that fail are
// logged and yield empty results; writes are logged and their error is
// returned for the caller to show or ignore.
package services
