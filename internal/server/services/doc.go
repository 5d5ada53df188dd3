// Package services holds the server-side rules over the repositories:
// who may read or write a document, how social-graph edges change and
// which topics are signalled after each write.
package services
