// Package models holds the documents exchanged between the dreamsync client
// and server: dream documents, user profiles and the helpers that keep their
// list fields behaving as sets.
package models
