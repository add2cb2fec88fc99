// Package storage holds the encoded blocks of entity snapshots.
//
// Blocks are content addressed: a key always names the same bytes, so
// writing a key that is already present is a no-op and snapshots that
// share records share their blocks.
package storage

import (
	"errors"

	"github.com/ipld/go-ipld-prime/storage"
)

// ErrNotFound is returned when no block is stored under a key.
var ErrNotFound = errors.New("block not found")

// Storage reads and writes snapshot blocks.
type Storage interface {
	storage.ReadableStorage
	storage.WritableStorage
	storage.StreamingReadableStorage
}

// Counter is implemented by storages that know how many blocks they hold.
type Counter interface {
	Len() int
}

// Count returns the number of blocks held by s, or -1 if s does not
// implement Counter.
func Count(s Storage) int {
	if c, ok := s.(Counter); ok {
		return c.Len()
	}
	return -1
}
