// Package cache provides the client-side snapshot cache used by the sync
// engine for warm starts. The engine treats it as an opaque key-value
// collaborator; the stored bytes are whatever the engine serialized and must
// round-trip exactly.
package cache

import "errors"

// ErrNoSnapshot indicates no snapshot is stored under the requested key.
var ErrNoSnapshot = errors.New("no snapshot for key")

// Snapshots is the key-value surface the sync engine depends on.
type Snapshots interface {
	// Put stores data under key, replacing any previous snapshot.
	Put(key string, data []byte) error

	// Get returns the snapshot stored under key, or ErrNoSnapshot.
	Get(key string) ([]byte, error)
}
