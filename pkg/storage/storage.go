// Package storage keeps encoded buffer snapshots in an embedded key-value database.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/segmentio/ksuid"
)

var ErrSnapshotNotFound = errors.New("storage: snapshot not found")

// SnapshotInfo describes one stored snapshot
type SnapshotInfo struct {
	ID        string    `json:"id" msgpack:"id"`
	Size      int       `json:"size" msgpack:"size"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
}

// SnapshotStore persists opaque snapshot blobs under time-ordered ids
type SnapshotStore interface {
	Save(data []byte) (ksuid.KSUID, error)
	Load(id ksuid.KSUID) ([]byte, error)
	List() ([]SnapshotInfo, error)
	Delete(id ksuid.KSUID) error
	Close() error
}

const (
	BackendPebble = "pebble"
	BackendBolt   = "bolt"
)

// Open opens the snapshot store for backend rooted at dir
func Open(backend, dir string) (SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	switch backend {
	case BackendPebble:
		return NewPebbleStore(filepath.Join(dir, "pebble"))
	case BackendBolt:
		return NewBoltStore(filepath.Join(dir, "snapshots.bolt"))
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
}

// ParseID parses a snapshot id as printed by List
func ParseID(s string) (ksuid.KSUID, error) {
	id, err := ksuid.Parse(s)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("storage: invalid snapshot id %q: %w", s, err)
	}
	return id, nil
}

func infoFor(key, value []byte) (SnapshotInfo, error) {
	id, err := ksuid.FromBytes(key)
	if err != nil {
		return SnapshotInfo{}, err
	}
	return SnapshotInfo{ID: id.String(), Size: len(value), CreatedAt: id.Time()}, nil
}
