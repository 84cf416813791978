package storage

import (
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// PebbleStore keeps snapshots in a pebble database keyed by KSUID bytes
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Save(data []byte) (ksuid.KSUID, error) {
	id := ksuid.New()
	if err := s.db.Set(id.Bytes(), data, pebble.Sync); err != nil {
		return ksuid.Nil, err
	}
	return id, nil
}

func (s *PebbleStore) Load(id ksuid.KSUID) ([]byte, error) {
	data, closer, err := s.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *PebbleStore) List() ([]SnapshotInfo, error) {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var infos []SnapshotInfo
	for iter.First(); iter.Valid(); iter.Next() {
		info, err := infoFor(iter.Key(), iter.Value())
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, iter.Error()
}

func (s *PebbleStore) Delete(id ksuid.KSUID) error {
	return s.db.Delete(id.Bytes(), pebble.Sync)
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}
