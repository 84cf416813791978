package storage

import (
	"time"

	"github.com/segmentio/ksuid"
	"go.etcd.io/bbolt"
)

var snapshotsBucket = []byte("snapshots")

// BoltStore keeps snapshots in a single bbolt bucket keyed by KSUID bytes
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(snapshotsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Save(data []byte) (ksuid.KSUID, error) {
	id := ksuid.New()
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(snapshotsBucket).Put(id.Bytes(), data)
	})
	if err != nil {
		return ksuid.Nil, err
	}
	return id, nil
}

func (s *BoltStore) Load(id ksuid.KSUID) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(snapshotsBucket).Get(id.Bytes())
		if v == nil {
			return ErrSnapshotNotFound
		}
		// v is only valid inside the transaction
		out = make([]byte, len(v))
		copy(out, v)
		return nil
	})
	return out, err
}

func (s *BoltStore) List() ([]SnapshotInfo, error) {
	var infos []SnapshotInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(snapshotsBucket).ForEach(func(k, v []byte) error {
			info, err := infoFor(k, v)
			if err != nil {
				return err
			}
			infos = append(infos, info)
			return nil
		})
	})
	return infos, err
}

func (s *BoltStore) Delete(id ksuid.KSUID) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(snapshotsBucket).Delete(id.Bytes())
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
