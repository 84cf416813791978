package storage

import (
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// SnapshotStoreSuite runs the same contract against every backend
type SnapshotStoreSuite struct {
	suite.Suite
	backend string
	store   SnapshotStore
}

func (s *SnapshotStoreSuite) SetupTest() {
	store, err := Open(s.backend, s.T().TempDir())
	s.Require().NoError(err)
	s.store = store
}

func (s *SnapshotStoreSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *SnapshotStoreSuite) TestSaveLoad() {
	data := []byte("snapshot-bytes")
	id, err := s.store.Save(data)
	s.Require().NoError(err)
	s.NotEqual(ksuid.Nil, id)

	// mutating the caller's slice must not affect the stored copy
	data[0] = 'X'

	loaded, err := s.store.Load(id)
	s.Require().NoError(err)
	s.Equal([]byte("snapshot-bytes"), loaded)
}

func (s *SnapshotStoreSuite) TestLoadMissing() {
	_, err := s.store.Load(ksuid.New())
	s.ErrorIs(err, ErrSnapshotNotFound)
}

func (s *SnapshotStoreSuite) TestListAndDelete() {
	first, err := s.store.Save([]byte("a"))
	s.Require().NoError(err)
	second, err := s.store.Save([]byte("bbb"))
	s.Require().NoError(err)

	infos, err := s.store.List()
	s.Require().NoError(err)
	s.Require().Len(infos, 2)

	sizes := map[string]int{}
	for _, info := range infos {
		sizes[info.ID] = info.Size
		s.False(info.CreatedAt.IsZero())
	}
	s.Equal(1, sizes[first.String()])
	s.Equal(3, sizes[second.String()])

	s.Require().NoError(s.store.Delete(first))
	infos, err = s.store.List()
	s.Require().NoError(err)
	s.Require().Len(infos, 1)
	s.Equal(second.String(), infos[0].ID)
}

func TestPebbleSnapshotStore(t *testing.T) {
	suite.Run(t, &SnapshotStoreSuite{backend: BackendPebble})
}

func TestBoltSnapshotStore(t *testing.T) {
	suite.Run(t, &SnapshotStoreSuite{backend: BackendBolt})
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("redis", t.TempDir())
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id := ksuid.New()
	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseID("not-an-id")
	assert.Error(t, err)
}
