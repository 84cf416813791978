package store

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/snappy"

	"github.com/ssargent/stakelist/pkg/biglist"
)

// Snapshot envelope:
//
//	[Magic(4)][HeaderWidth(1)][XXH64(8)][snappy(header + records)]
//
// The checksum covers the uncompressed list bytes.
var snapshotMagic = []byte("SLS1")

const snapshotHeaderSize = 4 + 1 + 8

// Snapshot is a decoded snapshot envelope
type Snapshot struct {
	HeaderWidth biglist.HeaderWidth
	Data        []byte // count header followed by the stored records
}

// EncodeSnapshot compresses the used prefix of list into a snapshot envelope
func EncodeSnapshot(list *biglist.List) []byte {
	raw := list.Bytes()

	out := make([]byte, snapshotHeaderSize, snapshotHeaderSize+snappy.MaxEncodedLen(len(raw)))
	copy(out, snapshotMagic)
	out[4] = byte(list.HeaderWidth())
	binary.LittleEndian.PutUint64(out[5:13], xxhash.Sum64(raw))

	return append(out, snappy.Encode(nil, raw)...)
}

// DecodeSnapshot validates and decompresses a snapshot envelope
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	if len(data) < snapshotHeaderSize || !bytes.Equal(data[:4], snapshotMagic) {
		return nil, fmt.Errorf("%w: not a snapshot", ErrCorruption)
	}

	width, err := biglist.ParseHeaderWidth(int(data[4]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruption, err)
	}

	raw, err := snappy.Decode(nil, data[snapshotHeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruption, err)
	}

	if want, got := binary.LittleEndian.Uint64(data[5:13]), xxhash.Sum64(raw); want != got {
		return nil, fmt.Errorf("%w: checksum %016x != %016x", ErrCorruption, got, want)
	}
	if len(raw) < int(width) {
		return nil, fmt.Errorf("%w: snapshot shorter than header", ErrCorruption)
	}

	return &Snapshot{HeaderWidth: width, Data: raw}, nil
}
