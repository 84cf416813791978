package store

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sync"

	"github.com/ssargent/stakelist/pkg/biglist"
	"github.com/ssargent/stakelist/pkg/codec"
)

// Ledger owns one buffer file and the validator list inside it. All calls are
// serialized by a mutex; the list itself has no locking.
type Ledger struct {
	config LedgerConfig
	file   *BufferFile
	list   *biglist.List
	mutex  sync.Mutex
	isOpen bool
}

// NewLedger creates a ledger; call Open before use
func NewLedger(config LedgerConfig) *Ledger {
	if config.HeaderWidth == 0 {
		config.HeaderWidth = biglist.DefaultHeaderWidth
	}
	return &Ledger{config: config}
}

// Open maps the buffer file and verifies the stored records. Corruption is
// reported in the result and logged, not treated as an open failure.
func (l *Ledger) Open() (*VerifyResult, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.isOpen {
		return l.verify(), nil
	}

	file, err := OpenBufferFile(l.config.BufferPath, l.config.CapacityBytes)
	if err != nil {
		return nil, err
	}

	list, err := biglist.WrapWithHeader(file.Bytes(), l.config.HeaderWidth)
	if err != nil {
		file.Close()
		return nil, err
	}

	l.file = file
	l.list = list
	l.isOpen = true

	res := l.verify()
	logger := l.config.Logger
	if !res.OK() {
		logger.Warn().
			Str("file", file.Path()).
			Uints64("corrupt", res.CorruptIndexes).
			Bool("count_out_of_range", res.CountOutOfRange).
			Msg("ledger: corrupt records detected")
	}
	logger.Debug().
		Str("file", file.Path()).
		Uint64("records", list.Len()).
		Uint64("capacity", list.Capacity()).
		Msg("ledger: opened")

	return res, nil
}

// Append stores v and returns its index
func (l *Ledger) Append(v codec.Validator) (uint64, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if !l.isOpen {
		return 0, ErrClosed
	}

	index := l.list.Len()
	if err := l.list.Append(v); err != nil {
		if errors.Is(err, biglist.ErrFull) {
			l.config.Logger.Warn().Uint64("capacity", l.list.Capacity()).Msg("ledger: buffer full")
		}
		return 0, err
	}
	return index, nil
}

// Get decodes the record at index i
func (l *Ledger) Get(i uint64) (codec.Validator, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if !l.isOpen {
		return codec.Validator{}, ErrClosed
	}
	return l.list.Get(i)
}

// Validators decodes every stored position, keeping per-position errors
func (l *Ledger) Validators() ([]Entry, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if !l.isOpen {
		return nil, ErrClosed
	}

	entries := make([]Entry, 0, min(l.list.Len(), l.list.Capacity()+1))
	it := l.list.Iter()
	for it.Next() {
		entries = append(entries, Entry{Index: it.Index(), Validator: it.Validator(), Err: it.Err()})
	}
	return entries, nil
}

// Stats returns ledger statistics
func (l *Ledger) Stats() *Stats {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if !l.isOpen {
		return &Stats{}
	}

	stats := &Stats{
		Count:             l.list.Len(),
		Capacity:          l.list.Capacity(),
		RemainingCapacity: l.list.RemainingCapacity(),
		CapacityBytes:     l.list.CapacityBytes(),
		UsedBytes:         len(l.list.Bytes()),
		HeaderWidth:       int(l.list.HeaderWidth()),
	}

	it := l.list.Iter()
	for it.Next() {
		if it.Err() != nil {
			stats.Corrupt++
			continue
		}
		v := it.Validator()
		if v.Active {
			stats.Active++
		} else {
			stats.Inactive++
		}
		stats.TotalStake = addSaturating(stats.TotalStake, v.StakeBalance)
		stats.TotalUnstake = addSaturating(stats.TotalUnstake, v.UnstakeBalance)
	}

	return stats
}

// addSaturating returns a+b, clamped to math.MaxUint64
func addSaturating(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// Verify walks the list and reports corrupt positions
func (l *Ledger) Verify() (*VerifyResult, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if !l.isOpen {
		return nil, ErrClosed
	}
	return l.verify(), nil
}

func (l *Ledger) verify() *VerifyResult {
	res := &VerifyResult{}
	it := l.list.Iter()
	for it.Next() {
		err := it.Err()
		switch {
		case err == nil:
			res.Records++
		case errors.Is(err, biglist.ErrCountOutOfRange):
			res.CountOutOfRange = true
		default:
			res.CorruptIndexes = append(res.CorruptIndexes, it.Index())
		}
	}
	return res
}

// Compact rewrites the buffer keeping only records accepted by keep.
// The new image is built off to the side and copied in one step.
func (l *Ledger) Compact(keep func(codec.Validator) bool) (CompactResult, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if !l.isOpen {
		return CompactResult{}, ErrClosed
	}

	scratch := make([]byte, l.list.CapacityBytes())
	dst, err := biglist.Init(scratch, l.list.HeaderWidth())
	if err != nil {
		return CompactResult{}, err
	}

	res, err := Compact(l.list, dst, keep)
	if err != nil {
		return res, err
	}

	copy(l.file.Bytes(), scratch)
	if err := l.file.Flush(); err != nil {
		return res, err
	}

	l.config.Logger.Info().
		Uint64("kept", res.Kept).
		Uint64("dropped", res.Dropped).
		Uint64("corrupt", res.Corrupt).
		Msg("ledger: compacted")
	return res, nil
}

// Snapshot encodes the current list into a snapshot envelope
func (l *Ledger) Snapshot() ([]byte, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if !l.isOpen {
		return nil, ErrClosed
	}
	return EncodeSnapshot(l.list), nil
}

// Restore replaces the buffer contents with a decoded snapshot. The snapshot
// must use the same header width and fit in the buffer.
func (l *Ledger) Restore(snapshot []byte) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if !l.isOpen {
		return ErrClosed
	}

	snap, err := DecodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	if snap.HeaderWidth != l.list.HeaderWidth() {
		return fmt.Errorf("%w: snapshot %d, ledger %d", ErrLayoutMismatch, snap.HeaderWidth, l.list.HeaderWidth())
	}

	buf := l.file.Bytes()
	if len(snap.Data) > len(buf) {
		return fmt.Errorf("%w: snapshot needs %d bytes, buffer has %d", biglist.ErrFull, len(snap.Data), len(buf))
	}

	n := copy(buf, snap.Data)
	clear(buf[n:])
	if err := l.file.Flush(); err != nil {
		return err
	}

	l.config.Logger.Info().Uint64("records", l.list.Len()).Msg("ledger: restored snapshot")
	return nil
}

// Raw returns a copy of the used buffer prefix, parseable without this package
func (l *Ledger) Raw() ([]byte, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if !l.isOpen {
		return nil, ErrClosed
	}
	used := l.list.Bytes()
	out := make([]byte, len(used))
	copy(out, used)
	return out, nil
}

// Flush forces the mapped buffer to disk
func (l *Ledger) Flush() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if !l.isOpen {
		return ErrClosed
	}
	return l.file.Flush()
}

// Close flushes and unmaps the buffer
func (l *Ledger) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if !l.isOpen {
		return nil
	}
	l.isOpen = false
	l.list = nil
	return l.file.Close()
}
