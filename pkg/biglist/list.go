package biglist

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"

	"github.com/ssargent/stakelist/pkg/codec"
)

// HeaderWidth is the size in bytes of the record count stored at the start of the buffer.
type HeaderWidth int

const (
	Header32 HeaderWidth = 4
	Header64 HeaderWidth = 8
)

// DefaultHeaderWidth is the header used by Wrap.
const DefaultHeaderWidth = Header64

func (w HeaderWidth) valid() bool {
	return w == Header32 || w == Header64
}

// maxCount is the largest count the header can represent.
func (w HeaderWidth) maxCount() uint64 {
	if w == Header32 {
		return math.MaxUint32
	}
	return math.MaxUint64
}

// ParseHeaderWidth converts a byte count (4 or 8) into a HeaderWidth.
func ParseHeaderWidth(n int) (HeaderWidth, error) {
	w := HeaderWidth(n)
	if !w.valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidHeaderWidth, n)
	}
	return w, nil
}

// RecordOffset returns the byte offset of record index for the given header width.
// It does not check the result against any buffer.
func RecordOffset(width HeaderWidth, index uint64) uint64 {
	return uint64(width) + index*codec.Size
}

// CapacityFor returns how many records fit in a buffer of capacityBytes.
func CapacityFor(width HeaderWidth, capacityBytes int) uint64 {
	if capacityBytes < int(width) {
		return 0
	}
	n := uint64(capacityBytes-int(width)) / codec.Size
	if m := width.maxCount(); n > m {
		n = m
	}
	return n
}

// List is a fixed-capacity, append-only sequence of validator records stored in buf.
type List struct {
	buf   []byte
	width HeaderWidth
}

// Wrap returns a List over buf using DefaultHeaderWidth. The stored count is
// not validated.
func Wrap(buf []byte) (*List, error) {
	return WrapWithHeader(buf, DefaultHeaderWidth)
}

// WrapWithHeader returns a List over buf whose count header is width bytes wide.
func WrapWithHeader(buf []byte, width HeaderWidth) (*List, error) {
	if !width.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHeaderWidth, int(width))
	}
	if len(buf) < int(width) {
		return nil, fmt.Errorf("%w: %d < %d bytes", ErrBufferTooSmall, len(buf), int(width))
	}
	return &List{buf: buf, width: width}, nil
}

// Init zeroes the count header of buf and wraps it. Record bytes are left as they are.
func Init(buf []byte, width HeaderWidth) (*List, error) {
	l, err := WrapWithHeader(buf, width)
	if err != nil {
		return nil, err
	}
	clear(buf[:width])
	return l, nil
}

// Len returns the record count stored in the header.
func (l *List) Len() uint64 {
	if l.width == Header32 {
		return uint64(binary.LittleEndian.Uint32(l.buf))
	}
	return binary.LittleEndian.Uint64(l.buf)
}

func (l *List) setLen(n uint64) {
	if l.width == Header32 {
		binary.LittleEndian.PutUint32(l.buf, uint32(n))
		return
	}
	binary.LittleEndian.PutUint64(l.buf, n)
}

// Capacity returns the total number of records the buffer can hold.
func (l *List) Capacity() uint64 {
	return CapacityFor(l.width, len(l.buf))
}

// RemainingCapacity returns how many more records can be appended. It is zero when
// the stored count is at or beyond Capacity.
func (l *List) RemainingCapacity() uint64 {
	n, c := l.Len(), l.Capacity()
	if n >= c {
		return 0
	}
	return c - n
}

// CapacityBytes returns the size of the underlying buffer.
func (l *List) CapacityBytes() int {
	return len(l.buf)
}

// HeaderWidth returns the width of the count header.
func (l *List) HeaderWidth() HeaderWidth {
	return l.width
}

// Bytes returns the header and every stored record that lies inside the buffer.
// The slice aliases the buffer.
func (l *List) Bytes() []byte {
	n := min(l.Len(), l.Capacity())
	return l.buf[:RecordOffset(l.width, n)]
}

// record returns the span of record i. The caller guarantees i < Capacity().
func (l *List) record(i uint64) []byte {
	off := RecordOffset(l.width, i)
	return l.buf[off : off+codec.Size]
}

// Append encodes v into the next free slot. It fails with a *CapacityError
// wrapping ErrFull, leaving the buffer untouched, when no slot is left.
func (l *List) Append(v codec.Validator) error {
	n, c := l.Len(), l.Capacity()
	if n >= c {
		return &CapacityError{Count: n, Capacity: c}
	}

	codec.Put(l.record(n), v)
	// count is persisted only after the record bytes are in place
	l.setLen(n + 1)
	return nil
}

// Get decodes the record at index i.
func (l *List) Get(i uint64) (codec.Validator, error) {
	n := l.Len()
	if i >= n {
		return codec.Validator{}, fmt.Errorf("%w: %d >= %d", ErrIndexOutOfRange, i, n)
	}
	if i >= l.Capacity() {
		return codec.Validator{}, &RecordError{Index: i, Err: ErrCountOutOfRange}
	}
	v, err := codec.Decode(l.record(i))
	if err != nil {
		return codec.Validator{}, &RecordError{Index: i, Err: err}
	}
	return v, nil
}

// Iter returns a new cursor positioned before the first record.
func (l *List) Iter() *Iterator {
	return &Iterator{
		list:     l,
		count:    l.Len(),
		capacity: l.Capacity(),
	}
}

// All yields every stored record in append order, with a per-position error for
// records that cannot be decoded.
func (l *List) All() iter.Seq2[codec.Validator, error] {
	return func(yield func(codec.Validator, error) bool) {
		it := l.Iter()
		for it.Next() {
			if !yield(it.Validator(), it.Err()) {
				return
			}
		}
	}
}
