package biglist

import (
	"github.com/ssargent/stakelist/pkg/codec"
)

// Iterator walks a List in codec.Size strides. Count and capacity are read once
// when the iterator is created.
//
//	it := list.Iter()
//	for it.Next() {
//	    v, err := it.Validator(), it.Err()
//	    ...
//	}
type Iterator struct {
	list     *List
	count    uint64
	capacity uint64
	next     uint64
	index    uint64
	current  codec.Validator
	err      error
}

// Next advances to the next position and reports whether there is one.
// A decode failure does not end the iteration; it is reported by Err for that
// position only. A stored count beyond the buffer's capacity yields one final
// position carrying ErrCountOutOfRange.
func (it *Iterator) Next() bool {
	if it.next >= it.count {
		return false
	}

	it.index = it.next
	it.next++
	it.current = codec.Validator{}
	it.err = nil

	if it.index >= it.capacity {
		it.err = &RecordError{Index: it.index, Err: ErrCountOutOfRange}
		it.next = it.count
		return true
	}

	v, err := codec.Decode(it.list.record(it.index))
	if err != nil {
		it.err = &RecordError{Index: it.index, Err: err}
		return true
	}
	it.current = v
	return true
}

// Index returns the position of the current record.
func (it *Iterator) Index() uint64 {
	return it.index
}

// Validator returns the current record, or the zero value if Err is non-nil.
func (it *Iterator) Validator() codec.Validator {
	return it.current
}

// Err returns the decode error for the current position, if any.
func (it *Iterator) Err() error {
	return it.err
}
