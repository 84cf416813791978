package biglist

import (
	"errors"
	"fmt"
)

var (
	ErrBufferTooSmall     = errors.New("biglist: buffer smaller than header")
	ErrInvalidHeaderWidth = errors.New("biglist: invalid header width")
	ErrFull               = errors.New("biglist: list is full")
	ErrCountOutOfRange    = errors.New("biglist: stored count exceeds buffer capacity")
	ErrIndexOutOfRange    = errors.New("biglist: index out of range")
)

// CapacityError is returned by Append when the buffer has no room for another record.
type CapacityError struct {
	Count    uint64 // records stored when the append was attempted
	Capacity uint64 // records the buffer can hold
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("biglist: list is full: %d of %d records", e.Count, e.Capacity)
}

func (e *CapacityError) Unwrap() error {
	return ErrFull
}

// RecordError localizes a failure to one record position.
type RecordError struct {
	Index uint64
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("biglist: record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
