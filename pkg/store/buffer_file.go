package store

import (
	"fmt"
	"os"
	"path/filepath"

	mmap "github.com/edsrzf/mmap-go"
)

// BufferFile is a fixed-size file mapped into memory. Its length is set when the
// file is created and never changes afterwards.
type BufferFile struct {
	file *os.File
	data mmap.MMap
	path string
}

// OpenBufferFile maps path read-write. A missing or empty file is sized to
// capacity bytes, zero-filled; creating one with capacity <= 0 fails with
// ErrCapacityMismatch. An existing file must already be exactly capacity bytes
// long; capacity <= 0 accepts whatever size the file has.
func OpenBufferFile(path string, capacity int) (*BufferFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	switch size := stat.Size(); {
	case size == 0 && capacity > 0:
		if err := file.Truncate(int64(capacity)); err != nil {
			file.Close()
			return nil, err
		}
	case size == 0:
		file.Close()
		return nil, fmt.Errorf("%w: new buffer file needs a capacity", ErrCapacityMismatch)
	case capacity > 0 && size != int64(capacity):
		file.Close()
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrCapacityMismatch, path, size, capacity)
	}

	data, err := mmap.Map(file, mmap.RDWR, 0)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &BufferFile{file: file, data: data, path: path}, nil
}

// Bytes returns the mapped buffer. It is invalid after Close.
func (b *BufferFile) Bytes() []byte {
	return b.data
}

// Flush writes dirty pages back to the file
func (b *BufferFile) Flush() error {
	return b.data.Flush()
}

// Path returns the file path
func (b *BufferFile) Path() string {
	return b.path
}

// Close flushes, unmaps and closes the file
func (b *BufferFile) Close() error {
	if err := b.data.Flush(); err != nil {
		b.data.Unmap()
		b.file.Close()
		return err
	}
	if err := b.data.Unmap(); err != nil {
		b.file.Close()
		return err
	}
	return b.file.Close()
}
