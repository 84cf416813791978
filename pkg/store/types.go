package store

import (
	"github.com/rs/zerolog"

	"github.com/ssargent/stakelist/pkg/biglist"
	"github.com/ssargent/stakelist/pkg/codec"
)

// LedgerConfig holds configuration for a Ledger
type LedgerConfig struct {
	BufferPath    string              // Path to the fixed-size buffer file
	CapacityBytes int                 // Buffer size used when the file is created
	HeaderWidth   biglist.HeaderWidth // Width of the record count header
	Logger        zerolog.Logger
}

// Entry is one decoded position of the list
type Entry struct {
	Index     uint64          `json:"index" msgpack:"index"`
	Validator codec.Validator `json:"validator" msgpack:"validator"`
	Err       error           `json:"-" msgpack:"-"`
}

// Stats holds statistics about the ledger
type Stats struct {
	Count             uint64 `json:"count" msgpack:"count"`
	Capacity          uint64 `json:"capacity" msgpack:"capacity"`
	RemainingCapacity uint64 `json:"remaining_capacity" msgpack:"remaining_capacity"`
	CapacityBytes     int    `json:"capacity_bytes" msgpack:"capacity_bytes"`
	UsedBytes         int    `json:"used_bytes" msgpack:"used_bytes"`
	HeaderWidth       int    `json:"header_width" msgpack:"header_width"`
	Active            uint64 `json:"active" msgpack:"active"`
	Inactive          uint64 `json:"inactive" msgpack:"inactive"`
	Corrupt           uint64 `json:"corrupt" msgpack:"corrupt"`
	// Totals saturate at math.MaxUint64 instead of wrapping.
	TotalStake        uint64 `json:"total_stake" msgpack:"total_stake"`
	TotalUnstake      uint64 `json:"total_unstake" msgpack:"total_unstake"`
}

// VerifyResult reports corrupt positions found by walking the list
type VerifyResult struct {
	Records         uint64   `json:"records" msgpack:"records"`
	CorruptIndexes  []uint64 `json:"corrupt_indexes,omitempty" msgpack:"corrupt_indexes,omitempty"`
	CountOutOfRange bool     `json:"count_out_of_range" msgpack:"count_out_of_range"`
}

// OK reports whether no corruption was found
func (r *VerifyResult) OK() bool {
	return len(r.CorruptIndexes) == 0 && !r.CountOutOfRange
}

// CompactResult summarizes a compaction
type CompactResult struct {
	Kept    uint64 `json:"kept" msgpack:"kept"`
	Dropped uint64 `json:"dropped" msgpack:"dropped"`
	Corrupt uint64 `json:"corrupt" msgpack:"corrupt"`
}

// Errors
var (
	ErrClosed           = &StoreError{"ledger is not open"}
	ErrCorruption       = &StoreError{"data corruption detected"}
	ErrCapacityMismatch = &StoreError{"buffer file size does not match configured capacity"}
	ErrLayoutMismatch   = &StoreError{"snapshot header width does not match ledger"}
)

// StoreError represents a ledger state error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}
