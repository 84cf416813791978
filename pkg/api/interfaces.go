// Package api provides the REST surface over a validator ledger
package api

import (
	"github.com/ssargent/stakelist/pkg/codec"
	"github.com/ssargent/stakelist/pkg/store"
)

// ILedger defines the ledger operations the API needs
type ILedger interface {
	Append(v codec.Validator) (uint64, error)
	Get(i uint64) (codec.Validator, error)
	Validators() ([]store.Entry, error)
	Stats() *store.Stats
	Verify() (*store.VerifyResult, error)
	Compact(keep func(codec.Validator) bool) (store.CompactResult, error)
	Snapshot() ([]byte, error)
	Raw() ([]byte, error)
}

var _ ILedger = (*store.Ledger)(nil)
