package store

import (
	"github.com/ssargent/stakelist/pkg/biglist"
	"github.com/ssargent/stakelist/pkg/codec"
)

// Compact appends every decodable record of src for which keep returns true into
// dst, in order. A nil keep keeps everything. Corrupt positions are skipped and
// counted. dst should be freshly initialized.
func Compact(src, dst *biglist.List, keep func(codec.Validator) bool) (CompactResult, error) {
	var res CompactResult

	it := src.Iter()
	for it.Next() {
		if it.Err() != nil {
			res.Corrupt++
			continue
		}
		v := it.Validator()
		if keep != nil && !keep(v) {
			res.Dropped++
			continue
		}
		if err := dst.Append(v); err != nil {
			return res, err
		}
		res.Kept++
	}

	return res, nil
}

// DropInactive is a Compact filter that keeps only active validators
func DropInactive(v codec.Validator) bool {
	return v.Active
}
