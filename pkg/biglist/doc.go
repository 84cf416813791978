// Package biglist stores a packed run of codec.Validator records inside a single
// caller-owned byte buffer whose size never changes.
//
// # Layout
//
//	[Count(4|8)][Record 0(17)][Record 1(17)]...[unused reserve]
//
// Count is a little-endian unsigned integer, 4 bytes wide for Header32 (compatible
// with length-prefixed vectors written by other tooling) or 8 bytes wide for Header64.
// Record i lives at HeaderWidth + i*codec.Size. Any reader that knows the header
// width can parse a buffer without this package.
//
// # Ownership
//
// A List is a view. It never allocates, grows or shrinks the buffer, and it keeps no
// lock: the owner must serialize calls. The stored count is treated as untrusted data
// and is re-checked against the buffer length by every operation.
package biglist
