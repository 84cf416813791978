// Package codec provides the fixed binary layout for validator stake records.
//
// Every record is exactly Size (17) bytes:
//
//	[StakeBalance(8)][UnstakeBalance(8)][Active(1)]
//
// Fields:
//   - StakeBalance: 64-bit unsigned integer, funds currently staked (little-endian)
//   - UnstakeBalance: 64-bit unsigned integer, funds being withdrawn (little-endian)
//   - Active: one byte, 0x00 for false and 0x01 for true
//
// The two balances are independent counters; the codec enforces no relationship
// between them.
//
// # Usage
//
//	v := codec.Validator{StakeBalance: 1024, UnstakeBalance: 4201, Active: true}
//	b := codec.Encode(v)
//
//	decoded, err := codec.Decode(b[:])
//	if err != nil {
//	    return err
//	}
//
// # Error Handling
//
// Decode rejects input that is not exactly Size bytes with ErrInvalidLength before
// touching any field, and rejects an Active byte other than 0x00 or 0x01 with
// ErrInvalidFlag. Both are sentinel errors and should be matched with errors.Is.
//
// # Thread Safety
//
// All functions are pure and keep no reference to their arguments after returning.
package codec
