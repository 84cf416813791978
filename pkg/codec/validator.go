package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Size is the encoded length of one Validator in bytes.
const Size = 17

const (
	offsetStake   = 0
	offsetUnstake = 8
	offsetActive  = 16
)

const (
	flagInactive byte = 0x00
	flagActive   byte = 0x01
)

var (
	ErrInvalidLength = errors.New("codec: invalid record length")
	ErrInvalidFlag   = errors.New("codec: invalid active flag")
)

// Validator is the stake accounting entry for one validator.
type Validator struct {
	StakeBalance   uint64 `json:"stake_balance" msgpack:"stake_balance"`
	UnstakeBalance uint64 `json:"unstake_balance" msgpack:"unstake_balance"`
	Active         bool   `json:"active" msgpack:"active"`
}

// Encode serializes v into its fixed 17-byte form.
func Encode(v Validator) [Size]byte {
	var buf [Size]byte
	Put(buf[:], v)
	return buf
}

// Put writes the encoding of v into dst[:Size]. It panics if dst is shorter than Size.
func Put(dst []byte, v Validator) {
	_ = dst[Size-1] // bounds check hint
	binary.LittleEndian.PutUint64(dst[offsetStake:], v.StakeBalance)
	binary.LittleEndian.PutUint64(dst[offsetUnstake:], v.UnstakeBalance)
	if v.Active {
		dst[offsetActive] = flagActive
	} else {
		dst[offsetActive] = flagInactive
	}
}

// Decode parses exactly Size bytes into a Validator.
func Decode(data []byte) (Validator, error) {
	if len(data) != Size {
		return Validator{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLength, len(data), Size)
	}

	var active bool
	switch flag := data[offsetActive]; flag {
	case flagInactive:
		active = false
	case flagActive:
		active = true
	default:
		return Validator{}, fmt.Errorf("%w: 0x%02x", ErrInvalidFlag, flag)
	}

	return Validator{
		StakeBalance:   binary.LittleEndian.Uint64(data[offsetStake:offsetUnstake]),
		UnstakeBalance: binary.LittleEndian.Uint64(data[offsetUnstake:offsetActive]),
		Active:         active,
	}, nil
}

// IsDecodeError reports whether err came from Decode rejecting its input.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrInvalidLength) || errors.Is(err, ErrInvalidFlag)
}
