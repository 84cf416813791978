package biglist

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/stakelist/pkg/codec"
)

func sampleValidator(i int) codec.Validator {
	return codec.Validator{
		StakeBalance:   uint64(i) * 1000,
		UnstakeBalance: uint64(i),
		Active:         i%2 == 0,
	}
}

func collect(t *testing.T, l *List) ([]codec.Validator, []error) {
	t.Helper()
	var vals []codec.Validator
	var errs []error
	for v, err := range l.All() {
		vals = append(vals, v)
		errs = append(errs, err)
	}
	return vals, errs
}

func TestWrap(t *testing.T) {
	t.Run("default header width", func(t *testing.T) {
		l, err := Wrap(make([]byte, 64))
		require.NoError(t, err)
		assert.Equal(t, Header64, l.HeaderWidth())
		assert.Equal(t, uint64(0), l.Len())
		assert.Equal(t, 64, l.CapacityBytes())
		assert.Equal(t, uint64(3), l.Capacity())
	})

	t.Run("buffer exactly header", func(t *testing.T) {
		l, err := WrapWithHeader(make([]byte, 4), Header32)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), l.Capacity())
		assert.ErrorIs(t, l.Append(codec.Validator{}), ErrFull)
	})

	t.Run("buffer smaller than header", func(t *testing.T) {
		_, err := Wrap(make([]byte, 7))
		assert.ErrorIs(t, err, ErrBufferTooSmall)

		_, err = WrapWithHeader(nil, Header32)
		assert.ErrorIs(t, err, ErrBufferTooSmall)
	})

	t.Run("invalid header width", func(t *testing.T) {
		_, err := WrapWithHeader(make([]byte, 64), HeaderWidth(2))
		assert.ErrorIs(t, err, ErrInvalidHeaderWidth)
	})

	t.Run("does not validate stored count", func(t *testing.T) {
		buf := make([]byte, 64)
		binary.LittleEndian.PutUint64(buf, 1<<40)
		l, err := Wrap(buf)
		require.NoError(t, err)
		assert.Equal(t, uint64(1<<40), l.Len())
		assert.Equal(t, uint64(0), l.RemainingCapacity())
	})
}

func TestInit(t *testing.T) {
	buf := bytes.Repeat([]byte{0xFF}, 40)
	l, err := Init(buf, Header32)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), l.Len())
	assert.Equal(t, []byte{0, 0, 0, 0}, buf[:4])
	assert.Equal(t, byte(0xFF), buf[4], "record bytes must be left alone")
}

func TestParseHeaderWidth(t *testing.T) {
	w, err := ParseHeaderWidth(4)
	require.NoError(t, err)
	assert.Equal(t, Header32, w)

	w, err = ParseHeaderWidth(8)
	require.NoError(t, err)
	assert.Equal(t, Header64, w)

	_, err = ParseHeaderWidth(16)
	assert.ErrorIs(t, err, ErrInvalidHeaderWidth)
}

func TestAppendAndIterate(t *testing.T) {
	buf := make([]byte, 10*1024)
	l, err := Wrap(buf)
	require.NoError(t, err)

	v := codec.Validator{StakeBalance: 1024, UnstakeBalance: 4201, Active: true}
	require.NoError(t, l.Append(v))

	assert.Equal(t, uint64(1), l.Len())
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, buf[:8])
	assert.Equal(t, []byte{
		0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x69, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x01,
	}, buf[8:8+codec.Size])

	vals, errs := collect(t, l)
	require.Len(t, vals, 1)
	assert.NoError(t, errs[0])
	assert.Equal(t, v, vals[0])
}

func TestCapacityScenarios(t *testing.T) {
	t.Run("8 byte header in 10240 bytes", func(t *testing.T) {
		l, err := Wrap(make([]byte, 10240))
		require.NoError(t, err)
		assert.Equal(t, uint64(601), l.Capacity())
		assert.Equal(t, uint64(601), l.RemainingCapacity())
	})

	t.Run("4 byte header fills 602 records", func(t *testing.T) {
		l, err := WrapWithHeader(make([]byte, 10240), Header32)
		require.NoError(t, err)
		require.Equal(t, uint64(602), l.Capacity())

		for i := 0; i < 602; i++ {
			require.NoError(t, l.Append(sampleValidator(i)), "append %d", i)
		}
		assert.Equal(t, uint64(602), l.Len())
		assert.Equal(t, uint64(0), l.RemainingCapacity())

		err = l.Append(sampleValidator(602))
		assert.ErrorIs(t, err, ErrFull)
		var capErr *CapacityError
		require.True(t, errors.As(err, &capErr))
		assert.Equal(t, uint64(602), capErr.Count)
		assert.Equal(t, uint64(602), capErr.Capacity)
		assert.Equal(t, uint64(602), l.Len())
	})
}

func TestCapacityMonotonicity(t *testing.T) {
	for _, width := range []HeaderWidth{Header32, Header64} {
		for _, size := range []int{int(width), int(width) + codec.Size - 1, int(width) + codec.Size, 100, 255, 1000} {
			buf := make([]byte, size)
			l, err := WrapWithHeader(buf, width)
			require.NoError(t, err)

			n := 0
			for {
				fits := int(width)+(n+1)*codec.Size <= size
				err := l.Append(sampleValidator(n))
				if !fits {
					assert.ErrorIs(t, err, ErrFull, "width=%d size=%d n=%d", width, size, n)
					break
				}
				require.NoError(t, err, "width=%d size=%d n=%d", width, size, n)
				n++
				assert.Equal(t, uint64(n), l.Len())
				assert.Equal(t, (uint64(size-int(width))-uint64(n)*codec.Size)/codec.Size, l.RemainingCapacity())
			}
			assert.LessOrEqual(t, uint64(n), uint64(size-int(width))/codec.Size)
		}
	}
}

func TestAppendAtomicity(t *testing.T) {
	buf := make([]byte, 8+2*codec.Size+5)
	l, err := Wrap(buf)
	require.NoError(t, err)
	require.NoError(t, l.Append(sampleValidator(1)))
	require.NoError(t, l.Append(sampleValidator(2)))

	before := bytes.Clone(buf)
	err = l.Append(sampleValidator(3))
	assert.ErrorIs(t, err, ErrFull)
	assert.Equal(t, before, buf)
	assert.Equal(t, uint64(2), l.Len())
}

func TestIterationOrderAndRestart(t *testing.T) {
	l, err := Wrap(make([]byte, 1024))
	require.NoError(t, err)

	var want []codec.Validator
	for i := 0; i < 20; i++ {
		v := sampleValidator(i)
		want = append(want, v)
		require.NoError(t, l.Append(v))
	}

	first, errs := collect(t, l)
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, want, first)
	assert.Len(t, first, int(l.Len()))

	second, _ := collect(t, l)
	assert.Equal(t, first, second)

	it := l.Iter()
	i := uint64(0)
	for it.Next() {
		assert.Equal(t, i, it.Index())
		assert.Equal(t, want[i], it.Validator())
		i++
	}
	assert.Equal(t, l.Len(), i)
	assert.False(t, it.Next(), "exhausted iterator stays exhausted")
}

func TestIterateEmpty(t *testing.T) {
	l, err := Wrap(make([]byte, 128))
	require.NoError(t, err)

	vals, _ := collect(t, l)
	assert.Empty(t, vals)
	assert.False(t, l.Iter().Next())
}

func TestAllStopsEarly(t *testing.T) {
	l, err := Wrap(make([]byte, 256))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Append(sampleValidator(i)))
	}

	seen := 0
	for range l.All() {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestIterateCorruptRecord(t *testing.T) {
	buf := make([]byte, 256)
	l, err := Wrap(buf)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, l.Append(sampleValidator(i)))
	}

	// tamper with the flag byte of record 2
	buf[RecordOffset(Header64, 2)+16] = 0x02

	vals, errs := collect(t, l)
	require.Len(t, vals, 4)
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.ErrorIs(t, errs[2], codec.ErrInvalidFlag)
	assert.NoError(t, errs[3])
	assert.Equal(t, codec.Validator{}, vals[2])
	assert.Equal(t, sampleValidator(3), vals[3])

	var recErr *RecordError
	require.True(t, errors.As(errs[2], &recErr))
	assert.Equal(t, uint64(2), recErr.Index)

	_, err = l.Get(2)
	assert.ErrorIs(t, err, codec.ErrInvalidFlag)
}

func TestCorruptHeaderCount(t *testing.T) {
	buf := make([]byte, 8+3*codec.Size)
	l, err := Wrap(buf)
	require.NoError(t, err)
	require.NoError(t, l.Append(sampleValidator(0)))
	require.NoError(t, l.Append(sampleValidator(1)))

	binary.LittleEndian.PutUint64(buf, 1_000_000)

	vals, errs := collect(t, l)
	require.Len(t, vals, 4, "three in-bounds slots plus one out-of-range marker")
	assert.Equal(t, sampleValidator(0), vals[0])
	assert.Equal(t, sampleValidator(1), vals[1])
	assert.NoError(t, errs[2], "unused slot decodes as zero record")
	assert.ErrorIs(t, errs[3], ErrCountOutOfRange)

	before := bytes.Clone(buf)
	assert.ErrorIs(t, l.Append(sampleValidator(9)), ErrFull)
	assert.Equal(t, before, buf)

	_, err = l.Get(5)
	assert.ErrorIs(t, err, ErrCountOutOfRange)
	assert.Len(t, l.Bytes(), len(buf))
}

func TestCorruptHeaderCountNearOverflow(t *testing.T) {
	buf := make([]byte, 64)
	binary.LittleEndian.PutUint64(buf, ^uint64(0))
	l, err := Wrap(buf)
	require.NoError(t, err)

	assert.ErrorIs(t, l.Append(sampleValidator(0)), ErrFull)
	assert.Equal(t, uint64(0), l.RemainingCapacity())

	it := l.Iter()
	count := 0
	for it.Next() && count < 10 {
		count++
	}
	assert.Equal(t, 4, count, "capacity 3 plus the out-of-range marker")
}

func TestGet(t *testing.T) {
	l, err := WrapWithHeader(make([]byte, 128), Header32)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Append(sampleValidator(i)))
	}

	v, err := l.Get(1)
	require.NoError(t, err)
	assert.Equal(t, sampleValidator(1), v)

	_, err = l.Get(3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestBytesAndExternalParse(t *testing.T) {
	buf := make([]byte, 512)
	l, err := WrapWithHeader(buf, Header32)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Append(sampleValidator(i)))
	}

	used := l.Bytes()
	require.Len(t, used, 4+5*codec.Size)

	// parse without the list, knowing only header width and record size
	count := binary.LittleEndian.Uint32(used)
	require.Equal(t, uint32(5), count)
	for i := uint32(0); i < count; i++ {
		off := 4 + int(i)*codec.Size
		v, err := codec.Decode(used[off : off+codec.Size])
		require.NoError(t, err)
		assert.Equal(t, sampleValidator(int(i)), v)
	}
}

func TestCapacityFor(t *testing.T) {
	assert.Equal(t, uint64(0), CapacityFor(Header64, 3))
	assert.Equal(t, uint64(601), CapacityFor(Header64, 10240))
	assert.Equal(t, uint64(602), CapacityFor(Header32, 10240))
	assert.Equal(t, uint64(8), RecordOffset(Header64, 0))
	assert.Equal(t, uint64(4+2*codec.Size), RecordOffset(Header32, 2))
}
