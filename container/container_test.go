package container

import (
	"encoding/binary"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crimp-io/crimp/errs"
)

// heapAlloc returns cumulative bytes allocated, which never decreases.
func heapAlloc() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return ms.TotalAlloc
}

// TestEncodeDecodeRoundTrip verifies chunk lists survive framing unchanged,
// including zero-length chunks.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := [][][]byte{
		{[]byte("single")},
		{[]byte("one"), []byte("two"), []byte("three")},
		{{}, []byte("after empty"), {}},
		{[]byte{0x00, 0xff, 0x7f}},
		{},
	}

	for _, chunks := range cases {
		data, err := Encode(chunks)
		require.NoError(t, err)
		require.True(t, HasMagic(data))

		decoded, err := Decode(data)
		require.NoError(t, err)
		require.Len(t, decoded, len(chunks))
		for i := range chunks {
			require.Equal(t, chunks[i], decoded[i])
		}
	}
}

// TestHeaderLayout verifies the fixed little-endian header fields.
func TestHeaderLayout(t *testing.T) {
	data, err := Encode([][]byte{[]byte("ab"), []byte("cde")})
	require.NoError(t, err)

	require.Equal(t, Magic, binary.LittleEndian.Uint32(data[0:4]))
	require.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[4:8]))
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[8:12]))

	// 12 header + (4+2) + (4+3)
	require.Len(t, data, 25)
	require.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[12:16]))
	require.Equal(t, []byte("ab"), data[16:18])
}

// TestHasMagic verifies non-container payloads are not misidentified.
func TestHasMagic(t *testing.T) {
	require.False(t, HasMagic(nil))
	require.False(t, HasMagic([]byte{0x1f, 0x8b}))
	require.False(t, HasMagic([]byte("plain text payload")))
}

// TestDecodeCorrupted verifies malformed chunk tables fail with
// ErrCorruptedContainer instead of reading past the buffer.
func TestDecodeCorrupted(t *testing.T) {
	valid, err := Encode([][]byte{[]byte("payload")})
	require.NoError(t, err)

	t.Run("truncated header", func(t *testing.T) {
		_, err := Decode(valid[:8])
		require.ErrorIs(t, err, errs.ErrCorruptedContainer)
	})

	t.Run("wrong magic", func(t *testing.T) {
		bad := append([]byte{}, valid...)
		bad[0] ^= 0xff
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrCorruptedContainer)
	})

	t.Run("length past buffer end", func(t *testing.T) {
		bad := append([]byte{}, valid...)
		binary.LittleEndian.PutUint32(bad[12:16], 1<<30)
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrCorruptedContainer)
	})

	t.Run("count past records", func(t *testing.T) {
		bad := append([]byte{}, valid...)
		binary.LittleEndian.PutUint32(bad[4:8], 5)
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrCorruptedContainer)
	})

	t.Run("forged count cannot size the allocation", func(t *testing.T) {
		// A bare header declaring 2^32-1 records must fail on the count
		// check, not attempt a count-sized slice allocation.
		bad := make([]byte, HeaderSize)
		binary.LittleEndian.PutUint32(bad[0:4], Magic)
		binary.LittleEndian.PutUint32(bad[4:8], 0xFFFFFFFF)

		before := heapAlloc()
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrCorruptedContainer)
		require.Less(t, heapAlloc()-before, uint64(1<<20),
			"decode of a 12-byte input must not allocate from the declared count")
	})

	t.Run("count above prefix capacity", func(t *testing.T) {
		// 20 bytes past the header fit at most 5 length prefixes.
		bad := make([]byte, HeaderSize+20)
		binary.LittleEndian.PutUint32(bad[0:4], Magic)
		binary.LittleEndian.PutUint32(bad[4:8], 6)
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrCorruptedContainer)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		bad := append(append([]byte{}, valid...), 0xAA)
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrCorruptedContainer)
	})
}
