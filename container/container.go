// Package container implements the wire-stable binary framing that joins
// independently compressed chunks back into a single payload.
//
// Layout, all fields little-endian:
//
//	offset 0..4   magic (0x5A435046)
//	offset 4..8   chunk count
//	offset 8..12  reserved, zero
//	repeated chunk-count times:
//	  4 bytes     chunk length
//	  N bytes     chunk payload
//
// A payload without the magic at offset 0 is not a parallel container and
// is treated by callers as a single-shot compressed stream.
package container

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/crimp-io/crimp/errs"
)

const (
	// Magic identifies a parallel container. Wire-stable.
	Magic uint32 = 0x5A435046

	// HeaderSize is the fixed header length: magic + chunk count + reserved.
	HeaderSize = 12

	// LengthPrefixSize is the per-record length prefix.
	LengthPrefixSize = 4
)

// HasMagic reports whether data begins with the container magic.
func HasMagic(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == Magic
}

// Encode builds a container from chunks in their original split order.
// Zero-length chunks are legal records.
func Encode(chunks [][]byte) ([]byte, error) {
	if uint64(len(chunks)) > math.MaxUint32 {
		return nil, errs.Wrap(errs.ErrCorruptedContainer, "encode",
			fmt.Errorf("chunk count %d exceeds uint32", len(chunks)))
	}

	total := HeaderSize
	for i, c := range chunks {
		if uint64(len(c)) > math.MaxUint32 {
			return nil, errs.Wrap(errs.ErrCorruptedContainer, "encode",
				fmt.Errorf("chunk %d length %d exceeds uint32", i, len(c)))
		}
		total += LengthPrefixSize + len(c)
	}

	out := make([]byte, total)
	binary.LittleEndian.PutUint32(out[0:4], Magic)
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(chunks)))
	// out[8:12] stays zero (reserved)

	off := HeaderSize
	for _, c := range chunks {
		binary.LittleEndian.PutUint32(out[off:off+4], uint32(len(c)))
		off += LengthPrefixSize
		copy(out[off:], c)
		off += len(c)
	}

	return out, nil
}

// Decode parses a container and returns the chunk payloads in record
// order. Returned slices alias data; callers that outlive the input must
// copy.
//
// Every declared length is bounds-checked against the buffer end before
// use; a chunk table that runs past the buffer fails with
// ErrCorruptedContainer.
func Decode(data []byte) ([][]byte, error) {
	if len(data) < HeaderSize {
		return nil, errs.Wrap(errs.ErrCorruptedContainer, "decode",
			fmt.Errorf("%d bytes is shorter than the %d byte header", len(data), HeaderSize))
	}
	if binary.LittleEndian.Uint32(data[0:4]) != Magic {
		return nil, errs.Wrap(errs.ErrCorruptedContainer, "decode",
			fmt.Errorf("magic mismatch: 0x%08X", binary.LittleEndian.Uint32(data[0:4])))
	}

	count := binary.LittleEndian.Uint32(data[4:8])

	// The count is attacker-controlled; cap it by what the buffer could
	// possibly hold (each record carries at least its length prefix) before
	// sizing any allocation from it.
	maxRecords := uint64(len(data)-HeaderSize) / LengthPrefixSize
	if uint64(count) > maxRecords {
		return nil, errs.Wrap(errs.ErrCorruptedContainer, "decode",
			fmt.Errorf("declared %d records, buffer holds at most %d", count, maxRecords))
	}
	chunks := make([][]byte, 0, count)

	off := HeaderSize
	for i := uint32(0); i < count; i++ {
		if off+LengthPrefixSize > len(data) {
			return nil, errs.Wrap(errs.ErrCorruptedContainer, "decode",
				fmt.Errorf("record %d length prefix past buffer end", i))
		}
		n := int(binary.LittleEndian.Uint32(data[off : off+LengthPrefixSize]))
		off += LengthPrefixSize

		if n < 0 || off+n > len(data) {
			return nil, errs.Wrap(errs.ErrCorruptedContainer, "decode",
				fmt.Errorf("record %d declares %d bytes past buffer end", i, n))
		}
		chunks = append(chunks, data[off:off+n])
		off += n
	}

	if off != len(data) {
		return nil, errs.Wrap(errs.ErrCorruptedContainer, "decode",
			fmt.Errorf("%d trailing bytes after last record", len(data)-off))
	}

	return chunks, nil
}
