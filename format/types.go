package format

type (
	Mode      uint8
	Operation uint8
	CodecType uint8
)

const (
	// Operating profiles. Resolved once at configuration time; every
	// component receives the resolved value and never re-reads it.
	ModePerformance Mode = 0x1 // ModePerformance skips heuristic checks for throughput.
	ModeBalanced    Mode = 0x2 // ModeBalanced enables heuristics with relaxed limits.
	ModeSecurity    Mode = 0x3 // ModeSecurity enables every guard, including the ratio check.

	OpCompress   Operation = 0x1 // OpCompress transforms plain bytes into codec output.
	OpDecompress Operation = 0x2 // OpDecompress restores plain bytes from codec output.

	CodecNone    CodecType = 0x1 // CodecNone passes data through unmodified.
	CodecGzip    CodecType = 0x2 // CodecGzip is RFC 1952 gzip.
	CodecDeflate CodecType = 0x3 // CodecDeflate is raw RFC 1951 DEFLATE.
	CodecBrotli  CodecType = 0x4 // CodecBrotli is RFC 7932 Brotli.
	CodecZstd    CodecType = 0x5 // CodecZstd is Zstandard.
	CodecLZ4     CodecType = 0x6 // CodecLZ4 is the LZ4 block format.
	CodecS2      CodecType = 0x7 // CodecS2 is the S2 extension of Snappy.
)

func (m Mode) String() string {
	switch m {
	case ModePerformance:
		return "performance"
	case ModeBalanced:
		return "balanced"
	case ModeSecurity:
		return "security"
	default:
		return "unknown"
	}
}

// ParseMode resolves a mode name to its Mode value. Unknown names resolve
// to ModeBalanced, the safe middle profile.
func ParseMode(name string) Mode {
	switch name {
	case "performance":
		return ModePerformance
	case "security":
		return ModeSecurity
	default:
		return ModeBalanced
	}
}

func (o Operation) String() string {
	switch o {
	case OpCompress:
		return "compress"
	case OpDecompress:
		return "decompress"
	default:
		return "unknown"
	}
}

func (c CodecType) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecGzip:
		return "gzip"
	case CodecDeflate:
		return "deflate"
	case CodecBrotli:
		return "brotli"
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	case CodecS2:
		return "s2"
	default:
		return "unknown"
	}
}

// ParseCodecType resolves a codec name. Unknown names resolve to CodecGzip.
func ParseCodecType(name string) CodecType {
	switch name {
	case "none":
		return CodecNone
	case "deflate":
		return CodecDeflate
	case "brotli":
		return CodecBrotli
	case "zstd":
		return CodecZstd
	case "lz4":
		return CodecLZ4
	case "s2":
		return CodecS2
	default:
		return CodecGzip
	}
}
