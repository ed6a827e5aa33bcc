// Package serialization implements the .lcnt checkpoint format.
//
// Layout:
//
//	0x00  magic "LCNT" (4 bytes)
//	0x04  format version, uint32 little-endian
//	0x08  flags, uint32
//	0x0C  header size, uint64
//	0x14  SHA-256 checksum of the tensor data section (32 bytes)
//	0x34  header JSON (header size bytes)
//	....  zero padding to a 64-byte boundary
//	....  tensor data, concatenated in header order
//
// Tensors are written in sorted name order so the same state dict
// always produces byte-identical files.
package serialization

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/lucent-ml/lucent/internal/tensor"
)

const (
	// MagicBytes identifies a .lcnt file.
	MagicBytes = "LCNT"

	// FormatVersion is the current checkpoint format version.
	FormatVersion = 1

	// DataAlignment aligns the start of the tensor data section.
	DataAlignment = 64

	// ChecksumSize is the length of the SHA-256 digest.
	ChecksumSize = 32

	// fixedPrefixSize is magic + version + flags + header size + checksum.
	fixedPrefixSize = 4 + 4 + 4 + 8 + ChecksumSize

	// maxHeaderSize bounds the JSON header to reject corrupt files early.
	maxHeaderSize = 100 * 1024 * 1024
)

// Flags stored in the fixed prefix.
const (
	FlagHasMetadata uint32 = 1 << 0
)

var (
	// ErrInvalidMagic is returned when a file does not start with MagicBytes.
	ErrInvalidMagic = errors.New("serialization: invalid magic bytes")

	// ErrUnsupportedVersion is returned for unknown format versions.
	ErrUnsupportedVersion = errors.New("serialization: unsupported format version")

	// ErrHeaderTooLarge is returned when the declared header size exceeds the limit.
	ErrHeaderTooLarge = errors.New("serialization: header too large")

	// ErrChecksumMismatch is returned when the tensor data does not match
	// the stored checksum.
	ErrChecksumMismatch = errors.New("serialization: checksum mismatch")
)

// TensorMeta describes one tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`
}

// Header is the JSON header of a .lcnt file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	ModelType     string            `json:"model_type"`
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// ComputeChecksum returns the SHA-256 digest of the data section.
func ComputeChecksum(data []byte) [ChecksumSize]byte {
	return sha256.Sum256(data)
}

func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return "float32"
	case tensor.Float64:
		return "float64"
	case tensor.Uint8:
		return "uint8"
	default:
		return fmt.Sprintf("unknown(%d)", dt)
	}
}

func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case "float32":
		return tensor.Float32, true
	case "float64":
		return tensor.Float64, true
	case "uint8":
		return tensor.Uint8, true
	default:
		return 0, false
	}
}

func alignmentPadding(pos int64) int64 {
	return (DataAlignment - (pos % DataAlignment)) % DataAlignment
}
