package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lucent-ml/lucent/internal/tensor"
)

// ReadFile reads a .lcnt checkpoint from path.
func ReadFile(path string, backend tensor.Backend) (map[string]*tensor.RawTensor, Header, error) {
	//nolint:gosec // G304: checkpoint paths are caller-supplied by design
	file, err := os.Open(path)
	if err != nil {
		return nil, Header{}, fmt.Errorf("failed to open checkpoint: %w", err)
	}
	defer file.Close()

	return ReadFrom(file, backend)
}

// ReadFrom reads a .lcnt checkpoint from an io.Reader, validating the
// checksum before handing back any tensor.
//
//nolint:gocyclo // linear binary-format plumbing
func ReadFrom(r io.Reader, backend tensor.Backend) (map[string]*tensor.RawTensor, Header, error) {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return nil, Header{}, ErrInvalidMagic
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return nil, Header{}, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	var flags uint32
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read flags: %w", err)
	}

	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > maxHeaderSize {
		return nil, Header{}, ErrHeaderTooLarge
	}

	var checksum [ChecksumSize]byte
	if _, err := io.ReadFull(r, checksum[:]); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read checksum: %w", err)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read header: %w", err)
	}

	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, Header{}, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	padding := alignmentPadding(int64(fixedPrefixSize) + int64(headerSize))
	if padding > 0 {
		if _, err := io.CopyN(io.Discard, r, padding); err != nil {
			return nil, Header{}, fmt.Errorf("failed to skip padding: %w", err)
		}
	}

	var dataSize int64
	for _, meta := range header.Tensors {
		dataSize += meta.Size
	}
	dataSection := make([]byte, dataSize)
	if _, err := io.ReadFull(r, dataSection); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read tensor data: %w", err)
	}

	computed := ComputeChecksum(dataSection)
	if !bytes.Equal(computed[:], checksum[:]) {
		return nil, Header{}, ErrChecksumMismatch
	}

	stateDict := make(map[string]*tensor.RawTensor, len(header.Tensors))
	for _, meta := range header.Tensors {
		dtype, ok := stringToDtype(meta.DType)
		if !ok {
			return nil, Header{}, fmt.Errorf("tensor %s: unsupported dtype %s", meta.Name, meta.DType)
		}

		shape := tensor.Shape(meta.Shape)
		if err := shape.Validate(); err != nil {
			return nil, Header{}, fmt.Errorf("tensor %s: invalid shape: %w", meta.Name, err)
		}

		if meta.Offset < 0 || meta.Offset+meta.Size > dataSize {
			return nil, Header{}, fmt.Errorf("tensor %s: data range [%d, %d) outside data section", meta.Name, meta.Offset, meta.Offset+meta.Size)
		}

		raw, err := tensor.NewRaw(shape, dtype, backend.Device())
		if err != nil {
			return nil, Header{}, fmt.Errorf("tensor %s: %w", meta.Name, err)
		}
		if int64(raw.ByteSize()) != meta.Size {
			return nil, Header{}, fmt.Errorf("tensor %s: declared size %d does not match shape %v", meta.Name, meta.Size, shape)
		}
		copy(raw.Data(), dataSection[meta.Offset:meta.Offset+meta.Size])

		stateDict[meta.Name] = raw
	}

	return stateDict, header, nil
}
