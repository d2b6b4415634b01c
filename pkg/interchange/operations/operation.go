package operations

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
)

// Operation identifiers. The values are stable so chains can be logged and
// compared across versions.
const (
	// Plain JSON
	OP_NONE = 0x00

	// Compression operations (0x10-0x2F)
	OP_GZIP  = 0x10 // GZIP compression
	OP_BZIP2 = 0x13 // BZIP2 compression
)

// MaxDecodedSize caps the output of every Reverse. A preset document with
// all 15 slots is well under 1 MiB.
var MaxDecodedSize int64 = 16 << 20

// ErrTooLarge is returned when decoded data exceeds MaxDecodedSize.
var ErrTooLarge = errors.New("❌ decoded data exceeds size limit")

// ReadLimited reads r to the end, failing with ErrTooLarge once more than
// MaxDecodedSize bytes come out.
func ReadLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDecodedSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > MaxDecodedSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, MaxDecodedSize)
	}
	return data, nil
}

// Operation is a reversible transformation applied to an encoded document.
type Operation interface {
	// ID returns the operation identifier (e.g., OP_GZIP)
	ID() uint8

	// Name returns the human-readable name
	Name() string

	// Magic returns the leading bytes every output of Apply starts with.
	Magic() []byte

	// Apply transforms a serialized document
	Apply(input []byte) ([]byte, error)

	// Reverse undoes Apply
	Reverse(input []byte) ([]byte, error)
}

// BaseOperation provides the identity half of an Operation.
type BaseOperation struct {
	OpID    uint8
	OpName  string
	OpMagic []byte
}

func (o *BaseOperation) ID() uint8 {
	return o.OpID
}

func (o *BaseOperation) Name() string {
	return o.OpName
}

func (o *BaseOperation) Magic() []byte {
	return o.OpMagic
}

// Registry maps operation IDs to implementations
var Registry = make(map[uint8]Operation)

// Register registers an operation implementation
func Register(op Operation) {
	Registry[op.ID()] = op
}

// Get retrieves an operation by ID
func Get(id uint8) (Operation, error) {
	op, ok := Registry[id]
	if !ok {
		return nil, fmt.Errorf("unknown operation: 0x%02x", id)
	}
	return op, nil
}

// GetName returns the name of an operation by ID
func GetName(id uint8) string {
	switch id {
	case OP_NONE:
		return "NONE"
	case OP_GZIP:
		return "GZIP"
	case OP_BZIP2:
		return "BZIP2"
	default:
		return fmt.Sprintf("UNKNOWN_%02x", id)
	}
}

// Detect returns the registered operation whose magic prefixes data, or
// OP_NONE when the data is not wrapped by any known operation.
func Detect(data []byte) uint8 {
	ids := make([]int, 0, len(Registry))
	for id := range Registry {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	for _, id := range ids {
		magic := Registry[uint8(id)].Magic()
		if len(magic) > 0 && bytes.HasPrefix(data, magic) {
			return uint8(id)
		}
	}
	return OP_NONE
}
