package compress

import (
	"bytes"
	"compress/gzip"
	"fmt"

	"github.com/Hapfel1/character-presets-tool/pkg/interchange/operations"
)

func init() {
	operations.Register(NewGzipOperation())
}

// GzipOperation implements GZIP compression
type GzipOperation struct {
	operations.BaseOperation
}

// NewGzipOperation creates a new GZIP operation
func NewGzipOperation() *GzipOperation {
	return &GzipOperation{
		BaseOperation: operations.BaseOperation{
			OpID:    operations.OP_GZIP,
			OpName:  "GZIP",
			OpMagic: []byte{0x1f, 0x8b},
		},
	}
}

// Apply compresses data using GZIP
func (o *GzipOperation) Apply(input []byte) ([]byte, error) {
	var buf bytes.Buffer

	gw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("creating gzip writer: %w", err)
	}
	if _, err := gw.Write(input); err != nil {
		gw.Close()
		return nil, fmt.Errorf("writing gzip data: %w", err)
	}

	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("closing gzip writer: %w", err)
	}

	return buf.Bytes(), nil
}

// Reverse decompresses GZIP data
func (o *GzipOperation) Reverse(input []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gr.Close()

	data, err := operations.ReadLimited(gr)
	if err != nil {
		return nil, fmt.Errorf("reading gzip data: %w", err)
	}

	return data, nil
}
