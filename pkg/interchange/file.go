// Package interchange reads and writes preset documents as JSON files,
// optionally wrapped in a compression chain.
package interchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Hapfel1/character-presets-tool/pkg/interchange/operations"
	_ "github.com/Hapfel1/character-presets-tool/pkg/interchange/operations/compress"
	"github.com/Hapfel1/character-presets-tool/pkg/preset"
	"github.com/hashicorp/go-hclog"
)

// Encode serializes doc as indented JSON and applies chain.
func Encode(doc *preset.Document, chain operations.Chain) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	data = append(data, '\n')

	return chain.Apply(data)
}

// Decode strips any recognised compression and parses the document.
func Decode(data []byte) (*preset.Document, operations.Chain, error) {
	plain, chain, err := operations.Unwrap(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", preset.ErrSchema, err)
	}

	var doc preset.Document
	if err := json.Unmarshal(plain, &doc); err != nil {
		if errors.Is(err, preset.ErrSchema) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", preset.ErrSchema, err)
	}

	if doc.Format != "" && doc.Format != preset.DocumentFormat {
		return nil, nil, fmt.Errorf("%w: unsupported document format %q", preset.ErrSchema, doc.Format)
	}
	if doc.Presets == nil {
		return nil, nil, fmt.Errorf("%w: document has no presets list", preset.ErrSchema)
	}

	return &doc, chain, nil
}

// DefaultFileMode is the permission set WriteFile creates documents with.
const DefaultFileMode os.FileMode = 0o644

// WriteFile encodes doc to path. An empty compression infers the chain from
// the file extension.
func WriteFile(path string, doc *preset.Document, compression string, logger hclog.Logger) error {
	return WriteFileMode(path, doc, compression, DefaultFileMode, logger)
}

// WriteFileMode is WriteFile with an explicit mode for newly created files.
func WriteFileMode(path string, doc *preset.Document, compression string, mode os.FileMode, logger hclog.Logger) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	chain := operations.ChainForPath(path)
	if compression != "" {
		var err error
		if chain, err = operations.ParseChain(compression); err != nil {
			return err
		}
	}

	data, err := Encode(doc, chain)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("%w: writing %s: %v", preset.ErrIO, path, err)
	}

	logger.Info("💾 Wrote preset document",
		"path", path,
		"presets", doc.Len(),
		"compression", chain.String(),
		"bytes", len(data),
	)
	return nil
}

// ReadFile loads a document written by WriteFile or by hand.
func ReadFile(path string, logger hclog.Logger) (*preset.Document, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", preset.ErrIO, path, err)
	}

	doc, chain, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.Debug("📖 Read preset document",
		"path", path,
		"presets", doc.Len(),
		"compression", chain.String(),
	)
	return doc, nil
}
