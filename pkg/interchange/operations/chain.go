package operations

import (
	"fmt"
	"path/filepath"
	"strings"
)

// maxChain bounds chain length for both ParseChain and Unwrap.
const maxChain = 8

// Chain is an ordered list of operations, first applied first.
type Chain []uint8

// String converts a chain to its human-readable form.
func (c Chain) String() string {
	if len(c) == 0 {
		return "raw"
	}

	var names []string
	for _, op := range c {
		names = append(names, strings.ToLower(GetName(op)))
	}
	return strings.Join(names, "|")
}

// Named chains for parsing
var namedChains = map[string]Chain{
	"":      {},
	"raw":   {},
	"none":  {},
	"json":  {},
	"gzip":  {OP_GZIP},
	"gz":    {OP_GZIP},
	"bzip2": {OP_BZIP2},
	"bz2":   {OP_BZIP2},
}

// Named operations for parsing pipe-separated chains
var namedOperations = map[string]uint8{
	"GZIP":  OP_GZIP,
	"GZ":    OP_GZIP,
	"BZIP2": OP_BZIP2,
	"BZ2":   OP_BZIP2,
}

// ParseChain parses a compression name ("raw", "gzip", "bzip2") or a
// pipe-separated list such as "bzip2|gzip".
func ParseChain(s string) (Chain, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	if chain, ok := namedChains[s]; ok {
		return chain, nil
	}

	if !strings.Contains(s, "|") {
		return nil, fmt.Errorf("unknown compression: %s", s)
	}

	var chain Chain
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(strings.ToUpper(part))
		if part == "" {
			continue
		}

		op, ok := namedOperations[part]
		if !ok {
			return nil, fmt.Errorf("unsupported operation: %s", part)
		}
		chain = append(chain, op)
	}
	if len(chain) > maxChain {
		return nil, fmt.Errorf("maximum %d operations allowed, got %d", maxChain, len(chain))
	}
	return chain, nil
}

// ChainForPath infers the chain from a file name: ".gz" means gzip, ".bz2"
// means bzip2, anything else is raw JSON.
func ChainForPath(path string) Chain {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return Chain{OP_GZIP}
	case ".bz2":
		return Chain{OP_BZIP2}
	default:
		return Chain{}
	}
}

// Apply applies the chain to data
func (c Chain) Apply(data []byte) ([]byte, error) {
	current := data

	for _, opID := range c {
		op, err := Get(opID)
		if err != nil {
			return nil, fmt.Errorf("operation 0x%02x: %w", opID, err)
		}

		result, err := op.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("applying %s: %w", op.Name(), err)
		}

		current = result
	}

	return current, nil
}

// Reverse reverses the chain on data, last operation first
func (c Chain) Reverse(data []byte) ([]byte, error) {
	current := data

	for i := len(c) - 1; i >= 0; i-- {
		op, err := Get(c[i])
		if err != nil {
			return nil, fmt.Errorf("operation 0x%02x: %w", c[i], err)
		}

		result, err := op.Reverse(current)
		if err != nil {
			return nil, fmt.Errorf("reversing %s: %w", op.Name(), err)
		}

		current = result
	}

	return current, nil
}

// Unwrap peels off operations recognised by their magic until plain data
// remains. It returns the data and the chain that produced it.
func Unwrap(data []byte) ([]byte, Chain, error) {
	var peeled Chain

	for len(peeled) < maxChain {
		id := Detect(data)
		if id == OP_NONE {
			break
		}

		op, err := Get(id)
		if err != nil {
			return nil, nil, err
		}
		data, err = op.Reverse(data)
		if err != nil {
			return nil, nil, fmt.Errorf("reversing %s: %w", op.Name(), err)
		}
		peeled = append(Chain{id}, peeled...)
	}

	return data, peeled, nil
}
