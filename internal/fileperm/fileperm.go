// Package fileperm parses the octal file modes accepted in configuration.
package fileperm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultDocumentMode is used for exported preset documents.
const DefaultDocumentMode os.FileMode = 0o644

// Parse reads an octal permission string such as "644", "0644" or "0o644".
// An empty string yields DefaultDocumentMode.
func Parse(s string) (os.FileMode, error) {
	if s == "" {
		return DefaultDocumentMode, nil
	}

	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0")
	if digits == "" {
		return 0, nil
	}

	val, err := strconv.ParseUint(digits, 8, 32)
	if err != nil {
		return DefaultDocumentMode, fmt.Errorf("invalid permission string %q: %w", s, err)
	}
	if val > 0o777 {
		return DefaultDocumentMode, fmt.Errorf("invalid permission string %q: only permission bits are allowed", s)
	}

	return os.FileMode(val), nil
}

// Format renders a mode the way Parse accepts it.
func Format(mode os.FileMode) string {
	return fmt.Sprintf("0%o", mode.Perm())
}

// OwnerCanWrite reports whether the owner write bit is set.
func OwnerCanWrite(mode os.FileMode) bool {
	return mode&0o200 != 0
}
