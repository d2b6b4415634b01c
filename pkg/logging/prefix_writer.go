package logging

import (
	"bytes"
	"io"
	"sync"
)

// PrefixWriter prepends a prefix to every complete line written through it.
// Partial lines are held back until their newline arrives or Flush is called.
type PrefixWriter struct {
	mu      sync.Mutex
	prefix  []byte
	writer  io.Writer
	pending []byte
}

// NewPrefixWriter creates a new PrefixWriter.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{
		prefix: []byte(prefix),
		writer: w,
	}
}

// Write implements io.Writer. It reports len(p) once every complete line in
// p has reached the underlying writer.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	pw.pending = append(pw.pending, p...)
	for {
		i := bytes.IndexByte(pw.pending, '\n')
		if i < 0 {
			break
		}
		if err := pw.emit(pw.pending[:i+1]); err != nil {
			return 0, err
		}
		pw.pending = pw.pending[i+1:]
	}

	// release the drained buffer
	if len(pw.pending) == 0 {
		pw.pending = nil
	}
	return len(p), nil
}

// Flush writes out a trailing partial line, if any.
func (pw *PrefixWriter) Flush() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if len(pw.pending) == 0 {
		return nil
	}
	err := pw.emit(pw.pending)
	pw.pending = nil
	return err
}

func (pw *PrefixWriter) emit(line []byte) error {
	out := make([]byte, 0, len(pw.prefix)+len(line))
	out = append(out, pw.prefix...)
	out = append(out, line...)
	_, err := pw.writer.Write(out)
	return err
}
