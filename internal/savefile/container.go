// Package savefile reads and writes the BND4 save container that holds the
// character preset table.
package savefile

import (
	"bytes"
	"crypto/md5"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Hapfel1/character-presets-tool/pkg/preset"
	"github.com/hashicorp/go-hclog"
)

// Layout locates the preset table inside the container.
type Layout struct {
	Entry      int // container entry holding the table
	Offset     int // byte offset of slot 0 within the entry data
	RecordSize int // stride between slots
}

// TableSize is the number of bytes the table occupies.
func (l Layout) TableSize() int {
	return preset.SlotCount * l.RecordSize
}

// Entry is one parsed container entry.
type Entry struct {
	Index  int
	Name   string
	Header EntryHeader
}

// checksumRange returns the MD5 field of the entry payload.
func (e *Entry) checksumRange() (int, int) {
	start := int(e.Header.DataOffset)
	return start, start + ChecksumSize
}

// dataRange returns the checksummed bytes of the entry payload.
func (e *Entry) dataRange() (int, int) {
	start := int(e.Header.DataOffset) + ChecksumSize
	return start, int(e.Header.DataOffset) + int(e.Header.Size)
}

// Container is a save file held in memory. It implements preset.SlotReader
// and preset.SlotWriter over the table described by its Layout.
type Container struct {
	data    []byte
	header  *Header
	entries []Entry
	layout  Layout
	dirty   map[int]bool
	logger  hclog.Logger
}

// Open reads the whole file at path and parses it. The file handle is not
// kept; Persist writes a new file.
func Open(path string, layout Layout, logger hclog.Logger) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", preset.ErrIO, path, err)
	}

	c, err := Parse(data, layout, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	c.logger.Debug("📂 Opened save", "path", path, "size", len(data), "entries", len(c.entries))
	return c, nil
}

// Parse builds a container from raw bytes. The slice is owned by the
// container afterwards.
func Parse(data []byte, layout Layout, logger hclog.Logger) (*Container, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	header, err := UnpackHeader(data)
	if err != nil {
		return nil, err
	}

	size := uint64(len(data))
	if header.TableOffset > size {
		return nil, fmt.Errorf("%w: entry table at 0x%x is past the end of a 0x%x byte file",
			ErrInvalidEntry, header.TableOffset, size)
	}
	if uint64(header.EntryCount)*EntryHeaderSize > size-header.TableOffset {
		return nil, fmt.Errorf("%w: %d entry headers overrun the file", ErrInvalidEntry, header.EntryCount)
	}

	c := &Container{
		data:    data,
		header:  header,
		entries: make([]Entry, 0, header.EntryCount),
		layout:  layout,
		dirty:   make(map[int]bool),
		logger:  logger,
	}

	for i := 0; i < int(header.EntryCount); i++ {
		off := int(header.TableOffset) + i*EntryHeaderSize
		eh, err := UnpackEntryHeader(data[off : off+EntryHeaderSize])
		if err != nil {
			return nil, err
		}

		// compared without adding so a huge size cannot wrap around
		if eh.Size < ChecksumSize || eh.Size > size || uint64(eh.DataOffset) > size-eh.Size {
			return nil, fmt.Errorf("%w: entry %d spans 0x%x+0x%x in a 0x%x byte file",
				ErrInvalidEntry, i, eh.DataOffset, eh.Size, len(data))
		}

		name := ""
		if eh.NameOffset != 0 && int(eh.NameOffset) < len(data) {
			if name, err = decodeName(data[eh.NameOffset:]); err != nil {
				return nil, fmt.Errorf("%w: entry %d name: %v", ErrInvalidEntry, i, err)
			}
		}

		c.entries = append(c.entries, Entry{Index: i, Name: name, Header: *eh})
		logger.Trace("🔍 Entry", "index", i, "name", name, "offset", eh.DataOffset, "size", eh.Size)
	}

	if err := c.checkLayout(); err != nil {
		return nil, err
	}

	if err := c.verifyEntry(layout.Entry); err != nil {
		logger.Warn("⚠️ Preset table entry fails its checksum", "entry", layout.Entry, "error", err)
	}

	return c, nil
}

func (c *Container) checkLayout() error {
	l := c.layout
	if l.RecordSize <= 0 {
		return fmt.Errorf("%w: record size %d", ErrTableBounds, l.RecordSize)
	}
	if l.Entry < 0 || l.Entry >= len(c.entries) {
		return fmt.Errorf("%w: entry %d of %d", ErrTableBounds, l.Entry, len(c.entries))
	}

	start, end := c.entries[l.Entry].dataRange()
	if l.Offset < 0 || start+l.Offset+l.TableSize() > end {
		return fmt.Errorf("%w: %d bytes at offset 0x%x, entry data holds %d",
			ErrTableBounds, l.TableSize(), l.Offset, end-start)
	}
	return nil
}

// Layout returns the table layout the container was opened with.
func (c *Container) Layout() Layout {
	return c.layout
}

// Entries returns the parsed entry list.
func (c *Container) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Container) slotRange(index int) (int, int, error) {
	if index < 0 || index >= preset.SlotCount {
		return 0, 0, fmt.Errorf("%w: %d not in [0, %d)", preset.ErrSlotRange, index, preset.SlotCount)
	}

	start, _ := c.entries[c.layout.Entry].dataRange()
	start += c.layout.Offset + index*c.layout.RecordSize
	return start, start + c.layout.RecordSize, nil
}

// ReadSlot returns a copy of the raw record bytes of slot index.
func (c *Container) ReadSlot(index int) ([]byte, error) {
	start, end, err := c.slotRange(index)
	if err != nil {
		return nil, err
	}

	out := make([]byte, end-start)
	copy(out, c.data[start:end])
	return out, nil
}

// WriteSlot replaces the raw record bytes of slot index. The entry checksum
// is refreshed on Bytes or Persist.
func (c *Container) WriteSlot(index int, data []byte) error {
	start, end, err := c.slotRange(index)
	if err != nil {
		return err
	}
	if len(data) != end-start {
		return fmt.Errorf("%w: slot %d expects %d bytes, got %d", preset.ErrSchema, index, end-start, len(data))
	}

	if !bytes.Equal(c.data[start:end], data) {
		copy(c.data[start:end], data)
		c.dirty[c.layout.Entry] = true
		c.logger.Trace("✏️ Wrote slot", "slot", index)
	}
	return nil
}

// Modified reports whether any slot changed since the last Persist.
func (c *Container) Modified() bool {
	return len(c.dirty) > 0
}

func (c *Container) reseal() {
	for idx := range c.dirty {
		e := &c.entries[idx]
		ds, de := e.dataRange()
		cs, ce := e.checksumRange()

		sum := md5.Sum(c.data[ds:de])
		copy(c.data[cs:ce], sum[:])

		c.logger.Debug("🔏 Resealed entry", "entry", idx, "name", e.Name)
	}
}

// Bytes returns the serialized container with fresh checksums.
func (c *Container) Bytes() []byte {
	c.reseal()
	out := make([]byte, len(c.data))
	copy(out, c.data)
	return out
}

// Persist writes the container to path. The file is replaced through a
// temporary sibling so a failed write leaves the old save intact.
func (c *Container) Persist(path string) error {
	c.reseal()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file in %s: %v", preset.ErrIO, dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(c.data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: writing %s: %v", preset.ErrIO, tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", preset.ErrIO, tmpPath, err)
	}

	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpPath, info.Mode().Perm())
	} else {
		_ = os.Chmod(tmpPath, 0o644)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: replacing %s: %v", preset.ErrIO, path, err)
	}

	c.dirty = make(map[int]bool)
	c.logger.Info("💾 Saved", "path", path, "size", len(c.data))
	return nil
}

// EntryCheck is the checksum status of one entry.
type EntryCheck struct {
	Entry Entry
	Err   error
}

// OK reports whether the entry checksum matched.
func (ec EntryCheck) OK() bool {
	return ec.Err == nil
}

func (c *Container) verifyEntry(index int) error {
	e := &c.entries[index]
	ds, de := e.dataRange()
	cs, ce := e.checksumRange()

	sum := md5.Sum(c.data[ds:de])
	if !bytes.Equal(sum[:], c.data[cs:ce]) {
		return fmt.Errorf("%w: entry %d (%s): stored %x, computed %x",
			ErrChecksumMismatch, index, e.Name, c.data[cs:ce], sum)
	}
	return nil
}

// Verify checks every entry checksum as stored. The returned error joins
// all mismatches.
func (c *Container) Verify() ([]EntryCheck, error) {
	checks := make([]EntryCheck, 0, len(c.entries))
	var errs []error

	for i := range c.entries {
		err := c.verifyEntry(i)
		checks = append(checks, EntryCheck{Entry: c.entries[i], Err: err})
		if err != nil {
			errs = append(errs, err)
		}
	}

	return checks, errors.Join(errs...)
}
