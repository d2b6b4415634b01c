package savefile

import (
	"crypto/md5"
	"fmt"
)

// dataAlignment is the alignment of entry payloads written by Build.
const dataAlignment = 0x10

// BuildEntry is the input of Build: a named entry and its data, checksum
// excluded.
type BuildEntry struct {
	Name string
	Data []byte
}

// Build assembles a container: header, entry headers, UTF-16 names, then
// the payloads, each an MD5 followed by the data.
func Build(entries []BuildEntry) ([]byte, error) {
	header := &Header{
		EntryCount:  uint32(len(entries)),
		TableOffset: HeaderSize,
		Version:     DefaultVersion,
		EntrySize:   EntryHeaderSize,
	}
	copy(header.Magic[:], Magic)

	names := make([][]byte, len(entries))
	offset := HeaderSize + len(entries)*EntryHeaderSize
	nameOffsets := make([]int, len(entries))
	for i, e := range entries {
		b, err := encodeName(e.Name)
		if err != nil {
			return nil, fmt.Errorf("encoding entry name %q: %w", e.Name, err)
		}
		names[i] = b
		nameOffsets[i] = offset
		offset += len(b)
	}

	dataOffsets := make([]int, len(entries))
	for i, e := range entries {
		offset = alignOffset(offset, dataAlignment)
		dataOffsets[i] = offset
		offset += ChecksumSize + len(e.Data)
	}

	buf := make([]byte, offset)
	copy(buf, header.Pack())

	for i, e := range entries {
		eh := &EntryHeader{
			Flags:      EntryFlags,
			Size:       uint64(ChecksumSize + len(e.Data)),
			DataOffset: uint32(dataOffsets[i]),
			NameOffset: uint32(nameOffsets[i]),
		}
		copy(buf[HeaderSize+i*EntryHeaderSize:], eh.Pack())
		copy(buf[nameOffsets[i]:], names[i])

		sum := md5.Sum(e.Data)
		copy(buf[dataOffsets[i]:], sum[:])
		copy(buf[dataOffsets[i]+ChecksumSize:], e.Data)
	}

	return buf, nil
}

// alignOffset rounds offset up to a multiple of alignment
func alignOffset(offset, alignment int) int {
	if rem := offset % alignment; rem != 0 {
		return offset + alignment - rem
	}
	return offset
}

// EntryName returns the conventional name of the user data entry at index.
func EntryName(index int) string {
	return fmt.Sprintf("USER_DATA%03d", index)
}

// NewSaveImage builds a blank container whose table entry can hold the
// preset table described by layout. All slots start empty.
func NewSaveImage(layout Layout, padding int) ([]byte, error) {
	if layout.Entry < 0 || layout.Offset < 0 || layout.RecordSize <= 0 {
		return nil, fmt.Errorf("%w: entry %d offset %d record size %d",
			ErrTableBounds, layout.Entry, layout.Offset, layout.RecordSize)
	}

	entries := make([]BuildEntry, layout.Entry+1)
	for i := range entries {
		entries[i] = BuildEntry{Name: EntryName(i), Data: make([]byte, 0x20)}
	}
	entries[layout.Entry].Data = make([]byte, layout.Offset+layout.TableSize()+padding)

	return Build(entries)
}
