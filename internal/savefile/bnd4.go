package savefile

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

var (
	// Magic opens every container file
	Magic = []byte("BND4")

	// DefaultVersion is written by Build; Parse keeps whatever it finds
	DefaultVersion = [8]byte{'0', '0', '0', '0', '0', '0', '0', '1'}
)

const (
	// Fixed sizes of the container format
	HeaderSize      = 0x40
	EntryHeaderSize = 0x20
	ChecksumSize    = 16 // MD5 prefix of every entry payload

	// EntryFlags is the flag word Build stamps on each entry header
	EntryFlags = 0x50
)

// Header is the 64-byte container header.
type Header struct {
	Magic       [4]byte
	Reserved04  [8]byte
	EntryCount  uint32
	TableOffset uint64 // offset of the first entry header
	Version     [8]byte
	EntrySize   uint64 // size of one entry header
	Reserved28  [24]byte
}

// Pack serializes the header to exactly HeaderSize bytes
func (h *Header) Pack() []byte {
	buf := make([]byte, HeaderSize)

	copy(buf[0x00:0x04], h.Magic[:])
	copy(buf[0x04:0x0C], h.Reserved04[:])
	binary.LittleEndian.PutUint32(buf[0x0C:0x10], h.EntryCount)
	binary.LittleEndian.PutUint64(buf[0x10:0x18], h.TableOffset)
	copy(buf[0x18:0x20], h.Version[:])
	binary.LittleEndian.PutUint64(buf[0x20:0x28], h.EntrySize)
	copy(buf[0x28:0x40], h.Reserved28[:])

	return buf
}

// UnpackHeader deserializes and checks a container header
func UnpackHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: file is %d bytes, header needs %d", ErrInvalidMagic, len(data), HeaderSize)
	}
	if !bytes.Equal(data[0:4], Magic) {
		return nil, fmt.Errorf("%w: got % x", ErrInvalidMagic, data[0:4])
	}

	h := &Header{
		EntryCount:  binary.LittleEndian.Uint32(data[0x0C:0x10]),
		TableOffset: binary.LittleEndian.Uint64(data[0x10:0x18]),
		EntrySize:   binary.LittleEndian.Uint64(data[0x20:0x28]),
	}
	copy(h.Magic[:], data[0x00:0x04])
	copy(h.Reserved04[:], data[0x04:0x0C])
	copy(h.Version[:], data[0x18:0x20])
	copy(h.Reserved28[:], data[0x28:0x40])

	// older writers leave the layout words zeroed
	if h.TableOffset == 0 {
		h.TableOffset = HeaderSize
	}
	if h.EntrySize == 0 {
		h.EntrySize = EntryHeaderSize
	}
	if h.EntrySize != EntryHeaderSize {
		return nil, fmt.Errorf("%w: entry header size 0x%x", ErrInvalidEntry, h.EntrySize)
	}

	return h, nil
}

// EntryHeader is the 32-byte descriptor of one container entry.
type EntryHeader struct {
	Flags      uint64
	Size       uint64 // payload size, checksum included
	DataOffset uint32
	NameOffset uint32
	Footer     uint64
}

// Pack serializes the entry header to exactly EntryHeaderSize bytes
func (e *EntryHeader) Pack() []byte {
	buf := make([]byte, EntryHeaderSize)

	binary.LittleEndian.PutUint64(buf[0x00:0x08], e.Flags)
	binary.LittleEndian.PutUint64(buf[0x08:0x10], e.Size)
	binary.LittleEndian.PutUint32(buf[0x10:0x14], e.DataOffset)
	binary.LittleEndian.PutUint32(buf[0x14:0x18], e.NameOffset)
	binary.LittleEndian.PutUint64(buf[0x18:0x20], e.Footer)

	return buf
}

// UnpackEntryHeader deserializes an entry header from EntryHeaderSize bytes
func UnpackEntryHeader(data []byte) (*EntryHeader, error) {
	if len(data) != EntryHeaderSize {
		return nil, fmt.Errorf("%w: header is %d bytes, want %d", ErrInvalidEntry, len(data), EntryHeaderSize)
	}

	return &EntryHeader{
		Flags:      binary.LittleEndian.Uint64(data[0x00:0x08]),
		Size:       binary.LittleEndian.Uint64(data[0x08:0x10]),
		DataOffset: binary.LittleEndian.Uint32(data[0x10:0x14]),
		NameOffset: binary.LittleEndian.Uint32(data[0x14:0x18]),
		Footer:     binary.LittleEndian.Uint64(data[0x18:0x20]),
	}, nil
}

// encodeName encodes an entry name as NUL-terminated UTF-16LE.
func encodeName(name string) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	b, err := enc.Bytes([]byte(name))
	if err != nil {
		return nil, err
	}
	return append(b, 0, 0), nil
}

// decodeName reads a NUL-terminated UTF-16LE name starting at data[0].
func decodeName(data []byte) (string, error) {
	end := -1
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			end = i
			break
		}
	}
	if end < 0 {
		return "", fmt.Errorf("unterminated entry name")
	}

	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	b, err := dec.Bytes(data[:end])
	if err != nil {
		return "", err
	}
	return string(b), nil
}
