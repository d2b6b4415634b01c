package savefile

import (
	"crypto/md5"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/Hapfel1/character-presets-tool/pkg/preset"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  "savefile_test",
		Level: hclog.Trace,
	})
}

func testLayout() Layout {
	return Layout{Entry: 10, Offset: 0x24, RecordSize: preset.LayoutV1.Size()}
}

// writeSave builds a blank save under t.TempDir and returns its path.
func writeSave(t *testing.T, layout Layout) string {
	t.Helper()

	image, err := NewSaveImage(layout, 0x40)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ER0000.sl2")
	require.NoError(t, os.WriteFile(path, image, 0o600))
	return path
}

func samplePreset(t *testing.T) *preset.Record {
	t.Helper()

	rec := preset.NewRecord(preset.LayoutV1)
	require.NoError(t, rec.Apply(preset.Values{"face_model": 12, "hair_model": 5}))
	require.NoError(t, rec.SetColor("skin_color", preset.RGB{R: 200, G: 150, B: 120}))
	return rec
}

func TestBuildAndParse(t *testing.T) {
	image, err := Build([]BuildEntry{
		{Name: "USER_DATA000", Data: []byte("hello")},
		{Name: "USER_DATA001", Data: make([]byte, 300)},
	})
	require.NoError(t, err)

	c, err := Parse(image, Layout{Entry: 1, Offset: 0, RecordSize: 20}, testLogger())
	require.NoError(t, err)

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "USER_DATA000", entries[0].Name)
	assert.Equal(t, "USER_DATA001", entries[1].Name)
	assert.EqualValues(t, ChecksumSize+5, entries[0].Header.Size)
	assert.Zero(t, entries[1].Header.DataOffset%dataAlignment)

	ds, de := entries[0].dataRange()
	assert.Equal(t, "hello", string(image[ds:de]))

	_, err = c.Verify()
	assert.NoError(t, err)
}

func TestHeaderPackUnpack(t *testing.T) {
	h := &Header{EntryCount: 11, TableOffset: HeaderSize, Version: DefaultVersion, EntrySize: EntryHeaderSize}
	copy(h.Magic[:], Magic)

	raw := h.Pack()
	require.Len(t, raw, HeaderSize)
	assert.Equal(t, []byte("BND4"), raw[0:4])
	assert.Equal(t, byte(11), raw[0x0C])

	back, err := UnpackHeader(raw)
	require.NoError(t, err)
	assert.Equal(t, h, back)

	eh := &EntryHeader{Flags: EntryFlags, Size: 0x1234, DataOffset: 0x400, NameOffset: 0x1A0}
	ehBack, err := UnpackEntryHeader(eh.Pack())
	require.NoError(t, err)
	assert.Equal(t, eh, ehBack)

	_, err = UnpackEntryHeader(make([]byte, 4))
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestParseRejectsBrokenContainers(t *testing.T) {
	layout := testLayout()
	good, err := NewSaveImage(layout, 0)
	require.NoError(t, err)

	testCases := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{
			name:   "truncated header",
			mutate: func(b []byte) []byte { return b[:HeaderSize-1] },
			want:   ErrInvalidMagic,
		},
		{
			name:   "wrong magic",
			mutate: func(b []byte) []byte { b[0] = 'X'; return b },
			want:   ErrInvalidMagic,
		},
		{
			name: "entry table overruns file",
			mutate: func(b []byte) []byte {
				b[0x0C] = 0xFF
				b[0x0D] = 0xFF
				return b
			},
			want: ErrInvalidEntry,
		},
		{
			name: "entry data overruns file",
			mutate: func(b []byte) []byte {
				return b[:len(b)-1]
			},
			want: ErrInvalidEntry,
		},
		{
			name: "entry table offset past end of file",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint64(b[0x10:0x18], ^uint64(0)-0x10)
				return b
			},
			want: ErrInvalidEntry,
		},
		{
			name: "entry size wraps around",
			mutate: func(b []byte) []byte {
				eh := b[HeaderSize+EntryHeaderSize : HeaderSize+2*EntryHeaderSize]
				dataOffset := uint64(binary.LittleEndian.Uint32(eh[0x10:0x14]))
				binary.LittleEndian.PutUint64(eh[0x08:0x10], ^uint64(0)-dataOffset+0x20)
				return b
			},
			want: ErrInvalidEntry,
		},
		{
			name: "entry size larger than file",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint64(b[HeaderSize+0x08:HeaderSize+0x10], uint64(len(b))+1)
				return b
			},
			want: ErrInvalidEntry,
		},
		{
			name: "odd entry header size",
			mutate: func(b []byte) []byte {
				b[0x20] = 0x30
				return b
			},
			want: ErrInvalidEntry,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			image := append([]byte(nil), good...)
			_, err := Parse(tc.mutate(image), layout, testLogger())
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseRejectsTableOutsideEntry(t *testing.T) {
	image, err := NewSaveImage(testLayout(), 0)
	require.NoError(t, err)

	testCases := map[string]Layout{
		"entry past end":      {Entry: 11, Offset: 0, RecordSize: preset.LayoutV1.Size()},
		"negative entry":      {Entry: -1, Offset: 0, RecordSize: preset.LayoutV1.Size()},
		"offset past table":   {Entry: 10, Offset: 0x25, RecordSize: preset.LayoutV1.Size()},
		"negative offset":     {Entry: 10, Offset: -1, RecordSize: preset.LayoutV1.Size()},
		"zero record size":    {Entry: 10, Offset: 0, RecordSize: 0},
		"table in tiny entry": {Entry: 3, Offset: 0, RecordSize: preset.LayoutV1.Size()},
	}
	for name, layout := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(append([]byte(nil), image...), layout, nil)
			assert.ErrorIs(t, err, ErrTableBounds)
		})
	}
}

func TestSlotReadWrite(t *testing.T) {
	path := writeSave(t, testLayout())

	c, err := Open(path, testLayout(), testLogger())
	require.NoError(t, err)
	assert.False(t, c.Modified())

	rec := samplePreset(t)
	require.NoError(t, c.WriteSlot(14, rec.Bytes()))
	assert.True(t, c.Modified())

	got, err := c.ReadSlot(14)
	require.NoError(t, err)
	assert.Equal(t, rec.Bytes(), got)

	// neighbouring slots untouched
	neighbour, err := c.ReadSlot(13)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, preset.LayoutV1.Size()), neighbour)

	_, err = c.ReadSlot(preset.SlotCount)
	assert.ErrorIs(t, err, preset.ErrSlotRange)
	assert.ErrorIs(t, c.WriteSlot(-1, rec.Bytes()), preset.ErrSlotRange)
	assert.ErrorIs(t, c.WriteSlot(0, []byte{1}), preset.ErrSchema)
}

func TestWriteSlotThenVerifyNeedsReseal(t *testing.T) {
	c, err := Open(writeSave(t, testLayout()), testLayout(), testLogger())
	require.NoError(t, err)

	require.NoError(t, c.WriteSlot(0, samplePreset(t).Bytes()))

	// stored checksum is stale until the container is serialized
	_, err = c.Verify()
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	image := c.Bytes()
	c2, err := Parse(image, testLayout(), testLogger())
	require.NoError(t, err)
	_, err = c2.Verify()
	assert.NoError(t, err)
}

func TestPersistRoundTrip(t *testing.T) {
	layout := testLayout()
	path := writeSave(t, layout)

	c, err := Open(path, layout, testLogger())
	require.NoError(t, err)

	table, err := preset.LoadTable(preset.LayoutV1, c)
	require.NoError(t, err)
	require.NoError(t, table.ReplaceSlot(4, samplePreset(t)))
	require.NoError(t, table.Store(c))
	require.NoError(t, c.Persist(path))
	assert.False(t, c.Modified())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := Open(path, layout, testLogger())
	require.NoError(t, err)
	checks, err := reopened.Verify()
	require.NoError(t, err)
	for _, check := range checks {
		assert.True(t, check.OK(), "entry %d", check.Entry.Index)
	}

	reloaded, err := preset.LoadTable(preset.LayoutV1, reopened)
	require.NoError(t, err)
	active := reloaded.ActiveSlots()
	require.Len(t, active, 1)
	assert.Equal(t, 4, active[0].Index)
	v, err := active[0].Record.Field("face_model")
	require.NoError(t, err)
	assert.Equal(t, 12, v)

	// checksum is the MD5 of the table entry data
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	e := reopened.Entries()[layout.Entry]
	ds, de := e.dataRange()
	sum := md5.Sum(raw[ds:de])
	assert.Equal(t, sum[:], raw[e.Header.DataOffset:int(e.Header.DataOffset)+ChecksumSize])
}

func TestPersistFailure(t *testing.T) {
	c, err := Open(writeSave(t, testLayout()), testLayout(), nil)
	require.NoError(t, err)

	err = c.Persist(filepath.Join(t.TempDir(), "missing", "ER0000.sl2"))
	assert.ErrorIs(t, err, preset.ErrIO)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.sl2"), testLayout(), nil)
	assert.ErrorIs(t, err, preset.ErrIO)
}

func TestVerifyReportsCorruption(t *testing.T) {
	image, err := NewSaveImage(testLayout(), 0)
	require.NoError(t, err)

	c, err := Parse(image, testLayout(), nil)
	require.NoError(t, err)
	e := c.Entries()[2]
	image[e.Header.DataOffset+ChecksumSize] ^= 0xFF

	checks, err := c.Verify()
	assert.ErrorIs(t, err, ErrChecksumMismatch)
	require.Len(t, checks, 11)
	for _, check := range checks {
		assert.Equal(t, check.Entry.Index != 2, check.OK(), "entry %d", check.Entry.Index)
	}
}

func TestCreateBackup(t *testing.T) {
	path := writeSave(t, testLayout())
	original, err := os.ReadFile(path)
	require.NoError(t, err)

	backup, err := CreateBackup(path, "")
	require.NoError(t, err)
	assert.Equal(t, path+DefaultBackupSuffix, backup)

	copied, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, original, copied)

	custom, err := CreateBackup(path, ".bak")
	require.NoError(t, err)
	assert.Equal(t, path+".bak", custom)

	_, err = CreateBackup(filepath.Join(t.TempDir(), "nope.sl2"), "")
	assert.ErrorIs(t, err, preset.ErrIO)
}

func TestEntryName(t *testing.T) {
	assert.Equal(t, "USER_DATA000", EntryName(0))
	assert.Equal(t, "USER_DATA010", EntryName(10))
}
