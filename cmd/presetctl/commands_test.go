package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Hapfel1/character-presets-tool/internal/config"
	"github.com/Hapfel1/character-presets-tool/internal/savefile"
	"github.com/Hapfel1/character-presets-tool/pkg/interchange"
	"github.com/Hapfel1/character-presets-tool/pkg/preset"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()

	cfg, err := config.LoadFrom(map[string]string{
		"PRESETCTL_TABLE_OFFSET": "16",
		"NO_COLOR":               "1",
	})
	require.NoError(t, err)
	return cfg
}

// runCLI executes presetctl with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	var out, errOut bytes.Buffer
	root := newRootCmd(testConfig(t), &out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// newSave writes a save whose slots hold the given records.
func newSave(t *testing.T, dir, name string, slots map[int]*preset.Record) string {
	t.Helper()

	layout := testConfig(t).TableLayout(preset.LayoutV1.Size())
	image, err := savefile.NewSaveImage(layout, 0x20)
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, image, 0o644))

	c, err := savefile.Open(path, layout, nil)
	require.NoError(t, err)
	for index, rec := range slots {
		require.NoError(t, c.WriteSlot(index, rec.Bytes()))
	}
	require.NoError(t, c.Persist(path))
	return path
}

func loadTable(t *testing.T, path string) *preset.Table {
	t.Helper()

	layout := testConfig(t).TableLayout(preset.LayoutV1.Size())
	c, err := savefile.Open(path, layout, nil)
	require.NoError(t, err)
	table, err := preset.LoadTable(preset.LayoutV1, c)
	require.NoError(t, err)
	return table
}

func activeIndexes(table *preset.Table) []int {
	var out []int
	for _, s := range table.ActiveSlots() {
		out = append(out, s.Index)
	}
	return out
}

func samplePreset(t *testing.T, face int) *preset.Record {
	t.Helper()

	rec := preset.NewRecord(preset.LayoutV1)
	require.NoError(t, rec.Apply(preset.Values{
		"face_model":   face,
		"hair_model":   5,
		"apparent_age": 33,
		"body_type":    1,
		"lip_stick":    0,
		"eye_liner":    40,
	}))
	require.NoError(t, rec.SetColor("skin_color", preset.RGB{R: 200, G: 150, B: 120}))
	require.NoError(t, rec.SetColor("eye_liner_color", preset.RGB{R: 10, G: 20, B: 30}))
	require.NoError(t, rec.SetColor("lip_stick_color", preset.RGB{R: 99, G: 98, B: 97}))
	return rec
}

func TestVersionFlag(t *testing.T) {
	out, err := runCLI(t, "-V")
	require.NoError(t, err)
	assert.Contains(t, out, "presetctl "+version)
	assert.Contains(t, out, "Built: ")
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	path := newSave(t, dir, "ER0000.sl2", map[int]*preset.Record{
		0: samplePreset(t, 12),
		6: samplePreset(t, 44),
	})

	out, err := runCLI(t, "list", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Character Presets (2/15 slots used):")
	assert.Contains(t, out, "Type B")
	assert.Contains(t, out, "RGB(200, 150, 120)")
	assert.Contains(t, out, "44")
	assert.Less(t, strings.Index(out, " 1 "), strings.Index(out, " 7 "))

	empty := newSave(t, dir, "ER0001.sl2", nil)
	out, err = runCLI(t, "list", empty)
	require.NoError(t, err)
	assert.Contains(t, out, "(0/15 slots used)")
	assert.Contains(t, out, "No presets found in this save file")
}

func TestInfo(t *testing.T) {
	path := newSave(t, t.TempDir(), "ER0000.sl2", map[int]*preset.Record{2: samplePreset(t, 12)})

	out, err := runCLI(t, "info", path, "3")
	require.NoError(t, err)
	assert.Contains(t, out, "PRESET SLOT 3")
	assert.Contains(t, out, "Body Type: Type B")
	assert.Contains(t, out, "MODELS:")
	assert.Contains(t, out, "FACIAL STRUCTURE:")
	assert.Contains(t, out, "TATTOO/MARK:")
	assert.Contains(t, out, "Face Model:")
	assert.Contains(t, out, "RGB(200, 150, 120)")
	assert.Contains(t, out, "Eye Liner Color:")
	assert.NotContains(t, out, "Lip Stick Color:", "colour shown with zero intensity")
	assert.NotContains(t, out, "IDENTITY:")

	out, err = runCLI(t, "info", path, "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Slot 4 is empty")
}

func TestSlotArgumentValidation(t *testing.T) {
	path := newSave(t, t.TempDir(), "ER0000.sl2", map[int]*preset.Record{0: samplePreset(t, 12)})

	testCases := []struct {
		name string
		args []string
		want error
	}{
		{name: "info zero", args: []string{"info", path, "0"}, want: preset.ErrSlotRange},
		{name: "info sixteen", args: []string{"info", path, "16"}, want: preset.ErrSlotRange},
		{name: "copy source", args: []string{"copy", path, "0", path, "2"}, want: preset.ErrSlotRange},
		{name: "copy destination", args: []string{"copy", path, "1", path, "16"}, want: preset.ErrSlotRange},
		{name: "clear", args: []string{"clear", path, "99"}, want: preset.ErrSlotRange},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runCLI(t, tc.args...)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := runCLI(t, "info", path, "one")
	assert.ErrorContains(t, err, "must be an integer")

	_, err = runCLI(t, "info", path)
	assert.Error(t, err)
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	src := newSave(t, dir, "ER0000.sl2", map[int]*preset.Record{0: samplePreset(t, 12)})
	dst := newSave(t, dir, "ER0001.sl2", nil)
	doc := filepath.Join(dir, "presets.json.gz")

	out, err := runCLI(t, "export", src, doc)
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully exported 1 preset(s)")

	exported, err := interchange.ReadFile(doc, nil)
	require.NoError(t, err)
	require.Equal(t, 1, exported.Len())
	assert.Equal(t, 0, exported.Presets[0].OriginalSlot)
	assert.Equal(t, "ER0000.sl2", exported.Source)
	_, err = time.Parse(time.RFC3339, exported.ExportedAt)
	assert.NoError(t, err)

	out, err = runCLI(t, "import", doc, "1", dst, "5")
	require.NoError(t, err)
	assert.Contains(t, out, "into slot 5")
	assert.Contains(t, out, "Creating backup: "+dst+".backup")

	table := loadTable(t, dst)
	assert.Equal(t, []int{4}, activeIndexes(table))
	rec, err := table.Slot(4)
	require.NoError(t, err)
	v, err := rec.Field("face_model")
	require.NoError(t, err)
	assert.Equal(t, 12, v)

	// backup holds the pre-import file
	assert.Empty(t, activeIndexes(loadTable(t, dst+".backup")))
}

func TestExportEmptySave(t *testing.T) {
	dir := t.TempDir()
	path := newSave(t, dir, "ER0000.sl2", nil)
	doc := filepath.Join(dir, "presets.json")

	out, err := runCLI(t, "export", path, doc)
	require.NoError(t, err)
	assert.Contains(t, out, "No active presets found to export")
	_, statErr := os.Stat(doc)
	assert.True(t, os.IsNotExist(statErr))
}

func TestImportErrorsLeaveSaveUntouched(t *testing.T) {
	dir := t.TempDir()
	src := newSave(t, dir, "ER0000.sl2", map[int]*preset.Record{0: samplePreset(t, 12)})
	dst := newSave(t, dir, "ER0001.sl2", nil)
	doc := filepath.Join(dir, "presets.json")

	_, err := runCLI(t, "export", src, doc)
	require.NoError(t, err)
	before, err := os.ReadFile(dst)
	require.NoError(t, err)

	_, err = runCLI(t, "import", doc, "2", dst, "1")
	assert.ErrorIs(t, err, preset.ErrEntryRange)
	_, err = runCLI(t, "import", doc, "1", dst, "16")
	assert.ErrorIs(t, err, preset.ErrDestRange)

	after, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	_, statErr := os.Stat(dst + ".backup")
	assert.True(t, os.IsNotExist(statErr), "backup created for failed import")
}

func TestCopyBetweenSaves(t *testing.T) {
	dir := t.TempDir()
	src := newSave(t, dir, "ER0000.sl2", map[int]*preset.Record{0: samplePreset(t, 12)})
	dst := newSave(t, dir, "ER0001.sl2", map[int]*preset.Record{1: samplePreset(t, 7)})

	out, err := runCLI(t, "copy", src, "1", dst, "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Copied preset from slot 1 to slot 2")

	table := loadTable(t, dst)
	assert.Equal(t, []int{1}, activeIndexes(table))
	rec, _ := table.Slot(1)
	v, _ := rec.Field("face_model")
	assert.Equal(t, 12, v)

	// source untouched, no backup of it
	assert.Equal(t, []int{0}, activeIndexes(loadTable(t, src)))
	_, statErr := os.Stat(src + ".backup")
	assert.True(t, os.IsNotExist(statErr))
}

func TestCopyWithinSave(t *testing.T) {
	path := newSave(t, t.TempDir(), "ER0000.sl2", map[int]*preset.Record{0: samplePreset(t, 12)})

	_, err := runCLI(t, "copy", path, "1", path, "15")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 14}, activeIndexes(loadTable(t, path)))
}

func TestCopyEmptySourceFails(t *testing.T) {
	dir := t.TempDir()
	src := newSave(t, dir, "ER0000.sl2", nil)
	dst := newSave(t, dir, "ER0001.sl2", map[int]*preset.Record{1: samplePreset(t, 7)})
	before, err := os.ReadFile(dst)
	require.NoError(t, err)

	_, err = runCLI(t, "copy", src, "3", dst, "2")
	assert.ErrorIs(t, err, preset.ErrEmptySource)

	after, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	_, statErr := os.Stat(dst + ".backup")
	assert.True(t, os.IsNotExist(statErr))
}

func TestClear(t *testing.T) {
	path := newSave(t, t.TempDir(), "ER0000.sl2", map[int]*preset.Record{
		0: samplePreset(t, 12),
		3: samplePreset(t, 13),
	})

	out, err := runCLI(t, "clear", path, "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared slot 4")
	assert.Equal(t, []int{0}, activeIndexes(loadTable(t, path)))
}

func TestVerify(t *testing.T) {
	path := newSave(t, t.TempDir(), "ER0000.sl2", nil)

	out, err := runCLI(t, "verify", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✅ USER_DATA010")
	assert.Contains(t, out, "All 11 entries verified")

	// flip a byte inside the first entry's data
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	c, err := savefile.Parse(append([]byte(nil), raw...), testConfig(t).TableLayout(preset.LayoutV1.Size()), nil)
	require.NoError(t, err)
	first := c.Entries()[0]
	raw[int(first.Header.DataOffset)+savefile.ChecksumSize] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	out, err = runCLI(t, "verify", path)
	assert.ErrorIs(t, err, savefile.ErrChecksumMismatch)
	assert.Contains(t, out, "❌ USER_DATA000")
}

func TestSaves(t *testing.T) {
	root := t.TempDir()
	newSave(t, root, "ER0000.sl2", nil)

	out, err := runCLI(t, "saves", root)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(root, "ER0000.sl2"))

	out, err = runCLI(t, "saves", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No save files found")
}

func TestInvalidLogLevelFlag(t *testing.T) {
	_, err := runCLI(t, "--log-level", "shout", "saves", t.TempDir())
	assert.ErrorContains(t, err, "invalid log level")
}

func TestParseSlot(t *testing.T) {
	index, err := parseSlot("1", "slot", preset.ErrSlotRange)
	require.NoError(t, err)
	assert.Equal(t, 0, index)

	index, err = parseSlot("15", "slot", preset.ErrSlotRange)
	require.NoError(t, err)
	assert.Equal(t, 14, index)

	_, err = parseSlot("16", "slot", preset.ErrDestRange)
	assert.ErrorIs(t, err, preset.ErrDestRange)
}

func TestImportFromEmptyDocument(t *testing.T) {
	dir := t.TempDir()
	dst := newSave(t, dir, "ER0000.sl2", nil)
	doc := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{"presets": []}`), 0o644))

	_, err := runCLI(t, "import", doc, "1", dst, "1")
	assert.ErrorIs(t, err, preset.ErrEntryRange)
	assert.ErrorContains(t, err, "document has no presets")
}

func TestParseEntry(t *testing.T) {
	index, err := parseEntry("2", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, index)

	_, err = parseEntry("4", 3)
	assert.ErrorIs(t, err, preset.ErrEntryRange)
	assert.ErrorContains(t, err, "entry must be 1-3")

	_, err = parseEntry("1", 0)
	assert.ErrorIs(t, err, preset.ErrEntryRange)
	assert.ErrorContains(t, err, "document has no presets")
}
