package preset

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// Engine copies, exports and imports preset records. It never persists
// anything: writing the mutated table back to a save is the caller's job and
// must only happen after an operation returned nil.
type Engine struct {
	logger hclog.Logger
}

// NewEngine creates an engine. A nil logger discards output.
func NewEngine(logger hclog.Logger) *Engine {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Engine{logger: logger}
}

// Copy clones the record at src[srcIndex] into dst[dstIndex]. src and dst
// may be the same table. Copying an empty slot fails with ErrEmptySource and
// leaves dst untouched.
func (e *Engine) Copy(src *Table, srcIndex int, dst *Table, dstIndex int) error {
	if err := checkSlot(srcIndex); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := checkSlot(dstIndex); err != nil {
		return fmt.Errorf("destination: %w", err)
	}

	rec := src.slots[srcIndex]
	if rec.IsEmpty() {
		e.logger.Warn("🚫 Refusing to copy empty slot", "slot", srcIndex)
		return fmt.Errorf("%w: slot %d", ErrEmptySource, srcIndex)
	}

	if src == dst && srcIndex == dstIndex {
		e.logger.Debug("Copy onto itself, nothing to do", "slot", srcIndex)
		return nil
	}

	if err := dst.ReplaceSlot(dstIndex, rec.Clone()); err != nil {
		return err
	}

	e.logger.Info("🧬 Copied preset", "from", srcIndex, "to", dstIndex, "body_type", rec.BodyType())
	return nil
}

// Export maps the active slots of t into a document in ascending slot order.
func (e *Engine) Export(t *Table) *Document {
	doc := &Document{Format: DocumentFormat, Presets: []Entry{}}

	keys := t.schema.Keys()
	for _, slot := range t.ActiveSlots() {
		values := slot.Record.Values()
		data := make(FieldMap, 0, len(keys))
		for _, key := range keys {
			data = append(data, FieldValue{Key: key, Value: values[key]})
		}
		doc.Presets = append(doc.Presets, Entry{OriginalSlot: slot.Index, Data: data})
	}

	e.logger.Debug("📤 Exported presets", "count", len(doc.Presets))
	return doc
}

// Import decodes doc.Presets[entryIndex] and writes it into dst[dstIndex].
// The destination may be empty or occupied.
func (e *Engine) Import(doc *Document, entryIndex int, dst *Table, dstIndex int) error {
	if doc == nil || entryIndex < 0 || entryIndex >= len(doc.Presets) {
		n := 0
		if doc != nil {
			n = len(doc.Presets)
		}
		return fmt.Errorf("%w: %d not in [0, %d)", ErrEntryRange, entryIndex, n)
	}
	if dstIndex < 0 || dstIndex >= SlotCount {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrDestRange, dstIndex, SlotCount)
	}

	entry := doc.Presets[entryIndex]
	values, err := entry.Data.Values()
	if err != nil {
		return fmt.Errorf("entry %d: %w", entryIndex, err)
	}
	rec, err := RecordFromValues(dst.schema, values)
	if err != nil {
		return fmt.Errorf("entry %d: %w", entryIndex, err)
	}

	if err := dst.ReplaceSlot(dstIndex, rec); err != nil {
		return err
	}

	e.logger.Info("📥 Imported preset",
		"entry", entryIndex,
		"original_slot", entry.OriginalSlot,
		"to", dstIndex,
	)
	return nil
}

// Clear empties a slot. This is the only way to overwrite a slot with the
// unused pattern; Copy refuses empty sources.
func (e *Engine) Clear(t *Table, index int) error {
	if err := t.ClearSlot(index); err != nil {
		return err
	}
	e.logger.Info("🧹 Cleared slot", "slot", index)
	return nil
}
