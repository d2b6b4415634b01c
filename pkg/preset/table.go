package preset

import "fmt"

// SlotCount is the fixed number of preset slots in a save.
const SlotCount = 15

// SlotReader reads raw record bytes from a save container.
type SlotReader interface {
	ReadSlot(index int) ([]byte, error)
}

// SlotWriter writes raw record bytes into a save container.
type SlotWriter interface {
	WriteSlot(index int, data []byte) error
}

// Slot pairs a 0-based slot index with its record.
type Slot struct {
	Index  int
	Record *Record
}

// Table holds the preset slots of one save. No slot is ever nil: an unused
// slot holds an empty record.
type Table struct {
	schema *Schema
	slots  [SlotCount]*Record
}

// NewTable returns a table whose slots are all empty.
func NewTable(schema *Schema) *Table {
	t := &Table{schema: schema}
	for i := range t.slots {
		t.slots[i] = NewRecord(schema)
	}
	return t
}

// LoadTable decodes every slot from a container.
func LoadTable(schema *Schema, src SlotReader) (*Table, error) {
	t := &Table{schema: schema}
	for i := range t.slots {
		raw, err := src.ReadSlot(i)
		if err != nil {
			return nil, fmt.Errorf("reading slot %d: %w", i, err)
		}
		rec, err := RecordFromBytes(schema, raw)
		if err != nil {
			return nil, fmt.Errorf("decoding slot %d: %w", i, err)
		}
		t.slots[i] = rec
	}
	return t, nil
}

// Store writes every slot back to a container.
func (t *Table) Store(dst SlotWriter) error {
	for i, rec := range t.slots {
		if err := dst.WriteSlot(i, rec.Bytes()); err != nil {
			return fmt.Errorf("writing slot %d: %w", i, err)
		}
	}
	return nil
}

// Schema returns the layout shared by all slots.
func (t *Table) Schema() *Schema {
	return t.schema
}

func checkSlot(index int) error {
	if index < 0 || index >= SlotCount {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrSlotRange, index, SlotCount)
	}
	return nil
}

// Slot returns the record at a 0-based index. The record is owned by the
// table; use Clone before handing it to another table.
func (t *Table) Slot(index int) (*Record, error) {
	if err := checkSlot(index); err != nil {
		return nil, err
	}
	return t.slots[index], nil
}

// ReplaceSlot stores a copy of rec at index.
func (t *Table) ReplaceSlot(index int, rec *Record) error {
	if err := checkSlot(index); err != nil {
		return err
	}
	if rec == nil || !rec.schema.Equal(t.schema) {
		return fmt.Errorf("%w: record does not fit table layout", ErrSchema)
	}
	t.slots[index] = &Record{schema: t.schema, data: rec.Bytes()}
	return nil
}

// ClearSlot resets a slot to the empty pattern.
func (t *Table) ClearSlot(index int) error {
	if err := checkSlot(index); err != nil {
		return err
	}
	t.slots[index] = NewRecord(t.schema)
	return nil
}

// ActiveSlots lists the non-empty slots in ascending index order.
func (t *Table) ActiveSlots() []Slot {
	var active []Slot
	for i, rec := range t.slots {
		if !rec.IsEmpty() {
			active = append(active, Slot{Index: i, Record: rec})
		}
	}
	return active
}
