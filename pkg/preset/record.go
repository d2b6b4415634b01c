package preset

import (
	"bytes"
	"fmt"
)

// BodyType is the body archetype a preset was sculpted for.
type BodyType uint8

const (
	BodyTypeA BodyType = 0
	BodyTypeB BodyType = 1
)

func (b BodyType) String() string {
	if b == BodyTypeB {
		return "Type B"
	}
	return "Type A"
}

// Record is one preset slot's field buffer.
type Record struct {
	schema *Schema
	data   []byte
}

// NewRecord returns a record holding the empty-slot pattern.
func NewRecord(schema *Schema) *Record {
	return &Record{schema: schema, data: make([]byte, schema.Size())}
}

// RecordFromBytes copies raw into a new record.
func RecordFromBytes(schema *Schema, raw []byte) (*Record, error) {
	if len(raw) != schema.Size() {
		return nil, fmt.Errorf("%w: record is %d bytes, want %d", ErrSchema, len(raw), schema.Size())
	}
	return &Record{schema: schema, data: bytes.Clone(raw)}, nil
}

// RecordFromValues encodes a complete value map into a new record.
func RecordFromValues(schema *Schema, values Values) (*Record, error) {
	data, err := schema.Encode(values)
	if err != nil {
		return nil, err
	}
	return &Record{schema: schema, data: data}, nil
}

// Schema returns the record's layout.
func (r *Record) Schema() *Schema {
	return r.schema
}

// Bytes returns a copy of the record buffer.
func (r *Record) Bytes() []byte {
	return bytes.Clone(r.data)
}

// IsEmpty reports whether every field holds the unused-slot value (zero).
// The whole buffer is inspected, so a slot with only some fields set is
// never mistaken for an unused one.
func (r *Record) IsEmpty() bool {
	for _, b := range r.data {
		if b != 0 {
			return false
		}
	}
	return true
}

// BodyType reads the discriminator field. Values other than 1 are Type A.
func (r *Record) BodyType() BodyType {
	v, err := r.Field(BodyTypeField)
	if err != nil || v != int(BodyTypeB) {
		return BodyTypeA
	}
	return BodyTypeB
}

// Clone returns an independent copy.
func (r *Record) Clone() *Record {
	return &Record{schema: r.schema, data: bytes.Clone(r.data)}
}

// Equal reports whether both records hold identical bytes.
func (r *Record) Equal(other *Record) bool {
	return other != nil && bytes.Equal(r.data, other.data)
}

// Field returns the value stored under an interchange key.
func (r *Record) Field(name string) (int, error) {
	ref, err := r.schema.lookup(name)
	if err != nil {
		return 0, err
	}
	return r.schema.get(r.data, ref), nil
}

// SetField stores v under an interchange key.
func (r *Record) SetField(name string, v int) error {
	ref, err := r.schema.check(name, v)
	if err != nil {
		return err
	}
	r.schema.put(r.data, ref, v)
	return nil
}

// Color returns an rgb8 field as a whole.
func (r *Record) Color(name string) (RGB, error) {
	f, ok := r.schema.Field(name)
	if !ok {
		return RGB{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if f.Kind != KindRGB8 {
		return RGB{}, fmt.Errorf("%w: %q is %s, not rgb8", ErrUnknownField, name, f.Kind)
	}
	return RGB{R: r.data[f.Offset], G: r.data[f.Offset+1], B: r.data[f.Offset+2]}, nil
}

// SetColor stores an rgb8 field.
func (r *Record) SetColor(name string, c RGB) error {
	f, ok := r.schema.Field(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if f.Kind != KindRGB8 {
		return fmt.Errorf("%w: %q is %s, not rgb8", ErrUnknownField, name, f.Kind)
	}
	r.data[f.Offset], r.data[f.Offset+1], r.data[f.Offset+2] = c.R, c.G, c.B
	return nil
}

// Values decodes every key of the record.
func (r *Record) Values() Values {
	values, _ := r.schema.Decode(r.data)
	return values
}

// Apply writes a partial value map into the record. Keys not in values keep
// their current value; on error the record is unchanged.
func (r *Record) Apply(values Values) error {
	return r.schema.Update(r.data, values)
}
