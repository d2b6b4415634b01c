package preset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DocumentFormat identifies interchange documents written by this package.
const DocumentFormat = "character-presets/1"

// FieldValue is one key/value pair of an entry's data.
type FieldValue struct {
	Key   string
	Value int
}

// FieldMap is an ordered field map. It marshals as a JSON object whose keys
// keep their slice order.
type FieldMap []FieldValue

// MarshalJSON writes the pairs as an object in slice order.
func (m FieldMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fv := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(fv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(fv.Value))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of integer values, preserving key order.
func (m *FieldMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: data must be an object", ErrSchema)
	}

	var out FieldMap
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSchema, err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: unexpected token %v", ErrSchema, tok)
		}

		tok, err = dec.Token()
		if err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrSchema, key, err)
		}
		n, ok := tok.(json.Number)
		if !ok {
			return fmt.Errorf("%w: field %q is not a number", ErrSchema, key)
		}
		v, err := n.Int64()
		if err != nil {
			return fmt.Errorf("%w: field %q is not an integer: %s", ErrSchema, key, n)
		}
		out = append(out, FieldValue{Key: key, Value: int(v)})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}

	*m = out
	return nil
}

// Get returns the value stored under key.
func (m FieldMap) Get(key string) (int, bool) {
	for _, fv := range m {
		if fv.Key == key {
			return fv.Value, true
		}
	}
	return 0, false
}

// Values converts the pairs to a map. Repeated keys are rejected.
func (m FieldMap) Values() (Values, error) {
	values := make(Values, len(m))
	for _, fv := range m {
		if _, dup := values[fv.Key]; dup {
			return nil, fmt.Errorf("%w: field %q appears more than once", ErrSchema, fv.Key)
		}
		values[fv.Key] = fv.Value
	}
	return values, nil
}

// Entry is one exported preset.
type Entry struct {
	// OriginalSlot records where the preset was exported from. It is never
	// used as an import destination.
	OriginalSlot int      `json:"original_slot"`
	Data         FieldMap `json:"data"`
}

// UnmarshalJSON also accepts the legacy "slot" key for OriginalSlot.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		OriginalSlot *int     `json:"original_slot"`
		Slot         *int     `json:"slot"`
		Data         FieldMap `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Data = raw.Data
	e.OriginalSlot = 0
	switch {
	case raw.OriginalSlot != nil:
		e.OriginalSlot = *raw.OriginalSlot
	case raw.Slot != nil:
		e.OriginalSlot = *raw.Slot
	}
	return nil
}

// BodyType reads the entry's discriminator the same way Record does.
func (e Entry) BodyType() BodyType {
	if v, ok := e.Data.Get(BodyTypeField); ok && v == int(BodyTypeB) {
		return BodyTypeB
	}
	return BodyTypeA
}

// Document is the portable export/import representation of presets.
type Document struct {
	Format     string  `json:"format,omitempty"`
	ID         string  `json:"id,omitempty"`
	ExportedAt string  `json:"exported_at,omitempty"`
	Source     string  `json:"source,omitempty"`
	Presets    []Entry `json:"presets"`
}

// Len returns the number of entries.
func (d *Document) Len() int {
	return len(d.Presets)
}

// Stamp records provenance on the document.
func (d *Document) Stamp(source string, now time.Time) {
	d.ID = uuid.NewString()
	d.ExportedAt = now.UTC().Format(time.RFC3339)
	d.Source = source
}
