package preset

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the storage type of a record field.
type Kind uint8

const (
	KindU8   Kind = iota // unsigned byte
	KindI8               // signed byte
	KindU16              // unsigned 16-bit, little-endian
	KindI16              // signed 16-bit, little-endian
	KindRGB8             // three unsigned bytes: red, green, blue
)

func (k Kind) String() string {
	switch k {
	case KindU8:
		return "u8"
	case KindI8:
		return "i8"
	case KindU16:
		return "u16"
	case KindI16:
		return "i16"
	case KindRGB8:
		return "rgb8"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Width returns the number of bytes a field of this kind occupies.
func (k Kind) Width() int {
	switch k {
	case KindU8, KindI8:
		return 1
	case KindU16, KindI16:
		return 2
	case KindRGB8:
		return 3
	default:
		return 0
	}
}

// Range returns the inclusive bounds of a single value of this kind.
// For rgb8 the bounds apply to each channel.
func (k Kind) Range() (int, int) {
	switch k {
	case KindI8:
		return -128, 127
	case KindU16:
		return 0, 65535
	case KindI16:
		return -32768, 32767
	default:
		return 0, 255
	}
}

// RGB is the value of an rgb8 field.
type RGB struct {
	R, G, B uint8
}

func (c RGB) String() string {
	return fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B)
}

// channelSuffixes name the interchange keys of an rgb8 field's channels.
var channelSuffixes = [3]string{"_r", "_g", "_b"}

// Field describes one field of a preset record.
type Field struct {
	Name   string
	Offset int
	Kind   Kind
	Group  string // display section
}

// Width returns the field's size in bytes.
func (f Field) Width() int {
	return f.Kind.Width()
}

// End returns the offset one past the field's last byte.
func (f Field) End() int {
	return f.Offset + f.Width()
}

// Keys returns the interchange keys of the field: the name itself for
// scalar kinds, one key per channel for rgb8.
func (f Field) Keys() []string {
	if f.Kind != KindRGB8 {
		return []string{f.Name}
	}
	keys := make([]string, len(channelSuffixes))
	for i, suffix := range channelSuffixes {
		keys[i] = f.Name + suffix
	}
	return keys
}

// Label returns a human-readable title, e.g. "Face Model" for face_model.
func (f Field) Label() string {
	return cases.Title(language.English).String(strings.ReplaceAll(f.Name, "_", " "))
}

// Values maps interchange keys to field values.
type Values map[string]int

// keyRef locates a key inside the schema. channel is -1 for scalar fields.
type keyRef struct {
	field   int
	channel int
}

// Schema is an immutable record layout.
type Schema struct {
	fields []Field
	size   int
	keys   []string
	byKey  map[string]keyRef
	byName map[string]int
}

// NewSchema validates fields and builds a schema. Fields keep their declared
// order for display and export; their byte ranges must not overlap and must
// cover the record from offset 0 without gaps.
func NewSchema(fields []Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields declared", ErrSchema)
	}

	s := &Schema{
		fields: slices.Clone(fields),
		byKey:  make(map[string]keyRef),
		byName: make(map[string]int, len(fields)),
	}

	for i, f := range s.fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: field %d has no name", ErrSchema, i)
		}
		if f.Width() == 0 {
			return nil, fmt.Errorf("%w: field %q has unsupported kind %s", ErrSchema, f.Name, f.Kind)
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrSchema, f.Name)
		}
		s.byName[f.Name] = i

		for c, key := range f.Keys() {
			if _, dup := s.byKey[key]; dup {
				return nil, fmt.Errorf("%w: duplicate key %q", ErrSchema, key)
			}
			ref := keyRef{field: i, channel: -1}
			if f.Kind == KindRGB8 {
				ref.channel = c
			}
			s.byKey[key] = ref
			s.keys = append(s.keys, key)
		}
	}

	byOffset := slices.Clone(s.fields)
	slices.SortFunc(byOffset, func(a, b Field) int { return a.Offset - b.Offset })
	next := 0
	for _, f := range byOffset {
		if f.Offset != next {
			if f.Offset < next {
				return nil, fmt.Errorf("%w: field %q at offset %d overlaps previous field ending at %d", ErrSchema, f.Name, f.Offset, next)
			}
			return nil, fmt.Errorf("%w: gap before field %q (offset %d, expected %d)", ErrSchema, f.Name, f.Offset, next)
		}
		next = f.End()
	}
	s.size = next

	return s, nil
}

// MustSchema is like NewSchema but panics on an invalid layout.
func MustSchema(fields []Field) *Schema {
	s, err := NewSchema(fields)
	if err != nil {
		panic(err)
	}
	return s
}

// Size returns the record width in bytes.
func (s *Schema) Size() int {
	return s.size
}

// Equal reports whether both schemas declare the same fields in the same
// order.
func (s *Schema) Equal(other *Schema) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	return slices.Equal(s.fields, other.fields)
}

// Fields returns the field descriptors in declared order.
func (s *Schema) Fields() []Field {
	return slices.Clone(s.fields)
}

// Keys returns every interchange key in canonical order.
func (s *Schema) Keys() []string {
	return slices.Clone(s.keys)
}

// Field looks up a descriptor by field name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Decode reads every key from a record buffer.
func (s *Schema) Decode(buf []byte) (Values, error) {
	if len(buf) != s.size {
		return nil, fmt.Errorf("%w: record is %d bytes, want %d", ErrSchema, len(buf), s.size)
	}

	values := make(Values, len(s.keys))
	for _, key := range s.keys {
		values[key] = s.get(buf, s.byKey[key])
	}
	return values, nil
}

// Encode builds a new record buffer. Every declared key must be present.
func (s *Schema) Encode(values Values) ([]byte, error) {
	if err := s.validate(values); err != nil {
		return nil, err
	}
	for _, key := range s.keys {
		if _, ok := values[key]; !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrSchema, key)
		}
	}

	buf := make([]byte, s.size)
	for key, v := range values {
		s.put(buf, s.byKey[key], v)
	}
	return buf, nil
}

// Update writes values into an existing buffer. Keys absent from values keep
// their current bytes. Nothing is written unless every value is valid.
func (s *Schema) Update(buf []byte, values Values) error {
	if len(buf) != s.size {
		return fmt.Errorf("%w: record is %d bytes, want %d", ErrSchema, len(buf), s.size)
	}
	if err := s.validate(values); err != nil {
		return err
	}
	for key, v := range values {
		s.put(buf, s.byKey[key], v)
	}
	return nil
}

// validate checks names and ranges in sorted key order so the reported
// error does not depend on map iteration.
func (s *Schema) validate(values Values) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if _, err := s.check(key, values[key]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) lookup(key string) (keyRef, error) {
	ref, ok := s.byKey[key]
	if !ok {
		return keyRef{}, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return ref, nil
}

func (s *Schema) check(key string, v int) (keyRef, error) {
	ref, err := s.lookup(key)
	if err != nil {
		return keyRef{}, err
	}
	lo, hi := s.fields[ref.field].Kind.Range()
	if v < lo || v > hi {
		return keyRef{}, fmt.Errorf("%w: %s=%d, allowed %d..%d", ErrValueRange, key, v, lo, hi)
	}
	return ref, nil
}

func (s *Schema) get(buf []byte, ref keyRef) int {
	f := s.fields[ref.field]
	switch f.Kind {
	case KindI8:
		return int(int8(buf[f.Offset]))
	case KindU16:
		return int(binary.LittleEndian.Uint16(buf[f.Offset:]))
	case KindI16:
		return int(int16(binary.LittleEndian.Uint16(buf[f.Offset:])))
	case KindRGB8:
		return int(buf[f.Offset+ref.channel])
	default:
		return int(buf[f.Offset])
	}
}

func (s *Schema) put(buf []byte, ref keyRef, v int) {
	f := s.fields[ref.field]
	switch f.Kind {
	case KindU16, KindI16:
		binary.LittleEndian.PutUint16(buf[f.Offset:], uint16(v))
	case KindRGB8:
		buf[f.Offset+ref.channel] = byte(v)
	default:
		buf[f.Offset] = byte(v)
	}
}
