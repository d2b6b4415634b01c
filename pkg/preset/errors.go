package preset

import "errors"

var (
	// Addressing errors 📂
	ErrSlotRange  = errors.New("❌ slot index out of range")
	ErrEntryRange = errors.New("❌ document entry index out of range")
	ErrDestRange  = errors.New("❌ destination slot index out of range")

	// Transplant errors 🧬
	ErrEmptySource = errors.New("❌ source slot is empty")

	// Field errors 📐
	ErrUnknownField = errors.New("❌ unknown field")
	ErrValueRange   = errors.New("❌ value out of range")
	ErrSchema       = errors.New("❌ record does not match schema")

	// Container errors 💾
	ErrIO = errors.New("❌ save file i/o failed")
)
