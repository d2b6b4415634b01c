package savefile

import "errors"

var (
	// Container errors 📦
	ErrInvalidMagic     = errors.New("❌ invalid BND4 magic")
	ErrInvalidEntry     = errors.New("❌ invalid container entry")
	ErrChecksumMismatch = errors.New("❌ entry checksum mismatch")

	// Table errors 📂
	ErrTableBounds = errors.New("❌ preset table does not fit its entry")
)
