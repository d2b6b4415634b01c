package savefile

import (
	"fmt"
	"io"
	"os"

	"github.com/Hapfel1/character-presets-tool/pkg/preset"
)

// DefaultBackupSuffix is appended to the save path to name its backup.
const DefaultBackupSuffix = ".backup"

// CreateBackup copies path to path+suffix, keeping the file mode and
// modification time. An existing backup is overwritten.
func CreateBackup(path, suffix string) (string, error) {
	if suffix == "" {
		suffix = DefaultBackupSuffix
	}
	backupPath := path + suffix

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %v", preset.ErrIO, path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: stat %s: %v", preset.ErrIO, path, err)
	}

	dst, err := os.OpenFile(backupPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", preset.ErrIO, backupPath, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("%w: copying to %s: %v", preset.ErrIO, backupPath, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("%w: closing %s: %v", preset.ErrIO, backupPath, err)
	}

	_ = os.Chtimes(backupPath, info.ModTime(), info.ModTime())
	return backupPath, nil
}
