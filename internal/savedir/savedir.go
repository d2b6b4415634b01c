// Package savedir locates Elden Ring save files on disk.
package savedir

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/Hapfel1/character-presets-tool/pkg/preset"
)

// steamAppID is Elden Ring's Steam application id, used in Proton prefixes.
const steamAppID = "1245620"

// savePatterns match vanilla and Seamless Co-op saves.
var savePatterns = []string{"ER*.sl2", "ER*.co2"}

// Root returns the directory that holds save folders. A non-empty override
// wins over the platform default.
func Root(override string) string {
	if override != "" {
		return override
	}
	return rootFor(runtime.GOOS, os.Getenv)
}

func rootFor(goos string, getenv func(string) string) string {
	switch goos {
	case "windows":
		if appData := getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "EldenRing")
		}
	case "linux":
		// Proton keeps a Windows profile inside the Steam library
		if home := getenv("HOME"); home != "" {
			return filepath.Join(home, ".local", "share", "Steam", "steamapps", "compatdata",
				steamAppID, "pfx", "drive_c", "users", "steamuser", "AppData", "Roaming", "EldenRing")
		}
	case "darwin":
		if home := getenv("HOME"); home != "" {
			return filepath.Join(home, "Library", "Application Support", "EldenRing")
		}
	}

	// Fallback to the working directory
	return "."
}

// IsSaveFile reports whether name looks like a save file.
func IsSaveFile(name string) bool {
	for _, pattern := range savePatterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Discover walks root and returns every save file below it, sorted.
func Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: save root %s: %v", preset.ErrIO, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: save root %s is not a directory", preset.ErrIO, root)
	}

	var found []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && IsSaveFile(d.Name()) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scanning %s: %v", preset.ErrIO, root, err)
	}

	sort.Strings(found)
	return found, nil
}
