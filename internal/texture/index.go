package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// FileSuffix ends the name of every texture-only file.
const FileSuffix = "_tex.sc"

// Siblings locates the texture files that accompany an asset.
type Siblings struct {
	HighresSuffix string
	LowresSuffix  string
}

// DefaultSiblings uses the suffixes the game ships with.
var DefaultSiblings = Siblings{HighresSuffix: "_highres", LowresSuffix: "_lowres"}

// IsTextureFile reports whether path names a texture-only file.
func IsTextureFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), FileSuffix)
}

func stem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// CompanionPath returns <base>_tex.sc for an asset at path.
func CompanionPath(path string) string {
	return stem(path) + FileSuffix
}

// Resolve returns the highres texture file of the asset at path, or the
// lowres one when only that exists. lowres reports which was picked.
func (s Siblings) Resolve(path string) (tex string, lowres bool) {
	high := stem(path) + s.HighresSuffix + FileSuffix
	low := stem(path) + s.LowresSuffix + FileSuffix
	if !exists(high) && exists(low) {
		return low, true
	}
	return high, false
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
