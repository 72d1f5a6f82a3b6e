package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/credit-audit/constants"
)

// AllowedExt checks if a file extension is an accepted credit report format.
func AllowedExt(ext string) bool {
	return constants.MapExtToKind(ext) != ""
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// allowed reports whether path carries one of exts, or any accepted extension when exts is nil.
func allowed(path string, exts map[string]struct{}) bool {
	ext := constants.NormalizeExt(filepath.Ext(path))
	if exts == nil {
		return AllowedExt(ext)
	}
	_, ok := exts[ext]
	return ok
}

func statDir(path string) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return fi.IsDir(), nil
}
