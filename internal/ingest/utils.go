package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/telkom-contracts/constants"
)

// AllowedExt checks if a file extension is in the allowed set.
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// IsResultFile reports whether path is a layout-engine result file ("*_res.json").
func IsResultFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(filepath.Base(path)), constants.ResultFileSuffix)
}
