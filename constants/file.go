package constants

import "strings"

// Result directories written by the layout engine look like
// "<contract>_page_1_results/<name>_res.json".
const (
	PageOneDirSuffix = "_page_1_results"
	PageTwoDirSuffix = "_page_2_results"
	ResultFileSuffix = "_res.json"
)

// AllowedExtensions holds the file extensions accepted as layout-engine output.
var AllowedExtensions = map[string]struct{}{
	"json": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
