package document

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/telkom-contracts/internal/common"
)

// LoadError reports an input file that could not be read or decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{common.ErrLoad, e.Err}
}

// LoadFile reads and classifies one layout-engine JSON file.
// Unreadable files and invalid JSON give a *LoadError; an unrecognized but valid
// JSON shape is not an error (it normalizes to an empty document).
func LoadFile(path string) (RawDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	raw := Decode(data)
	if u, ok := raw.(Unrecognized); ok && !jsonValid(data) {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%s", u.Reason)}
	}
	return raw, nil
}

// LoadFiles loads each path, skipping the ones that fail, and concatenates the rest
// in order. It returns the paths that loaded and the per-file errors.
func LoadFiles(paths []string, logger *slog.Logger) (*Document, []string, []error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		docs   []*Document
		loaded []string
		errs   []error
	)
	for _, p := range paths {
		raw, err := LoadFile(p)
		if err != nil {
			logger.Warn("document.load.skip", "path", p, "error", err)
			errs = append(errs, err)
			continue
		}
		doc := Normalize(raw)
		logger.Debug("document.load.ok", "path", p, "mode", doc.Mode().String(), "elements", doc.Len())
		docs = append(docs, doc)
		loaded = append(loaded, p)
	}
	if len(docs) == 0 {
		return Empty(), loaded, errs
	}
	if len(docs) == 1 {
		return docs[0], loaded, errs
	}
	return Concat(docs...), loaded, errs
}
