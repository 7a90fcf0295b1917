// Package ingest finds layout-engine result groups on disk and watches for new ones.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// DocumentGroup is one contract: the result files of its first and second page.
type DocumentGroup struct {
	Name  string // contract name, the directory prefix before "_page_N_results"
	Dir   string // directory holding the page directories
	Page1 []string
	Page2 []string
}

// Key identifies a group across rescans.
func (g DocumentGroup) Key() string {
	return g.Dir + string(os.PathSeparator) + g.Name
}

// Files returns page-1 then page-2 paths.
func (g DocumentGroup) Files() []string {
	out := make([]string, 0, len(g.Page1)+len(g.Page2))
	out = append(out, g.Page1...)
	return append(out, g.Page2...)
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Groups  uint32
	Skipped uint32
}

// HashFiles returns the hex sha256 over the contents of paths, in order.
func HashFiles(paths []string) (string, error) {
	h := sha256.New()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", p, err)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", p, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
