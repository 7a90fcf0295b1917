package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/telkom-contracts/constants"
)

// PageOf reports which page a result file belongs to, from its parent directory name,
// together with the contract name and the directory holding the page directories.
func PageOf(path string) (name, dir string, page int, ok bool) {
	if !IsResultFile(path) {
		return "", "", 0, false
	}
	parent := filepath.Dir(path)
	base := filepath.Base(parent)
	switch {
	case strings.HasSuffix(base, constants.PageOneDirSuffix):
		return strings.TrimSuffix(base, constants.PageOneDirSuffix), filepath.Dir(parent), 1, true
	case strings.HasSuffix(base, constants.PageTwoDirSuffix):
		return strings.TrimSuffix(base, constants.PageTwoDirSuffix), filepath.Dir(parent), 2, true
	}
	return "", "", 0, false
}

// DiscoverGroups walks root and groups "*_res.json" files by contract. Files outside
// "<contract>_page_N_results" directories are skipped. Groups are sorted by name, paths
// within a page by file name.
func DiscoverGroups(root string, skipHidden bool, logger *slog.Logger) ([]DocumentGroup, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var stats DirStats
	groups := map[string]*DocumentGroup{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			logger.Warn("ingest.walk.error", "path", path, "error", walkErr)
			stats.Skipped++
			return nil // continue walking
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		name, dir, page, ok := PageOf(path)
		if !ok {
			stats.Skipped++
			return nil
		}
		stats.Matched++

		g := groups[dir+"\x00"+name]
		if g == nil {
			g = &DocumentGroup{Name: name, Dir: dir}
			groups[dir+"\x00"+name] = g
		}
		if page == 1 {
			g.Page1 = append(g.Page1, path)
		} else {
			g.Page2 = append(g.Page2, path)
		}
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk: %w", err)
	}

	out := make([]DocumentGroup, 0, len(groups))
	for _, g := range groups {
		sort.Strings(g.Page1)
		sort.Strings(g.Page2)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Dir < out[j].Dir
	})
	stats.Groups = uint32(len(out))

	logger.Info("ingest.discover.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"groups", stats.Groups,
		"skipped", stats.Skipped,
	)
	return out, stats, nil
}
