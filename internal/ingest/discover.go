package ingest

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"backtest-results-api/internal/domain"
)

// DefaultPattern matches every CSV below the root.
const DefaultPattern = "**/*.csv"

// Kind is the content of an export file.
type Kind string

const (
	KindTrades Kind = "trades"
	KindData   Kind = "data"
)

// File is a discovered export with the series it belongs to.
type File struct {
	Path   string
	Series domain.SeriesKey
	Kind   Kind
}

// ParseFileName derives series and kind from <strategy>_<period>_<kind>.csv.
func ParseFileName(name string) (domain.SeriesKey, Kind, error) {
	base := filepath.Base(name)
	if !strings.EqualFold(filepath.Ext(base), ".csv") {
		return domain.SeriesKey{}, "", fmt.Errorf("%s: not a csv file", base)
	}
	parts := strings.Split(strings.TrimSuffix(base, filepath.Ext(base)), "_")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return domain.SeriesKey{}, "", fmt.Errorf("%s: expected <strategy>_<period>_<trades|data>.csv", base)
	}

	kind := Kind(strings.ToLower(parts[2]))
	if kind != KindTrades && kind != KindData {
		return domain.SeriesKey{}, "", fmt.Errorf("%s: unknown kind %q", base, parts[2])
	}
	key := domain.SeriesKey{
		StrategyID: strings.ToLower(parts[0]),
		PeriodID:   strings.ToLower(parts[1]),
	}
	return key, kind, nil
}

// DiscoverFiles resolves pattern below root and returns the export files it
// matches, sorted by path. Matches whose names do not follow the export
// naming scheme are skipped.
func DiscoverFiles(root, pattern string) ([]File, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", pattern, err)
	}

	files := make([]File, 0, len(matches))
	for _, m := range matches {
		key, kind, err := ParseFileName(m)
		if err != nil {
			continue
		}
		files = append(files, File{Path: m, Series: key, Kind: kind})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}
