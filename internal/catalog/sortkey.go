package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Strategy selects how an entry's recency sort key is derived.
type Strategy string

const (
	// StrategyBirthTime prefers the creation time and falls back to mtime.
	StrategyBirthTime Strategy = "birthtime"
	// StrategyMTime uses the modification time.
	StrategyMTime Strategy = "mtime"
	// StrategyFilenameNumeric uses the last run of digits in the filename and
	// falls back to StrategyBirthTime for names without digits.
	StrategyFilenameNumeric Strategy = "filenameNumeric"
)

// ParseStrategy resolves a configured strategy name, case-insensitively.
// An empty name selects StrategyBirthTime.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "birthtime":
		return StrategyBirthTime, nil
	case "mtime":
		return StrategyMTime, nil
	case "filenamenumeric", "filename_numeric", "numeric":
		return StrategyFilenameNumeric, nil
	}
	return "", fmt.Errorf("unknown recent strategy %q", s)
}

var digitRun = regexp.MustCompile(`\d+`)

// NumericFromFilename returns the value of the last run of digits in name,
// e.g. "clip_000042.mp4" yields 42.
func NumericFromFilename(name string) (float64, bool) {
	runs := digitRun.FindAllString(name, -1)
	if len(runs) == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(runs[len(runs)-1], 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SortKey computes the recency key for e under strategy s.
func SortKey(s Strategy, e Entry) float64 {
	if s == StrategyFilenameNumeric {
		if n, ok := NumericFromFilename(e.Name); ok {
			return n
		}
		s = StrategyBirthTime
	}
	if s == StrategyBirthTime && !e.BirthTime.IsZero() {
		return millis(e.BirthTime)
	}
	return millis(e.ModTime)
}

// SortNewestFirst orders items by descending sort key in place. Equal keys
// keep their input order, so sorting a sorted slice is a no-op.
func SortNewestFirst(items []MediaItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SortKey > items[j].SortKey
	})
}
