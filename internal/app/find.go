package app

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/corey/psdef/internal/domain/extract"
	"github.com/corey/psdef/internal/ports"
)

// FindDefinitions searches every cached scan for definitions whose name
// matches pattern. Matching is case-insensitive like PowerShell itself. A
// pattern with * ? [ metacharacters must match the whole name; a plain
// pattern matches as a substring. Results come back ordered by file path,
// then by position within the file.
func FindDefinitions(store ports.Storage, pattern string, includeNested bool) ([]*extract.Record, error) {
	lowered := strings.ToLower(pattern)
	if !strings.ContainsAny(lowered, "*?[") {
		lowered = "*" + lowered + "*"
	}
	if _, err := path.Match(lowered, "probe"); err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}

	matches := []*extract.Record{}
	err := store.ForEachScan(func(filePath string, scan *ports.CachedScan) error {
		selected := extract.Select(scan.Definitions, includeNested)
		records, _ := extract.ProjectAll(selected, filePath)
		for _, rec := range records {
			// Pattern validated above; Match cannot fail here.
			if ok, _ := path.Match(lowered, strings.ToLower(rec.Name)); ok {
				matches = append(matches, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Store iteration order is unspecified; pin the promised ordering here.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].FilePath != matches[j].FilePath {
			return matches[i].FilePath < matches[j].FilePath
		}
		return matches[i].LineNumber < matches[j].LineNumber
	})
	return matches, nil
}
