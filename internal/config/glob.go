package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ExpandPaths turns command line arguments into a sorted, de-duplicated list
// of regular files. Arguments may be files, glob patterns or directories; a
// directory contributes the regular files directly inside it, so a whole
// round can be named at once.
func ExpandPaths(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no paths provided")
	}

	files := make([]string, 0)
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, arg := range args {
		candidates := []string{arg}
		if hasGlobMeta(arg) {
			matches, err := filepath.Glob(arg)
			if err != nil {
				return nil, err
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no matches for pattern %q", arg)
			}
			candidates = matches
		}

		for _, path := range candidates {
			info, err := os.Stat(path)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				add(path)
				continue
			}

			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", path, err)
			}
			for _, entry := range entries {
				if entry.Type().IsRegular() {
					add(filepath.Join(path, entry.Name()))
				}
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[")
}
