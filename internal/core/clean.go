package core

import (
	"os"
	"path/filepath"
	"sort"
)

// Clean removes every generated artifact in dir and returns the sorted
// list of removed paths.
//
// Only files whose names end in a recognized generated suffix are
// touched; program sources and unrelated files are never removed. A
// directory with no artifacts is a successful no-op, so Clean is
// idempotent. Only a genuine filesystem error (e.g. permission denied)
// is surfaced.
func Clean(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &DiscoveryError{Dir: dir, Err: err}
	}

	var removed []string
	for _, e := range entries {
		if e.IsDir() || !HasGeneratedSuffix(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, &IOError{Op: "remove", Path: path, Err: err}
		}
		removed = append(removed, path)
	}

	sort.Strings(removed)
	return removed, nil
}
