package core

import (
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultStatCacheSize bounds the number of memoized stat results.
// Large enough for the tool binary plus every program in a big tree.
const defaultStatCacheSize = 4096

type statEntry struct {
	modTime time.Time
	exists  bool
}

// StatCache memoizes modification-time lookups for files that do not
// change during a single build run (program sources and the tool
// binary). Artifact paths must NOT be cached: the driver rewrites them
// mid-run and re-checks their freshness afterwards.
type StatCache struct {
	cache *lru.Cache[string, statEntry]
}

// NewStatCache creates a StatCache with the default capacity.
func NewStatCache() *StatCache {
	cache, err := lru.New[string, statEntry](defaultStatCacheSize)
	if err != nil {
		// Only reachable with a non-positive size constant.
		panic(err)
	}
	return &StatCache{cache: cache}
}

// ModTime returns the file's modification time and whether it exists.
// A genuine filesystem error (not "does not exist") is returned as-is
// and never cached.
func (s *StatCache) ModTime(path string) (time.Time, bool, error) {
	if entry, ok := s.cache.Get(path); ok {
		return entry.modTime, entry.exists, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.cache.Add(path, statEntry{exists: false})
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}

	entry := statEntry{modTime: info.ModTime(), exists: true}
	s.cache.Add(path, entry)
	return entry.modTime, true, nil
}

// Forget drops any memoized result for path.
func (s *StatCache) Forget(path string) {
	s.cache.Remove(path)
}
