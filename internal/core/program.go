// Package core defines the domain model for the circuit build driver:
// program files, build variants, artifact staleness, and the external
// compiler subprocess contract.
package core

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ProgramSuffix identifies user-authored SFDL source files.
const ProgramSuffix = ".sfdl"

// Program is a user-authored SFDL source file.
//
// Programs are immutable from the driver's perspective; the driver only
// ever reads their modification time.
type Program struct {
	// Path is the normalized location of the source file.
	Path string
}

// ArtifactPath returns the deterministic output path for the given
// variant: the program path plus the variant suffix.
func (p Program) ArtifactPath(v Variant) string {
	return p.Path + v.Suffix()
}

// Name returns the program's base file name, used in user-facing output.
func (p Program) Name() string {
	return filepath.Base(p.Path)
}

// DiscoverPrograms scans dir (non-recursively) for program files.
//
// The result is sorted by path, so repeated calls over an unchanged
// directory produce the same slice. Subdirectories are not descended
// into; the original build only considered top-level sources.
func DiscoverPrograms(dir string) ([]Program, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &DiscoveryError{Dir: dir, Err: err}
	}

	var programs []Program
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ProgramSuffix) {
			continue
		}
		programs = append(programs, Program{Path: filepath.Join(dir, e.Name())})
	}

	sort.Slice(programs, func(i, j int) bool {
		return programs[i].Path < programs[j].Path
	})
	return programs, nil
}
