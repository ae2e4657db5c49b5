package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscoverPrograms_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.sfdl"), "program b")
	writeFile(t, filepath.Join(dir, "a.sfdl"), "program a")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a program")
	writeFile(t, filepath.Join(dir, "a.sfdl.Opt.circuit"), "artifact")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.sfdl"), 0o755))

	programs, err := DiscoverPrograms(dir)
	require.NoError(t, err)
	require.Equal(t, []Program{
		{Path: filepath.Join(dir, "a.sfdl")},
		{Path: filepath.Join(dir, "b.sfdl")},
	}, programs)
}

func TestDiscoverPrograms_StableAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.sfdl"), "x")
	writeFile(t, filepath.Join(dir, "y.sfdl"), "y")

	first, err := DiscoverPrograms(dir)
	require.NoError(t, err)
	second, err := DiscoverPrograms(dir)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDiscoverPrograms_MissingDir(t *testing.T) {
	_, err := DiscoverPrograms(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)

	var discErr *DiscoveryError
	require.ErrorAs(t, err, &discErr)
}

func TestArtifactPath(t *testing.T) {
	p := Program{Path: "/work/a.sfdl"}
	require.Equal(t, "/work/a.sfdl.Opt.circuit", p.ArtifactPath(Optimized))
	require.Equal(t, "/work/a.sfdl.NoOpt.circuit", p.ArtifactPath(Unoptimized))
	require.Equal(t, "a.sfdl", p.Name())
}
