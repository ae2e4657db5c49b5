package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvDir, "")
	t.Setenv(EnvTool, "")
	t.Setenv(EnvJobs, "")

	cfg, err := Load(Config{})
	require.NoError(t, err)

	require.True(t, filepath.IsAbs(cfg.Dir))
	require.Equal(t, filepath.Join(cfg.Dir, DefaultTool), cfg.Tool)
	require.Equal(t, 1, cfg.Jobs)
	require.Empty(t, cfg.TracePath)
}

func TestLoad_EnvironmentBeatsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDir, dir)
	t.Setenv(EnvTool, "/opt/fairplay/sfdl.jar")
	t.Setenv(EnvJobs, "4")

	cfg, err := Load(Config{})
	require.NoError(t, err)
	require.Equal(t, dir, cfg.Dir)
	require.Equal(t, "/opt/fairplay/sfdl.jar", cfg.Tool)
	require.Equal(t, 4, cfg.Jobs)
}

func TestLoad_FlagsBeatEnvironment(t *testing.T) {
	envDir := t.TempDir()
	flagDir := t.TempDir()
	t.Setenv(EnvDir, envDir)
	t.Setenv(EnvJobs, "4")

	cfg, err := Load(Config{Dir: flagDir, Jobs: 2})
	require.NoError(t, err)
	require.Equal(t, flagDir, cfg.Dir)
	require.Equal(t, 2, cfg.Jobs)
}

func TestLoad_RelativePathsAnchoredToDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDir, "")
	t.Setenv(EnvTool, "")
	t.Setenv(EnvJobs, "")

	cfg, err := Load(Config{Dir: dir, Tool: "bin/compile.jar", TracePath: "out/trace.json"})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "bin/compile.jar"), cfg.Tool)
	require.Equal(t, filepath.Join(dir, "out/trace.json"), cfg.TracePath)
}

func TestLoad_AbsolutePathsKept(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDir, "")
	t.Setenv(EnvTool, "")
	t.Setenv(EnvJobs, "")

	cfg, err := Load(Config{Dir: dir, Tool: "/usr/local/bin/sfdlc", TracePath: "/tmp/trace.json"})
	require.NoError(t, err)
	require.Equal(t, "/usr/local/bin/sfdlc", cfg.Tool)
	require.Equal(t, "/tmp/trace.json", cfg.TracePath)
}

func TestLoad_InvalidJobs(t *testing.T) {
	t.Setenv(EnvJobs, "nope")
	_, err := Load(Config{})
	require.Error(t, err)

	t.Setenv(EnvJobs, "")
	_, err = Load(Config{Jobs: -1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "job count must be >= 1")
}

func TestLoad_ZeroJobsEnvRejected(t *testing.T) {
	t.Setenv(EnvJobs, "0")
	_, err := Load(Config{})
	require.Error(t, err)
}
