// Package config resolves the driver's configuration with the
// precedence: explicit flags > process environment > .env file >
// built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names recognized by the driver.
const (
	EnvDir  = "CIRCUITMAKE_DIR"
	EnvTool = "CIRCUITMAKE_TOOL"
	EnvJobs = "CIRCUITMAKE_JOBS"
)

// DefaultTool is the conventional relative location of the Fairplay
// compiler jar, matching the original build.
const DefaultTool = "sfdl.jar"

// Config is the resolved driver configuration.
type Config struct {
	// Dir is the directory holding the program files. Resolved to an
	// absolute path.
	Dir string

	// Tool locates the external compiler (executable or jar).
	Tool string

	// Jobs bounds the worker pool. 1 means serial execution, the
	// original build's behavior.
	Jobs int

	// TracePath, when non-empty, is where the build trace is written.
	TracePath string
}

// Load resolves configuration. The overrides argument carries flag
// values: empty strings and zero ints mean "not set".
func Load(overrides Config) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Dir:  ".",
		Tool: DefaultTool,
		Jobs: 1,
	}

	if v := strings.TrimSpace(os.Getenv(EnvDir)); v != "" {
		cfg.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTool)); v != "" {
		cfg.Tool = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvJobs)); v != "" {
		jobs, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid job count %q", EnvJobs, v)
		}
		cfg.Jobs = jobs
	}

	if overrides.Dir != "" {
		cfg.Dir = overrides.Dir
	}
	if overrides.Tool != "" {
		cfg.Tool = overrides.Tool
	}
	if overrides.Jobs != 0 {
		cfg.Jobs = overrides.Jobs
	}
	if overrides.TracePath != "" {
		cfg.TracePath = overrides.TracePath
	}

	if cfg.Jobs < 1 {
		return nil, fmt.Errorf("job count must be >= 1 (got %d)", cfg.Jobs)
	}

	absDir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving directory %q: %w", cfg.Dir, err)
	}
	cfg.Dir = absDir

	// A relative tool path is anchored to the source directory, like the
	// original build's sfdl.jar sitting next to the sources.
	if !filepath.IsAbs(cfg.Tool) {
		cfg.Tool = filepath.Join(cfg.Dir, cfg.Tool)
	}
	if cfg.TracePath != "" && !filepath.IsAbs(cfg.TracePath) {
		cfg.TracePath = filepath.Join(cfg.Dir, cfg.TracePath)
	}

	return cfg, nil
}
