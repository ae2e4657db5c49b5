package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVariantSuffixes(t *testing.T) {
	require.Equal(t, ".Opt.circuit", Optimized.Suffix())
	require.Equal(t, ".NoOpt.circuit", Unoptimized.Suffix())
	require.Equal(t, ".Opt.fmt", Optimized.FormatSuffix())
	require.Equal(t, ".NoOpt.fmt", Unoptimized.FormatSuffix())
}

func TestVariantFlag(t *testing.T) {
	require.Equal(t, "", Optimized.Flag())
	require.Equal(t, "--no-optimize", Unoptimized.Flag())
}

func TestVariantsOrder(t *testing.T) {
	// The canonical variant order is part of the deterministic job
	// ordering; a change here silently changes every plan hash.
	require.Equal(t, []Variant{Optimized, Unoptimized}, Variants())
}

func TestHasGeneratedSuffix(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.sfdl.Opt.circuit", true},
		{"a.sfdl.NoOpt.circuit", true},
		{"a.sfdl.Opt.fmt", true},
		{"a.sfdl.NoOpt.fmt", true},
		{"a.sfdl", false},
		{"a.circuit", false},
		{"a.fmt", false},
		{".Opt.circuit", false}, // suffix only, no stem
		{"readme.txt", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, HasGeneratedSuffix(tt.name), "name=%s", tt.name)
	}
}
