package cli_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"circuitmake/internal/cli"
	"circuitmake/internal/config"
)

// fakeCompiler returns a shell script that records every invocation to
// logPath and emits a minimal valid circuit on stdout. Programs named
// bad.sfdl fail with exit 3.
func fakeCompiler(logPath string) string {
	return fmt.Sprintf(`#!/bin/sh
case "$1" in
--no-optimize) src="$2"; variant=NoOpt;;
*) src="$1"; variant=Opt;;
esac
echo "$variant $src" >> %q
if [ "$src" = "bad.sfdl" ]; then
	echo "type error at line 7" >&2
	exit 3
fi
echo '0 input'
echo '1 output gate arity 1 table [ 0 1 ] inputs [ 0 ]'
`, logPath)
}

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
	return path
}

func writeSource(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("program "+name+" {}\n"), 0o644))
	return path
}

func backdate(t *testing.T, paths ...string) {
	t.Helper()
	old := time.Now().Add(-2 * time.Hour)
	for _, p := range paths {
		require.NoError(t, os.Chtimes(p, old, old))
	}
}

func invocations(t *testing.T, logPath string) []string {
	t.Helper()
	b, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(b)), "\n")
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvDir, "")
	t.Setenv(config.EnvTool, "")
	t.Setenv(config.EnvJobs, "")
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := cli.Run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestBuild_CompilesBothVariantsOfEveryProgram(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")
	tool := writeScript(t, dir, "fakesfdl", fakeCompiler(logPath))
	a := writeSource(t, dir, "a.sfdl")
	b := writeSource(t, dir, "b.sfdl")
	backdate(t, a, b, tool)

	code, out, errOut := run(t, "--dir", dir, "--tool", tool)
	require.Equal(t, cli.ExitSuccess, code, "stderr: %s", errOut)
	require.Contains(t, out, "4 built, 0 fresh, 0 failed (2 programs)")

	calls := invocations(t, logPath)
	require.ElementsMatch(t, []string{
		"Opt a.sfdl", "NoOpt a.sfdl",
		"Opt b.sfdl", "NoOpt b.sfdl",
	}, calls)

	for _, name := range []string{
		"a.sfdl.Opt.circuit", "a.sfdl.NoOpt.circuit",
		"b.sfdl.Opt.circuit", "b.sfdl.NoOpt.circuit",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, "expected artifact %s", name)
	}
}

func TestBuild_SecondRunIsFresh(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")
	tool := writeScript(t, dir, "fakesfdl", fakeCompiler(logPath))
	backdate(t, writeSource(t, dir, "a.sfdl"), writeSource(t, dir, "b.sfdl"), tool)

	code, _, _ := run(t, "--dir", dir, "--tool", tool)
	require.Equal(t, cli.ExitSuccess, code)
	require.Len(t, invocations(t, logPath), 4)

	code, out, _ := run(t, "--dir", dir, "--tool", tool)
	require.Equal(t, cli.ExitSuccess, code)
	require.Contains(t, out, "0 built, 4 fresh, 0 failed")
	require.Len(t, invocations(t, logPath), 4, "fresh run must not invoke the compiler")
}

func TestBuild_TouchedSourceRebuildsOnlyItsPair(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")
	tool := writeScript(t, dir, "fakesfdl", fakeCompiler(logPath))
	a := writeSource(t, dir, "a.sfdl")
	backdate(t, a, writeSource(t, dir, "b.sfdl"), tool)

	code, _, _ := run(t, "--dir", dir, "--tool", tool)
	require.Equal(t, cli.ExitSuccess, code)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(a, future, future))

	code, out, _ := run(t, "--dir", dir, "--tool", tool)
	require.Equal(t, cli.ExitSuccess, code)
	require.Contains(t, out, "2 built, 2 fresh, 0 failed")

	calls := invocations(t, logPath)
	require.Len(t, calls, 6)
	require.ElementsMatch(t, []string{"Opt a.sfdl", "NoOpt a.sfdl"}, calls[4:])
}

func TestBuild_FailurePairReportedOthersStillBuilt(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")
	tool := writeScript(t, dir, "fakesfdl", fakeCompiler(logPath))
	backdate(t, writeSource(t, dir, "bad.sfdl"), writeSource(t, dir, "ok.sfdl"), tool)

	code, out, errOut := run(t, "--dir", dir, "--tool", tool)
	require.Equal(t, cli.ExitBuildFailure, code)
	require.Contains(t, out, "2 built, 0 fresh, 2 failed")
	require.Contains(t, errOut, "FAIL bad.sfdl [Opt]: exit 3")
	require.Contains(t, errOut, "FAIL bad.sfdl [NoOpt]: exit 3")
	require.Contains(t, errOut, "type error at line 7")
	require.Contains(t, errOut, "build failed: 2 of 4 jobs")

	_, err := os.Stat(filepath.Join(dir, "ok.sfdl.Opt.circuit"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "bad.sfdl.Opt.circuit"))
	require.True(t, os.IsNotExist(err), "failed pair must leave no artifact")
}

func TestBuild_ParallelMatchesSerial(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")
	tool := writeScript(t, dir, "fakesfdl", fakeCompiler(logPath))
	backdate(t, writeSource(t, dir, "a.sfdl"), writeSource(t, dir, "b.sfdl"), tool)

	code, out, _ := run(t, "--dir", dir, "--tool", tool, "--jobs", "4")
	require.Equal(t, cli.ExitSuccess, code)
	require.Contains(t, out, "4 built, 0 fresh, 0 failed")
	require.Len(t, invocations(t, logPath), 4)
}

func TestBuild_EmptyDirectorySucceeds(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	code, out, _ := run(t, "--dir", dir)
	require.Equal(t, cli.ExitSuccess, code)
	require.Contains(t, out, "no .sfdl files")
}

func TestBuild_MissingDirectoryIsConfigError(t *testing.T) {
	clearEnv(t)
	code, _, errOut := run(t, "--dir", filepath.Join(t.TempDir(), "nope"))
	require.Equal(t, cli.ExitConfigError, code)
	require.NotEmpty(t, errOut)
}

func TestUnknownFlagIsInvalidInvocation(t *testing.T) {
	clearEnv(t)
	code, _, errOut := run(t, "--bogus")
	require.Equal(t, cli.ExitInvalidInvocation, code)
	require.Contains(t, errOut, "unknown flag")
}

func TestBuild_WritesTrace(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")
	tool := writeScript(t, dir, "fakesfdl", fakeCompiler(logPath))
	backdate(t, writeSource(t, dir, "a.sfdl"), tool)
	tracePath := filepath.Join(dir, "out", "trace.json")

	code, _, _ := run(t, "--dir", dir, "--tool", tool, "--trace", tracePath)
	require.Equal(t, cli.ExitSuccess, code)

	b, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	s := string(b)
	require.Contains(t, s, `"runId":`)
	require.Contains(t, s, `"planHash":`)
	require.Equal(t, 2, strings.Count(s, `"JobExecuted"`))
}

func TestClean_RemovesOnlyGeneratedFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	logPath := filepath.Join(dir, "invocations.log")
	tool := writeScript(t, dir, "fakesfdl", fakeCompiler(logPath))
	src := writeSource(t, dir, "a.sfdl")
	backdate(t, src, tool)

	code, _, _ := run(t, "--dir", dir, "--tool", tool)
	require.Equal(t, cli.ExitSuccess, code)

	code, out, _ := run(t, "clean", "--dir", dir)
	require.Equal(t, cli.ExitSuccess, code)
	require.Contains(t, out, "removed 2 artifacts")

	_, err := os.Stat(src)
	require.NoError(t, err, "clean must keep sources")
	_, err = os.Stat(filepath.Join(dir, "a.sfdl.Opt.circuit"))
	require.True(t, os.IsNotExist(err))

	code, out, _ = run(t, "clean", "--dir", dir)
	require.Equal(t, cli.ExitSuccess, code)
	require.Contains(t, out, "removed 0 artifacts")
}

func TestInspect_PrintsSummary(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	circuit := filepath.Join(dir, "a.Opt.circuit")
	require.NoError(t, os.WriteFile(circuit, []byte(
		"0 input\n1 input\n2 gate arity 1 table [ 1 0 ] inputs [ 0 ]\n3 output gate arity 1 table [ 0 1 ] inputs [ 2 ]\n"), 0o644))

	code, out, _ := run(t, "inspect", circuit)
	require.Equal(t, cli.ExitSuccess, code)
	require.Contains(t, out, "wires:      4")
	require.Contains(t, out, "inputs:     2")
	require.Contains(t, out, "outputs:    1")
	require.Contains(t, out, "not:        1")
}

func TestInspect_MalformedCircuitIsConfigError(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	circuit := filepath.Join(dir, "a.Opt.circuit")
	require.NoError(t, os.WriteFile(circuit, []byte("garbage\n"), 0o644))

	code, _, errOut := run(t, "inspect", circuit)
	require.Equal(t, cli.ExitConfigError, code)
	require.Contains(t, errOut, "unrecognized gate line")
}
