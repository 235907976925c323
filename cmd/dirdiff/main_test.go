package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(root, 0o755))
	for rel, content := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// pair creates left and right trees under a fresh temp dir.
func pair(t *testing.T, left, right map[string]string) (string, string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	base := t.TempDir()
	l, r := filepath.Join(base, "L"), filepath.Join(base, "R")
	writeFiles(t, l, left)
	writeFiles(t, r, right)
	return l, r
}

func runCLI(args ...string) (int, string, string) {
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestDiffIdentical(t *testing.T) {
	l, r := pair(t, map[string]string{"a.txt": "aaa"}, map[string]string{"a.txt": "aaa"})

	code, out, _ := runCLI("diff", l, r)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "No differences (1 files unchanged).")
}

func TestDiffReportsChanges(t *testing.T) {
	l, r := pair(t,
		map[string]string{"same.txt": "x", "gone.txt": "bye", "mod.txt": "short"},
		map[string]string{"same.txt": "x", "new.txt": "hi", "mod.txt": "much longer"},
	)

	code, out, _ := runCLI("diff", "--changed-only", l, r)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "- gone.txt")
	assert.Contains(t, out, "+ new.txt")
	assert.Contains(t, out, "~ mod.txt")
	assert.NotContains(t, out, "same.txt")
	assert.Contains(t, out, "1 added")
}

func TestDiffViews(t *testing.T) {
	l, r := pair(t, map[string]string{"left-only": "1"}, map[string]string{"right-only": "2"})

	_, out, _ := runCLI("diff", "--view", "left", l, r)
	assert.Contains(t, out, "left-only")
	assert.NotContains(t, out, "right-only")

	_, out, _ = runCLI("diff", "--view", "right", l, r)
	assert.Contains(t, out, "right-only")
	assert.NotContains(t, out, "left-only")

	code, _, errOut := runCLI("diff", "--view", "sideways", l, r)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "invalid --view")
}

func TestDiffSummaryOnly(t *testing.T) {
	l, r := pair(t, map[string]string{"a": "1"}, map[string]string{"a": "1", "b": "2"})

	code, out, _ := runCLI("diff", "--summary", l, r)
	assert.Equal(t, 1, code)
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.True(t, strings.HasPrefix(out, "1 added"))
}

func TestDiffMissingRoots(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	base := t.TempDir()

	code, _, errOut := runCLI("diff", filepath.Join(base, "x"), filepath.Join(base, "y"))
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "Error:")
}

func TestDiffOneRootMissing(t *testing.T) {
	l, _ := pair(t, map[string]string{"a": "1"}, nil)

	code, out, errOut := runCLI("diff", "--view", "right", l, filepath.Join(filepath.Dir(l), "nope"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "does not exist")
	assert.Contains(t, out, "1 removed")
}

func TestDiffExcludeAndVerify(t *testing.T) {
	l, r := pair(t,
		map[string]string{"keep.txt": "abc", "noise.log": "1"},
		map[string]string{"keep.txt": "xyz", "noise.log": "22"},
	)

	// Same sizes: only a content comparison sees keep.txt change.
	code, _, _ := runCLI("diff", "--exclude", "*.log", l, r)
	assert.Equal(t, 0, code)

	code, out, _ := runCLI("diff", "--exclude", "*.log", "--verify", l, r)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "~ keep.txt")
}

func TestDiffIncludeOverridesLaterExclude(t *testing.T) {
	l, r := pair(t, map[string]string{}, map[string]string{"important.log": "1", "other.log": "2"})

	_, out, _ := runCLI("diff", "--include", "important.log", "--exclude", "*.log", l, r)
	assert.Contains(t, out, "important.log")
	assert.NotContains(t, out, "other.log")
}

func TestDiffConfigDefaults(t *testing.T) {
	l, r := pair(t, map[string]string{".hidden": "1"}, map[string]string{})
	cfgPath := filepath.Join(t.TempDir(), "dirdiff.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("defaults:\n  hidden: true\n"), 0o644))

	code, _, _ := runCLI("diff", l, r)
	assert.Equal(t, 0, code, "hidden entries are skipped by default")

	code, out, _ := runCLI("--config", cfgPath, "diff", l, r)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "- .hidden")

	code, _, _ = runCLI("--config", cfgPath, "diff", "--hidden=false", l, r)
	assert.Equal(t, 0, code, "an explicit flag beats the config")
}

func TestSyncToRight(t *testing.T) {
	l, r := pair(t, map[string]string{"dir/a.txt": "hello"}, map[string]string{})

	code, out, errOut := runCLI("sync", l, r, "dir")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "dir/a.txt")
	assert.Contains(t, errOut, "remaining: No differences")

	got, err := os.ReadFile(filepath.Join(r, "dir", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestSyncToLeftWithResume(t *testing.T) {
	l, r := pair(t, map[string]string{}, map[string]string{"b.txt": "from right"})

	code, _, errOut := runCLI("sync", "--to", "left", "--resume", "--bwlimit", "1M", l, r, "b.txt")
	require.Equal(t, 0, code, errOut)

	got, err := os.ReadFile(filepath.Join(l, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "from right", string(got))
}

func TestSyncDryRun(t *testing.T) {
	l, r := pair(t, map[string]string{"a.txt": "x"}, map[string]string{})

	code, _, _ := runCLI("sync", "--dry-run", l, r, "a.txt")
	assert.Equal(t, 0, code)
	assert.NoFileExists(t, filepath.Join(r, "a.txt"))
}

func TestSyncErrors(t *testing.T) {
	l, r := pair(t, map[string]string{"a.txt": "x"}, map[string]string{})

	code, _, _ := runCLI("sync", l, r, "missing.txt")
	assert.Equal(t, 2, code)

	code, _, errOut := runCLI("sync", "--to", "up", l, r, "a.txt")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "invalid --to")

	code, _, errOut = runCLI("sync", "--bwlimit", "fast", l, r, "a.txt")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "invalid --bwlimit")
}

func TestDelete(t *testing.T) {
	l, r := pair(t, map[string]string{"a.txt": "x"}, map[string]string{"a.txt": "x", "extra/b": "y"})

	code, out, errOut := runCLI("delete", "--side", "right", l, r, "extra")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "delete: extra")
	assert.NoDirExists(t, filepath.Join(r, "extra"))
	assert.FileExists(t, filepath.Join(l, "a.txt"))
}

func TestDeleteRequiresSide(t *testing.T) {
	l, r := pair(t, map[string]string{"a.txt": "x"}, map[string]string{})

	code, _, errOut := runCLI("delete", l, r, "a.txt")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "side")
	assert.FileExists(t, filepath.Join(l, "a.txt"))
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI("--version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "dirdiff dev\n", out)
}

func TestGenDocs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()

	code, _, errOut := runCLI("gen-docs", "--format", "markdown", "--dir", dir)
	require.Equal(t, 0, code, errOut)
	assert.FileExists(t, filepath.Join(dir, "dirdiff.md"))
	assert.FileExists(t, filepath.Join(dir, "dirdiff_diff.md"))

	code, _, _ = runCLI("gen-docs", "--format", "pdf", "--dir", dir)
	assert.Equal(t, 2, code)
}

func TestLogFile(t *testing.T) {
	l, r := pair(t, map[string]string{"a.txt": "x"}, map[string]string{})
	logPath := filepath.Join(t.TempDir(), "run.json")

	code, _, errOut := runCLI("--log", logPath, "sync", l, r, "a.txt")
	require.Equal(t, 0, code, errOut)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"dirdiff.event"`)
	assert.Contains(t, string(data), `"type":"FileCompleted"`)
}
