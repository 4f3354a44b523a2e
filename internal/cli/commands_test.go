package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolatedFlags points the state file and themes directory into dir.
func isolatedFlags(dir string) []string {
	return []string{
		"--state-file", filepath.Join(dir, "state.yaml"),
		"--themes-dir", filepath.Join(dir, "themes"),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644)) //nolint:gosec // test
}

func readFile(path string) string {
	data, err := os.ReadFile(path) //nolint:gosec // test
	if err != nil {
		return ""
	}

	return string(data)
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, code, exitErr.Code)
}

// ---------------------------------------------------------------------------
// render
// ---------------------------------------------------------------------------

func TestRender_Stdout(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.md")
	writeFile(t, src, "# Hello\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")

	stdout, _, err := executeCommand(append(isolatedFlags(dir), "render", src)...)
	require.NoError(t, err)

	assert.Contains(t, stdout, "<h1")
	assert.Contains(t, stdout, "<table>")
	assert.NotContains(t, stdout, "<!DOCTYPE html>")
}

func TestRender_OutputFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.md")
	out := filepath.Join(dir, "site", "doc.html")
	writeFile(t, src, "~~gone~~")

	stdout, _, err := executeCommand(append(isolatedFlags(dir), "render", src, "-o", out)...)
	require.NoError(t, err)

	assert.Empty(t, stdout)
	assert.Contains(t, readFile(out), "<del>gone</del>")
}

func TestRender_StandaloneWithTheme(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.md")
	writeFile(t, src, "text")
	writeFile(t, filepath.Join(dir, "themes", "paper.yaml"), "background: white\n")

	stdout, _, err := executeCommand(append(isolatedFlags(dir),
		"render", src, "--standalone", "--theme", "paper")...)
	require.NoError(t, err)

	assert.Contains(t, stdout, "<!DOCTYPE html>")
	assert.Contains(t, stdout, "<title>notes</title>")
	assert.Contains(t, stdout, `{"background":"white"}`)

	listOut, _, err := executeCommand(append(isolatedFlags(dir), "themes", "list")...)
	require.NoError(t, err)
	assert.Contains(t, listOut, "* paper")
}

func TestRender_ThemeRequiresStandalone(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.md")
	writeFile(t, src, "text")

	_, _, err := executeCommand(append(isolatedFlags(dir), "render", src, "--theme", "ume")...)
	require.Error(t, err)
	requireExitCode(t, err, 2)
}

func TestRender_UnknownTheme(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.md")
	writeFile(t, src, "text")

	_, _, err := executeCommand(append(isolatedFlags(dir),
		"render", src, "--standalone", "--theme", "nope")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "theme not found")
}

func TestRender_RequiresFileArg(t *testing.T) {
	_, _, err := executeCommand("render")
	require.Error(t, err)
}

func TestRender_RawHTMLDisabled(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.md")
	writeFile(t, src, "<span class=\"x\">hi</span>\n")

	stdout, _, err := executeCommand(append(isolatedFlags(dir), "--raw-html=false", "render", src)...)
	require.NoError(t, err)
	assert.NotContains(t, stdout, `<span class="x">`)
}

// ---------------------------------------------------------------------------
// recent
// ---------------------------------------------------------------------------

func TestRecent_ListAndClear(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	writeFile(t, a, "a")
	writeFile(t, b, "b")

	for _, f := range []string{a, b, a} {
		_, _, err := executeCommand(append(isolatedFlags(dir), "render", f)...)
		require.NoError(t, err)
	}

	stdout, _, err := executeCommand(append(isolatedFlags(dir), "recent", "list")...)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, strings.Fields(stdout))

	_, stderr, err := executeCommand(append(isolatedFlags(dir), "recent", "clear")...)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Recent files cleared.")

	stdout, _, err = executeCommand(append(isolatedFlags(dir), "recent", "list")...)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(stdout))
}

func TestRender_NoRecord(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.md")
	writeFile(t, src, "x")

	_, _, err := executeCommand(append(isolatedFlags(dir), "render", src, "--no-record")...)
	require.NoError(t, err)

	stdout, _, err := executeCommand(append(isolatedFlags(dir), "recent", "list")...)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(stdout))
}

// ---------------------------------------------------------------------------
// themes
// ---------------------------------------------------------------------------

func TestThemes_List(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "themes", "zen.json"), `{}`)

	stdout, _, err := executeCommand(append(isolatedFlags(dir), "themes", "list")...)
	require.NoError(t, err)

	for _, name := range []string{"sakura", "asagao", "zen"} {
		assert.Contains(t, stdout, name)
	}
}

func TestThemes_Show(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "themes", "zen.json"), `{"accent":"#0a0"}`)

	stdout, _, err := executeCommand(append(isolatedFlags(dir), "themes", "show", "zen")...)
	require.NoError(t, err)
	assert.JSONEq(t, `{"accent":"#0a0"}`, stdout)
}

func TestThemes_ShowInvalidName(t *testing.T) {
	dir := t.TempDir()

	_, _, err := executeCommand(append(isolatedFlags(dir), "themes", "show", "../zen")...)
	require.Error(t, err)
	requireExitCode(t, err, 2)
}

func TestThemes_ShowMissing(t *testing.T) {
	dir := t.TempDir()

	_, _, err := executeCommand(append(isolatedFlags(dir), "themes", "show", "zen")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "theme not found")
}

// ---------------------------------------------------------------------------
// watch
// ---------------------------------------------------------------------------

func TestWatch_RequiresOutput(t *testing.T) {
	_, _, err := executeCommand("watch", "doc.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output (-o) is required")
	requireExitCode(t, err, 2)
}

func TestWatch_NoFileAndNoState(t *testing.T) {
	dir := t.TempDir()

	_, _, err := executeCommand(append(isolatedFlags(dir), "watch", "-o", filepath.Join(dir, "out.html"))...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no last opened file")
	requireExitCode(t, err, 2)
}

func TestWatch_TooManyArgs(t *testing.T) {
	_, _, err := executeCommand("watch", "a.md", "b.md", "-o", "out.html")
	require.Error(t, err)
}

func TestWatch_InvalidDebounce(t *testing.T) {
	dir := t.TempDir()

	_, _, err := executeCommand(append(isolatedFlags(dir),
		"watch", "doc.md", "-o", "out.html", "--debounce", "0s")...)
	require.Error(t, err)
	requireExitCode(t, err, 2)
	assert.Contains(t, err.Error(), "invalid debounce")
}

func TestWatch_RerendersOnChange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc.md")
	out := filepath.Join(dir, "out", "doc.html")
	writeFile(t, src, "# one\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := NewRootCommand()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append(isolatedFlags(dir),
		"--no-color", "watch", src, "-o", out, "--diff", "--show-diff", "--emit-json"))

	done := make(chan error, 1)

	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(readFile(out), "one")
	}, 5*time.Second, 20*time.Millisecond)

	// Replace atomically so the render never observes a truncated file.
	tmp := src + ".tmp"
	writeFile(t, tmp, "# two\n")
	require.NoError(t, os.Rename(tmp, src))

	require.Eventually(t, func() bool {
		return strings.Contains(readFile(out), "two")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}

	log := stderr.String()
	assert.Contains(t, log, "initial → OK")
	assert.Contains(t, log, "file_changed → OK")
	assert.Contains(t, log, "diff: +1/-1 lines")
	assert.Contains(t, log, "-<h1>one</h1>")
	assert.Contains(t, log, "+<h1>two</h1>")
	assert.Contains(t, log, "Stopped watching.")

	assert.Contains(t, stdout.String(), `"name":"file_changed"`)
}

func TestWatch_UsesLastFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "last.md")
	out := filepath.Join(dir, "last.html")
	writeFile(t, src, "remembered")

	_, _, err := executeCommand(append(isolatedFlags(dir), "render", src)...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := NewRootCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(append(isolatedFlags(dir), "watch", "-o", out))

	done := make(chan error, 1)

	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(readFile(out), "remembered")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

// ---------------------------------------------------------------------------
// Completion command
// ---------------------------------------------------------------------------

func TestCompletion_Bash(t *testing.T) {
	stdout, _, err := executeCommand("completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "bash completion")
}

func TestCompletion_Zsh(t *testing.T) {
	stdout, _, err := executeCommand("completion", "zsh")
	require.NoError(t, err)
	assert.NotEmpty(t, stdout)
}

func TestCompletion_Fish(t *testing.T) {
	stdout, _, err := executeCommand("completion", "fish")
	require.NoError(t, err)
	assert.Contains(t, stdout, "fish")
}

func TestCompletion_PowerShell(t *testing.T) {
	stdout, _, err := executeCommand("completion", "powershell")
	require.NoError(t, err)
	assert.NotEmpty(t, stdout)
}

func TestCompletion_InvalidShell(t *testing.T) {
	_, _, err := executeCommand("completion", "invalid")
	require.Error(t, err)
}

func TestCompletion_NoArgs(t *testing.T) {
	_, _, err := executeCommand("completion")
	require.Error(t, err)
}

func TestCompletion_MarkdownFiles(t *testing.T) {
	stdout, _, err := executeCommand("__complete", "render", "")
	require.NoError(t, err)

	assert.Contains(t, stdout, "md\n")
	assert.Contains(t, stdout, "markdown\n")
	assert.Contains(t, stdout, ":8")
}

func TestCompletion_Themes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "themes", "zen.yaml"), "accent: green\n")

	stdout, _, err := executeCommand(append([]string{"__complete"},
		append(isolatedFlags(dir), "render", "doc.md", "--theme", "")...)...)
	require.NoError(t, err)

	assert.Contains(t, stdout, "sakura")
	assert.Contains(t, stdout, "zen")
}
