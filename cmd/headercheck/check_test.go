package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(text), 0o600))
	return p
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HEADERCHECK_CONFIG", "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func templateFixture(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, dir, "bug.md", "---\nname: Bug report\n---\n# Steps\n# Expected\n")
	writeFile(t, dir, "feature.md", "# Motivation\n")
	return dir
}

func TestCheckConforming(t *testing.T) {
	dir := templateFixture(t)
	body := writeFile(t, t.TempDir(), "body.md", "# Steps\nclick\n# Expected\nno crash\n")

	out, err := runCLI(t, "", "check", "--body", body, "--templates", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "The issue follows a template")
}

func TestCheckNeedsInfoExitsWithTwo(t *testing.T) {
	dir := templateFixture(t)
	reply := writeFile(t, t.TempDir(), "reply.md", "Please use a template.\n")

	out, err := runCLI(t, "# Steps\nclick\n", "check", "--body", "-", "--templates", dir, "--reply", reply, "--login", "alice")

	var exit *exitError
	require.True(t, errors.As(err, &exit), "expected exitError, got %v", err)
	assert.Equal(t, exitNeedsInfo, exit.code)
	assert.Contains(t, out, "Hello @alice!")
	assert.Contains(t, out, "Please use a template.")
	assert.Contains(t, out, "Bug report")
}

func TestCheckFlagValidation(t *testing.T) {
	body := writeFile(t, t.TempDir(), "body.md", "# Steps\n")

	_, err := runCLI(t, "", "check", "--body", body)
	assert.ErrorContains(t, err, "exactly one of --templates or --repo")

	_, err = runCLI(t, "", "check", "--body", body, "--templates", "x", "--repo", "o/r")
	assert.ErrorContains(t, err, "exactly one of --templates or --repo")

	_, err = runCLI(t, "", "check", "--body", body, "--repo", "not-a-slug")
	assert.ErrorContains(t, err, "expected owner/repo")

	_, err = runCLI(t, "", "check", "--templates", "x")
	assert.Error(t, err)
}

func TestCheckMissingTemplateDirectory(t *testing.T) {
	body := writeFile(t, t.TempDir(), "body.md", "# Steps\n")

	_, err := runCLI(t, "", "check", "--body", body, "--templates", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	var exit *exitError
	assert.False(t, errors.As(err, &exit))
}

func TestSplitRepo(t *testing.T) {
	owner, repo, err := splitRepo("octo/widgets")
	require.NoError(t, err)
	assert.Equal(t, "octo", owner)
	assert.Equal(t, "widgets", repo)

	for _, bad := range []string{"", "octo", "/widgets", "octo/", "a/b/c"} {
		_, _, err := splitRepo(bad)
		assert.Error(t, err, bad)
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "headercheck dev\n", out)
}

func TestServeRequiresConfiguration(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("WEBHOOK_SECRET", "")
	t.Setenv("HEADERCHECK_GITHUB_TOKEN", "")

	_, err := runCLI(t, "", "serve")
	assert.ErrorContains(t, err, "invalid configuration")
}
