package root

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errBuf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errBuf.String(), err
}

func TestListPrintsRegisteredAgents(t *testing.T) {
	out, _, err := runCmd(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "claude")
	assert.Contains(t, out, "codex")
	assert.Contains(t, out, "opencode")
	assert.Contains(t, out, "kimi")
}

func TestConfigureUnknownAgentFails(t *testing.T) {
	_, _, err := runCmd(t, "configure", "not-a-real-agent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported agent")
}

func TestConfigureWritesUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	out, _, err := runCmd(t, "configure", "claude", "--api-key", "sk-test")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuring Claude Code")

	data, readErr := os.ReadFile(filepath.Join(home, ".claude.json"))
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "sk-test")
}

func TestConfigureThenUnconfigureRoundTrips(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, _, err := runCmd(t, "configure", "claude", "--api-key", "sk-test")
	require.NoError(t, err)

	_, _, err = runCmd(t, "unconfigure", "claude")
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(home, ".claude.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestVersionCommandPrintsVersion(t *testing.T) {
	out, _, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "poe-code version")
}

func TestIsolatedFlagRedirectsUnderPoeCode(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, _, err := runCmd(t, "configure", "codex", "--isolated", "--model", "claude-3.7-sonnet")
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(home, ".poe-code", "codex", "config.toml"))
	assert.NoError(t, statErr)
}
