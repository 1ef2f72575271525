package pathmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	home  = "/home/user"
	base  = "/home/user/.poe-code/codex"
	agent = "codex"
)

func TestHomeMapsToIsolatedBase(t *testing.T) {
	m := New(home, base, agent)
	got, err := m(home)
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestIsolatedBaseMapsToItself(t *testing.T) {
	m := New(home, base, agent)
	got, err := m(base)
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestAgentHiddenDirCollapses(t *testing.T) {
	m := New(home, base, agent)
	got, err := m("/home/user/.codex/config.toml")
	require.NoError(t, err)
	assert.Equal(t, "/home/user/.poe-code/codex/config.toml", got)
}

func TestNonAgentPathUnderHomeIsRebasedWithoutCollapse(t *testing.T) {
	m := New(home, base, agent)
	got, err := m("/home/user/.other/file")
	require.NoError(t, err)
	assert.Equal(t, "/home/user/.poe-code/codex/.other/file", got)
}

func TestTargetOutsideHomeFails(t *testing.T) {
	m := New(home, base, agent)
	_, err := m("/etc/passwd")
	assert.Error(t, err)
}

func TestSiblingDirectoryWithSharedPrefixIsNotTreatedAsUnderHome(t *testing.T) {
	m := New(home, base, agent)
	_, err := m("/home/user2/.codex/config.toml")
	assert.Error(t, err)
}

func TestExpandTilde(t *testing.T) {
	assert.Equal(t, home, ExpandTilde("~", home))
	assert.Equal(t, "/home/user/.codex", ExpandTilde("~/.codex", home))
	assert.Equal(t, "/etc/passwd", ExpandTilde("/etc/passwd", home))
}
