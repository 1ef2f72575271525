package root

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestApplyColorModeNoColorFlagForcesDisabled(t *testing.T) {
	defer func() { color.NoColor = true }()

	f := &rootFlags{noColor: true}
	f.applyColorMode()
	assert.True(t, color.NoColor)
}

func TestApplyColorModeNonTTYDisablesColor(t *testing.T) {
	defer func() { color.NoColor = true }()

	f := &rootFlags{}
	f.applyColorMode()
	// go test's stdout is never an interactive terminal.
	assert.True(t, color.NoColor)
}
