package root

import (
	"cmp"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/poe-code/poe-code/internal/rotate"
)

type rootFlags struct {
	debugMode   bool
	logFilePath string
	logFile     io.Closer
	noColor     bool
}

// applyColorMode decides whether printer output is styled: explicit
// --no-color always wins, otherwise styling is enabled only when stdout is
// an interactive terminal (matching pkg/cli/printer.go's TTY check, which
// piping `poe-code configure ... | tee log` must not pollute with escape
// codes).
func (f *rootFlags) applyColorMode() {
	if f.noColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

// setupLogging configures slog's default logger. With --debug unset, logs
// are discarded entirely; with it set, structured debug logs go to a
// size-rotating file (<home>/.poe-code/poe-code.debug.log by default, or
// --log-file), matching the teacher's cagent.debug.log convention.
func (f *rootFlags) setupLogging() error {
	if !f.debugMode {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	path := cmp.Or(strings.TrimSpace(f.logFilePath), filepath.Join(home, ".poe-code", "poe-code.debug.log"))

	logFile, err := rotate.New(path)
	if err != nil {
		return err
	}
	f.logFile = logFile

	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return nil
}

func (f *rootFlags) closeLogging() {
	if f.logFile != nil {
		_ = f.logFile.Close()
	}
}
