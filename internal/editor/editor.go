// Package editor launches the user's preferred text editor.
package editor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
)

// Open launches the user's preferred editor on path and waits for it to exit.
// The editor inherits the terminal; location notes go to w.
func Open(ctx context.Context, path string, w io.Writer) error {
	argv := strings.Fields(Detect())
	if len(argv) == 0 {
		return errors.New("no editor configured")
	}
	if w != nil {
		_, _ = io.WriteString(w, "Location: "+path+"\n")
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", argv[0])
	}
	return nil
}

// Detect returns the editor command line. Fallback chain:
// $EDITOR, $VISUAL, nano, vi. The result may carry arguments, e.g.
// "code --wait".
func Detect() string {
	if editor := strings.TrimSpace(os.Getenv("EDITOR")); editor != "" {
		return editor
	}
	if visual := strings.TrimSpace(os.Getenv("VISUAL")); visual != "" {
		return visual
	}
	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}
	return "vi"
}
