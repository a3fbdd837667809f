package editor

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		editor string
		visual string
		want   string
	}{
		{"editor wins", "nvim", "code", "nvim"},
		{"visual fallback", "", "code --wait", "code --wait"},
		{"blank editor is unset", "   ", "zed", "zed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EDITOR", tt.editor)
			t.Setenv("VISUAL", tt.visual)
			if got := Detect(); got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetect_Fallback(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")

	want := "vi"
	if _, err := exec.LookPath("nano"); err == nil {
		want = "nano"
	}
	if got := Detect(); got != want {
		t.Errorf("Detect() = %q, want %q", got, want)
	}
}

func TestOpen_PassesArguments(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script editor")
	}

	tmpDir := t.TempDir()
	mockEditor := filepath.Join(tmpDir, "mock-editor.sh")
	outputFile := filepath.Join(tmpDir, "output.txt")
	script := "#!/bin/sh\necho \"$@\" > " + outputFile + "\n"
	if err := os.WriteFile(mockEditor, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EDITOR", mockEditor+" --wait")

	target := filepath.Join(tmpDir, "config.yaml")
	var buf bytes.Buffer
	if err := Open(context.Background(), target, &buf); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	got, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatal(err)
	}
	if want := "--wait " + target; strings.TrimSpace(string(got)) != want {
		t.Errorf("editor args = %q, want %q", strings.TrimSpace(string(got)), want)
	}
	if !strings.Contains(buf.String(), target) {
		t.Errorf("output %q does not name %q", buf.String(), target)
	}
}

func TestOpen_MissingBinary(t *testing.T) {
	t.Setenv("EDITOR", "non-existent-binary-12345")

	if err := Open(context.Background(), "test.txt", nil); err == nil {
		t.Error("expected error for non-existent editor, got nil")
	}
}
