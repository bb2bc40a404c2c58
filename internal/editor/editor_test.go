package editor

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
)

func TestCommand(t *testing.T) {
	fallback := []string{"vi"}
	if _, err := exec.LookPath("nano"); err == nil {
		fallback = []string{"nano"}
	}

	tests := []struct {
		name   string
		editor string
		visual string
		want   []string
	}{
		{"editor wins", "nvim", "code", []string{"nvim"}},
		{"visual when editor empty", "", "code", []string{"code"}},
		{"whitespace editor ignored", "   ", "code", []string{"code"}},
		{"arguments split", "code --wait", "", []string{"code", "--wait"}},
		{"fallback", "", "", fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EDITOR", tt.editor)
			t.Setenv("VISUAL", tt.visual)

			if got := Command(); !slices.Equal(got, tt.want) {
				t.Errorf("Command() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpen_Integration(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping integration test on windows (uses shell script mock)")
	}

	tmpDir := t.TempDir()
	mockEditor := filepath.Join(tmpDir, "mock-editor.sh")
	outputFile := filepath.Join(tmpDir, "output.txt")

	script := "#!/bin/sh\necho \"$@\" > " + outputFile + "\n"
	if err := os.WriteFile(mockEditor, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EDITOR", mockEditor+" --wait")

	target := filepath.Join(tmpDir, "config.toml")
	if err := os.WriteFile(target, []byte("log_level = \"INFO\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := Open(target, &out); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if !strings.Contains(out.String(), "Location: "+target) {
		t.Errorf("announcement = %q", out.String())
	}
	got, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatal(err)
	}
	if want := "--wait " + target; strings.TrimSpace(string(got)) != want {
		t.Errorf("editor args = %q, want %q", strings.TrimSpace(string(got)), want)
	}
}

func TestOpen_MissingEditor(t *testing.T) {
	t.Setenv("EDITOR", "non-existent-binary-12345")
	t.Setenv("VISUAL", "")

	err := Open("config.toml", &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for non-existent editor, got nil")
	}
	if !strings.Contains(err.Error(), "non-existent-binary-12345") {
		t.Errorf("error should name the editor, got %v", err)
	}
}
