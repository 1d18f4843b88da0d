package chromebrowser

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestResolveChromePath_ExplicitPath(t *testing.T) {
	t.Setenv(ChromePathEnv, "/env/chrome")

	if got := ResolveChromePath("/custom/path/to/chrome"); got != "/custom/path/to/chrome" {
		t.Errorf("expected explicit path to take precedence, got %s", got)
	}
}

func TestResolveChromePath_EnvVar(t *testing.T) {
	t.Setenv(ChromePathEnv, "/env/chrome")

	if got := ResolveChromePath(""); got != "/env/chrome" {
		t.Errorf("expected %s to be used, got %s", ChromePathEnv, got)
	}
}

func TestResolveChromePath_SearchesPath(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("PATH lookup candidates are only used on Linux")
	}

	dir := t.TempDir()
	fake := filepath.Join(dir, "chromium")
	if err := os.WriteFile(fake, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	t.Setenv(ChromePathEnv, "")
	t.Setenv("PATH", dir)

	if got := ResolveChromePath(""); got != fake {
		t.Errorf("expected %s, got %s", fake, got)
	}
}

func TestResolveChromePath_NotFound(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("absolute install paths may exist on this platform")
	}

	t.Setenv(ChromePathEnv, "")
	t.Setenv("PATH", t.TempDir())

	if got := ResolveChromePath(""); got != "" {
		t.Errorf("expected empty result, got %s", got)
	}
}

func TestSystemCandidates(t *testing.T) {
	for _, goos := range []string{"darwin", "linux"} {
		if len(systemCandidates(goos)) == 0 {
			t.Errorf("expected candidates for %s", goos)
		}
	}
	if systemCandidates("plan9") != nil {
		t.Error("expected no candidates for unknown platforms")
	}
}

func TestResolveExecutable(t *testing.T) {
	var existing string
	switch runtime.GOOS {
	case "windows":
		existing = os.Getenv("COMSPEC")
	default:
		existing = "/bin/sh"
	}
	if existing == "" {
		t.Skip("no known executable path for this platform")
	}

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"existing absolute path", existing, true},
		{"missing absolute path", filepath.Join(t.TempDir(), "chrome"), false},
		{"missing command", "definitely-not-a-real-command-xyz123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveExecutable(tt.input)
			if tt.want && got == "" {
				t.Errorf("expected path for %s, got empty", tt.input)
			}
			if !tt.want && got != "" {
				t.Errorf("expected empty for %s, got %s", tt.input, got)
			}
		})
	}
}
