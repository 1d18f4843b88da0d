package chromebrowser

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ChromePathEnv names the environment variable consulted when no explicit
// Chrome path is configured.
const ChromePathEnv = "CHROME_PATH"

// ResolveChromePath resolves the Chrome executable in this order: the
// explicit path, CHROME_PATH, then the platform's usual install locations
// (Chromium before Chrome). It returns "" when nothing is found.
func ResolveChromePath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}
	if envPath := os.Getenv(ChromePathEnv); envPath != "" {
		return envPath
	}
	for _, candidate := range systemCandidates(runtime.GOOS) {
		if path := resolveExecutable(candidate); path != "" {
			return path
		}
	}
	return ""
}

// systemCandidates lists executable names or absolute paths to probe.
func systemCandidates(goos string) []string {
	switch goos {
	case "darwin":
		return []string{
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Google Chrome Canary.app/Contents/MacOS/Google Chrome Canary",
		}
	case "linux":
		return []string{
			"chromium",
			"chromium-browser",
			"google-chrome-stable",
			"google-chrome",
			"chrome-headless-shell",
			"headless-shell",
		}
	case "windows":
		var candidates []string
		for _, env := range []string{"PROGRAMFILES", "PROGRAMFILES(X86)", "LOCALAPPDATA"} {
			base := os.Getenv(env)
			if base == "" {
				continue
			}
			candidates = append(candidates,
				filepath.Join(base, "Chromium", "Application", "chrome.exe"),
				filepath.Join(base, "Google", "Chrome", "Application", "chrome.exe"),
			)
		}
		return candidates
	}
	return nil
}

// resolveExecutable returns nameOrPath if it is an existing absolute path,
// or its PATH lookup result for a bare command name.
func resolveExecutable(nameOrPath string) string {
	if filepath.IsAbs(nameOrPath) {
		if _, err := os.Stat(nameOrPath); err == nil {
			return nameOrPath
		}
		return ""
	}
	if path, err := exec.LookPath(nameOrPath); err == nil {
		return path
	}
	return ""
}
