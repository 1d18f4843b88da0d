// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/webshot/pkg/adapters/chromebrowser"
	"github.com/user/webshot/pkg/adapters/pwbrowser"
	"github.com/user/webshot/pkg/adapters/rodbrowser"
	"github.com/user/webshot/pkg/guard"
	"github.com/user/webshot/pkg/output"
	"github.com/user/webshot/pkg/ports"
)

// Renderer names accepted in the renderer field.
const (
	RendererChromedp   = "chromedp"
	RendererPlaywright = "playwright"
	RendererRod        = "rod"
)

// Config represents the full configuration for webshot.
type Config struct {
	// Renderer
	Renderer          string `yaml:"renderer"`
	ChromePath        string `yaml:"chrome_path"`
	RemoteURL         string `yaml:"remote_url"`
	Headless          bool   `yaml:"headless"`
	ProxyServer       string `yaml:"proxy_server"`
	IgnoreHTTPSErrors bool   `yaml:"ignore_https_errors"`
	Stealth           bool   `yaml:"stealth"`          // rod only
	InstallBrowsers   bool   `yaml:"install_browsers"` // playwright only

	// Admission
	BlockedHosts []string `yaml:"blocked_hosts"`

	// Server
	LogLevel string `yaml:"log_level"`
	HTTPAddr string `yaml:"http_addr"`

	// CLI capture
	OutputDir string `yaml:"output_dir"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Renderer:  RendererChromedp,
		Headless:  true,
		LogLevel:  "info",
		OutputDir: output.DefaultDir,
	}
}

// LoadFromFile loads configuration from a YAML file over Defaults.
func LoadFromFile(fs ports.FileSystem, path string) (Config, error) {
	cfg := Defaults()

	data, err := fs.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch c.Renderer {
	case RendererChromedp, RendererPlaywright, RendererRod:
	default:
		return fmt.Errorf("unknown renderer %q (want %s, %s or %s)",
			c.Renderer, RendererChromedp, RendererPlaywright, RendererRod)
	}

	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "error", "quiet":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if _, err := c.Gate(); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level.
func (c Config) Level() ports.LogLevel {
	return ports.ParseLogLevel(c.LogLevel)
}

// Gate builds the URL admission gate with the extra blocked host patterns.
func (c Config) Gate() (*guard.Gate, error) {
	return guard.NewGate(c.BlockedHosts...)
}

// Launcher returns the renderer launcher selected by the renderer field.
func (c Config) Launcher(logger ports.Logger) (ports.Launcher, error) {
	switch c.Renderer {
	case RendererChromedp:
		return chromebrowser.NewLauncher(chromebrowser.Options{
			ChromePath:        c.ChromePath,
			RemoteURL:         c.RemoteURL,
			Headless:          c.Headless,
			IgnoreHTTPSErrors: c.IgnoreHTTPSErrors,
			ProxyServer:       c.ProxyServer,
		}, logger), nil
	case RendererPlaywright:
		return pwbrowser.NewLauncher(pwbrowser.Options{
			ExecutablePath:    c.ChromePath,
			RemoteURL:         c.RemoteURL,
			Headless:          c.Headless,
			IgnoreHTTPSErrors: c.IgnoreHTTPSErrors,
			ProxyServer:       c.ProxyServer,
			Install:           c.InstallBrowsers,
		}, logger), nil
	case RendererRod:
		return rodbrowser.NewLauncher(rodbrowser.Options{
			Bin:               c.ChromePath,
			RemoteURL:         c.RemoteURL,
			Headless:          c.Headless,
			IgnoreHTTPSErrors: c.IgnoreHTTPSErrors,
			ProxyServer:       c.ProxyServer,
			Stealth:           c.Stealth,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown renderer %q", c.Renderer)
	}
}
