// Package pwbrowser implements the renderer ports on top of playwright-go.
package pwbrowser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/user/webshot/pkg/ports"
)

// Options configures the Playwright driver and the Chromium it launches.
type Options struct {
	// ExecutablePath overrides the bundled Chromium.
	ExecutablePath string
	// RemoteURL connects to a running Chrome over CDP instead of launching.
	RemoteURL         string
	Headless          bool
	IgnoreHTTPSErrors bool
	ProxyServer       string
	// Install downloads the driver and Chromium before starting.
	Install bool
}

// Launcher starts the Playwright driver and Chromium. It implements
// ports.Launcher.
type Launcher struct {
	opts   Options
	logger ports.Logger
}

// NewLauncher creates a Launcher.
func NewLauncher(opts Options, logger ports.Logger) *Launcher {
	return &Launcher{opts: opts, logger: logger.WithComponent("playwright")}
}

// Launch runs the driver and starts or connects to Chromium.
func (l *Launcher) Launch(ctx context.Context) (ports.Engine, error) {
	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if l.opts.Install {
		l.logger.Debug("Installing Playwright driver and Chromium")
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	var browser playwright.Browser
	if l.opts.RemoteURL != "" {
		l.logger.Debug("Connecting to Chrome at %s", l.opts.RemoteURL)
		browser, err = pw.Chromium.ConnectOverCDP(l.opts.RemoteURL)
	} else {
		launchOpts := playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(l.opts.Headless),
			Args:     []string{"--hide-scrollbars", "--disable-dev-shm-usage"},
		}
		if l.opts.ExecutablePath != "" {
			launchOpts.ExecutablePath = playwright.String(l.opts.ExecutablePath)
		}
		if l.opts.ProxyServer != "" {
			launchOpts.Proxy = &playwright.Proxy{Server: l.opts.ProxyServer}
		}
		browser, err = pw.Chromium.Launch(launchOpts)
	}
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	return &Engine{
		pw:                pw,
		browser:           browser,
		ignoreHTTPSErrors: l.opts.IgnoreHTTPSErrors,
		logger:            l.logger,
	}, nil
}

// Engine is a running Chromium driven by Playwright. It implements
// ports.Engine.
type Engine struct {
	pw                *playwright.Playwright
	browser           playwright.Browser
	ignoreHTTPSErrors bool
	logger            ports.Logger

	closeOnce sync.Once
	closeErr  error
}

// OpenSession creates a new browser context with one page.
func (e *Engine) OpenSession(ctx context.Context, opts ports.SessionOptions) (ports.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scheme := playwright.ColorSchemeLight
	if opts.ColorScheme == ports.ColorSchemeDark {
		scheme = playwright.ColorSchemeDark
	}

	bctx, err := e.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Width,
			Height: opts.Height,
		},
		DeviceScaleFactor: playwright.Float(opts.DeviceScaleFactor),
		ColorScheme:       scheme,
		IgnoreHttpsErrors: playwright.Bool(e.ignoreHTTPSErrors),
	})
	if err != nil {
		return nil, fmt.Errorf("create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}

	return &Session{context: bctx, page: page}, nil
}

// Close closes the browser and stops the driver.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		var errs []error
		if err := e.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		if err := e.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
		e.closeErr = errors.Join(errs...)
		e.logger.Debug("Playwright stopped")
	})
	return e.closeErr
}

// Session is one page in its own browser context. It implements
// ports.Session.
type Session struct {
	context playwright.BrowserContext
	page    playwright.Page
}

func waitUntilState(w ports.WaitUntil) *playwright.WaitUntilState {
	switch w {
	case ports.WaitLoad:
		return playwright.WaitUntilStateLoad
	case ports.WaitDOMContentLoaded:
		return playwright.WaitUntilStateDomcontentloaded
	default:
		return playwright.WaitUntilStateNetworkidle
	}
}

// timeoutMs returns the navigation budget in milliseconds: the configured
// timeout, shortened to the context deadline when that comes first.
func timeoutMs(ctx context.Context, timeout time.Duration) float64 {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); timeout <= 0 || left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		// Playwright treats 0 as no timeout.
		return 1
	}
	return math.Ceil(float64(timeout) / float64(time.Millisecond))
}

// Navigate loads url. Playwright reports a missed wait condition as
// playwright.ErrTimeout.
func (s *Session) Navigate(ctx context.Context, url string, opts ports.NavigateOptions) error {
	if err := ctx.Err(); err != nil {
		return ports.NewNavigationError(ctx, url, err, false)
	}

	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: waitUntilState(opts.WaitUntil),
		Timeout:   playwright.Float(timeoutMs(ctx, opts.Timeout)),
	})
	if err != nil {
		return ports.NewNavigationError(ctx, url, err, errors.Is(err, playwright.ErrTimeout))
	}
	return nil
}

// MeasureDocumentHeight evaluates the document height in the page.
func (s *Session) MeasureDocumentHeight(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v, err := s.page.Evaluate(ports.DocumentHeightScript)
	if err != nil {
		return 0, fmt.Errorf("evaluate document height: %w", err)
	}
	return toFloat(v)
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, fmt.Errorf("document height is %T, not a number", v)
}

// CaptureImage takes a PNG screenshot.
func (s *Session) CaptureImage(ctx context.Context, opts ports.CaptureOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(opts.FullPage),
		Type:     playwright.ScreenshotTypePng,
	})
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return data, nil
}

// Close closes the browser context and its page.
func (s *Session) Close() error {
	if err := s.context.Close(); err != nil {
		return fmt.Errorf("close context: %w", err)
	}
	return nil
}

var (
	_ ports.Launcher = (*Launcher)(nil)
	_ ports.Engine   = (*Engine)(nil)
	_ ports.Session  = (*Session)(nil)
)
