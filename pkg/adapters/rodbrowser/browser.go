// Package rodbrowser implements the renderer ports on top of go-rod, with
// optional stealth pages.
package rodbrowser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/user/webshot/pkg/ports"
)

// Options configures how Chrome is started.
type Options struct {
	// Bin is the Chrome executable. Empty lets rod find or download one.
	Bin string
	// RemoteURL is the DevTools websocket of a running Chrome.
	RemoteURL         string
	Headless          bool
	IgnoreHTTPSErrors bool
	ProxyServer       string
	// Stealth hides common headless fingerprints on every page.
	Stealth bool
}

// Launcher starts Chrome through rod. It implements ports.Launcher.
type Launcher struct {
	opts   Options
	logger ports.Logger
}

// NewLauncher creates a Launcher.
func NewLauncher(opts Options, logger ports.Logger) *Launcher {
	return &Launcher{opts: opts, logger: logger.WithComponent("rod")}
}

// newChromeLauncher builds the local launcher for opts.
func newChromeLauncher(opts Options) *launcher.Launcher {
	l := launcher.New().
		Headless(opts.Headless).
		Set("hide-scrollbars").
		Set("disable-dev-shm-usage")
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	if opts.ProxyServer != "" {
		l = l.Proxy(opts.ProxyServer)
	}
	return l
}

// Launch starts Chrome, or connects to RemoteURL, and returns the engine.
func (l *Launcher) Launch(ctx context.Context) (ports.Engine, error) {
	var lnch *launcher.Launcher
	controlURL := l.opts.RemoteURL

	if controlURL == "" {
		lnch = newChromeLauncher(l.opts)
		u, err := lnch.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
		l.logger.Debug("Launched Chrome at %s", controlURL)
	} else {
		l.logger.Debug("Attaching to Chrome at %s", controlURL)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		if lnch != nil {
			lnch.Kill()
		}
		return nil, fmt.Errorf("connect chrome: %w", err)
	}

	if l.opts.IgnoreHTTPSErrors {
		if err := browser.IgnoreCertErrors(true); err != nil {
			l.logger.Warn("Could not ignore certificate errors: %v", err)
		}
	}

	return &Engine{
		browser:  browser,
		launcher: lnch,
		stealth:  l.opts.Stealth,
		logger:   l.logger,
	}, nil
}

// Engine is a connected Chrome. It implements ports.Engine.
type Engine struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	stealth  bool
	logger   ports.Logger

	closeOnce sync.Once
	closeErr  error
}

// OpenSession creates an incognito browser context with one page. ctx
// bounds the setup calls only; the session itself outlives it so that
// Close can dispose of the context after the caller has given up.
func (e *Engine) OpenSession(ctx context.Context, opts ports.SessionOptions) (ports.Session, error) {
	incognito, err := e.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, fmt.Errorf("create incognito context: %w", err)
	}
	detached := context.WithoutCancel(ctx)
	incognito = incognito.Context(detached)

	var page *rod.Page
	if e.stealth {
		page, err = stealth.Page(incognito.Context(ctx))
	} else {
		page, err = incognito.Context(ctx).Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		disposeContext(incognito)
		return nil, fmt.Errorf("create page: %w", err)
	}
	sess := &Session{browser: incognito, page: page.Context(detached)}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: opts.DeviceScaleFactor,
		Mobile:            false,
	})
	if err == nil {
		err = proto.EmulationSetEmulatedMedia{
			Features: []*proto.EmulationMediaFeature{
				{Name: "prefers-color-scheme", Value: string(opts.ColorScheme)},
			},
		}.Call(page)
	}
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("emulate device: %w", err)
	}

	return sess, nil
}

// Close stops a locally launched Chrome. An attached remote Chrome is left
// running; its sessions have already disposed of their own contexts.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		if e.launcher == nil {
			return
		}
		e.closeErr = e.browser.Close()
		e.launcher.Kill()
		e.launcher.Cleanup()
		e.logger.Debug("Chrome closed")
	})
	return e.closeErr
}

// closeTimeout bounds page and context disposal.
const closeTimeout = 10 * time.Second

// disposeContext removes an incognito context regardless of the state of
// the request that created it.
func disposeContext(b *rod.Browser) error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return b.Context(ctx).Close()
}

// Session is one page in an incognito context. It implements
// ports.Session.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
}

func lifecycleEvent(w ports.WaitUntil) proto.PageLifecycleEventName {
	switch w {
	case ports.WaitLoad:
		return proto.PageLifecycleEventNameLoad
	case ports.WaitDOMContentLoaded:
		return proto.PageLifecycleEventNameDOMContentLoaded
	default:
		return proto.PageLifecycleEventNameNetworkIdle
	}
}

// Navigate loads url and waits for the lifecycle event matching
// opts.WaitUntil.
func (s *Session) Navigate(ctx context.Context, url string, opts ports.NavigateOptions) error {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	page := s.page.Context(ctx)
	wait := page.WaitNavigation(lifecycleEvent(opts.WaitUntil))

	if err := page.Navigate(url); err != nil {
		return ports.NewNavigationError(ctx, url, err, false)
	}
	wait()

	// wait returns silently when ctx ends.
	if err := ctx.Err(); err != nil {
		return ports.NewNavigationError(ctx, url, err, false)
	}
	return nil
}

// MeasureDocumentHeight evaluates the document height in the page.
func (s *Session) MeasureDocumentHeight(ctx context.Context) (float64, error) {
	res, err := s.page.Context(ctx).Eval(`() => ` + ports.DocumentHeightScript)
	if err != nil {
		return 0, fmt.Errorf("evaluate document height: %w", err)
	}
	return res.Value.Num(), nil
}

// CaptureImage takes a PNG screenshot.
func (s *Session) CaptureImage(ctx context.Context, opts ports.CaptureOptions) ([]byte, error) {
	data, err := s.page.Context(ctx).Screenshot(opts.FullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return data, nil
}

// Close closes the page and disposes of its incognito context. It does not
// depend on any request context, so it also works after cancellation.
func (s *Session) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return errors.Join(s.page.Context(ctx).Close(), disposeContext(s.browser))
}

var (
	_ ports.Launcher = (*Launcher)(nil)
	_ ports.Engine   = (*Engine)(nil)
	_ ports.Session  = (*Session)(nil)
)
