// Package chromebrowser implements the renderer ports on top of chromedp.
package chromebrowser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/user/webshot/pkg/ports"
)

// Options configures how Chrome is started.
type Options struct {
	// ChromePath is the Chrome executable. Empty means CHROME_PATH, then
	// the system defaults.
	ChromePath string
	// RemoteURL attaches to a running Chrome (DevTools websocket or
	// http://host:port) instead of starting one.
	RemoteURL         string
	Headless          bool
	IgnoreHTTPSErrors bool
	ProxyServer       string
}

// Launcher starts Chrome through chromedp. It implements ports.Launcher.
type Launcher struct {
	opts   Options
	logger ports.Logger
}

// NewLauncher creates a Launcher.
func NewLauncher(opts Options, logger ports.Logger) *Launcher {
	return &Launcher{opts: opts, logger: logger.WithComponent("chromedp")}
}

// allocatorOptions returns the exec allocator flags for opts.
func allocatorOptions(opts Options, chromePath string) []chromedp.ExecAllocatorOption {
	flags := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.ExecPath(chromePath),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("safebrowsing-disable-auto-update", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("no-zygote", true),
	}

	if opts.Headless {
		flags = append(flags, chromedp.Flag("headless", "new"))
	}

	if opts.IgnoreHTTPSErrors {
		flags = append(flags,
			chromedp.Flag("ignore-certificate-errors", true),
			chromedp.Flag("ignore-certificate-errors-spki-list", true))
	}

	if opts.ProxyServer != "" {
		flags = append(flags, chromedp.Flag("proxy-server", opts.ProxyServer))
	}

	return flags
}

// Launch starts (or attaches to) Chrome. The browser lives until the
// returned engine is closed, regardless of ctx.
func (l *Launcher) Launch(ctx context.Context) (ports.Engine, error) {
	parent := context.WithoutCancel(ctx)

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if l.opts.RemoteURL != "" {
		l.logger.Debug("Attaching to Chrome at %s", l.opts.RemoteURL)
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(parent, l.opts.RemoteURL)
	} else {
		chromePath := ResolveChromePath(l.opts.ChromePath)
		if chromePath == "" {
			return nil, fmt.Errorf("chrome not found: install Chrome/Chromium, set %s, or configure chrome_path", ChromePathEnv)
		}
		l.logger.Debug("Launching Chrome from %s", chromePath)
		allocCtx, allocCancel = chromedp.NewExecAllocator(parent, allocatorOptions(l.opts, chromePath)...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run allocates the browser and ties its lifetime to the
	// context it is given, so it must not be a request-scoped one.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	return &Engine{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		logger:        l.logger,
	}, nil
}

// Engine is a running Chrome. It implements ports.Engine.
type Engine struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	logger        ports.Logger

	closeOnce sync.Once
}

// OpenSession opens a tab in a fresh browser context, so cookies and
// storage are not shared with other sessions.
func (e *Engine) OpenSession(ctx context.Context, opts ports.SessionOptions) (ports.Session, error) {
	if e.browserCtx.Err() != nil {
		return nil, errors.New("chrome is not running")
	}

	tabCtx, tabCancel := chromedp.NewContext(e.browserCtx, chromedp.WithNewBrowserContext())
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("create tab: %w", err)
	}

	err := runWith(ctx, tabCtx,
		page.Enable(),
		page.SetLifecycleEventsEnabled(true),
		emulation.SetDeviceMetricsOverride(int64(opts.Width), int64(opts.Height), opts.DeviceScaleFactor, false),
		emulation.SetEmulatedMedia().WithFeatures([]*emulation.MediaFeature{
			{Name: "prefers-color-scheme", Value: string(opts.ColorScheme)},
		}),
	)
	if err != nil {
		tabCancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	return &Session{
		ctx:    tabCtx,
		cancel: tabCancel,
		logger: e.logger,
	}, nil
}

// Close shuts Chrome down. Attached remote browsers are only disconnected.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.browserCancel()
		// Give Chrome a moment to shut down gracefully before the allocator
		// kills it.
		time.Sleep(100 * time.Millisecond)
		e.allocCancel()
		e.logger.Debug("Chrome closed")
	})
	return nil
}

// runWith runs actions on a chromedp context while also honouring the
// caller's ctx, which is not derived from the browser context.
func runWith(ctx, cdpCtx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(cdpCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ctx.Err(), err)
	}
	return err
}

var (
	_ ports.Launcher = (*Launcher)(nil)
	_ ports.Engine   = (*Engine)(nil)
)
