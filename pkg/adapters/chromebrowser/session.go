package chromebrowser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/user/webshot/pkg/ports"
)

// Session is one tab in its own browser context. It implements
// ports.Session.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger ports.Logger
}

// lifecycleEvent maps a wait condition to the Page.lifecycleEvent name
// Chrome reports for it.
func lifecycleEvent(w ports.WaitUntil) string {
	switch w {
	case ports.WaitLoad:
		return "load"
	case ports.WaitDOMContentLoaded:
		return "DOMContentLoaded"
	default:
		return "networkIdle"
	}
}

// lifecycleTracker records lifecycle events per loader, since events of a
// navigation can arrive before Page.navigate returns its loader id.
type lifecycleTracker struct {
	mu     sync.Mutex
	seen   map[cdp.LoaderID]map[string]bool
	notify chan struct{}
}

func newLifecycleTracker() *lifecycleTracker {
	return &lifecycleTracker{
		seen:   make(map[cdp.LoaderID]map[string]bool),
		notify: make(chan struct{}, 1),
	}
}

func (t *lifecycleTracker) record(loader cdp.LoaderID, name string) {
	t.mu.Lock()
	if t.seen[loader] == nil {
		t.seen[loader] = make(map[string]bool)
	}
	t.seen[loader][name] = true
	t.mu.Unlock()

	select {
	case t.notify <- struct{}{}:
	default:
	}
}

func (t *lifecycleTracker) reached(loader cdp.LoaderID, name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen[loader][name]
}

// wait blocks until the loader reports name or ctx ends.
func (t *lifecycleTracker) wait(ctx context.Context, loader cdp.LoaderID, name string) error {
	for {
		if t.reached(loader, name) {
			return nil
		}
		select {
		case <-t.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
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

	event := lifecycleEvent(opts.WaitUntil)
	tracker := newLifecycleTracker()

	listenCtx, stopListening := context.WithCancel(s.ctx)
	defer stopListening()
	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok {
			tracker.record(e.LoaderID, e.Name)
		}
	})

	var errorText string
	err := runWith(ctx, s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		frameID, loaderID, text, _, err := page.Navigate(url).Do(ctx)
		if err != nil {
			return err
		}
		if text != "" {
			errorText = text
			return nil
		}
		// Same-document navigations have no loader.
		if loaderID == "" {
			return nil
		}
		s.logger.Debug("Waiting for %s on frame %s", event, frameID)
		return tracker.wait(ctx, loaderID, event)
	}))

	if err != nil {
		return ports.NewNavigationError(ctx, url, err, false)
	}
	if errorText != "" {
		return ports.NewNavigationError(ctx, url, errors.New(errorText), false)
	}
	return nil
}

// MeasureDocumentHeight evaluates the document height in the page.
func (s *Session) MeasureDocumentHeight(ctx context.Context) (float64, error) {
	var height float64
	if err := runWith(ctx, s.ctx, chromedp.Evaluate(ports.DocumentHeightScript, &height)); err != nil {
		return 0, fmt.Errorf("evaluate document height: %w", err)
	}
	return height, nil
}

// CaptureImage takes a PNG screenshot of the viewport or the whole page.
func (s *Session) CaptureImage(ctx context.Context, opts ports.CaptureOptions) ([]byte, error) {
	var buf []byte
	var action chromedp.Action
	if opts.FullPage {
		// Quality 100 selects PNG.
		action = chromedp.FullScreenshot(&buf, 100)
	} else {
		action = chromedp.CaptureScreenshot(&buf)
	}
	if err := runWith(ctx, s.ctx, action); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return buf, nil
}

// Close closes the tab and disposes of its browser context.
func (s *Session) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close tab: %w", err)
	}
	return nil
}

var _ ports.Session = (*Session)(nil)
