package ports

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Launcher starts a renderer engine. Launching is expensive; callers
// normally share one engine across captures.
type Launcher interface {
	// Launch starts the engine. The returned engine must outlive ctx.
	Launch(ctx context.Context) (Engine, error)
}

// Engine is a running renderer able to produce isolated sessions.
type Engine interface {
	// OpenSession creates a browsing context with its own storage,
	// viewport, scale factor and colour scheme.
	OpenSession(ctx context.Context, opts SessionOptions) (Session, error)

	// Close shuts the engine down.
	Close() error
}

// Session is a single isolated page.
type Session interface {
	// Navigate loads url and waits for opts.WaitUntil. Failures are
	// reported as *NavigationError.
	Navigate(ctx context.Context, url string, opts NavigateOptions) error

	// MeasureDocumentHeight returns the total document height in CSS
	// pixels: the maximum of scroll/offset/client height over the
	// document element and the body.
	MeasureDocumentHeight(ctx context.Context) (float64, error)

	// CaptureImage renders the page as PNG.
	CaptureImage(ctx context.Context, opts CaptureOptions) ([]byte, error)

	// Close releases the session.
	Close() error
}

// ColorScheme is the emulated prefers-color-scheme value.
type ColorScheme string

const (
	ColorSchemeLight ColorScheme = "light"
	ColorSchemeDark  ColorScheme = "dark"
)

// WaitUntil selects the page lifecycle event navigation waits for.
type WaitUntil string

const (
	WaitLoad             WaitUntil = "load"
	WaitDOMContentLoaded WaitUntil = "domcontentloaded"
	WaitNetworkIdle      WaitUntil = "networkidle"
)

// Valid reports whether w is a known wait condition.
func (w WaitUntil) Valid() bool {
	switch w {
	case WaitLoad, WaitDOMContentLoaded, WaitNetworkIdle:
		return true
	}
	return false
}

// SessionOptions configures a new session.
type SessionOptions struct {
	Width             int // CSS pixels
	Height            int // CSS pixels
	DeviceScaleFactor float64
	ColorScheme       ColorScheme
}

// NavigateOptions configures a navigation.
type NavigateOptions struct {
	WaitUntil WaitUntil
	Timeout   time.Duration
}

// CaptureOptions configures an image capture.
type CaptureOptions struct {
	FullPage bool
}

// DocumentHeightScript evaluates to the total document height.
const DocumentHeightScript = `(() => {
	const doc = document.documentElement;
	const body = document.body;
	return Math.max(
		doc ? doc.scrollHeight : 0,
		doc ? doc.offsetHeight : 0,
		doc ? doc.clientHeight : 0,
		body ? body.scrollHeight : 0,
		body ? body.offsetHeight : 0,
		body ? body.clientHeight : 0
	);
})()`

// NavigationFailure classifies a failed navigation.
type NavigationFailure int

const (
	// NavigationOther is any failure other than a timeout.
	NavigationOther NavigationFailure = iota
	// NavigationTimedOut means the wait condition was not reached in time.
	NavigationTimedOut
)

// NavigationError is returned by Session.Navigate. Adapters decide whether
// a failure is a timeout; callers never inspect error text.
type NavigationError struct {
	Kind NavigationFailure
	URL  string
	Err  error
}

// NewNavigationError classifies err. A failure is a timeout when the
// adapter says so or when ctx expired.
func NewNavigationError(ctx context.Context, url string, err error, timedOut bool) *NavigationError {
	kind := NavigationOther
	if timedOut || errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		kind = NavigationTimedOut
	}
	return &NavigationError{Kind: kind, URL: url, Err: err}
}

func (e *NavigationError) Error() string {
	if e.Kind == NavigationTimedOut {
		return fmt.Sprintf("navigation to %s timed out", e.URL)
	}
	if e.Err == nil {
		return fmt.Sprintf("navigation to %s failed", e.URL)
	}
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the navigation timed out.
func (e *NavigationError) Timeout() bool {
	return e.Kind == NavigationTimedOut
}
