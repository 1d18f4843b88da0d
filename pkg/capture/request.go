package capture

import (
	"math"
	"time"

	"github.com/user/webshot/pkg/errcode"
	"github.com/user/webshot/pkg/guard"
	"github.com/user/webshot/pkg/ports"
)

// Defaults applied to absent request fields.
const (
	DefaultWidth             = 1280
	DefaultHeight            = 800
	DefaultDeviceScaleFactor = 1.0
	DefaultWaitUntil         = ports.WaitNetworkIdle
	DefaultTimeoutMs         = 30000
	DefaultFullPage          = true
	DefaultDarkMode          = false
)

// Viewport is the requested render surface in CSS pixels. Dimensions are
// kept as JSON numbers so that fractional values can be rejected.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Request is a partially specified capture request. Nil fields take their
// defaults.
type Request struct {
	URL               string          `json:"url"`
	FullPage          *bool           `json:"fullPage,omitempty"`
	Viewport          *Viewport       `json:"viewport,omitempty"`
	DeviceScaleFactor *float64        `json:"deviceScaleFactor,omitempty"`
	WaitUntil         ports.WaitUntil `json:"waitUntil,omitempty"`
	TimeoutMs         *float64        `json:"timeoutMs,omitempty"`
	DarkMode          *bool           `json:"darkMode,omitempty"`
}

// Resolved is a request with every field present and valid.
type Resolved struct {
	URL               string
	Host              string
	FullPage          bool
	Width             int
	Height            int
	DeviceScaleFactor float64
	WaitUntil         ports.WaitUntil
	Timeout           time.Duration
	DarkMode          bool
}

// WithDefaults returns a copy of r with every absent field filled in.
func (r Request) WithDefaults() Request {
	out := r
	if out.FullPage == nil {
		out.FullPage = boolPtr(DefaultFullPage)
	}
	if out.Viewport == nil {
		out.Viewport = &Viewport{Width: DefaultWidth, Height: DefaultHeight}
	} else {
		vp := *out.Viewport
		out.Viewport = &vp
	}
	if out.DeviceScaleFactor == nil {
		out.DeviceScaleFactor = floatPtr(DefaultDeviceScaleFactor)
	}
	if out.WaitUntil == "" {
		out.WaitUntil = DefaultWaitUntil
	}
	if out.TimeoutMs == nil {
		out.TimeoutMs = floatPtr(DefaultTimeoutMs)
	}
	if out.DarkMode == nil {
		out.DarkMode = boolPtr(DefaultDarkMode)
	}
	return out
}

// Resolve applies defaults, admits the URL through gate and validates the
// numeric fields. The URL is checked first, so a request that is wrong in
// several ways reports its URL problem.
func (r Request) Resolve(gate *guard.Gate) (Resolved, error) {
	d := r.WithDefaults()

	adm, err := gate.Admit(d.URL)
	if err != nil {
		return Resolved{}, err
	}

	if err := guard.CheckViewportValues(d.Viewport.Width, d.Viewport.Height); err != nil {
		return Resolved{}, err
	}
	if err := guard.CheckDeviceScaleFactor(*d.DeviceScaleFactor); err != nil {
		return Resolved{}, err
	}
	if err := guard.CheckTimeoutValue(*d.TimeoutMs); err != nil {
		return Resolved{}, err
	}
	if !d.WaitUntil.Valid() {
		return Resolved{}, errcode.Newf(errcode.InvalidURL, "waitUntil must be one of load, domcontentloaded, networkidle, got %q", d.WaitUntil)
	}

	return Resolved{
		URL:               adm.URL.String(),
		Host:              adm.Host,
		FullPage:          *d.FullPage,
		Width:             int(d.Viewport.Width),
		Height:            int(d.Viewport.Height),
		DeviceScaleFactor: *d.DeviceScaleFactor,
		WaitUntil:         d.WaitUntil,
		Timeout:           timeoutDuration(*d.TimeoutMs),
		DarkMode:          *d.DarkMode,
	}, nil
}

// timeoutDuration converts milliseconds, saturating instead of overflowing.
func timeoutDuration(ms float64) time.Duration {
	if ms >= float64(math.MaxInt64/int64(time.Millisecond)) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms) * time.Millisecond
}

// ColorScheme returns the emulated colour scheme.
func (r Resolved) ColorScheme() ports.ColorScheme {
	if r.DarkMode {
		return ports.ColorSchemeDark
	}
	return ports.ColorSchemeLight
}

func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

// Bool returns a pointer to b, for building requests.
func Bool(b bool) *bool { return boolPtr(b) }

// Float returns a pointer to f, for building requests.
func Float(f float64) *float64 { return floatPtr(f) }
