// Package summarizer produces human readable reports for completed captures.
package summarizer

import (
	"time"

	"github.com/user/webshot/pkg/capture"
)

// Summary contains everything known about one capture.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	Renderer    string

	// Page information
	Page PageInfo

	// Capture settings after defaults
	Settings Settings

	// Output image
	Image ImageInfo
}

// PageInfo identifies the captured page.
type PageInfo struct {
	URL  string
	Host string
}

// Settings mirrors capture.Resolved.
type Settings struct {
	Width             int
	Height            int
	DeviceScaleFactor float64
	WaitUntil         string
	Timeout           time.Duration
	FullPage          bool
	DarkMode          bool
}

// ImageInfo describes the saved PNG.
type ImageInfo struct {
	Path     string
	FileURL  string
	Bytes    int
	Duration time.Duration // wall time of the capture
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithRenderer sets the renderer name.
func (b *Builder) WithRenderer(name string) *Builder {
	b.summary.Renderer = name
	return b
}

// WithResolved sets page and settings from a resolved request.
func (b *Builder) WithResolved(r capture.Resolved) *Builder {
	b.summary.Page = PageInfo{URL: r.URL, Host: r.Host}
	b.summary.Settings = Settings{
		Width:             r.Width,
		Height:            r.Height,
		DeviceScaleFactor: r.DeviceScaleFactor,
		WaitUntil:         string(r.WaitUntil),
		Timeout:           r.Timeout,
		FullPage:          r.FullPage,
		DarkMode:          r.DarkMode,
	}
	return b
}

// WithImage sets output image information.
func (b *Builder) WithImage(image ImageInfo) *Builder {
	b.summary.Image = image
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
