// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/user/webshot/pkg/ports"
)

// Launcher is a mock implementation of ports.Launcher.
type Launcher struct {
	LaunchFunc func(ctx context.Context) (ports.Engine, error)

	launches atomic.Int32
}

func (m *Launcher) Launch(ctx context.Context) (ports.Engine, error) {
	m.launches.Add(1)
	if m.LaunchFunc != nil {
		return m.LaunchFunc(ctx)
	}
	return &Engine{}, nil
}

// Launches returns how many times Launch was called.
func (m *Launcher) Launches() int {
	return int(m.launches.Load())
}

// Engine is a mock implementation of ports.Engine. Without OpenSessionFunc
// it hands out sessions built by NewSession, or a default Session.
type Engine struct {
	OpenSessionFunc func(ctx context.Context, opts ports.SessionOptions) (ports.Session, error)
	NewSession      func(opts ports.SessionOptions) *Session
	CloseFunc       func() error

	mu       sync.Mutex
	sessions []*Session
	options  []ports.SessionOptions
	opened   atomic.Int32
	closed   atomic.Int32
}

func (m *Engine) OpenSession(ctx context.Context, opts ports.SessionOptions) (ports.Session, error) {
	m.opened.Add(1)
	m.mu.Lock()
	m.options = append(m.options, opts)
	m.mu.Unlock()

	if m.OpenSessionFunc != nil {
		return m.OpenSessionFunc(ctx, opts)
	}

	var s *Session
	if m.NewSession != nil {
		s = m.NewSession(opts)
	} else {
		s = &Session{}
	}
	m.mu.Lock()
	m.sessions = append(m.sessions, s)
	m.mu.Unlock()
	return s, nil
}

func (m *Engine) Close() error {
	m.closed.Add(1)
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Opened returns how many sessions were requested.
func (m *Engine) Opened() int {
	return int(m.opened.Load())
}

// Closed returns how many times Close was called.
func (m *Engine) Closed() int {
	return int(m.closed.Load())
}

// Sessions returns the sessions created by the default OpenSession path.
func (m *Engine) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Session(nil), m.sessions...)
}

// SessionOptions returns the options passed to every OpenSession call.
func (m *Engine) SessionOptions() []ports.SessionOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.SessionOptions(nil), m.options...)
}

// Session is a mock implementation of ports.Session.
type Session struct {
	NavigateFunc              func(ctx context.Context, url string, opts ports.NavigateOptions) error
	MeasureDocumentHeightFunc func(ctx context.Context) (float64, error)
	CaptureImageFunc          func(ctx context.Context, opts ports.CaptureOptions) ([]byte, error)
	CloseFunc                 func() error

	mu          sync.Mutex
	navigations []ports.NavigateOptions
	captures    []ports.CaptureOptions
	measured    atomic.Int32
	closed      atomic.Int32
}

func (m *Session) Navigate(ctx context.Context, url string, opts ports.NavigateOptions) error {
	m.mu.Lock()
	m.navigations = append(m.navigations, opts)
	m.mu.Unlock()
	if m.NavigateFunc != nil {
		return m.NavigateFunc(ctx, url, opts)
	}
	return nil
}

func (m *Session) MeasureDocumentHeight(ctx context.Context) (float64, error) {
	m.measured.Add(1)
	if m.MeasureDocumentHeightFunc != nil {
		return m.MeasureDocumentHeightFunc(ctx)
	}
	return 600, nil
}

func (m *Session) CaptureImage(ctx context.Context, opts ports.CaptureOptions) ([]byte, error) {
	m.mu.Lock()
	m.captures = append(m.captures, opts)
	m.mu.Unlock()
	if m.CaptureImageFunc != nil {
		return m.CaptureImageFunc(ctx, opts)
	}
	return []byte("\x89PNG\r\n\x1a\n"), nil
}

func (m *Session) Close() error {
	m.closed.Add(1)
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Navigations returns the options of every Navigate call.
func (m *Session) Navigations() []ports.NavigateOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.NavigateOptions(nil), m.navigations...)
}

// Captures returns the options of every CaptureImage call.
func (m *Session) Captures() []ports.CaptureOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.CaptureOptions(nil), m.captures...)
}

// Measured returns how many times the document height was measured.
func (m *Session) Measured() int {
	return int(m.measured.Load())
}

// Closed returns how many times Close was called.
func (m *Session) Closed() int {
	return int(m.closed.Load())
}

var (
	_ ports.Launcher = (*Launcher)(nil)
	_ ports.Engine   = (*Engine)(nil)
	_ ports.Session  = (*Session)(nil)
)
