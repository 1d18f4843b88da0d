// Package engine shares one lazily launched renderer engine between
// concurrent captures.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/user/webshot/pkg/ports"
)

// ErrClosed is returned by OpenSession after Close.
var ErrClosed = errors.New("engine: closed")

// Shared launches its engine on first use and hands every caller a session
// of the same engine. It implements ports.Engine.
type Shared struct {
	launcher ports.Launcher
	logger   ports.Logger

	group singleflight.Group

	mu     sync.Mutex
	engine ports.Engine
	closed bool
}

// NewShared creates a Shared engine. Nothing is launched until the first
// OpenSession call.
func NewShared(launcher ports.Launcher, logger ports.Logger) *Shared {
	return &Shared{
		launcher: launcher,
		logger:   logger.WithComponent("engine"),
	}
}

// Engine returns the running engine, launching it if needed. Concurrent
// callers wait for the same launch. A failed launch is retried by the next
// caller.
func (s *Shared) Engine(ctx context.Context) (ports.Engine, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.engine != nil {
		e := s.engine
		s.mu.Unlock()
		return e, nil
	}
	s.mu.Unlock()

	ch := s.group.DoChan("launch", func() (interface{}, error) {
		return s.launch(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(ports.Engine), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Shared) launch(ctx context.Context) (ports.Engine, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.engine != nil {
		e := s.engine
		s.mu.Unlock()
		return e, nil
	}
	s.mu.Unlock()

	s.logger.Debug("Launching renderer engine")
	e, err := s.launcher.Launch(ctx)
	if err != nil {
		s.logger.Error("Renderer engine failed to launch: %v", err)
		return nil, fmt.Errorf("launch engine: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		// Close ran while launching.
		if cerr := e.Close(); cerr != nil {
			s.logger.Debug("Failed to close engine: %v", cerr)
		}
		return nil, ErrClosed
	}
	s.engine = e
	s.logger.Info("Renderer engine ready")
	return e, nil
}

// OpenSession opens an isolated session on the shared engine.
func (s *Shared) OpenSession(ctx context.Context, opts ports.SessionOptions) (ports.Session, error) {
	e, err := s.Engine(ctx)
	if err != nil {
		return nil, err
	}
	return e.OpenSession(ctx, opts)
}

// Close shuts the engine down if it was launched. Later OpenSession calls
// fail with ErrClosed. Close is idempotent.
func (s *Shared) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	e := s.engine
	s.engine = nil
	s.mu.Unlock()

	if e == nil {
		return nil
	}
	s.logger.Debug("Closing renderer engine")
	return e.Close()
}

var _ ports.Engine = (*Shared)(nil)
