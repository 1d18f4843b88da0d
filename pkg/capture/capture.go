// Package capture turns an untrusted screenshot request into a PNG image.
// Every request is admitted and validated before a renderer session is
// opened, and every renderer failure is reported as an errcode.Error.
package capture

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/google/uuid"

	"github.com/user/webshot/pkg/errcode"
	"github.com/user/webshot/pkg/guard"
	"github.com/user/webshot/pkg/ports"
)

// MIMEType of every capture result.
const MIMEType = "image/png"

// Result is a successful capture.
type Result struct {
	Data        []byte `json:"-"`
	ImageBase64 string `json:"imageBytesBase64"`
	MIMEType    string `json:"mimeType"`
}

// Capturer runs the admit, open, navigate, measure, capture, close
// lifecycle against a renderer engine.
type Capturer struct {
	engine ports.Engine
	gate   *guard.Gate
	logger ports.Logger
	newID  func() string
}

// New creates a Capturer. A nil gate applies only the built-in admission
// rules.
func New(engine ports.Engine, gate *guard.Gate, logger ports.Logger) *Capturer {
	return &Capturer{
		engine: engine,
		gate:   gate,
		logger: logger.WithComponent("capture"),
		newID:  requestID,
	}
}

func requestID() string {
	return uuid.NewString()[:8]
}

// Capture takes one screenshot. Errors are always *errcode.Error.
func (c *Capturer) Capture(ctx context.Context, req Request) (*Result, error) {
	log := c.logger.WithComponent(c.newID())

	res, err := c.capture(ctx, log, req)
	if err != nil {
		ce := errcode.From(err)
		log.Warn("Capture failed: %s", ce)
		return nil, ce
	}
	return res, nil
}

func (c *Capturer) capture(ctx context.Context, log ports.Logger, req Request) (*Result, error) {
	r, err := req.Resolve(c.gate)
	if err != nil {
		return nil, err
	}
	log.Info("Capturing %s (%dx%d @%gx, full page: %t)", r.URL, r.Width, r.Height, r.DeviceScaleFactor, r.FullPage)

	session, err := c.engine.OpenSession(ctx, ports.SessionOptions{
		Width:             r.Width,
		Height:            r.Height,
		DeviceScaleFactor: r.DeviceScaleFactor,
		ColorScheme:       r.ColorScheme(),
	})
	if err != nil {
		return nil, errcode.Newf(errcode.ScreenshotFailed, "could not open renderer session: %v", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Debug("Ignoring session close error: %v", cerr)
		}
	}()

	log.Debug("Navigating to %s (wait until %s, timeout %s)", r.URL, r.WaitUntil, r.Timeout)
	if err := navigate(ctx, session, r); err != nil {
		return nil, err
	}

	if r.FullPage {
		height, err := session.MeasureDocumentHeight(ctx)
		if err != nil {
			return nil, errcode.Newf(errcode.ScreenshotFailed, "could not determine total page height: %v", err)
		}
		log.Debug("Document height is %g", height)
		if err := guard.CheckFullPageHeight(height); err != nil {
			return nil, err
		}
	}

	data, err := session.CaptureImage(ctx, ports.CaptureOptions{FullPage: r.FullPage})
	if err != nil {
		return nil, errcode.Newf(errcode.ScreenshotFailed, "screenshot failed: %v", err)
	}
	if len(data) == 0 {
		return nil, errcode.New(errcode.ScreenshotFailed, "screenshot failed: renderer returned an empty image")
	}

	log.Info("Captured %s (%d bytes)", r.URL, len(data))
	return &Result{
		Data:        data,
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MIMEType:    MIMEType,
	}, nil
}

// navigate bounds the navigation by the request timeout and maps its
// failure to a coded error.
func navigate(ctx context.Context, session ports.Session, r Resolved) error {
	navCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	err := session.Navigate(navCtx, r.URL, ports.NavigateOptions{
		WaitUntil: r.WaitUntil,
		Timeout:   r.Timeout,
	})
	if err == nil {
		return nil
	}

	var navErr *ports.NavigationError
	timedOut := errors.As(err, &navErr) && navErr.Timeout()
	if navErr == nil && errors.Is(navCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		timedOut = true
	}
	if timedOut {
		return errcode.Newf(errcode.NavigationTimeout, "page load timed out: %s", r.URL)
	}

	msg := err.Error()
	if navErr != nil && navErr.Err != nil {
		msg = navErr.Err.Error()
	}
	return errcode.Newf(errcode.ScreenshotFailed, "navigation failed: %s", msg)
}
