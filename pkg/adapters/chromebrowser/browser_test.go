package chromebrowser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/user/webshot/pkg/adapters/logger"
	"github.com/user/webshot/pkg/ports"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// launchOrSkip starts Chrome, skipping the test when none is installed.
func launchOrSkip(t *testing.T) ports.Engine {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if ResolveChromePath("") == "" {
		t.Skip("Chrome not installed")
	}

	engine, err := NewLauncher(Options{Headless: true}, logger.NewNoop()).Launch(context.Background())
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	t.Cleanup(func() { engine.Close() })
	return engine
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/tall", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body style="margin:0"><div style="height:3000px">tall</div></body></html>`)
	})
	mux.HandleFunc("/scheme", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><script>document.title = matchMedia('(prefers-color-scheme: dark)').matches ? 'dark' : 'light'</script></body></html>`)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
		fmt.Fprint(w, "late")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSession_FullPageCapture(t *testing.T) {
	engine := launchOrSkip(t)
	srv := testServer(t)
	ctx := context.Background()

	sess, err := engine.OpenSession(ctx, ports.SessionOptions{Width: 800, Height: 600, DeviceScaleFactor: 1, ColorScheme: ports.ColorSchemeLight})
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	defer sess.Close()

	if err := sess.Navigate(ctx, srv.URL+"/tall", ports.NavigateOptions{WaitUntil: ports.WaitLoad, Timeout: 10 * time.Second}); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	height, err := sess.MeasureDocumentHeight(ctx)
	if err != nil {
		t.Fatalf("MeasureDocumentHeight: %v", err)
	}
	if height < 3000 {
		t.Errorf("expected height >= 3000, got %g", height)
	}

	data, err := sess.CaptureImage(ctx, ports.CaptureOptions{FullPage: true})
	if err != nil {
		t.Fatalf("CaptureImage: %v", err)
	}
	if !bytes.HasPrefix(data, pngSignature) {
		t.Error("expected PNG output")
	}
}

func TestSession_NavigationTimeout(t *testing.T) {
	engine := launchOrSkip(t)
	srv := testServer(t)
	ctx := context.Background()

	sess, err := engine.OpenSession(ctx, ports.SessionOptions{Width: 800, Height: 600, DeviceScaleFactor: 1, ColorScheme: ports.ColorSchemeLight})
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	defer sess.Close()

	err = sess.Navigate(ctx, srv.URL+"/slow", ports.NavigateOptions{WaitUntil: ports.WaitLoad, Timeout: 300 * time.Millisecond})
	var navErr *ports.NavigationError
	if !errors.As(err, &navErr) {
		t.Fatalf("expected NavigationError, got %v", err)
	}
	if !navErr.Timeout() {
		t.Errorf("expected timeout, got %v", err)
	}
}

func TestSession_NavigationFailure(t *testing.T) {
	engine := launchOrSkip(t)
	ctx := context.Background()

	sess, err := engine.OpenSession(ctx, ports.SessionOptions{Width: 800, Height: 600, DeviceScaleFactor: 1, ColorScheme: ports.ColorSchemeLight})
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	defer sess.Close()

	err = sess.Navigate(ctx, "http://nonexistent.invalid/", ports.NavigateOptions{WaitUntil: ports.WaitLoad, Timeout: 10 * time.Second})
	var navErr *ports.NavigationError
	if !errors.As(err, &navErr) {
		t.Fatalf("expected NavigationError, got %v", err)
	}
	if navErr.Timeout() {
		t.Errorf("expected a non-timeout failure, got %v", err)
	}
}

func TestSession_ColorScheme(t *testing.T) {
	engine := launchOrSkip(t)
	srv := testServer(t)
	ctx := context.Background()

	for _, scheme := range []ports.ColorScheme{ports.ColorSchemeLight, ports.ColorSchemeDark} {
		t.Run(string(scheme), func(t *testing.T) {
			sess, err := engine.OpenSession(ctx, ports.SessionOptions{Width: 400, Height: 300, DeviceScaleFactor: 1, ColorScheme: scheme})
			if err != nil {
				t.Fatalf("OpenSession: %v", err)
			}
			defer sess.Close()

			if err := sess.Navigate(ctx, srv.URL+"/scheme", ports.NavigateOptions{WaitUntil: ports.WaitLoad, Timeout: 10 * time.Second}); err != nil {
				t.Fatalf("Navigate: %v", err)
			}

			cs := sess.(*Session)
			var title string
			if err := runWith(ctx, cs.ctx, chromedp.Title(&title)); err != nil {
				t.Fatalf("title: %v", err)
			}
			if title != string(scheme) {
				t.Errorf("expected %s, got %s", scheme, title)
			}
		})
	}
}
