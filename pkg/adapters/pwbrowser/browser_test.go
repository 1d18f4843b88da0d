package pwbrowser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/user/webshot/pkg/adapters/logger"
	"github.com/user/webshot/pkg/ports"
)

func TestWaitUntilState(t *testing.T) {
	tests := []struct {
		in   ports.WaitUntil
		want *playwright.WaitUntilState
	}{
		{ports.WaitLoad, playwright.WaitUntilStateLoad},
		{ports.WaitDOMContentLoaded, playwright.WaitUntilStateDomcontentloaded},
		{ports.WaitNetworkIdle, playwright.WaitUntilStateNetworkidle},
	}
	for _, tt := range tests {
		if got := waitUntilState(tt.in); *got != *tt.want {
			t.Errorf("waitUntilState(%s) = %s, want %s", tt.in, *got, *tt.want)
		}
	}
}

func TestTimeoutMs(t *testing.T) {
	if got := timeoutMs(context.Background(), 1500*time.Millisecond); got != 1500 {
		t.Errorf("expected 1500, got %g", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if got := timeoutMs(ctx, time.Minute); got > 100 || got < 1 {
		t.Errorf("expected deadline to shorten the timeout, got %g", got)
	}

	expired, cancel2 := context.WithTimeout(context.Background(), -time.Second)
	defer cancel2()
	if got := timeoutMs(expired, time.Minute); got != 1 {
		t.Errorf("expected minimal timeout for an expired context, got %g", got)
	}
}

func TestToFloat(t *testing.T) {
	for _, v := range []interface{}{600, int64(600), 600.0} {
		got, err := toFloat(v)
		if err != nil || got != 600 {
			t.Errorf("toFloat(%T) = %g, %v", v, got, err)
		}
	}
	if _, err := toFloat("600"); err == nil {
		t.Error("expected error for a string")
	}
}

// TestSession_Capture drives a real Chromium. Playwright downloads its
// driver on first use, so it only runs when WEBSHOT_PLAYWRIGHT is set.
func TestSession_Capture(t *testing.T) {
	if os.Getenv("WEBSHOT_PLAYWRIGHT") == "" {
		t.Skip("set WEBSHOT_PLAYWRIGHT=1 to run Playwright tests")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			select {
			case <-time.After(5 * time.Second):
			case <-r.Context().Done():
			}
		}
		fmt.Fprint(w, `<html><body style="margin:0"><div style="height:2500px">tall</div></body></html>`)
	}))
	defer srv.Close()

	engine, err := NewLauncher(Options{Headless: true, Install: true}, logger.NewNoop()).Launch(context.Background())
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	sess, err := engine.OpenSession(ctx, ports.SessionOptions{Width: 800, Height: 600, DeviceScaleFactor: 1, ColorScheme: ports.ColorSchemeDark})
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	defer sess.Close()

	if err := sess.Navigate(ctx, srv.URL, ports.NavigateOptions{WaitUntil: ports.WaitLoad, Timeout: 10 * time.Second}); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	height, err := sess.MeasureDocumentHeight(ctx)
	if err != nil || height < 2500 {
		t.Fatalf("MeasureDocumentHeight = %g, %v", height, err)
	}
	data, err := sess.CaptureImage(ctx, ports.CaptureOptions{FullPage: true})
	if err != nil {
		t.Fatalf("CaptureImage: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("expected PNG output")
	}

	err = sess.Navigate(ctx, srv.URL+"/slow", ports.NavigateOptions{WaitUntil: ports.WaitLoad, Timeout: 300 * time.Millisecond})
	var navErr *ports.NavigationError
	if !errors.As(err, &navErr) || !navErr.Timeout() {
		t.Errorf("expected navigation timeout, got %v", err)
	}
}
