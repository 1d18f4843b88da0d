package summarizer

import (
	"testing"
	"time"

	"github.com/user/webshot/pkg/capture"
	"github.com/user/webshot/pkg/ports"
)

func TestNewSummary(t *testing.T) {
	before := time.Now()
	summary := NewSummary()
	after := time.Now()

	if summary.GeneratedAt.Before(before) || summary.GeneratedAt.After(after) {
		t.Errorf("GeneratedAt should be between %v and %v, got %v",
			before, after, summary.GeneratedAt)
	}
}

func TestBuilder_WithResolved(t *testing.T) {
	resolved, err := capture.Request{URL: "https://Example.com/a"}.Resolve(nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	summary := NewBuilder().
		WithRenderer("rod").
		WithResolved(resolved).
		Build()

	if summary.Renderer != "rod" {
		t.Errorf("expected renderer rod, got %q", summary.Renderer)
	}
	if summary.Page.Host != "example.com" {
		t.Errorf("expected host example.com, got %q", summary.Page.Host)
	}
	s := summary.Settings
	if s.Width != 1280 || s.Height != 800 || s.DeviceScaleFactor != 1 {
		t.Errorf("unexpected geometry %+v", s)
	}
	if s.WaitUntil != string(ports.WaitNetworkIdle) || s.Timeout != 30*time.Second {
		t.Errorf("unexpected wait settings %+v", s)
	}
	if !s.FullPage || s.DarkMode {
		t.Errorf("unexpected flags %+v", s)
	}
}

func TestBuilder_WithImage(t *testing.T) {
	summary := NewBuilder().
		WithImage(ImageInfo{Path: "/tmp/a.png", Bytes: 42, Duration: time.Second}).
		Build()

	if summary.Image.Path != "/tmp/a.png" || summary.Image.Bytes != 42 {
		t.Errorf("unexpected image %+v", summary.Image)
	}
}
