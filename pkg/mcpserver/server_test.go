package mcpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/user/webshot/pkg/adapters/logger"
	"github.com/user/webshot/pkg/capture"
	"github.com/user/webshot/pkg/errcode"
	"github.com/user/webshot/pkg/mocks"
	"github.com/user/webshot/pkg/ports"
)

var testImpl = &mcp.Implementation{Name: "webshot-test", Version: "0.0.0"}

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake")

// fakeCapturer records requests and returns a canned result.
type fakeCapturer struct {
	CaptureFunc func(ctx context.Context, req capture.Request) (*capture.Result, error)
	requests    []capture.Request
}

func (f *fakeCapturer) Capture(ctx context.Context, req capture.Request) (*capture.Result, error) {
	f.requests = append(f.requests, req)
	if f.CaptureFunc != nil {
		return f.CaptureFunc(ctx, req)
	}
	return &capture.Result{Data: pngBytes, MIMEType: capture.MIMEType}, nil
}

func clientSession(t *testing.T, c Capturer) *mcp.ClientSession {
	t.Helper()
	srv := New(c, logger.NewNoop(), "test")

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callScreenshot(t *testing.T, session *mcp.ClientSession, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolName,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	return result
}

func errorText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if !result.IsError {
		t.Fatal("expected an error result")
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func TestListTools(t *testing.T) {
	session := clientSession(t, &fakeCapturer{})

	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(res.Tools) != 1 || res.Tools[0].Name != ToolName {
		t.Fatalf("expected only the %s tool, got %+v", ToolName, res.Tools)
	}
}

func TestScreenshot_Success(t *testing.T) {
	fc := &fakeCapturer{}
	session := clientSession(t, fc)

	result := callScreenshot(t, session, map[string]any{
		"url":       "https://example.com",
		"fullPage":  false,
		"viewport":  map[string]any{"width": 375, "height": 667},
		"waitUntil": "load",
		"darkMode":  true,
	})
	if result.IsError {
		t.Fatalf("unexpected error result: %+v", result.Content)
	}
	img, ok := result.Content[0].(*mcp.ImageContent)
	if !ok {
		t.Fatalf("expected ImageContent, got %T", result.Content[0])
	}
	if img.MIMEType != "image/png" || string(img.Data) != string(pngBytes) {
		t.Errorf("unexpected image %s (%d bytes)", img.MIMEType, len(img.Data))
	}

	req := fc.requests[0]
	if req.URL != "https://example.com" || *req.FullPage || !*req.DarkMode {
		t.Errorf("unexpected request %+v", req)
	}
	if req.Viewport == nil || req.Viewport.Width != 375 || req.Viewport.Height != 667 {
		t.Errorf("unexpected viewport %+v", req.Viewport)
	}
	if req.WaitUntil != ports.WaitLoad {
		t.Errorf("unexpected waitUntil %s", req.WaitUntil)
	}
	if req.TimeoutMs != nil || req.DeviceScaleFactor != nil {
		t.Error("absent fields must stay unset so defaults apply")
	}
}

func TestScreenshot_Base64OnlyResult(t *testing.T) {
	fc := &fakeCapturer{
		CaptureFunc: func(ctx context.Context, req capture.Request) (*capture.Result, error) {
			return &capture.Result{ImageBase64: "aGVsbG8=", MIMEType: capture.MIMEType}, nil
		},
	}
	session := clientSession(t, fc)

	result := callScreenshot(t, session, map[string]any{"url": "https://example.com"})
	img, ok := result.Content[0].(*mcp.ImageContent)
	if !ok || string(img.Data) != "hello" {
		t.Fatalf("unexpected content %+v", result.Content)
	}
}

func TestScreenshot_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded", errcode.New(errcode.BlockedDomain, "government sites are not allowed: example.gov"), "BLOCKED_DOMAIN: government sites are not allowed: example.gov"},
		{"foreign", errors.New("boom"), "SCREENSHOT_FAILED: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeCapturer{
				CaptureFunc: func(ctx context.Context, req capture.Request) (*capture.Result, error) { return nil, tt.err },
			}
			session := clientSession(t, fc)

			if got := errorText(t, callScreenshot(t, session, map[string]any{"url": "https://example.com"})); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScreenshot_EndToEnd(t *testing.T) {
	engine := &mocks.Engine{}
	c := capture.New(engine, nil, logger.NewNoop())
	session := clientSession(t, c)

	tests := []struct {
		name string
		args map[string]any
		want errcode.Code
	}{
		{"missing url", map[string]any{}, errcode.InvalidURL},
		{"ftp", map[string]any{"url": "ftp://example.com"}, errcode.InvalidURL},
		{"loopback", map[string]any{"url": "http://127.0.0.1"}, errcode.BlockedDomain},
		{"government", map[string]any{"url": "https://example.gov"}, errcode.BlockedDomain},
		{"wide", map[string]any{"url": "https://example.com", "viewport": map[string]any{"width": 12001, "height": 800}}, errcode.SizeExceeded},
		{"fractional width", map[string]any{"url": "https://example.com", "viewport": map[string]any{"width": 1.5, "height": 800}}, errcode.SizeExceeded},
		{"missing height", map[string]any{"url": "https://example.com", "viewport": map[string]any{"width": 800}}, errcode.SizeExceeded},
		{"zero scale", map[string]any{"url": "https://example.com", "deviceScaleFactor": 0}, errcode.SizeExceeded},
		{"fractional timeout", map[string]any{"url": "https://example.com", "timeoutMs": 2.5}, errcode.InvalidURL},
		{"bad wait", map[string]any{"url": "https://example.com", "waitUntil": "commit"}, errcode.InvalidURL},
		{"wrong type", map[string]any{"url": "https://example.com", "fullPage": "yes"}, errcode.InvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := errorText(t, callScreenshot(t, session, tt.args))
			if !strings.HasPrefix(text, string(tt.want)+": ") {
				t.Errorf("expected %s, got %q", tt.want, text)
			}
		})
	}
	if engine.Opened() != 0 {
		t.Errorf("rejected requests opened %d sessions", engine.Opened())
	}

	result := callScreenshot(t, session, map[string]any{"url": "https://example.com"})
	if result.IsError {
		t.Fatalf("unexpected error: %s", errorText(t, result))
	}
	if engine.Opened() != 1 || engine.Sessions()[0].Closed() != 1 {
		t.Error("expected one session opened and closed")
	}
}

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want errcode.Code
	}{
		{"empty", ``, errcode.InvalidURL},
		{"null", `null`, errcode.InvalidURL},
		{"not json", `{`, errcode.InvalidURL},
		{"array", `[]`, errcode.InvalidURL},
		{"empty url", `{"url":""}`, errcode.InvalidURL},
		{"numeric url", `{"url":42}`, errcode.InvalidURL},
		{"bad wait", `{"url":"https://example.com","waitUntil":"idle"}`, errcode.InvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeRequest([]byte(tt.raw))
			if !errcode.Is(err, tt.want) {
				t.Errorf("expected %s, got %v", tt.want, err)
			}
		})
	}

	req, err := decodeRequest([]byte(`{"url":"https://example.com","viewport":{"width":800.5},"timeoutMs":100}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Viewport.Width != 800.5 || req.Viewport.Height != 0 {
		t.Errorf("unexpected viewport %+v", req.Viewport)
	}
	if *req.TimeoutMs != 100 {
		t.Errorf("unexpected timeout %v", *req.TimeoutMs)
	}
}

func TestHTTPHandler(t *testing.T) {
	srv := New(&fakeCapturer{}, logger.NewNoop(), "test")
	ts := httptest.NewServer(NewHandler(srv, logger.NewNoop()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	client := mcp.NewClient(testImpl, nil)
	session, err := client.Connect(context.Background(), &mcp.StreamableClientTransport{Endpoint: ts.URL + MCPPath}, nil)
	if err != nil {
		t.Fatalf("connect over HTTP: %v", err)
	}
	defer session.Close()

	result := callScreenshot(t, session, map[string]any{"url": "https://example.com"})
	if result.IsError {
		t.Fatalf("unexpected error result: %+v", result.Content)
	}
	if _, ok := result.Content[0].(*mcp.ImageContent); !ok {
		t.Errorf("expected ImageContent, got %T", result.Content[0])
	}
}
