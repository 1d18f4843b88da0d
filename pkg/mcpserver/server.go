// Package mcpserver exposes the capture pipeline as the MCP tool
// "screenshot" over stdio or streamable HTTP.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/user/webshot/pkg/capture"
	"github.com/user/webshot/pkg/errcode"
	"github.com/user/webshot/pkg/guard"
	"github.com/user/webshot/pkg/ports"
)

// Server identity reported during initialization.
const (
	ServerName = "webshot"
	ToolName   = "screenshot"
)

// Capturer takes screenshots. *capture.Capturer implements it.
type Capturer interface {
	Capture(ctx context.Context, req capture.Request) (*capture.Result, error)
}

// New creates an MCP server with the screenshot tool registered.
func New(c Capturer, logger ports.Logger, version string) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)
	Register(srv, c, logger)
	return srv
}

// Register adds the screenshot tool to srv.
func Register(srv *mcp.Server, c Capturer, logger ports.Logger) {
	log := logger.WithComponent("mcp")
	srv.AddTool(screenshotTool(), func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		creq, err := decodeRequest(req.Params.Arguments)
		if err != nil {
			log.Debug("Rejected tool arguments: %v", err)
			return errorResult(err), nil
		}

		res, err := c.Capture(ctx, creq)
		if err != nil {
			return errorResult(err), nil
		}
		return imageResult(res)
	})
}

// imageResult wraps a capture as image content. The SDK base64-encodes Data
// on the wire.
func imageResult(res *capture.Result) (*mcp.CallToolResult, error) {
	data := res.Data
	if len(data) == 0 {
		decoded, err := base64.StdEncoding.DecodeString(res.ImageBase64)
		if err != nil {
			return errorResult(errcode.Newf(errcode.ScreenshotFailed, "invalid image payload: %v", err)), nil
		}
		data = decoded
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.ImageContent{Data: data, MIMEType: res.MIMEType},
		},
	}, nil
}

// errorResult renders err as "<CODE>: <message>". Errors without a known
// code are reported as SCREENSHOT_FAILED.
func errorResult(err error) *mcp.CallToolResult {
	ce := errcode.From(err)
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: ce.Error()}},
	}
}

func screenshotTool() *mcp.Tool {
	return &mcp.Tool{
		Name: ToolName,
		Description: fmt.Sprintf("Capture a PNG screenshot of an http(s) URL and return it as image content. "+
			"Government sites and private or loopback addresses are refused; the viewport is limited to %dx%d "+
			"and full-page captures to %d pixels of height.", guard.MaxWidth, guard.MaxHeight, guard.MaxHeight),
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{
					"type":        "string",
					"description": "Page URL, http or https only",
				},
				"fullPage": map[string]any{
					"type":        "boolean",
					"description": "Capture the whole scrollable page",
					"default":     capture.DefaultFullPage,
				},
				"viewport": map[string]any{
					"type":        "object",
					"description": "Viewport size in CSS pixels, default 1280x800",
					"properties": map[string]any{
						"width":  map[string]any{"type": "integer", "minimum": 1, "maximum": guard.MaxWidth},
						"height": map[string]any{"type": "integer", "minimum": 1, "maximum": guard.MaxHeight},
					},
					"required": []string{"width", "height"},
				},
				"deviceScaleFactor": map[string]any{
					"type":             "number",
					"description":      "Device pixel ratio",
					"exclusiveMinimum": 0,
					"default":          capture.DefaultDeviceScaleFactor,
				},
				"waitUntil": map[string]any{
					"type":        "string",
					"description": "Page event to wait for before capturing",
					"enum":        []string{string(ports.WaitLoad), string(ports.WaitDOMContentLoaded), string(ports.WaitNetworkIdle)},
					"default":     string(capture.DefaultWaitUntil),
				},
				"timeoutMs": map[string]any{
					"type":        "integer",
					"description": "Page load timeout in milliseconds",
					"minimum":     1,
					"default":     capture.DefaultTimeoutMs,
				},
				"darkMode": map[string]any{
					"type":        "boolean",
					"description": "Emulate prefers-color-scheme: dark",
					"default":     capture.DefaultDarkMode,
				},
			},
			"required": []string{"url"},
		},
	}
}

// arguments mirrors the tool input. Numbers stay float64 so that
// fractional values reach the validators instead of failing to decode.
type arguments struct {
	URL               *string  `json:"url"`
	FullPage          *bool    `json:"fullPage"`
	Viewport          *size    `json:"viewport"`
	DeviceScaleFactor *float64 `json:"deviceScaleFactor"`
	WaitUntil         *string  `json:"waitUntil"`
	TimeoutMs         *float64 `json:"timeoutMs"`
	DarkMode          *bool    `json:"darkMode"`
}

type size struct {
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

// decodeRequest turns raw tool arguments into a capture request. Shape
// errors are InvalidURL, the malformed-request code.
func decodeRequest(raw json.RawMessage) (capture.Request, error) {
	var args arguments
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return capture.Request{}, errcode.Newf(errcode.InvalidURL, "invalid arguments: %v", err)
		}
	}
	if args.URL == nil || *args.URL == "" {
		return capture.Request{}, errcode.New(errcode.InvalidURL, "url is required")
	}

	req := capture.Request{
		URL:               *args.URL,
		FullPage:          args.FullPage,
		DeviceScaleFactor: args.DeviceScaleFactor,
		TimeoutMs:         args.TimeoutMs,
		DarkMode:          args.DarkMode,
	}
	if args.Viewport != nil {
		// A missing dimension decodes as 0 and is rejected as SIZE_EXCEEDED.
		vp := &capture.Viewport{}
		if args.Viewport.Width != nil {
			vp.Width = *args.Viewport.Width
		}
		if args.Viewport.Height != nil {
			vp.Height = *args.Viewport.Height
		}
		req.Viewport = vp
	}
	if args.WaitUntil != nil {
		w := ports.WaitUntil(*args.WaitUntil)
		if !w.Valid() {
			return capture.Request{}, errcode.Newf(errcode.InvalidURL, "waitUntil must be one of load, domcontentloaded, networkidle, got %q", *args.WaitUntil)
		}
		req.WaitUntil = w
	}
	return req, nil
}
