// Package main provides the CLI entry point for webshot.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/webshot/pkg/adapters/logger"
	"github.com/user/webshot/pkg/adapters/osfilesystem"
	"github.com/user/webshot/pkg/capture"
	"github.com/user/webshot/pkg/config"
	"github.com/user/webshot/pkg/engine"
	"github.com/user/webshot/pkg/errcode"
	"github.com/user/webshot/pkg/guard"
	"github.com/user/webshot/pkg/mcpserver"
	"github.com/user/webshot/pkg/output"
	"github.com/user/webshot/pkg/ports"
	"github.com/user/webshot/pkg/summarizer"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Config   string `short:"c" type:"path" help:"${help_config}"`
	LogLevel string `short:"l" help:"${help_log_level}"`
	Quiet    bool   `short:"Q" help:"${help_quiet}"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"${help_serve}"`
	Capture CaptureCmd `cmd:"" help:"${help_capture}"`
	Version VersionCmd `cmd:"" help:"${help_version}"`
}

// ServeCmd runs the MCP server.
type ServeCmd struct {
	HTTP string `name:"http" placeholder:"ADDR" help:"${help_http}"`
}

// CaptureCmd takes one screenshot and saves it.
type CaptureCmd struct {
	URL    string `arg:"" help:"${help_url}"`
	Output string `short:"o" type:"path" help:"${help_output}"`

	ViewportWidth  *float64 `help:"${help_viewport_width}"`
	ViewportHeight *float64 `help:"${help_viewport_height}"`
	Scale          *float64 `help:"${help_scale}"`
	WaitUntil      string   `help:"${help_wait_until}"`
	TimeoutMs      *float64 `help:"${help_timeout_ms}"`
	Dark           bool     `help:"${help_dark}"`
	NoFullPage     bool     `help:"${help_no_full_page}"`

	Summary string `type:"path" help:"${help_summary}"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("webshot"),
		kong.Description(l10n.T("Capture web pages as PNG screenshots over MCP.")),
		kong.UsageOnError(),
		helpVars(),
	)

	err := ctx.Run(&cli)
	var coded *errcode.Error
	if errors.As(err, &coded) {
		fmt.Fprintln(os.Stderr, coded.Error())
		os.Exit(1)
	}
	ctx.FatalIfErrorf(err)
}

// load reads the config file, if any, and applies global flag overrides.
func (cli *CLI) load() (config.Config, error) {
	cfg := config.Defaults()
	if cli.Config != "" {
		var err error
		if cfg, err = config.LoadFromFile(osfilesystem.New(), cli.Config); err != nil {
			return cfg, err
		}
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}
	if cli.Quiet {
		cfg.LogLevel = "quiet"
	}
	return cfg, cfg.Validate()
}

// app holds the long-lived pieces shared by every capture.
type app struct {
	log     ports.Logger
	engine  *engine.Shared
	gate    *guard.Gate
	capture *capture.Capturer
}

func newApp(cfg config.Config, log ports.Logger) (*app, error) {
	launcher, err := cfg.Launcher(log)
	if err != nil {
		return nil, err
	}
	gate, err := cfg.Gate()
	if err != nil {
		return nil, err
	}
	shared := engine.NewShared(launcher, log)
	return &app{
		log:     log,
		engine:  shared,
		gate:    gate,
		capture: capture.New(shared, gate, log),
	}, nil
}

func (a *app) close() {
	if err := a.engine.Close(); err != nil {
		a.log.Warn("Failed to close browser: %v", err)
	}
}

// Run executes the serve command.
func (cmd *ServeCmd) Run(cli *CLI) error {
	cfg, err := cli.load()
	if err != nil {
		return err
	}
	if cmd.HTTP != "" {
		cfg.HTTPAddr = cmd.HTTP
	}

	// stdout carries the protocol on stdio, so logs go to stderr.
	stdio := cfg.HTTPAddr == ""
	var log ports.Logger
	if stdio {
		log = logger.NewStderr(cfg.Level())
	} else {
		log = logger.NewConsole(cfg.Level())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	srv := mcpserver.New(a.capture, log, version)
	if stdio {
		log.Info("Serving MCP over stdio (%s renderer)", cfg.Renderer)
		return mcpserver.RunStdio(ctx, srv)
	}
	return mcpserver.ServeHTTP(ctx, cfg.HTTPAddr, mcpserver.NewHandler(srv, log), log)
}

// request builds the capture request from the flags. Unset flags stay nil
// so the capture defaults apply.
func (cmd *CaptureCmd) request() capture.Request {
	req := capture.Request{
		URL:               cmd.URL,
		FullPage:          capture.Bool(!cmd.NoFullPage),
		DeviceScaleFactor: cmd.Scale,
		WaitUntil:         ports.WaitUntil(cmd.WaitUntil),
		TimeoutMs:         cmd.TimeoutMs,
		DarkMode:          capture.Bool(cmd.Dark),
	}
	if cmd.ViewportWidth != nil || cmd.ViewportHeight != nil {
		vp := &capture.Viewport{Width: capture.DefaultWidth, Height: capture.DefaultHeight}
		if cmd.ViewportWidth != nil {
			vp.Width = *cmd.ViewportWidth
		}
		if cmd.ViewportHeight != nil {
			vp.Height = *cmd.ViewportHeight
		}
		req.Viewport = vp
	}
	return req
}

// Run executes the capture command.
func (cmd *CaptureCmd) Run(cli *CLI) error {
	cfg, err := cli.load()
	if err != nil {
		return err
	}
	log := logger.NewConsole(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	req := cmd.request()
	start := time.Now()
	res, err := a.capture.Capture(ctx, req)
	if err != nil {
		return errcode.From(err)
	}
	elapsed := time.Since(start)

	// The request was admitted by the capture, so it resolves again.
	resolved, err := req.Resolve(a.gate)
	if err != nil {
		return err
	}

	fs := osfilesystem.New()
	writer := output.NewWriter(fs, log)
	var saved output.Saved
	if cmd.Output != "" {
		saved, err = writer.SaveAs(res, cmd.Output)
	} else {
		saved, err = writer.Save(res, cfg.OutputDir, resolved.Host)
	}
	if err != nil {
		return err
	}

	if cmd.Summary != "" {
		summary := summarizer.NewBuilder().
			WithRenderer(cfg.Renderer).
			WithResolved(resolved).
			WithImage(summarizer.ImageInfo{
				Path:     saved.Path,
				FileURL:  saved.URL,
				Bytes:    len(res.Data),
				Duration: elapsed,
			}).
			Build()
		if err := summarizer.NewWriter(fs, summarizer.NewMarkdownFormatter()).Write(cmd.Summary, summary); err != nil {
			log.Error("Failed to write summary: %v", err)
		} else {
			log.Info("Summary saved to %s", cmd.Summary)
		}
	}

	fmt.Println(saved.URL)
	return nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("webshot version %s", version))
	return nil
}
