// Package main provides localization for the webshot CLI.
package main

import (
	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"
)

// helpVars exposes translated help strings to the kong struct tags.
func helpVars() kong.Vars {
	return kong.Vars{
		"help_config":          l10n.T("Path to a YAML config file"),
		"help_log_level":       l10n.T("Log level (debug, info, warn, error, quiet)"),
		"help_quiet":           l10n.T("Suppress all log output"),
		"help_serve":           l10n.T("Run the MCP server (stdio unless --http is given)"),
		"help_http":            l10n.T("Serve MCP over streamable HTTP on this address"),
		"help_capture":         l10n.T("Capture one page and save it as PNG"),
		"help_version":         l10n.T("Show version information"),
		"help_url":             l10n.T("URL of the page to capture"),
		"help_output":          l10n.T("Output PNG file path (default: generated name in the output directory)"),
		"help_viewport_width":  l10n.T("Viewport width in CSS pixels (default: 1280)"),
		"help_viewport_height": l10n.T("Viewport height in CSS pixels (default: 800)"),
		"help_scale":           l10n.T("Device scale factor (default: 1)"),
		"help_wait_until":      l10n.T("Load state to wait for (load, domcontentloaded, networkidle)"),
		"help_timeout_ms":      l10n.T("Navigation timeout in milliseconds (default: 30000)"),
		"help_dark":            l10n.T("Emulate prefers-color-scheme: dark"),
		"help_no_full_page":    l10n.T("Capture only the viewport instead of the full page"),
		"help_summary":         l10n.T("Write a Markdown capture summary to this file"),
	}
}

func init() {
	// Register Chinese translations for CLI messages.
	l10n.Register("zh", l10n.LexiconMap{
		// Root command
		"Capture web pages as PNG screenshots over MCP.": "通过 MCP 将网页截取为 PNG 图片。",

		// Global flags
		"Path to a YAML config file":                  "YAML 配置文件路径",
		"Log level (debug, info, warn, error, quiet)": "日志级别（debug、info、warn、error、quiet）",
		"Suppress all log output":                     "关闭所有日志输出",

		// Serve command
		"Run the MCP server (stdio unless --http is given)": "运行 MCP 服务（未指定 --http 时使用 stdio）",
		"Serve MCP over streamable HTTP on this address":    "在此地址上通过 Streamable HTTP 提供 MCP",

		// Capture command
		"Capture one page and save it as PNG":                                    "截取一个页面并保存为 PNG",
		"URL of the page to capture":                                             "要截取的页面 URL",
		"Output PNG file path (default: generated name in the output directory)": "输出 PNG 文件路径（默认：在输出目录中自动生成文件名）",
		"Viewport width in CSS pixels (default: 1280)":                           "视口宽度，CSS 像素（默认：1280）",
		"Viewport height in CSS pixels (default: 800)":                           "视口高度，CSS 像素（默认：800）",
		"Device scale factor (default: 1)":                                       "设备缩放比例（默认：1）",
		"Load state to wait for (load, domcontentloaded, networkidle)":           "等待的加载状态（load、domcontentloaded、networkidle）",
		"Navigation timeout in milliseconds (default: 30000)":                    "页面加载超时，毫秒（默认：30000）",
		"Emulate prefers-color-scheme: dark":                                     "模拟 prefers-color-scheme: dark",
		"Capture only the viewport instead of the full page":                     "只截取视口而不是整个页面",
		"Write a Markdown capture summary to this file":                          "将 Markdown 格式的截图报告写入此文件",

		// Version command
		"Show version information": "显示版本信息",
		"webshot version %s":       "webshot 版本 %s",
	})
}
