package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("zh", l10n.LexiconMap{
		// Capture (per request)
		"Capturing %s (%dx%d @%gx, full page: %t)":     "正在截取 %s（%dx%d @%gx，整页：%t）",
		"Navigating to %s (wait until %s, timeout %s)": "正在打开 %s（等待 %s，超时 %s）",
		"Document height is %g":                        "文档高度为 %g",
		"Captured %s (%d bytes)":                       "已截取 %s（%d 字节）",
		"Capture failed: %s":                           "截图失败：%s",
		"Ignoring session close error: %v":             "忽略会话关闭错误：%v",

		// Shared engine
		"Launching renderer engine":            "正在启动渲染引擎",
		"Renderer engine ready":                "渲染引擎已就绪",
		"Renderer engine failed to launch: %v": "渲染引擎启动失败：%v",
		"Failed to close engine: %v":           "关闭引擎失败：%v",
		"Closing renderer engine":              "正在关闭渲染引擎",

		// Renderer adapters
		"Launching Chrome from %s":                  "正在从 %s 启动 Chrome",
		"Launched Chrome at %s":                     "Chrome 已在 %s 启动",
		"Attaching to Chrome at %s":                 "正在连接 %s 上的 Chrome",
		"Connecting to Chrome at %s":                "正在连接 %s 上的 Chrome",
		"Waiting for %s on frame %s":                "正在等待框架 %[2]s 的 %[1]s 事件",
		"Chrome closed":                             "Chrome 已关闭",
		"Could not ignore certificate errors: %v":   "无法忽略证书错误：%v",
		"Installing Playwright driver and Chromium": "正在安装 Playwright 驱动和 Chromium",
		"Playwright stopped":                        "Playwright 已停止",

		// Server
		"Serving MCP over stdio (%s renderer)": "通过 stdio 提供 MCP（%s 渲染器）",
		"Serving MCP over HTTP at http://%s%s": "通过 HTTP 提供 MCP：http://%s%s",
		"Rejected tool arguments: %v":          "工具参数无效：%v",
		"Failed to close browser: %v":          "关闭浏览器失败：%v",

		// Output
		"Saved screenshot to %s":      "截图已保存到 %s",
		"Summary saved to %s":         "报告已保存到 %s",
		"Failed to write summary: %v": "写入报告失败：%v",
	})

	l10n.Register("ja", l10n.LexiconMap{
		"Capturing %s (%dx%d @%gx, full page: %t)":     "%s をキャプチャ中 (%dx%d @%gx, フルページ: %t)",
		"Navigating to %s (wait until %s, timeout %s)": "%s を読み込み中 (待機条件 %s, タイムアウト %s)",
		"Captured %s (%d bytes)":                       "%s をキャプチャしました (%d バイト)",
		"Capture failed: %s":                           "キャプチャに失敗しました: %s",
		"Launching renderer engine":                    "レンダリングエンジンを起動中",
		"Renderer engine ready":                        "レンダリングエンジンの準備ができました",
		"Renderer engine failed to launch: %v":         "レンダリングエンジンの起動に失敗しました: %v",
		"Chrome closed":                                "Chromeを終了しました",
		"Serving MCP over stdio (%s renderer)":         "stdio で MCP を提供中 (%s レンダラー)",
		"Serving MCP over HTTP at http://%s%s":         "HTTP で MCP を提供中: http://%s%s",
		"Saved screenshot to %s":                       "スクリーンショットを %s に保存しました",
	})
}
