package summarizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"
)

// MarkdownFormatter renders a Summary as a Markdown document with
// translated labels.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", l10n.T("Capture Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", l10n.T("Generated"), s.GeneratedAt.Format(time.RFC3339))

	fmt.Fprintf(&b, "## %s\n\n", l10n.T("Page"))
	writeTable(&b, [][2]string{
		{l10n.T("URL"), s.Page.URL},
		{l10n.T("Host"), s.Page.Host},
	})

	fmt.Fprintf(&b, "## %s\n\n", l10n.T("Settings"))
	rows := [][2]string{
		{l10n.T("Viewport"), fmt.Sprintf("%dx%d", s.Settings.Width, s.Settings.Height)},
		{l10n.T("Device Scale Factor"), fmt.Sprintf("%g", s.Settings.DeviceScaleFactor)},
		{l10n.T("Wait Until"), s.Settings.WaitUntil},
		{l10n.T("Timeout"), fmt.Sprintf("%d ms", s.Settings.Timeout.Milliseconds())},
		{l10n.T("Full Page"), yesNo(s.Settings.FullPage)},
		{l10n.T("Dark Mode"), yesNo(s.Settings.DarkMode)},
	}
	if s.Renderer != "" {
		rows = append([][2]string{{l10n.T("Renderer"), s.Renderer}}, rows...)
	}
	writeTable(&b, rows)

	fmt.Fprintf(&b, "## %s\n\n", l10n.T("Image"))
	writeTable(&b, [][2]string{
		{l10n.T("File"), s.Image.Path},
		{l10n.T("Size"), formatBytes(s.Image.Bytes)},
		{l10n.T("Capture Time"), fmt.Sprintf("%d ms", s.Image.Duration.Milliseconds())},
	})

	fmt.Fprintf(&b, "---\n%s webshot\n", l10n.T("Generated by"))
	return b.String()
}

func writeTable(b *strings.Builder, rows [][2]string) {
	fmt.Fprintf(b, "| %s | %s |\n|---|---|\n", l10n.T("Item"), l10n.T("Value"))
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r[0], escapeCell(r[1]))
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func yesNo(v bool) string {
	if v {
		return l10n.T("Yes")
	}
	return l10n.T("No")
}

// formatBytes renders n with a binary unit.
func formatBytes(n int) string {
	const unit = 1024
	switch {
	case n < unit:
		return fmt.Sprintf("%d B", n)
	case n < unit*unit:
		return fmt.Sprintf("%.2f KB", float64(n)/unit)
	default:
		return fmt.Sprintf("%.2f MB", float64(n)/(unit*unit))
	}
}

func init() {
	l10n.Register("zh", l10n.LexiconMap{
		"Capture Summary":     "截图报告",
		"Generated":           "生成时间",
		"Page":                "页面",
		"Host":                "主机",
		"Settings":            "设置",
		"Renderer":            "渲染器",
		"Viewport":            "视口",
		"Device Scale Factor": "设备缩放比例",
		"Wait Until":          "等待条件",
		"Timeout":             "超时",
		"Full Page":           "整页",
		"Dark Mode":           "深色模式",
		"Image":               "图片",
		"File":                "文件",
		"Size":                "大小",
		"Capture Time":        "截图耗时",
		"Generated by":        "生成工具：",
		"Item":                "项目",
		"Value":               "值",
		"Yes":                 "是",
		"No":                  "否",
	})
}
