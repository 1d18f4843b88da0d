// Package logger provides logging implementations.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"
	"github.com/user/webshot/pkg/ports"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// ConsoleLogger logs messages to the console with color support.
type ConsoleLogger struct {
	level     ports.LogLevel
	component string
	sink      *sink
}

// sink is shared by a logger and all its component children.
type sink struct {
	mu       sync.Mutex
	out      io.Writer
	errOut   io.Writer
	outColor bool
	errColor bool
}

// NewConsole creates a console logger writing debug and info messages to
// stdout and warnings and errors to stderr.
func NewConsole(level ports.LogLevel) *ConsoleLogger {
	return NewConsoleTo(level, os.Stdout, os.Stderr)
}

// NewStderr creates a console logger that writes every level to stderr.
// Used when stdout carries protocol traffic.
func NewStderr(level ports.LogLevel) *ConsoleLogger {
	return NewConsoleTo(level, os.Stderr, os.Stderr)
}

// NewConsoleTo creates a console logger on explicit writers. Color output is
// enabled per writer when it is a terminal.
func NewConsoleTo(level ports.LogLevel, out, errOut io.Writer) *ConsoleLogger {
	return &ConsoleLogger{
		level: level,
		sink: &sink{
			out:      out,
			errOut:   errOut,
			outColor: isTerminal(out),
			errColor: isTerminal(errOut),
		},
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Debug logs a debug message.
func (l *ConsoleLogger) Debug(msg string, args ...interface{}) {
	if l.level > ports.LevelDebug {
		return
	}
	l.log(ports.LevelDebug, msg, args...)
}

// Info logs an informational message.
func (l *ConsoleLogger) Info(msg string, args ...interface{}) {
	if l.level > ports.LevelInfo {
		return
	}
	l.log(ports.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *ConsoleLogger) Warn(msg string, args ...interface{}) {
	if l.level > ports.LevelWarn {
		return
	}
	l.log(ports.LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *ConsoleLogger) Error(msg string, args ...interface{}) {
	if l.level > ports.LevelError {
		return
	}
	l.log(ports.LevelError, msg, args...)
}

// WithComponent returns a new logger with the specified component name.
// Nested components are joined with a slash.
func (l *ConsoleLogger) WithComponent(component string) ports.Logger {
	if l.component != "" {
		component = l.component + "/" + component
	}
	return &ConsoleLogger{
		level:     l.level,
		component: component,
		sink:      l.sink,
	}
}

// log outputs a log message with appropriate formatting.
func (l *ConsoleLogger) log(level ports.LogLevel, msg string, args ...interface{}) {
	translated := l10n.F(msg, args...)

	w, color := l.sink.out, l.sink.outColor
	if level >= ports.LevelWarn {
		w, color = l.sink.errOut, l.sink.errColor
	}

	var output string
	if l.component != "" {
		if color {
			output = fmt.Sprintf("%s[%s]%s %s", colorCyan, l.component, colorReset, translated)
		} else {
			output = fmt.Sprintf("[%s] %s", l.component, translated)
		}
	} else {
		output = translated
	}

	if color {
		switch level {
		case ports.LevelDebug:
			output = colorGray + output + colorReset
		case ports.LevelWarn:
			output = colorYellow + output + colorReset
		case ports.LevelError:
			output = colorRed + output + colorReset
		}
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	fmt.Fprintln(w, output)
}
