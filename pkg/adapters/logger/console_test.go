package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/user/webshot/pkg/ports"
)

func TestConsoleLogger_LevelsAndStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewConsoleTo(ports.LevelInfo, &out, &errOut)

	l.Debug("hidden %d", 1)
	l.Info("capturing %s", "https://example.com")
	l.Warn("slow")
	l.Error("broken: %v", "boom")

	if strings.Contains(out.String(), "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if got := out.String(); got != "capturing https://example.com\n" {
		t.Errorf("unexpected stdout %q", got)
	}
	if got := errOut.String(); got != "slow\nbroken: boom\n" {
		t.Errorf("unexpected stderr %q", got)
	}
}

func TestConsoleLogger_Component(t *testing.T) {
	var out bytes.Buffer
	l := NewConsoleTo(ports.LevelDebug, &out, &out)

	l.WithComponent("capture").WithComponent("3f2a9c1e").Debug("step %s", "navigate")

	if got := out.String(); got != "[capture/3f2a9c1e] step navigate\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestConsoleLogger_NoColorOnBuffers(t *testing.T) {
	var out bytes.Buffer
	l := NewConsoleTo(ports.LevelDebug, &out, &out)
	l.Error("plain")

	if strings.Contains(out.String(), "\033[") {
		t.Errorf("expected no ANSI codes, got %q", out.String())
	}
}

func TestConsoleLogger_Quiet(t *testing.T) {
	var out bytes.Buffer
	l := NewConsoleTo(ports.LevelQuiet, &out, &out)
	l.Error("nothing")

	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestConsoleLogger_ConcurrentWrites(t *testing.T) {
	var out bytes.Buffer
	l := NewConsoleTo(ports.LevelInfo, &out, &out)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.WithComponent("worker").Info("line %d", i)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "[worker] line ") {
			t.Errorf("interleaved output %q", line)
		}
	}
}

func TestNoopLogger(t *testing.T) {
	var l ports.Logger = NewNoop()
	l.Info("ignored")
	if l.WithComponent("x") != l {
		t.Error("expected WithComponent to return the same logger")
	}
}
