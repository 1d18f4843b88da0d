// Package output persists capture results on disk. It is used by the
// one-shot CLI; the capture core never writes files.
package output

import (
	"encoding/base64"
	"fmt"
	"math/rand/v2"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/user/webshot/pkg/capture"
	"github.com/user/webshot/pkg/errcode"
	"github.com/user/webshot/pkg/ports"
)

// DefaultDir is where screenshots land when no directory is configured.
const DefaultDir = "screenshots"

var unsafeHostChars = regexp.MustCompile(`(?i)[^a-z0-9.-]`)

// FileName builds "<host>_<YYYYMMDD>_<HHMMSS>_<suffix>.png" with every
// character outside [a-z0-9.-] in host replaced by '_'.
func FileName(host string, t time.Time, suffix string) string {
	safe := unsafeHostChars.ReplaceAllString(host, "_")
	return fmt.Sprintf("%s_%s_%s.png", safe, t.Format("20060102_150405"), suffix)
}

// RandomSuffix returns four random decimal digits.
func RandomSuffix() string {
	return fmt.Sprintf("%04d", rand.IntN(10000))
}

// EnsurePNGExtension appends ".png" unless path already ends with it
// (case-insensitively).
func EnsurePNGExtension(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return path
	}
	return path + ".png"
}

// FileURL converts an absolute path to a file:// URL.
func FileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		// Windows drive paths.
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// Writer saves capture results through a ports.FileSystem.
type Writer struct {
	fs     ports.FileSystem
	logger ports.Logger
	now    func() time.Time
	suffix func() string
}

// NewWriter creates a Writer.
func NewWriter(fs ports.FileSystem, logger ports.Logger) *Writer {
	return &Writer{
		fs:     fs,
		logger: logger.WithComponent("output"),
		now:    time.Now,
		suffix: RandomSuffix,
	}
}

// Saved describes a written file.
type Saved struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// ResolvePath returns path as an absolute, cleaned path.
func (w *Writer) ResolvePath(path string) (string, error) {
	abs, err := w.fs.Abs(path)
	if err != nil {
		return "", errcode.Newf(errcode.IOError, "could not resolve path %s: %v", path, err)
	}
	return filepath.Clean(abs), nil
}

// Save writes res into dir under a name derived from host and the current
// time. An empty dir means DefaultDir.
func (w *Writer) Save(res *capture.Result, dir, host string) (Saved, error) {
	if dir == "" {
		dir = DefaultDir
	}
	absDir, err := w.ResolvePath(dir)
	if err != nil {
		return Saved{}, err
	}
	if err := w.fs.MkdirAll(absDir); err != nil {
		return Saved{}, errcode.Newf(errcode.IOError, "could not create directory %s: %v", absDir, err)
	}
	return w.write(res, filepath.Join(absDir, FileName(host, w.now(), w.suffix())))
}

// SaveAs writes res to path, adding a .png extension when missing.
func (w *Writer) SaveAs(res *capture.Result, path string) (Saved, error) {
	abs, err := w.ResolvePath(EnsurePNGExtension(path))
	if err != nil {
		return Saved{}, err
	}
	return w.write(res, abs)
}

func (w *Writer) write(res *capture.Result, path string) (Saved, error) {
	data := res.Data
	if len(data) == 0 {
		decoded, err := base64.StdEncoding.DecodeString(res.ImageBase64)
		if err != nil {
			return Saved{}, errcode.Newf(errcode.IOError, "image payload is not valid base64: %v", err)
		}
		data = decoded
	}
	if len(data) == 0 {
		return Saved{}, errcode.New(errcode.IOError, "image payload is empty")
	}

	if err := w.fs.WriteFile(path, data); err != nil {
		return Saved{}, errcode.Newf(errcode.IOError, "could not write %s: %v", path, err)
	}
	w.logger.Info("Saved screenshot to %s", path)
	return Saved{Path: path, URL: FileURL(path)}, nil
}
