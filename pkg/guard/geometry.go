package guard

import (
	"math"

	"github.com/user/webshot/pkg/errcode"
)

// Render-surface ceilings in CSS pixels.
const (
	MaxWidth  = 12000
	MaxHeight = 100000
)

// CheckViewport validates viewport dimensions before any renderer session
// is opened.
func CheckViewport(width, height int) error {
	return CheckViewportValues(float64(width), float64(height))
}

// CheckViewportValues is CheckViewport for dimensions that have not yet been
// narrowed to integers, such as values decoded from JSON.
func CheckViewportValues(width, height float64) error {
	if !isPositiveInteger(width) || !isPositiveInteger(height) {
		return errcode.New(errcode.SizeExceeded, "viewport width and height must be positive integers")
	}
	if width > MaxWidth {
		return errcode.Newf(errcode.SizeExceeded, "screenshot width exceeds limit: width=%g > %d", width, MaxWidth)
	}
	if height > MaxHeight {
		return errcode.Newf(errcode.SizeExceeded, "screenshot height exceeds limit: height=%g > %d", height, MaxHeight)
	}
	return nil
}

// CheckFullPageHeight validates the measured document height of a
// full-page capture after navigation and before the image is taken.
func CheckFullPageHeight(height float64) error {
	if math.IsNaN(height) || math.IsInf(height, 0) || height <= 0 {
		return errcode.New(errcode.ScreenshotFailed, "could not determine total page height")
	}
	if height > MaxHeight {
		return errcode.Newf(errcode.SizeExceeded, "total page height exceeds limit: height=%g > %d", height, MaxHeight)
	}
	return nil
}

// CheckDeviceScaleFactor requires a positive finite scale factor.
func CheckDeviceScaleFactor(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return errcode.New(errcode.SizeExceeded, "deviceScaleFactor must be a finite number greater than 0")
	}
	return nil
}

// CheckTimeout requires a positive integer number of milliseconds. A bad
// timeout is reported as InvalidURL, the malformed-request code.
func CheckTimeout(ms int) error {
	return CheckTimeoutValue(float64(ms))
}

// CheckTimeoutValue is CheckTimeout for a value not yet narrowed to int.
func CheckTimeoutValue(ms float64) error {
	if !isPositiveInteger(ms) {
		return errcode.New(errcode.InvalidURL, "timeoutMs must be a positive integer")
	}
	return nil
}

func isPositiveInteger(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0 && v == math.Trunc(v)
}
