package viewflow

import (
	"errors"
	"unicode"
)

const (
	// DefaultGestureKey is the keystroke that reveals the admin login.
	DefaultGestureKey = 'x'
	// DefaultGestureLength is how many consecutive presses are required.
	DefaultGestureLength = 5
)

var (
	ErrInvalidGestureLength = errors.New("viewflow: gesture length must be positive")
)

// KeystrokeDetector watches a trailing window of keystrokes and reports when
// the window is full and every entry matches the designated key. Keys are
// compared case-insensitively, matching how browsers report them.
type KeystrokeDetector struct {
	requiredKey rune
	windowSize  int
	window      []rune
}

// NewKeystrokeDetector builds a detector for the given key and window size.
func NewKeystrokeDetector(requiredKey rune, windowSize int) (*KeystrokeDetector, error) {
	if windowSize <= 0 {
		return nil, ErrInvalidGestureLength
	}
	return &KeystrokeDetector{
		requiredKey: unicode.ToLower(requiredKey),
		windowSize:  windowSize,
		window:      make([]rune, 0, windowSize),
	}, nil
}

// Observe records one keystroke and reports whether the gesture completed.
func (detector *KeystrokeDetector) Observe(key rune) bool {
	detector.window = append(detector.window, unicode.ToLower(key))
	if len(detector.window) > detector.windowSize {
		detector.window = detector.window[len(detector.window)-detector.windowSize:]
	}
	return detector.matched()
}

// ObserveAll feeds a sequence of keystrokes and reports whether the gesture
// completed at any point.
func (detector *KeystrokeDetector) ObserveAll(keys []rune) bool {
	completed := false
	for _, key := range keys {
		if detector.Observe(key) {
			completed = true
		}
	}
	return completed
}

// Reset clears the trailing window.
func (detector *KeystrokeDetector) Reset() {
	detector.window = detector.window[:0]
}

func (detector *KeystrokeDetector) matched() bool {
	if len(detector.window) < detector.windowSize {
		return false
	}
	for _, observedKey := range detector.window {
		if observedKey != detector.requiredKey {
			return false
		}
	}
	return true
}
