// Package latency defines the measurement collaborators that the server calls into. The screen
// capture algorithm, the hardware latency tester and the native reference window are platform
// integrations; this package only describes their contracts and provides stand-ins for hosts
// that have none.
package latency

import (
	"errors"

	"github.com/latency-benchmark/latency-server/pattern"
)

var (
	// ErrScreenCaptureUnsupported is returned by Unsupported.MeasureLatency.
	ErrScreenCaptureUnsupported = errors.New("screen capture is not supported on this platform")

	// ErrNoHardwareTester is returned by Unsupported.RunLatencyTest.
	ErrNoHardwareTester = errors.New("no hardware latency tester found")
)

// Measurer finds a test page on screen by its magic pattern and measures input and render
// latency while the page runs its test. It blocks for the duration of the measurement.
type Measurer interface {
	MeasureLatency(p pattern.MagicPattern) (Metrics, error)
}

// MeasurerFunc adapts a function to Measurer.
type MeasurerFunc func(p pattern.MagicPattern) (Metrics, error)

func (f MeasurerFunc) MeasureLatency(p pattern.MagicPattern) (Metrics, error) { return f(p) }

// HardwareTester is an external device that measures photon latency directly.
type HardwareTester interface {
	// Available reports whether a tester is currently attached. It is called about once a
	// second by every open keep-alive stream, so it must be cheap.
	Available() bool

	// RunLatencyTest runs one test and returns the human-readable result.
	RunLatencyTest() (string, error)
}

// ReferenceWindow is a native window painted with a magic pattern, used as a control surface
// when checking that the measurement pipeline itself works.
type ReferenceWindow interface {
	Open(p pattern.MagicPattern)
	Close()
}

// Unsupported implements every collaborator for a host with no platform integration: all
// measurements fail and no hardware tester is ever available.
type Unsupported struct{}

func (Unsupported) MeasureLatency(pattern.MagicPattern) (Metrics, error) {
	return Metrics{}, ErrScreenCaptureUnsupported
}

func (Unsupported) Available() bool { return false }

func (Unsupported) RunLatencyTest() (string, error) { return "", ErrNoHardwareTester }

func (Unsupported) Open(pattern.MagicPattern) {}

func (Unsupported) Close() {}
