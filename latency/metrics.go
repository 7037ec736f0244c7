package latency

import (
	"fmt"

	"github.com/launchdarkly/go-jsonstream/v3/jreader"
)

// Metrics is the result of one latency measurement. All values are in milliseconds.
type Metrics struct {
	KeyDownLatencyMs     float64
	ScrollLatencyMs      float64
	MaxJSPauseTimeMs     float64
	MaxCSSPauseTimeMs    float64
	MaxScrollPauseTimeMs float64
}

// MarshalJSON produces the report format that the benchmark pages parse. Every value is printed
// with six decimal places.
func (m Metrics) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(
		`{ "keyDownLatencyMs": %f, "scrollLatencyMs": %f, "maxJSPauseTimeMs": %f, `+
			`"maxCssPauseTimeMs": %f, "maxScrollPauseTimeMs": %f}`,
		m.KeyDownLatencyMs,
		m.ScrollLatencyMs,
		m.MaxJSPauseTimeMs,
		m.MaxCSSPauseTimeMs,
		m.MaxScrollPauseTimeMs,
	)), nil
}

// UnmarshalJSON reads a report in the format written by MarshalJSON. Unknown properties are
// ignored and missing ones are left at zero.
func (m *Metrics) UnmarshalJSON(data []byte) error {
	var out Metrics
	r := jreader.NewReader(data)
	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "keyDownLatencyMs":
			out.KeyDownLatencyMs = r.Float64()
		case "scrollLatencyMs":
			out.ScrollLatencyMs = r.Float64()
		case "maxJSPauseTimeMs":
			out.MaxJSPauseTimeMs = r.Float64()
		case "maxCssPauseTimeMs":
			out.MaxCSSPauseTimeMs = r.Float64()
		case "maxScrollPauseTimeMs":
			out.MaxScrollPauseTimeMs = r.Float64()
		}
	}
	if err := r.Error(); err != nil {
		return err
	}
	*m = out
	return nil
}
