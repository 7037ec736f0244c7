package latency

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsReportFormat(t *testing.T) {
	m := Metrics{
		KeyDownLatencyMs:     5,
		ScrollLatencyMs:      2,
		MaxJSPauseTimeMs:     1,
		MaxCSSPauseTimeMs:    0.5,
		MaxScrollPauseTimeMs: 0.25,
	}
	data, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`{ "keyDownLatencyMs": 5.000000, "scrollLatencyMs": 2.000000, "maxJSPauseTimeMs": 1.000000, `+
			`"maxCssPauseTimeMs": 0.500000, "maxScrollPauseTimeMs": 0.250000}`,
		string(data))
	assert.True(t, json.Valid(data))
}

func TestMetricsReportRoundsToMicroseconds(t *testing.T) {
	data, _ := Metrics{KeyDownLatencyMs: 16.6666666}.MarshalJSON()
	assert.Contains(t, string(data), `"keyDownLatencyMs": 16.666667,`)
}

func TestMetricsReadBack(t *testing.T) {
	m := Metrics{KeyDownLatencyMs: 33.25, ScrollLatencyMs: 17.5, MaxJSPauseTimeMs: 4,
		MaxCSSPauseTimeMs: 0.125, MaxScrollPauseTimeMs: 60}
	data, _ := m.MarshalJSON()

	var parsed Metrics
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, m, parsed)
}

func TestMetricsReadIgnoresUnknownProperties(t *testing.T) {
	var parsed Metrics
	require.NoError(t, json.Unmarshal([]byte(`{"scrollLatencyMs": 3, "extra": [1, 2]}`), &parsed))
	assert.Equal(t, Metrics{ScrollLatencyMs: 3}, parsed)
}

func TestMetricsReadRejectsMalformedReport(t *testing.T) {
	var parsed Metrics
	assert.Error(t, parsed.UnmarshalJSON([]byte(`{"scrollLatencyMs": "fast"}`)))
	assert.Error(t, parsed.UnmarshalJSON([]byte(`[]`)))
}

func TestUnsupportedCollaborators(t *testing.T) {
	var u Unsupported
	_, err := u.MeasureLatency([12]byte{})
	assert.ErrorIs(t, err, ErrScreenCaptureUnsupported)
	assert.False(t, u.Available())
	_, err = u.RunLatencyTest()
	assert.ErrorIs(t, err, ErrNoHardwareTester)
}
