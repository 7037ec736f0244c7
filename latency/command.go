package latency

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/latency-benchmark/latency-server/pattern"
)

// DefaultCommandTimeout bounds one run of a measurement helper.
const DefaultCommandTimeout = time.Minute

// CommandMeasurer delegates screen capture to an external helper program, run once per
// measurement. The helper receives the pattern in hex as its last argument and prints a report
// in the same format the server sends to the page.
//
// If the helper exits with an error, whatever it wrote to stderr becomes the measurement error,
// and so the 500 body the page shows.
type CommandMeasurer struct {
	Path    string
	Args    []string
	Timeout time.Duration
}

func (c CommandMeasurer) MeasureLatency(p pattern.MagicPattern) (Metrics, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	args := append(append([]string(nil), c.Args...), p.String())
	cmd := exec.CommandContext(ctx, c.Path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return Metrics{}, fmt.Errorf("measurement helper did not finish within %s", timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Metrics{}, errors.New(msg)
		}
		return Metrics{}, fmt.Errorf("measurement helper failed: %w", err)
	}

	var m Metrics
	if err := m.UnmarshalJSON(stdout.Bytes()); err != nil {
		return Metrics{}, fmt.Errorf("measurement helper printed an invalid report: %w", err)
	}
	return m, nil
}
