package framework

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/stretchr/testify/assert"
)

var _ ldlog.BaseLogger = (*ColorLogger)(nil)

func TestColorLoggerWritesOneLinePerMessage(t *testing.T) {
	var buf bytes.Buffer
	c := color.New(color.FgYellow)
	c.DisableColor()
	logger := NewColorLogger(&buf, c)

	logger.Printf("session %d opened", 1)
	logger.Println("shutting", "down")

	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	if assert.Len(t, lines, 2) {
		assert.Contains(t, string(lines[0]), "session 1 opened")
		assert.Contains(t, string(lines[1]), "shutting down")
	}
}
