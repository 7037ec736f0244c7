package framework

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/fatih/color"
)

// ColorLogger writes timestamped lines in a single console color. It satisfies
// ldlog.BaseLogger, so it can be installed as the output for one log level.
type ColorLogger struct {
	out   *log.Logger
	color *color.Color
}

// NewColorLogger creates a ColorLogger writing to w. Coloring follows the fatih/color rules, so it
// is disabled automatically when w is not a terminal or NO_COLOR is set.
func NewColorLogger(w io.Writer, c *color.Color) *ColorLogger {
	return &ColorLogger{out: log.New(w, "", log.LstdFlags), color: c}
}

func (l *ColorLogger) Println(args ...interface{}) {
	m := strings.TrimRight(fmt.Sprintln(args...), "\r\n") // Sprintln appends a newline
	l.out.Println(l.color.Sprint(m))
}

func (l *ColorLogger) Printf(message string, args ...interface{}) {
	l.out.Println(l.color.Sprintf(message, args...))
}
