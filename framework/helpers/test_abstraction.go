package helpers

import (
	"errors"
	"fmt"
	"strings"
)

// TestContext is a minimal interface for types like *testing.T representing a test that can
// fail. Functions can use this to avoid a specific dependency on the testing package.
type TestContext interface {
	Errorf(msgFormat string, msgArgs ...interface{})
	FailNow()
	Helper()
}

// TestRecorder is a TestContext that only records failures, for testing the helpers themselves.
type TestRecorder struct {
	Errors     []string
	Terminated bool

	// PanicOnTerminate makes FailNow panic with the recorder as the value, so that code after
	// the failure point does not run.
	PanicOnTerminate bool
}

func (t *TestRecorder) Errorf(msgFormat string, msgArgs ...interface{}) {
	t.Errors = append(t.Errors, fmt.Sprintf(msgFormat, msgArgs...))
}

func (t *TestRecorder) FailNow() {
	t.Terminated = true
	if t.PanicOnTerminate {
		panic(t)
	}
}

func (t *TestRecorder) Helper() {}

// Err returns all recorded failures joined into one error, or nil if there were none.
func (t *TestRecorder) Err() error {
	if len(t.Errors) == 0 {
		return nil
	}
	return errors.New(strings.Join(t.Errors, ", "))
}
