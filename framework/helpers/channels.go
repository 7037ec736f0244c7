package helpers

import (
	"fmt"
	"reflect"
	"time"

	"github.com/latency-benchmark/latency-server/framework/opt"
)

// NonBlockingSend sends value if ch has room for it and reports whether it did.
func NonBlockingSend[V any](ch chan<- V, value V) bool {
	select {
	case ch <- value:
		return true
	default:
		return false
	}
}

// TryReceive waits up to timeout for a value from ch. A closed channel yields its zero value.
func TryReceive[V any](ch <-chan V, timeout time.Duration) opt.Maybe[V] {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case value := <-ch:
		return opt.Some(value)
	case <-deadline.C:
		return opt.None[V]()
	}
}

// RequireValue returns the next value from ch, or fails the test immediately if none arrives
// within timeout. The optional msgAndArgs are a format string and its arguments, as in testify.
func RequireValue[V any](t TestContext, ch <-chan V, timeout time.Duration, msgAndArgs ...interface{}) V {
	t.Helper()
	value := TryReceive(ch, timeout)
	if !value.IsDefined() {
		fail(t, fmt.Sprintf("timed out after %s waiting for value of type %s", timeout, reflect.TypeOf((*V)(nil)).Elem()),
			msgAndArgs)
	}
	return value.Value()
}

// RequireNoMoreValues fails the test immediately if ch delivers anything within timeout.
func RequireNoMoreValues[V any](t TestContext, ch <-chan V, timeout time.Duration, msgAndArgs ...interface{}) {
	t.Helper()
	if value := TryReceive(ch, timeout); value.IsDefined() {
		fail(t, fmt.Sprintf("received unexpected value %v", value.Value()), msgAndArgs)
	}
}

func fail(t TestContext, defaultMsg string, msgAndArgs []interface{}) {
	t.Helper()
	msg := defaultMsg
	if len(msgAndArgs) > 0 {
		if format, ok := msgAndArgs[0].(string); ok {
			msg = fmt.Sprintf(format, msgAndArgs[1:]...) + ": " + defaultMsg
		}
	}
	t.Errorf("%s", msg)
	t.FailNow()
}
