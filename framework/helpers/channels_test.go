package helpers

import (
	"testing"
	"time"

	"github.com/latency-benchmark/latency-server/framework/opt"

	"github.com/stretchr/testify/assert"
)

func sendLater[V any](ch chan<- V, value V) {
	go func() {
		time.Sleep(time.Millisecond * 50)
		ch <- value
	}()
}

func TestNonBlockingSend(t *testing.T) {
	assert.False(t, NonBlockingSend(make(chan int), 1))

	ch := make(chan int, 1)
	assert.True(t, NonBlockingSend(ch, 1))
	assert.False(t, NonBlockingSend(ch, 2))
	assert.Equal(t, 1, <-ch)
}

func TestTryReceive(t *testing.T) {
	ch := make(chan int64, 1)
	assert.Equal(t, opt.None[int64](), TryReceive(ch, time.Millisecond))

	ch <- 3
	assert.Equal(t, opt.Some(int64(3)), TryReceive(ch, time.Millisecond))

	sendLater(ch, 4)
	assert.Equal(t, opt.Some(int64(4)), TryReceive(ch, time.Second))
}

func TestRequireValue(t *testing.T) {
	ch := make(chan error, 1)

	t.Run("timeout", func(t *testing.T) {
		tr := TestRecorder{PanicOnTerminate: true}
		assert.PanicsWithValue(t, &tr, func() { RequireValue(&tr, ch, time.Millisecond) })
		assert.Len(t, tr.Errors, 1)
		assert.Contains(t, tr.Errors[0], "waiting for value of type error")
	})

	t.Run("timeout with message", func(t *testing.T) {
		tr := TestRecorder{PanicOnTerminate: true}
		assert.Panics(t, func() { RequireValue(&tr, ch, time.Millisecond, "server %s did not stop", "x") })
		assert.Contains(t, tr.Errors[0], "server x did not stop: timed out")
	})

	t.Run("value already waiting", func(t *testing.T) {
		var tr TestRecorder
		ch <- nil
		assert.NoError(t, RequireValue(&tr, ch, time.Millisecond))
		assert.NoError(t, tr.Err())
	})

	t.Run("value arrives later", func(t *testing.T) {
		var tr TestRecorder
		sendLater(ch, assert.AnError)
		assert.Equal(t, assert.AnError, RequireValue(&tr, ch, time.Second))
		assert.False(t, tr.Terminated)
	})
}

func TestRequireNoMoreValues(t *testing.T) {
	ch := make(chan string, 1)

	var quiet TestRecorder
	RequireNoMoreValues(&quiet, ch, time.Millisecond)
	assert.NoError(t, quiet.Err())

	for name, send := range map[string]func(){
		"value waiting":  func() { ch <- "a" },
		"value arriving": func() { sendLater(ch, "a") },
	} {
		t.Run(name, func(t *testing.T) {
			tr := TestRecorder{PanicOnTerminate: true}
			send()
			assert.Panics(t, func() { RequireNoMoreValues(&tr, ch, time.Second) })
			if assert.Error(t, tr.Err()) {
				assert.Contains(t, tr.Err().Error(), "unexpected value a")
			}
		})
	}
}
