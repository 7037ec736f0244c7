package server

import (
	"context"
	"net/http"
	"time"

	"github.com/latency-benchmark/latency-server/framework/helpers"
)

var (
	testerAvailableChunk   = []byte{'1'} //nolint:gochecknoglobals
	testerUnavailableChunk = []byte{'0'} //nolint:gochecknoglobals
)

// serveKeepAlive holds the connection open for as long as the page that made the request is
// loaded. The session is counted in the gate from before the first write until after the last
// one. Each chunk is a single byte reporting whether a hardware latency tester is attached.
//
// The stream ends on a failed write or when the request context is cancelled, which happens on
// disconnect and on server shutdown.
func (r *Router) serveKeepAlive(w http.ResponseWriter, req *http.Request) {
	r.sessions.Add(req.Context(), 1)
	active := r.gate.Increment()
	r.loggers.Infof("Keep-alive session opened (%d active)", active)
	defer func() {
		remaining := r.gate.Decrement()
		r.sessions.Add(context.Background(), -1)
		r.loggers.Infof("Keep-alive session closed (%d remaining)", remaining)
	}()

	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Content-Type", "application/octet-stream")
	h.Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	// Flushing after every write makes each status byte its own chunk.
	rc := http.NewResponseController(w)
	send := func(chunk []byte) error {
		if _, err := w.Write(chunk); err != nil {
			return err
		}
		return rc.Flush()
	}

	chunk := r.testerStatusChunk()
	for i := 0; i < r.warmupChunks; i++ {
		if err := send(chunk); err != nil {
			r.loggers.Debugf("Keep-alive stream write failed during warm-up: %s", err)
			return
		}
	}

	ticker := time.NewTicker(r.statusInterval)
	defer ticker.Stop()
	for {
		if err := send(r.testerStatusChunk()); err != nil {
			r.loggers.Debugf("Keep-alive stream write failed: %s", err)
			return
		}
		select {
		case <-req.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *Router) testerStatusChunk() []byte {
	return helpers.IfElse(r.tester.Available(), testerAvailableChunk, testerUnavailableChunk)
}
