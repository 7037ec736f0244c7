package server

import (
	"net"
	"net/http"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
)

// NewHandler wraps a Router with everything that applies to all requests: HTTP instrumentation,
// the loopback-only access rule, HEAD probes and debug request logging.
func NewHandler(router http.Handler, loggers ldlog.Loggers, mp metric.MeterProvider) http.Handler {
	var h http.Handler = router
	h = logRequests(h, loggers)
	h = answerHeadProbes(h)
	h = loopbackOnly(h, loggers)
	return otelhttp.NewHandler(h, "latency-server", otelhttp.WithMeterProvider(mp))
}

// loopbackOnly rejects every request that does not come from a loopback address. The server
// drives native windows and screen capture, so it must never be reachable from another host.
func loopbackOnly(next http.Handler, loggers ldlog.Loggers) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isLoopback(r.RemoteAddr) {
			loggers.Warnf("Rejected %s %s from non-loopback address %s", r.Method, r.URL.Path, r.RemoteAddr)
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// answerHeadProbes lets tools check whether the listener is up with HEAD /. Other HEAD
// requests are routed like GET.
func answerHeadProbes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead && r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func logRequests(next http.Handler, loggers ldlog.Loggers) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loggers.Debugf("Received %s %s", r.Method, r.URL)
		ww := wrappedResponseWriter{w: w, status: http.StatusOK}
		next.ServeHTTP(&ww, r)
		switch ww.status {
		case http.StatusNotFound:
			loggers.Debugf("No resource for %s %s", r.Method, r.URL.Path)
		case http.StatusInternalServerError:
			loggers.Debugf("%s %s failed with status %d", r.Method, r.URL.Path, ww.status)
		}
	})
}

// wrappedResponseWriter records the status written to a ResponseWriter. It keeps the underlying
// writer's Flush available, since the keep-alive stream depends on it.
type wrappedResponseWriter struct {
	w      http.ResponseWriter
	status int
}

func (ww *wrappedResponseWriter) Header() http.Header { return ww.w.Header() }

func (ww *wrappedResponseWriter) WriteHeader(status int) {
	ww.status = status
	ww.w.WriteHeader(status)
}

func (ww *wrappedResponseWriter) Write(data []byte) (int, error) { return ww.w.Write(data) }

func (ww *wrappedResponseWriter) Unwrap() http.ResponseWriter { return ww.w }

func (ww *wrappedResponseWriter) Flush() {
	_ = ww.FlushError()
}

func (ww *wrappedResponseWriter) FlushError() error {
	return http.NewResponseController(ww.w).Flush()
}
