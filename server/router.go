package server

import (
	"context"
	"net/http"
	"time"

	"github.com/latency-benchmark/latency-server/framework/helpers"
	"github.com/latency-benchmark/latency-server/latency"
	"github.com/latency-benchmark/latency-server/pattern"
	"github.com/latency-benchmark/latency-server/session"

	"github.com/gorilla/mux"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	TestPath         = "/test"
	KeepAlivePath    = "/keepServerAlive"
	ControlTestPath  = "/runControlTest"
	HardwareTestPath = "/oculusLatencyTester"

	// PatternQueryParam carries the hex-encoded magic pattern on TestPath requests.
	PatternQueryParam = "magicPattern"

	DefaultWarmupChunks   = 2048
	DefaultStatusInterval = time.Second

	instrumentationName = "github.com/latency-benchmark/latency-server/server"
)

// Router is the single entry point for requests. Measurement and keep-alive paths are handled
// here; every other request, including a TestPath request without a valid pattern, goes to the
// static file handler.
type Router struct {
	handler        http.Handler
	files          http.Handler
	gate           *session.Gate
	measurer       latency.Measurer
	tester         latency.HardwareTester
	window         latency.ReferenceWindow
	newPattern     func() pattern.MagicPattern
	warmupChunks   int
	statusInterval time.Duration
	meterProvider  metric.MeterProvider
	sessions       metric.Int64UpDownCounter
	measurements   metric.Int64Counter
	loggers        ldlog.Loggers
}

type RouterOption helpers.ConfigOption[Router]

func routerOption(fn func(*Router)) RouterOption {
	return helpers.ConfigOptionFunc[Router](func(r *Router) error {
		fn(r)
		return nil
	})
}

// WithMeasurer sets the screen capture collaborator used by TestPath and ControlTestPath.
func WithMeasurer(m latency.Measurer) RouterOption {
	return routerOption(func(r *Router) { r.measurer = m })
}

// WithHardwareTester sets the collaborator used by HardwareTestPath and by keep-alive status chunks.
func WithHardwareTester(t latency.HardwareTester) RouterOption {
	return routerOption(func(r *Router) { r.tester = t })
}

// WithReferenceWindow sets the native window used by ControlTestPath.
func WithReferenceWindow(w latency.ReferenceWindow) RouterOption {
	return routerOption(func(r *Router) { r.window = w })
}

// WithPatternSource replaces pattern.Random as the source of control test patterns.
func WithPatternSource(fn func() pattern.MagicPattern) RouterOption {
	return routerOption(func(r *Router) { r.newPattern = fn })
}

// WithWarmupChunks sets how many status chunks a keep-alive stream sends before it starts
// pacing them.
func WithWarmupChunks(n int) RouterOption {
	return routerOption(func(r *Router) { r.warmupChunks = n })
}

// WithStatusInterval sets how often a keep-alive stream sends a status chunk after warm-up.
func WithStatusInterval(d time.Duration) RouterOption {
	return routerOption(func(r *Router) { r.statusInterval = d })
}

// WithMeterProvider sets where session and measurement metrics are recorded. The default is
// the global otel provider.
func WithMeterProvider(mp metric.MeterProvider) RouterOption {
	return routerOption(func(r *Router) { r.meterProvider = mp })
}

// NewRouter creates a Router. Collaborators that are not configured default to
// latency.Unsupported.
func NewRouter(
	gate *session.Gate,
	files http.Handler,
	loggers ldlog.Loggers,
	options ...RouterOption,
) (*Router, error) {
	r := &Router{
		files:          files,
		gate:           gate,
		measurer:       latency.Unsupported{},
		tester:         latency.Unsupported{},
		window:         latency.Unsupported{},
		newPattern:     pattern.Random,
		warmupChunks:   DefaultWarmupChunks,
		statusInterval: DefaultStatusInterval,
		meterProvider:  otel.GetMeterProvider(),
		loggers:        loggers,
	}
	if err := helpers.ApplyOptions(r, options...); err != nil {
		return nil, err
	}

	meter := r.meterProvider.Meter(instrumentationName)
	var err error
	if r.sessions, err = meter.Int64UpDownCounter("latency_server.keepalive.sessions",
		metric.WithDescription("Number of open keep-alive streams"),
		metric.WithUnit("{session}")); err != nil {
		return nil, err
	}
	if r.measurements, err = meter.Int64Counter("latency_server.measurements",
		metric.WithDescription("Number of latency measurements by kind and outcome"),
		metric.WithUnit("{measurement}")); err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	router.SkipClean(true)
	router.HandleFunc(TestPath, r.serveLatencyTest)
	router.HandleFunc(KeepAlivePath, r.serveKeepAlive)
	router.HandleFunc(ControlTestPath, r.serveControlTest)
	router.HandleFunc(HardwareTestPath, r.serveHardwareTest)
	router.NotFoundHandler = files
	r.handler = router

	return r, nil
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) serveLatencyTest(w http.ResponseWriter, req *http.Request) {
	p, err := pattern.Decode(req.URL.Query().Get(PatternQueryParam))
	if err != nil {
		r.loggers.Debugf("Treating %s as a static file request: %s", req.URL, err)
		r.files.ServeHTTP(w, req)
		return
	}
	r.reportLatency(req.Context(), w, p, "page")
}

func (r *Router) serveControlTest(w http.ResponseWriter, req *http.Request) {
	p := r.newPattern()
	r.loggers.Debugf("Running control test with pattern %s", p)
	r.window.Open(p)
	defer r.window.Close()
	r.reportLatency(req.Context(), w, p, "control")
}

func (r *Router) serveHardwareTest(w http.ResponseWriter, req *http.Request) {
	result, err := r.tester.RunLatencyTest()
	setReportHeaders(w)
	if err != nil {
		r.loggers.Warnf("Hardware latency test failed: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(err.Error()))
		return
	}
	r.loggers.Debug("Hardware latency test succeeded")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(result))
}

// reportLatency runs a measurement and writes the metrics report, or the collaborator's error
// message with a 500 status.
func (r *Router) reportLatency(ctx context.Context, w http.ResponseWriter, p pattern.MagicPattern, kind string) {
	m, err := r.measurer.MeasureLatency(p)
	setReportHeaders(w)
	outcome := helpers.IfElse(err == nil, "ok", "error")
	r.measurements.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
	if err != nil {
		r.loggers.Warnf("Latency measurement reported error: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(err.Error()))
		return
	}
	body, _ := m.MarshalJSON()
	r.loggers.Debugf("Measured latency for pattern %s: %s", p, body)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func setReportHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Cache-Control", "no-cache")
	h.Set("Content-Type", "text/plain")
	h.Set("Connection", "close")
}
