package main

import (
	"context"
	_ "embed" // this is required in order for go:embed to work
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/latency-benchmark/latency-server/assets"
	"github.com/latency-benchmark/latency-server/config"
	"github.com/latency-benchmark/latency-server/framework"
	"github.com/latency-benchmark/latency-server/latency"
	"github.com/latency-benchmark/latency-server/server"
	"github.com/latency-benchmark/latency-server/session"
	"github.com/latency-benchmark/latency-server/telemetry"

	"github.com/fatih/color"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// autoStartPath opens the benchmark page in the mode that starts measuring without user input.
const autoStartPath = "/latency-benchmark.html?auto=1"

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

var (
	bannerColor = color.New(color.FgCyan, color.Bold) //nolint:gochecknoglobals
	urlColor    = color.New(color.FgGreen)            //nolint:gochecknoglobals
	errorColor  = color.New(color.FgRed)              //nolint:gochecknoglobals
)

func main() {
	fmt.Println(bannerColor.Sprintf("latency-server v%s", version()))

	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	if err := run(params.config); err != nil {
		fmt.Fprintln(os.Stderr, errorColor.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}

func version() string { return strings.TrimSpace(versionString) }

func run(cfg config.Config) error {
	loggers := newLoggers(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mp, shutdownTelemetry, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, version())
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			loggers.Warnf("Failed to flush metrics: %s", err)
		}
	}()

	provider, err := newResourceProvider(cfg, loggers)
	if err != nil {
		return err
	}

	// There is no hardware tester or native window on this build. The tester is still set up
	// before the listener starts, so that the first keep-alive chunk already reflects it.
	var collaborators latency.Unsupported
	gate := session.NewGate()
	router, err := server.NewRouter(
		gate,
		assets.NewFileServer(provider, loggers),
		loggers,
		server.WithMeasurer(newMeasurer(cfg, loggers)),
		server.WithHardwareTester(collaborators),
		server.WithReferenceWindow(collaborators),
		server.WithStatusInterval(time.Duration(cfg.StatusInterval)),
		server.WithMeterProvider(mp),
	)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Address(), cfg.MaxConnections, server.NewHandler(router, loggers, mp), gate, loggers)
	if err := srv.Start(); err != nil {
		return err
	}

	startURL := srv.URL() + "/"
	if cfg.Auto {
		startURL = srv.URL() + autoStartPath
	}
	fmt.Println("Open this page to run the benchmark:", urlColor.Sprint(startURL))
	fmt.Println("The server exits once every benchmark page has been closed.")

	return srv.Run(ctx)
}

func newLoggers(debug bool) ldlog.Loggers {
	var loggers ldlog.Loggers
	loggers.SetBaseLogger(log.New(os.Stdout, "", log.LstdFlags))
	loggers.SetBaseLoggerForLevel(ldlog.Warn, framework.NewColorLogger(os.Stderr, color.New(color.FgYellow)))
	loggers.SetBaseLoggerForLevel(ldlog.Error, framework.NewColorLogger(os.Stderr, color.New(color.FgRed)))
	if debug {
		loggers.SetMinLevel(ldlog.Debug)
	} else {
		loggers.SetMinLevel(ldlog.Info)
	}
	return loggers
}

// newMeasurer uses the configured measurement helper if there is one. Without it every
// measurement fails with latency.ErrScreenCaptureUnsupported.
func newMeasurer(cfg config.Config, loggers ldlog.Loggers) latency.Measurer {
	if cfg.MeasureCommand == "" {
		return latency.Unsupported{}
	}
	loggers.Infof("Measuring latency with %s", cfg.MeasureCommand)
	return latency.CommandMeasurer{
		Path:    cfg.MeasureCommand,
		Args:    cfg.MeasureArgs,
		Timeout: time.Duration(cfg.MeasureTimeout),
	}
}

func newResourceProvider(cfg config.Config, loggers ldlog.Loggers) (assets.ResourceProvider, error) {
	if cfg.Assets == config.AssetsFilesystem {
		info, err := os.Stat(cfg.DocrootDir)
		if err != nil {
			return nil, fmt.Errorf("cannot serve test pages from disk: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("cannot serve test pages from disk: %s is not a directory", cfg.DocrootDir)
		}
		loggers.Infof("Serving test pages from %s", cfg.DocrootDir)
		return assets.NewDirectory(cfg.DocrootDir), nil
	}
	bundle, err := assets.EmbeddedBundle()
	if err != nil {
		return nil, err
	}
	for _, p := range bundle.Paths() {
		loggers.Debugf("Bundled asset: %s", p)
	}
	return bundle, nil
}
