package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/latency-benchmark/latency-server/config"
)

type commandParams struct {
	configFile string
	config     config.Config
}

// Read parses the command line. When -config is given, the file is applied over the defaults and
// then the command line is parsed again, so flags that were set explicitly take precedence over
// the file.
func (c *commandParams) Read(args []string) bool {
	c.config = config.Default()
	fs := c.flagSet()
	if err := fs.Parse(args[1:]); err != nil {
		return false // the flag set has already printed the error and usage
	}
	if c.configFile != "" {
		if err := c.config.LoadFile(c.configFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return false
		}
		fs = c.flagSet()
		_ = fs.Parse(args[1:]) // already parsed successfully once
	}
	if err := c.config.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	return true
}

func (c *commandParams) flagSet() *flag.FlagSet {
	cfg := &c.config
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.StringVar(&c.configFile, "config", c.configFile, "JSON or YAML file to read settings from")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "loopback address to listen on")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "port to listen on")
	fs.Func("assets", "where test pages come from: \"bundled\" or \"filesystem\"", func(s string) error {
		cfg.Assets = config.AssetMode(s)
		return nil
	})
	fs.StringVar(&cfg.DocrootDir, "docroot-dir", cfg.DocrootDir, "directory containing the html/ document root when -assets=filesystem")
	fs.IntVar(&cfg.MaxConnections, "max-connections", cfg.MaxConnections, "maximum number of connections served at once")
	fs.Func("status-interval", "time between keep-alive status chunks (default 1s)", func(s string) error {
		d, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		cfg.StatusInterval = config.Duration(d)
		return nil
	})
	fs.BoolVar(&cfg.Auto, "auto", cfg.Auto, "start the benchmark automatically when the page loads")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")
	fs.StringVar(&cfg.MeasureCommand, "measure-command", cfg.MeasureCommand, "program that measures latency for a pattern and prints a report")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", cfg.OTLPEndpoint, "host:port of an OTLP/gRPC collector to export metrics to")
	return fs
}
