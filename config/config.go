// Package config holds the server's startup settings and loads them from a JSON or YAML file.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/latency-benchmark/latency-server/latency"
	"github.com/latency-benchmark/latency-server/server"

	yaml "gopkg.in/yaml.v3"
)

type AssetMode string

const (
	// AssetsBundled serves the pages compiled into the binary.
	AssetsBundled AssetMode = "bundled"
	// AssetsFilesystem reads the pages from disk on every request, for editing them without a
	// rebuild.
	AssetsFilesystem AssetMode = "filesystem"

	// DefaultDocrootDir is relative to the working directory and contains the html/ document root.
	DefaultDocrootDir = "assets"
)

var (
	ErrInvalidAssetMode = errors.New("asset mode must be \"bundled\" or \"filesystem\"")
	ErrInvalidPort      = errors.New("port must be between 0 and 65535")
)

// Duration is a time.Duration that is written in config files as a string such as "500ms".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string such as \"1s\": %w", err)
	}
	return d.parse(s)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

type Config struct {
	Host           string    `json:"host" yaml:"host"`
	Port           int       `json:"port" yaml:"port"`
	Assets         AssetMode `json:"assets" yaml:"assets"`
	DocrootDir     string    `json:"docrootDir" yaml:"docrootDir"`
	MaxConnections int       `json:"maxConnections" yaml:"maxConnections"`
	StatusInterval Duration  `json:"statusInterval" yaml:"statusInterval"`
	Auto           bool      `json:"auto" yaml:"auto"`
	Debug          bool      `json:"debug" yaml:"debug"`
	OTLPEndpoint   string    `json:"otlpEndpoint" yaml:"otlpEndpoint"`

	// MeasureCommand, if set, is run for every measurement instead of reporting that screen
	// capture is unsupported. MeasureArgs come before the pattern argument.
	MeasureCommand string   `json:"measureCommand" yaml:"measureCommand"`
	MeasureArgs    []string `json:"measureArgs" yaml:"measureArgs"`
	MeasureTimeout Duration `json:"measureTimeout" yaml:"measureTimeout"`
}

func Default() Config {
	return Config{
		Host:           server.DefaultHost,
		Port:           server.DefaultPort,
		Assets:         AssetsBundled,
		DocrootDir:     DefaultDocrootDir,
		MaxConnections: server.DefaultMaxConnections,
		StatusInterval: Duration(server.DefaultStatusInterval),
		MeasureTimeout: Duration(latency.DefaultCommandTimeout),
	}
}

// LoadFile reads path over the existing values of c. Properties missing from the file keep
// their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read config file: %w", err)
	}
	if err := decode(data, c); err != nil {
		return fmt.Errorf("cannot parse config file %s: %w", path, err)
	}
	return nil
}

// decode reads JSON if the data starts like a JSON object and YAML otherwise. JSON is mostly
// valid YAML too, but not when it is indented with tabs.
func decode(data []byte, c *Config) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return json.Unmarshal(data, c)
	}
	return yaml.Unmarshal(data, c)
}

func (c Config) Validate() error {
	switch c.Assets {
	case AssetsBundled, AssetsFilesystem:
	default:
		return fmt.Errorf("%w, not %q", ErrInvalidAssetMode, c.Assets)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w, not %d", ErrInvalidPort, c.Port)
	}
	if c.StatusInterval <= 0 {
		return fmt.Errorf("status interval must be positive, not %s", time.Duration(c.StatusInterval))
	}
	return nil
}

// Address is the host:port the server listens on.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
