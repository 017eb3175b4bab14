// Package config loads diffcalc settings from TOML or YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/diffcalc"
)

// EnvConfigPath names the environment variable holding the config path.
const EnvConfigPath = "DIFFCALC_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General    GeneralConfig    `toml:"general" yaml:"general"`
	Server     ServerConfig     `toml:"server" yaml:"server"`
	GRPC       GRPCConfig       `toml:"grpc" yaml:"grpc"`
	Calculator CalculatorConfig `toml:"calculator" yaml:"calculator"`
	Plot       PlotConfig       `toml:"plot" yaml:"plot"`
}

// GeneralConfig holds logging settings
type GeneralConfig struct {
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host              string   `toml:"host" yaml:"host"`
	Port              int      `toml:"port" yaml:"port"`
	ReadHeaderTimeout Duration `toml:"read_header_timeout" yaml:"read_header_timeout"`
	ReadTimeout       Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout      Duration `toml:"write_timeout" yaml:"write_timeout"`
	IdleTimeout       Duration `toml:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout   Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxBodyBytes      int64    `toml:"max_body_bytes" yaml:"max_body_bytes"`
	AllowedOrigins    []string `toml:"allowed_origins" yaml:"allowed_origins"` // extra WebSocket origins
}

// GRPCConfig holds gRPC server settings
type GRPCConfig struct {
	Enabled           bool     `toml:"enabled" yaml:"enabled"`
	Host              string   `toml:"host" yaml:"host"`
	Port              int      `toml:"port" yaml:"port"`
	MaxRecvMsgSize    int      `toml:"max_recv_msg_size" yaml:"max_recv_msg_size"`
	KeepaliveInterval Duration `toml:"keepalive_interval" yaml:"keepalive_interval"`
	KeepaliveTimeout  Duration `toml:"keepalive_timeout" yaml:"keepalive_timeout"`
}

// CalculatorConfig holds pipeline defaults
type CalculatorConfig struct {
	DefaultStep    float64 `toml:"default_step" yaml:"default_step"`
	DefaultUnit    string  `toml:"default_unit" yaml:"default_unit"`
	MaxInputLength int     `toml:"max_input_length" yaml:"max_input_length"`
	SweepSteps     int     `toml:"sweep_steps" yaml:"sweep_steps"`
}

// PlotConfig holds plot sampling settings
type PlotConfig struct {
	Disabled  bool    `toml:"disabled" yaml:"disabled"`
	HalfWidth float64 `toml:"half_width" yaml:"half_width"`
	Samples   int     `toml:"samples" yaml:"samples"`
}

// Duration wraps time.Duration for text-based config formats
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a .toml, .yaml or .yml file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		if _, err := toml.Decode(string(content), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// DefaultPaths lists the locations searched when no path is given.
func DefaultPaths() []string {
	return []string{
		"./configs/diffcalc.toml",
		"./diffcalc.toml",
		"./diffcalc.yaml",
		filepath.Join(os.Getenv("HOME"), ".config/diffcalc/config.toml"),
	}
}

// Discover loads path if set, else DIFFCALC_CONFIG, else the first existing
// default path. With nothing found it returns Default().
func Discover(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return Load(env)
	}
	for _, p := range DefaultPaths() {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadHeaderTimeout.Duration == 0 {
		c.Server.ReadHeaderTimeout.Duration = 5 * time.Second
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 15 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 15 * time.Second
	}
	if c.Server.IdleTimeout.Duration == 0 {
		c.Server.IdleTimeout.Duration = 60 * time.Second
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = 10 * time.Second
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 1 << 20
	}

	if c.GRPC.Host == "" {
		c.GRPC.Host = "127.0.0.1"
	}
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 9090
	}
	if c.GRPC.MaxRecvMsgSize == 0 {
		c.GRPC.MaxRecvMsgSize = 1 << 20
	}
	if c.GRPC.KeepaliveInterval.Duration == 0 {
		c.GRPC.KeepaliveInterval.Duration = 30 * time.Second
	}
	if c.GRPC.KeepaliveTimeout.Duration == 0 {
		c.GRPC.KeepaliveTimeout.Duration = 10 * time.Second
	}

	if c.Calculator.DefaultStep == 0 {
		c.Calculator.DefaultStep = 0.01
	}
	if c.Calculator.DefaultUnit == "" {
		c.Calculator.DefaultUnit = "radians"
	}
	if c.Calculator.MaxInputLength == 0 {
		c.Calculator.MaxInputLength = 512
	}
	if c.Calculator.SweepSteps == 0 {
		c.Calculator.SweepSteps = 6
	}

	if c.Plot.HalfWidth == 0 {
		c.Plot.HalfWidth = 2
	}
	if c.Plot.Samples == 0 {
		c.Plot.Samples = 101
	}
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must not be negative")
	}
	if c.GRPC.Port < 1 || c.GRPC.Port > 65535 {
		return fmt.Errorf("grpc.port out of range: %d", c.GRPC.Port)
	}
	if c.GRPC.Enabled && c.GRPC.Port == c.Server.Port && c.GRPC.Host == c.Server.Host {
		return fmt.Errorf("grpc and server listen on the same address %s", c.GRPCAddress())
	}
	if c.GRPC.MaxRecvMsgSize < 0 {
		return fmt.Errorf("grpc.max_recv_msg_size must not be negative")
	}
	if c.Calculator.DefaultStep <= 0 {
		return fmt.Errorf("calculator.default_step must be positive, got %g", c.Calculator.DefaultStep)
	}
	if _, err := diffcalc.ParseUnit(c.Calculator.DefaultUnit); err != nil {
		return fmt.Errorf("calculator.default_unit: %w", err)
	}
	if c.Calculator.MaxInputLength < 0 {
		return fmt.Errorf("calculator.max_input_length must not be negative")
	}
	if c.Calculator.SweepSteps < 1 || c.Calculator.SweepSteps > diffcalc.MaxSweepSteps {
		return fmt.Errorf("calculator.sweep_steps must be between 1 and %d, got %d", diffcalc.MaxSweepSteps, c.Calculator.SweepSteps)
	}
	if c.Plot.HalfWidth <= 0 {
		return fmt.Errorf("plot.half_width must be positive, got %g", c.Plot.HalfWidth)
	}
	if c.Plot.Samples < 2 {
		return fmt.Errorf("plot.samples must be at least 2, got %d", c.Plot.Samples)
	}
	switch strings.ToLower(c.General.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("general.log_level: unknown level %q", c.General.LogLevel)
	}
	switch strings.ToLower(c.General.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("general.log_format: unknown format %q", c.General.LogFormat)
	}
	return nil
}

// Address returns host:port for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GRPCAddress returns host:port for the gRPC server.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.GRPC.Host, c.GRPC.Port)
}

// DefaultUnit returns the parsed default unit.
func (c *Config) DefaultUnit() diffcalc.Unit {
	u, _ := diffcalc.ParseUnit(c.Calculator.DefaultUnit)
	return u
}

// CalculatorOptions maps the config onto diffcalc.Options.
func (c *Config) CalculatorOptions() diffcalc.Options {
	return diffcalc.Options{
		MaxInputLength: c.Calculator.MaxInputLength,
		Plot:           diffcalc.PlotOptions{HalfWidth: c.Plot.HalfWidth, Samples: c.Plot.Samples},
		DisablePlot:    c.Plot.Disabled,
		SweepSteps:     c.Calculator.SweepSteps,
	}
}
