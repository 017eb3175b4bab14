package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/diffcalc"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.Duration)
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	b, err := Duration{5 * time.Minute}.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "5m0s", string(b))
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.General.LogLevel)
	assert.Equal(t, "text", cfg.General.LogFormat)
	assert.Equal(t, "127.0.0.1:8080", cfg.Address())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Empty(t, cfg.Server.AllowedOrigins)
	assert.Equal(t, 0.01, cfg.Calculator.DefaultStep)
	assert.Equal(t, diffcalc.Radians, cfg.DefaultUnit())
	assert.Equal(t, 6, cfg.Calculator.SweepSteps)
	assert.Equal(t, 2.0, cfg.Plot.HalfWidth)
	assert.Equal(t, 101, cfg.Plot.Samples)
	assert.False(t, cfg.GRPC.Enabled)
	assert.Equal(t, "127.0.0.1:9090", cfg.GRPCAddress())
	assert.Equal(t, 30*time.Second, cfg.GRPC.KeepaliveInterval.Duration)
	require.NoError(t, cfg.Validate())
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diffcalc.toml")
	content := `
[general]
log_level = "debug"
log_format = "json"

[server]
port = 9090
read_timeout = "3s"

[calculator]
default_step = 0.001
default_unit = "degrees"

[plot]
samples = 21
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.General.LogLevel)
	assert.Equal(t, "json", cfg.General.LogFormat)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout.Duration)
	assert.Equal(t, 0.001, cfg.Calculator.DefaultStep)
	assert.Equal(t, diffcalc.Degrees, cfg.DefaultUnit())
	assert.Equal(t, 21, cfg.Plot.Samples)
	assert.Equal(t, 2.0, cfg.Plot.HalfWidth)

	opts := cfg.CalculatorOptions()
	assert.Equal(t, 21, opts.Plot.Samples)
	assert.Equal(t, 512, opts.MaxInputLength)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diffcalc.yaml")
	content := `
server:
  host: 0.0.0.0
  idle_timeout: 2m
  allowed_origins: ["http://localhost:3000"]
calculator:
  sweep_steps: 4
plot:
  disabled: true
grpc:
  enabled: true
  port: 9191
  keepalive_timeout: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 2*time.Minute, cfg.Server.IdleTimeout.Duration)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 4, cfg.Calculator.SweepSteps)
	assert.True(t, cfg.CalculatorOptions().DisablePlot)
	assert.True(t, cfg.GRPC.Enabled)
	assert.Equal(t, "127.0.0.1:9191", cfg.GRPCAddress())
	assert.Equal(t, 3*time.Second, cfg.GRPC.KeepaliveTimeout.Duration)
}

func TestLoadExpandsEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.toml"), []byte("[server]\nport = 7000\n"), 0o644))
	t.Setenv("DIFFCALC_TEST_DIR", dir)

	cfg, err := Load("${DIFFCALC_TEST_DIR}/c.toml")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[server\nport ="), 0o644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOML")

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[calculator]\ndefault_unit = \"gradians\"\n"), 0o644))
	_, err = Load(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_unit")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"negative step", func(c *Config) { c.Calculator.DefaultStep = -1 }},
		{"sweep steps", func(c *Config) { c.Calculator.SweepSteps = 40 }},
		{"half width", func(c *Config) { c.Plot.HalfWidth = -2 }},
		{"samples", func(c *Config) { c.Plot.Samples = 1 }},
		{"log level", func(c *Config) { c.General.LogLevel = "loud" }},
		{"log format", func(c *Config) { c.General.LogFormat = "xml" }},
		{"grpc port", func(c *Config) { c.GRPC.Port = -1 }},
		{"grpc address clash", func(c *Config) {
			c.GRPC.Enabled = true
			c.GRPC.Port = c.Server.Port
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestShippedConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "diffcalc.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 8181\n"), 0o644))

	t.Setenv(EnvConfigPath, path)
	cfg, err := Discover("")
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)

	explicit := filepath.Join(dir, "explicit.toml")
	require.NoError(t, os.WriteFile(explicit, []byte("[server]\nport = 8282\n"), 0o644))
	cfg, err = Discover(explicit)
	require.NoError(t, err)
	assert.Equal(t, 8282, cfg.Server.Port)
}
