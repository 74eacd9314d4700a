package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/dev/ttyUSB2", cfg.Serial.Port)
	assert.Equal(t, uint(115200), cfg.Serial.Baud)
	assert.Equal(t, 1024, cfg.Serial.BufferSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Timing.Command())
	assert.Equal(t, 2*time.Second, cfg.Timing.Activate())
	assert.Equal(t, 10*time.Second, cfg.Timing.Action())
	assert.Equal(t, 10*time.Second, cfg.Timing.Read())
}

func TestLoadNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().HTTP, cfg.HTTP)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simhttp.yaml")
	data := `
serial:
  port: /dev/ttyAMA0
  baud: 9600
pdp:
  apn: internet
  authType: 0
http:
  url: https://example.com/a.bin
  ssl: false
timing:
  actionMs: 30000
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyAMA0", cfg.Serial.Port)
	assert.Equal(t, uint(9600), cfg.Serial.Baud)
	assert.Equal(t, uint(8), cfg.Serial.DataBits, "unset keys keep defaults")
	assert.Equal(t, "internet", cfg.PDP.APN)
	assert.Equal(t, 0, cfg.PDP.AuthType)
	assert.Equal(t, "https://example.com/a.bin", cfg.HTTP.URL)
	assert.False(t, cfg.HTTP.SSL)
	assert.Equal(t, 30*time.Second, cfg.Timing.Action())
	assert.Equal(t, 500*time.Millisecond, cfg.Timing.Command())
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simhttp.toml")
	data := `
[serial]
port = "/dev/ttyS1"
bufferSize = 4096

[pdp]
apn = "iot.example"

[log]
level = "DEBUG"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyS1", cfg.Serial.Port)
	assert.Equal(t, 4096, cfg.Serial.BufferSize)
	assert.Equal(t, "iot.example", cfg.PDP.APN)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SIMHTTP_PORT", "/dev/ttyUSB3")
	t.Setenv("SIMHTTP_BAUD", "57600")
	t.Setenv("SIMHTTP_APN", "three.co.uk")
	t.Setenv("SIMHTTP_URL", "https://example.org/")
	t.Setenv("SIMHTTP_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB3", cfg.Serial.Port)
	assert.Equal(t, uint(57600), cfg.Serial.Baud)
	assert.Equal(t, "three.co.uk", cfg.PDP.APN)
	assert.Equal(t, "https://example.org/", cfg.HTTP.URL)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
}

func TestEnvOverrideBadBaud(t *testing.T) {
	t.Setenv("SIMHTTP_BAUD", "fast")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty port":   func(c *Config) { c.Serial.Port = "" },
		"zero baud":    func(c *Config) { c.Serial.Baud = 0 },
		"data bits":    func(c *Config) { c.Serial.DataBits = 9 },
		"stop bits":    func(c *Config) { c.Serial.StopBits = 3 },
		"parity":       func(c *Config) { c.Serial.Parity = "mark" },
		"tiny buffer":  func(c *Config) { c.Serial.BufferSize = 1 },
		"no ict":       func(c *Config) { c.Serial.InterCharacterTimeoutMs = 0 },
		"short ict":    func(c *Config) { c.Serial.InterCharacterTimeoutMs = 40 },
		"long ict":     func(c *Config) { c.Serial.InterCharacterTimeoutMs = 30000 },
		"cid":          func(c *Config) { c.PDP.CID = 0 },
		"auth type":    func(c *Config) { c.PDP.AuthType = 5 },
		"empty url":    func(c *Config) { c.HTTP.URL = "" },
		"zero timeout": func(c *Config) { c.Timing.ActionMs = 0 },
		"log level":    func(c *Config) { c.Log.Level = "LOUD" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateInterCharacterTimeoutBounds(t *testing.T) {
	for _, v := range []uint{100, 2000, 25500} {
		cfg := Default()
		cfg.Serial.InterCharacterTimeoutMs = v
		assert.NoError(t, cfg.Validate(), "%d ms", v)
	}
}
