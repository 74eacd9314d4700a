// Package config holds the settings for the modem HTTP fetch: the serial
// link, the PDP context, the request and the per-command timeouts.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/blicero/krylib"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v2"
)

// Config represents the complete configuration of a fetch run.
type Config struct {
	Serial SerialConfig `yaml:"serial"`
	PDP    PDPConfig    `yaml:"pdp"`
	HTTP   HTTPConfig   `yaml:"http"`
	Timing TimingConfig `yaml:"timing"`
	Log    LogConfig    `yaml:"log"`
}

// SerialConfig describes the link to the modem.
type SerialConfig struct {
	Port                    string `yaml:"port"`
	Baud                    uint   `yaml:"baud"`
	DataBits                uint   `yaml:"dataBits"`
	StopBits                uint   `yaml:"stopBits"`
	Parity                  string `yaml:"parity"`
	InterCharacterTimeoutMs uint   `yaml:"interCharacterTimeoutMs"`
	BufferSize              int    `yaml:"bufferSize"`
}

// PDPConfig is the packet data context the modem attaches with.
type PDPConfig struct {
	CID      int    `yaml:"cid"`
	Type     string `yaml:"type"`
	APN      string `yaml:"apn"`
	AuthType int    `yaml:"authType"` // 0 none, 1 PAP, 2 CHAP
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// HTTPConfig is the request handed to the modem's HTTP service.
type HTTPConfig struct {
	URL      string `yaml:"url"`
	SSL      bool   `yaml:"ssl"`
	ReadMode int    `yaml:"readMode"`
	Output   string `yaml:"output"`
}

// TimingConfig holds the reply windows, in milliseconds.
type TimingConfig struct {
	CommandMs  int `yaml:"commandMs"`
	ActivateMs int `yaml:"activateMs"`
	ActionMs   int `yaml:"actionMs"`
	ReadMs     int `yaml:"readMs"`
}

// LogConfig controls log level, optional log file and wire tracing.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	Trace      bool   `yaml:"trace"`
}

// Command returns the window for ordinary commands.
func (t TimingConfig) Command() time.Duration { return ms(t.CommandMs) }

// Activate returns the window for PDP context activation.
func (t TimingConfig) Activate() time.Duration { return ms(t.ActivateMs) }

// Action returns the window for AT+HTTPACTION.
func (t TimingConfig) Action() time.Duration { return ms(t.ActionMs) }

// Read returns the window for AT+HTTPREAD.
func (t TimingConfig) Read() time.Duration { return ms(t.ReadMs) }

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// Default returns the configuration the demo ships with.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:                    "/dev/ttyUSB2",
			Baud:                    115200,
			DataBits:                8,
			StopBits:                1,
			Parity:                  "none",
			InterCharacterTimeoutMs: 100,
			BufferSize:              1024,
		},
		PDP: PDPConfig{
			CID:      1,
			Type:     "IP",
			APN:      "everywhere",
			AuthType: 1,
			User:     "eesecure",
			Password: "secure",
		},
		HTTP: HTTPConfig{
			URL:      "https://alusys.io/test/sample.bin",
			SSL:      true,
			ReadMode: 1,
		},
		Timing: TimingConfig{
			CommandMs:  500,
			ActivateMs: 2000,
			ActionMs:   10000,
			ReadMs:     10000,
		},
		Log: LogConfig{
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load builds the configuration from the defaults, the file at path (if
// path is not empty) and the SIMHTTP_* environment variables, in that
// order, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		ok, err := krylib.Fexists(path)
		if err != nil {
			return nil, fmt.Errorf("failed to check config file %s: %w", path, err)
		} else if !ok {
			return nil, fmt.Errorf("config file %s does not exist", path)
		}
		if err = loadFromFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the file's values on cfg. The format follows the
// extension: .toml for TOML, anything else is read as YAML. Keys missing
// from the file keep their current values.
func loadFromFile(cfg *Config, path string) error {
	var (
		err  error
		data []byte
	)

	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		var tree *toml.Tree
		if tree, err = toml.LoadFile(path); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		// TOML and YAML share key names, so the tree is fed through the
		// YAML decoder, which leaves absent keys alone.
		if data, err = yaml.Marshal(tree.ToMap()); err != nil {
			return fmt.Errorf("failed to convert config file %s: %w", path, err)
		}
	} else if data, err = os.ReadFile(path); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err = yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SIMHTTP_PORT"); v != "" {
		cfg.Serial.Port = v
	}
	if v := os.Getenv("SIMHTTP_BAUD"); v != "" {
		baud, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid SIMHTTP_BAUD %q: %w", v, err)
		}
		cfg.Serial.Baud = uint(baud)
	}
	if v := os.Getenv("SIMHTTP_APN"); v != "" {
		cfg.PDP.APN = v
	}
	if v := os.Getenv("SIMHTTP_USER"); v != "" {
		cfg.PDP.User = v
	}
	if v := os.Getenv("SIMHTTP_PASSWORD"); v != "" {
		cfg.PDP.Password = v
	}
	if v := os.Getenv("SIMHTTP_URL"); v != "" {
		cfg.HTTP.URL = v
	}
	if v := os.Getenv("SIMHTTP_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToUpper(v)
	}
	return nil
}

// Validate checks the configuration for values the modem or the transport
// cannot work with.
func (c *Config) Validate() error {
	if c.Serial.Port == "" {
		return fmt.Errorf("serial port must not be empty")
	}
	if c.Serial.Baud == 0 {
		return fmt.Errorf("baud rate must be positive")
	}
	if c.Serial.DataBits < 5 || c.Serial.DataBits > 8 {
		return fmt.Errorf("data bits must be between 5 and 8, got %d", c.Serial.DataBits)
	}
	if c.Serial.StopBits != 1 && c.Serial.StopBits != 2 {
		return fmt.Errorf("stop bits must be 1 or 2, got %d", c.Serial.StopBits)
	}
	switch strings.ToLower(c.Serial.Parity) {
	case "none", "odd", "even":
	default:
		return fmt.Errorf("unknown parity %q", c.Serial.Parity)
	}
	// the driver rounds to tenths of a second and needs 1..255 of them
	if c.Serial.InterCharacterTimeoutMs < 100 || c.Serial.InterCharacterTimeoutMs > 25500 {
		return fmt.Errorf("inter-character timeout must be between 100 and 25500 ms, got %d",
			c.Serial.InterCharacterTimeoutMs)
	}
	if c.Serial.BufferSize < 2 {
		return fmt.Errorf("buffer size must be at least 2, got %d", c.Serial.BufferSize)
	}
	if c.PDP.CID < 1 {
		return fmt.Errorf("PDP context id must be positive, got %d", c.PDP.CID)
	}
	if c.PDP.AuthType < 0 || c.PDP.AuthType > 2 {
		return fmt.Errorf("auth type must be 0, 1 or 2, got %d", c.PDP.AuthType)
	}
	if c.HTTP.URL == "" {
		return fmt.Errorf("URL must not be empty")
	}
	if c.Timing.CommandMs <= 0 || c.Timing.ActivateMs <= 0 ||
		c.Timing.ActionMs <= 0 || c.Timing.ReadMs <= 0 {
		return fmt.Errorf("timeouts must be positive: %+v", c.Timing)
	}
	if !validLevel(c.Log.Level) {
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// Levels lists the accepted log levels, lowest first.
var Levels = []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "CRITICAL"}

func validLevel(l string) bool {
	for _, lvl := range Levels {
		if lvl == l {
			return true
		}
	}
	return false
}
