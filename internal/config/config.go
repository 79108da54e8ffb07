package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/vcioctl/internal/firmware"
	"github.com/danmuck/vcioctl/internal/logging"
	"github.com/danmuck/vcioctl/internal/mailbox"
	pelletier "github.com/pelletier/go-toml/v2"
)

// Config is the vcioctl configuration file.
type Config struct {
	Device string       `toml:"device"`
	Log    LogConfig    `toml:"log"`
	Server ServerConfig `toml:"server"`
	Memory MemoryConfig `toml:"memory"`
}

type LogConfig struct {
	Level     string `toml:"level"`
	Timestamp bool   `toml:"timestamp"`
	NoColor   bool   `toml:"no_color"`
	JSON      bool   `toml:"json"`
}

type ServerConfig struct {
	Name         string   `toml:"name"`
	Addr         string   `toml:"addr"`
	CorsOrigins  []string `toml:"cors_origins"`
	Metrics      bool     `toml:"metrics"`
	ThrottleMask uint16   `toml:"throttle_mask"`

	// Token, when set, is required as a bearer token on firmware routes.
	Token string `toml:"token"`
}

// MemoryConfig is the block used by memtest.
type MemoryConfig struct {
	Size  uint32   `toml:"size"`
	Align uint32   `toml:"align"`
	Flags []string `toml:"flags"`
}

func Default() Config {
	return Config{
		Device: mailbox.DefaultPath,
		Log: LogConfig{
			Level:     "info",
			Timestamp: true,
		},
		Server: ServerConfig{
			Name:         "vcioctl",
			Addr:         ":9200",
			CorsOrigins:  []string{"http://localhost:3000"},
			Metrics:      true,
			ThrottleMask: firmware.DefaultThrottleMask,
		},
		Memory: MemoryConfig{
			Size:  4096,
			Align: 4096,
			Flags: []string{"NORMAL", "DIRECT", "COHERENT", "L1_NONALLOCATING"},
		},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw Config
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("device") {
		cfg.Device = strings.TrimSpace(raw.Device)
	}
	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "timestamp") {
		cfg.Log.Timestamp = raw.Log.Timestamp
	}
	if meta.IsDefined("log", "no_color") {
		cfg.Log.NoColor = raw.Log.NoColor
	}
	if meta.IsDefined("log", "json") {
		cfg.Log.JSON = raw.Log.JSON
	}
	if meta.IsDefined("server", "name") {
		cfg.Server.Name = strings.TrimSpace(raw.Server.Name)
	}
	if meta.IsDefined("server", "addr") {
		cfg.Server.Addr = strings.TrimSpace(raw.Server.Addr)
	}
	if meta.IsDefined("server", "cors_origins") {
		cfg.Server.CorsOrigins = normalizeList(raw.Server.CorsOrigins)
	}
	if meta.IsDefined("server", "metrics") {
		cfg.Server.Metrics = raw.Server.Metrics
	}
	if meta.IsDefined("server", "throttle_mask") {
		cfg.Server.ThrottleMask = raw.Server.ThrottleMask
	}
	if meta.IsDefined("server", "token") {
		cfg.Server.Token = strings.TrimSpace(raw.Server.Token)
	}
	if meta.IsDefined("memory", "size") {
		cfg.Memory.Size = raw.Memory.Size
	}
	if meta.IsDefined("memory", "align") {
		cfg.Memory.Align = raw.Memory.Align
	}
	if meta.IsDefined("memory", "flags") {
		cfg.Memory.Flags = normalizeList(raw.Memory.Flags)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

// ValidateFile decodes path strictly, rejecting keys the Config does not
// know, and validates the result.
func ValidateFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg := Default()
	dec := pelletier.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Device) == "" {
		return fmt.Errorf("device is required")
	}
	if cfg.Log.Level != "" {
		if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
			return fmt.Errorf("log level %q unknown", cfg.Log.Level)
		}
	}
	if strings.TrimSpace(cfg.Server.Name) == "" {
		return fmt.Errorf("server name is required")
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("server addr is required")
	}
	if cfg.Memory.Size == 0 {
		return fmt.Errorf("memory size must be positive")
	}
	if cfg.Memory.Align == 0 || cfg.Memory.Align&(cfg.Memory.Align-1) != 0 {
		return fmt.Errorf("memory align %d is not a power of two", cfg.Memory.Align)
	}
	if _, err := cfg.Memory.MemFlags(); err != nil {
		return err
	}
	return nil
}

// MemFlags parses each configured flag set, one per memtest pass.
func (m MemoryConfig) MemFlags() ([]firmware.MemFlag, error) {
	out := make([]firmware.MemFlag, 0, len(m.Flags))
	for _, raw := range m.Flags {
		f, err := firmware.ParseMemFlag(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Logging converts the [log] table into a logger setup.
func (l LogConfig) Logging() logging.Config {
	cfg := logging.DefaultConfig(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(l.Level); ok {
		cfg.Level = lvl
	}
	cfg.Timestamp = l.Timestamp
	cfg.NoColor = l.NoColor
	cfg.JSON = l.JSON
	logging.ApplyEnvOverrides(&cfg)
	return cfg
}

func normalizeList(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
