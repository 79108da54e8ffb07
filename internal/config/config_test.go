package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/vcioctl/internal/firmware"
	"github.com/rs/zerolog"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vcioctl.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, `
device = "/dev/vcio-test"

[server]
addr = "127.0.0.1:9300"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Device != "/dev/vcio-test" {
		t.Fatalf("unexpected device: %q", cfg.Device)
	}
	if cfg.Server.Addr != "127.0.0.1:9300" {
		t.Fatalf("unexpected addr: %q", cfg.Server.Addr)
	}
	if cfg.Server.Name != "vcioctl" || !cfg.Server.Metrics {
		t.Fatalf("server defaults lost: %+v", cfg.Server)
	}
	if cfg.Server.ThrottleMask != firmware.DefaultThrottleMask {
		t.Fatalf("unexpected throttle mask: %#x", cfg.Server.ThrottleMask)
	}
	if cfg.Memory.Size != 4096 || cfg.Memory.Align != 4096 || len(cfg.Memory.Flags) != 4 {
		t.Fatalf("memory defaults lost: %+v", cfg.Memory)
	}
}

func TestLoadOverridesAndFlags(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"
timestamp = false
json = true

[server]
metrics = false
cors_origins = [" http://pi.local ", ""]
throttle_mask = 0

[memory]
size = 8192
align = 16
flags = ["DIRECT|ZERO", "coherent"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Timestamp || !cfg.Log.JSON {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.Server.Metrics || cfg.Server.ThrottleMask != 0 {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if len(cfg.Server.CorsOrigins) != 1 || cfg.Server.CorsOrigins[0] != "http://pi.local" {
		t.Fatalf("unexpected cors origins: %+v", cfg.Server.CorsOrigins)
	}
	flags, err := cfg.Memory.MemFlags()
	if err != nil {
		t.Fatalf("flags: %v", err)
	}
	if len(flags) != 2 || flags[0] != firmware.MemFlagDirect|firmware.MemFlagZero || flags[1] != firmware.MemFlagCoherent {
		t.Fatalf("unexpected flags: %v", flags)
	}

	lc := cfg.Log.Logging()
	if lc.Level != zerolog.DebugLevel || !lc.JSON {
		t.Fatalf("unexpected logging config: %+v", lc)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []string{
		`device = ""`,
		"[memory]\nalign = 3",
		"[memory]\nsize = 0",
		"[memory]\nflags = [\"CACHED\"]",
		"[log]\nlevel = \"loud\"",
		"[server]\naddr = \"\"",
		`device = [`,
	}
	for _, content := range cases {
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Fatalf("expected error for %q", content)
		}
	}
}

func TestValidateFileRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
device = "/dev/vcio"
mailbox = "/dev/vchiq"
`)
	if _, err := ValidateFile(path); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestTemplateRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vcioctl.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected existing file error, got %v", err)
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite template: %v", err)
	}

	strict, err := ValidateFile(path)
	if err != nil {
		t.Fatalf("validate template: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if strict.Device != loaded.Device || strict.Server.Addr != loaded.Server.Addr || len(strict.Memory.Flags) != len(loaded.Memory.Flags) {
		t.Fatalf("decoders disagree: strict=%+v loaded=%+v", strict, loaded)
	}
}
