package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/danmuck/vcioctl/internal/config"
	"github.com/danmuck/vcioctl/internal/logging"
)

const defaultConfigPath = "/etc/vcioctl/config.toml"

// cliFlags are the command line overrides shared by every command.
type cliFlags struct {
	configPath string
	device     string
	addr       string
	logLevel   string
	jsonLogs   bool
	mask       uint
}

func registerFlags(fs *flag.FlagSet) *cliFlags {
	f := &cliFlags{}
	fs.StringVar(&f.configPath, "config", "", "config file (default "+defaultConfigPath+" when present)")
	fs.StringVar(&f.device, "device", "", "vcio device path")
	fs.StringVar(&f.addr, "addr", "", "serve listen address")
	fs.StringVar(&f.logLevel, "log-level", "", "log level")
	fs.BoolVar(&f.jsonLogs, "json", false, "emit JSON logs")
	fs.UintVar(&f.mask, "throttle-mask", 0, "sticky throttle bits to clear on read")
	return f
}

// resolveConfig loads the config file, falling back to defaults when no
// file was named and the default path is absent, then applies flags the
// user set explicitly.
func resolveConfig(set *flag.FlagSet, f *cliFlags) (config.Config, error) {
	path := strings.TrimSpace(f.configPath)
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	} else if explicit || !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	var overrideErr error
	set.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "device":
			cfg.Device = strings.TrimSpace(f.device)
		case "addr":
			cfg.Server.Addr = strings.TrimSpace(f.addr)
		case "log-level":
			if _, ok := logging.ParseLevel(f.logLevel); !ok {
				overrideErr = fmt.Errorf("unknown log level %q", f.logLevel)
			}
			cfg.Log.Level = f.logLevel
		case "json":
			cfg.Log.JSON = f.jsonLogs
		case "throttle-mask":
			if f.mask > 0xffff {
				overrideErr = fmt.Errorf("throttle mask %#x exceeds 16 bits", f.mask)
			}
			cfg.Server.ThrottleMask = uint16(f.mask)
		}
	})
	if overrideErr != nil {
		return config.Config{}, overrideErr
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
