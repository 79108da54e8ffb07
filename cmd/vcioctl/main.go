package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/vcioctl/internal/firmware"
	"github.com/danmuck/vcioctl/internal/logging"
	"github.com/danmuck/vcioctl/internal/mailbox"
	"github.com/danmuck/vcioctl/internal/observability"
	"github.com/danmuck/vcioctl/internal/server"
	"github.com/rs/zerolog/log"
)

const usage = `usage: vcioctl <command> [flags]

commands:
  info      print board and firmware information
  memtest   allocate, lock, unlock and release a block per configured flag set
  prop      run one catalog property: prop [flags] <name> [hex payload]
  props     list the property catalog
  serve     serve firmware queries and metrics over HTTP
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "vcioctl: %v\n", err)
		os.Exit(1)
	}
}

// device is the handle run drives. Tests replace openDevice.
type device interface {
	mailbox.Transport
	Path() string
	Close() error
}

var openDevice = func(path string) (device, error) {
	dev, err := mailbox.Open(path)
	if err != nil {
		return nil, err
	}
	return dev, nil
}

// run executes one command. A failed device close fails the command.
func run(args []string, out io.Writer) (err error) {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return fmt.Errorf("missing command")
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "props":
		return runProps(out)
	case "info", "memtest", "prop", "serve":
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	flags := registerFlags(fs)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	cfg, err := resolveConfig(fs, flags)
	if err != nil {
		return err
	}
	logging.Configure(logging.ProfileRuntime)
	logging.Apply(cfg.Log.Logging())
	observability.InitLogger("vcioctl")

	dev, err := openDevice(cfg.Device)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dev.Close(); cerr != nil {
			log.Error().Err(cerr).Str("device", dev.Path()).Msg("close failed")
			err = errors.Join(err, cerr)
		}
	}()
	fw := firmware.New(dev)

	switch cmd {
	case "info":
		return runInfo(out, fw, cfg.Server.ThrottleMask)
	case "memtest":
		return runMemtest(out, fw, cfg.Memory)
	case "prop":
		return runProp(out, fw, fs.Args())
	default:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.New(cfg.Server, fw).Run(ctx)
	}
}
