package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/danmuck/vcioctl/internal/config"
	"github.com/danmuck/vcioctl/internal/firmware"
	"github.com/danmuck/vcioctl/internal/protocol"
	"github.com/danmuck/vcioctl/internal/vcmem"
	"github.com/rs/zerolog/log"
)

const firmwareDateLayout = "Jan _2 2006 15:04:05"

func runInfo(out io.Writer, fw *firmware.Client, mask uint16) error {
	rev, err := fw.FirmwareRevision()
	if err != nil {
		return fmt.Errorf("firmware revision: %w", err)
	}
	model, err := fw.BoardModel()
	if err != nil {
		return fmt.Errorf("board model: %w", err)
	}
	revision, err := fw.BoardRevision()
	if err != nil {
		return fmt.Errorf("board revision: %w", err)
	}
	mac, err := fw.BoardMACAddress()
	if err != nil {
		return fmt.Errorf("board mac address: %w", err)
	}
	serial, err := fw.BoardSerial()
	if err != nil {
		return fmt.Errorf("board serial: %w", err)
	}
	arm, err := fw.ARMMemory()
	if err != nil {
		return fmt.Errorf("arm memory: %w", err)
	}
	vc, err := fw.VCMemory()
	if err != nil {
		return fmt.Errorf("vc memory: %w", err)
	}
	temp, err := fw.Temperature()
	if err != nil {
		return fmt.Errorf("temperature: %w", err)
	}
	throttled, err := fw.Throttled(mask)
	if err != nil {
		return fmt.Errorf("throttled: %w", err)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "firmware revision:\t%s\n", time.Unix(int64(rev), 0).UTC().Format(firmwareDateLayout))
	fmt.Fprintf(tw, "board model:\t0x%08x\n", model)
	fmt.Fprintf(tw, "board revision:\t0x%08x\n", revision)
	fmt.Fprintf(tw, "board mac address:\t%012x\n", mac)
	fmt.Fprintf(tw, "board serial:\t%016x\n", serial)
	fmt.Fprintf(tw, "arm memory:\t0x%08x (%d bytes)\n", arm.Base, arm.Size)
	fmt.Fprintf(tw, "vc memory:\t0x%08x (%d bytes)\n", vc.Base, vc.Size)
	fmt.Fprintf(tw, "temperature:\t%.1f C\n", float64(temp)/1000)
	fmt.Fprintf(tw, "throttled:\t%s\n", throttled)
	return tw.Flush()
}

// runMemtest walks one block through the lifecycle per configured flag
// set and reports every pass before returning the first failure.
func runMemtest(out io.Writer, a vcmem.Allocator, mem config.MemoryConfig) error {
	sets, err := mem.MemFlags()
	if err != nil {
		return err
	}
	var first error
	for _, flags := range sets {
		err := vcmem.With(a, mem.Size, mem.Align, flags, func(b vcmem.Block) error {
			fmt.Fprintf(out, "%-24s handle=%d bus=0x%08x size=%d\n", flags, b.Handle, uint32(b.Bus), b.Size)
			return nil
		})
		if err != nil {
			log.Error().Err(err).Str("flags", flags.String()).Msg("memtest pass failed")
			fmt.Fprintf(out, "%-24s FAILED: %v\n", flags, err)
			if first == nil {
				first = fmt.Errorf("memtest %s: %w", flags, err)
			}
		}
	}
	return first
}

// runProp exchanges one catalog property. The optional payload is hex and
// may be shorter than the request size; the rest is zero.
func runProp(out io.Writer, fw *firmware.Client, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("prop: expected <name> [hex payload]")
	}
	p, err := protocol.LookupName(args[0])
	if err != nil {
		return err
	}
	var in []byte
	if len(args) == 2 {
		in, err = hex.DecodeString(strings.TrimPrefix(args[1], "0x"))
		if err != nil {
			return fmt.Errorf("prop: payload: %w", err)
		}
	}
	if len(in) > p.InSize {
		return fmt.Errorf("prop: %s takes at most %d payload bytes, got %d", p.Name, p.InSize, len(in))
	}
	resp, err := fw.Raw(p, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s 0x%08x: %s\n", p.Name, uint32(p.Tag), hex.EncodeToString(resp[:p.OutSize]))
	return nil
}

func runProps(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTAG\tIN\tOUT")
	for _, p := range protocol.Properties() {
		fmt.Fprintf(tw, "%s\t0x%08x\t%d\t%d\n", p.Name, uint32(p.Tag), p.InSize, p.OutSize)
	}
	return tw.Flush()
}
