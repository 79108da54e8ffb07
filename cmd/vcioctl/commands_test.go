package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/vcioctl/internal/config"
	"github.com/danmuck/vcioctl/internal/firmware"
	"github.com/danmuck/vcioctl/internal/protocol"
	"github.com/danmuck/vcioctl/internal/testutil/fakefw"
	"github.com/danmuck/vcioctl/internal/testutil/testlog"
)

func TestRunInfoPrintsBoard(t *testing.T) {
	testlog.Start(t)
	fw := fakefw.New()
	var out bytes.Buffer
	if err := runInfo(&out, firmware.New(fw), firmware.DefaultThrottleMask); err != nil {
		t.Fatalf("info: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"May 17 2022 13:19:47",
		"0x00a02082",
		"b827eb123456",
		"00000000f1e2d3c4",
		"0x3b400000",
		"48.3 C",
		"throttled:",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
}

func TestRunInfoStopsOnFailure(t *testing.T) {
	testlog.Start(t)
	fw := fakefw.New()
	fw.FailTag = map[protocol.Tag]protocol.Status{protocol.TagGetBoardRevision: protocol.StatusErrorParse}
	err := runInfo(&bytes.Buffer{}, firmware.New(fw), 0)
	if !errors.Is(err, protocol.ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "board revision") {
		t.Fatalf("expected failing query in error, got %v", err)
	}
}

func TestRunMemtestReleasesEveryBlock(t *testing.T) {
	testlog.Start(t)
	fw := fakefw.New()
	mem := config.Default().Memory
	var out bytes.Buffer
	if err := runMemtest(&out, firmware.New(fw), mem); err != nil {
		t.Fatalf("memtest: %v", err)
	}
	if fw.Live() != 0 {
		t.Fatalf("expected all blocks released, %d live", fw.Live())
	}
	if got := strings.Count(out.String(), "handle="); got != len(mem.Flags) {
		t.Fatalf("expected %d passes, got %d:\n%s", len(mem.Flags), got, out.String())
	}
}

func TestRunMemtestReportsFailedPass(t *testing.T) {
	testlog.Start(t)
	fw := fakefw.New()
	fw.FailTag = map[protocol.Tag]protocol.Status{protocol.TagLockMemory: protocol.StatusErrorParse}
	var out bytes.Buffer
	err := runMemtest(&out, firmware.New(fw), config.MemoryConfig{Size: 64, Align: 16, Flags: []string{"DIRECT", "COHERENT"}})
	if !errors.Is(err, protocol.ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if strings.Count(out.String(), "FAILED") != 2 {
		t.Fatalf("expected both passes reported:\n%s", out.String())
	}
	if fw.Live() != 0 {
		t.Fatalf("expected allocations released after failed lock, %d live", fw.Live())
	}
}

func TestRunProp(t *testing.T) {
	testlog.Start(t)
	fw := fakefw.New()
	client := firmware.New(fw)

	var out bytes.Buffer
	if err := runProp(&out, client, []string{"board_mac_address"}); err != nil {
		t.Fatalf("prop: %v", err)
	}
	if !strings.Contains(out.String(), "b827eb123456") {
		t.Fatalf("unexpected prop output: %s", out.String())
	}

	out.Reset()
	if err := runProp(&out, client, []string{"get_clock_rate", "03000000"}); err != nil {
		t.Fatalf("prop with payload: %v", err)
	}
	if !strings.Contains(out.String(), "0x00030002") {
		t.Fatalf("unexpected prop output: %s", out.String())
	}

	if err := runProp(&out, client, []string{"get_board_model", "00"}); err == nil {
		t.Fatalf("expected oversized payload error")
	}
	if err := runProp(&out, client, []string{"get_warp_drive"}); !errors.Is(err, protocol.ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
	if err := runProp(&out, client, nil); err == nil {
		t.Fatalf("expected usage error")
	}
}

func TestRunProps(t *testing.T) {
	var out bytes.Buffer
	if err := runProps(&out); err != nil {
		t.Fatalf("props: %v", err)
	}
	if !strings.Contains(out.String(), "allocate_memory") {
		t.Fatalf("expected catalog listing, got:\n%s", out.String())
	}
}

type closeFailDevice struct {
	*fakefw.Firmware
	closed int
}

var errCloseFailed = errors.New("close: input/output error")

func (d *closeFailDevice) Path() string { return "/dev/vcio-test" }

func (d *closeFailDevice) Close() error {
	d.closed++
	return errCloseFailed
}

func useDevice(t *testing.T, dev device) {
	t.Helper()
	prev := openDevice
	openDevice = func(string) (device, error) { return dev, nil }
	t.Cleanup(func() { openDevice = prev })
}

func TestRunFailsWhenDeviceCloseFails(t *testing.T) {
	testlog.Start(t)
	dev := &closeFailDevice{Firmware: fakefw.New()}
	useDevice(t, dev)

	var out bytes.Buffer
	err := run([]string{"info", "-config", writeEmptyConfig(t)}, &out)
	if !errors.Is(err, errCloseFailed) {
		t.Fatalf("expected close failure, got %v", err)
	}
	if dev.closed != 1 {
		t.Fatalf("expected one close, got %d", dev.closed)
	}
	if !strings.Contains(out.String(), "b827eb123456") {
		t.Fatalf("expected info output before close, got:\n%s", out.String())
	}
}

func TestRunJoinsCommandAndCloseErrors(t *testing.T) {
	testlog.Start(t)
	fw := fakefw.New()
	fw.FailTag = map[protocol.Tag]protocol.Status{protocol.TagGetFirmwareRevision: protocol.StatusErrorParse}
	useDevice(t, &closeFailDevice{Firmware: fw})

	err := run([]string{"info", "-config", writeEmptyConfig(t)}, &bytes.Buffer{})
	if !errors.Is(err, protocol.ErrRequestFailed) || !errors.Is(err, errCloseFailed) {
		t.Fatalf("expected both command and close errors, got %v", err)
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	if err := run(nil, &out); err == nil {
		t.Fatalf("expected missing command error")
	}
	if err := run([]string{"reboot", "-config", writeEmptyConfig(t)}, &out); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}

	out.Reset()
	missing := filepath.Join(t.TempDir(), "missing.toml")
	err := run([]string{"bogus", "-config", missing}, &out)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command before config load, got %v", err)
	}
	if !strings.Contains(out.String(), "usage: vcioctl") {
		t.Fatalf("expected usage text, got %q", out.String())
	}
}
