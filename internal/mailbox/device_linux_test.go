//go:build linux

package mailbox

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/danmuck/vcioctl/internal/protocol"
	"github.com/danmuck/vcioctl/internal/testutil/testlog"
	"golang.org/x/sys/unix"
)

func TestOpenMissingDevice(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "vcio")
	_, err := Open(path)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	var pe *os.PathError
	if !errors.As(err, &pe) || pe.Path != path || pe.Op != "open" {
		t.Fatalf("expected open PathError for %s, got %v", path, err)
	}
}

func TestDeviceClosesExactlyOnce(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "vcio")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	dev, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if dev.Path() != path {
		t.Fatalf("unexpected path: %s", dev.Path())
	}

	env, _ := protocol.Encode(protocol.TagGetBoardModel, nil, 4, 4)
	err = dev.Exchange(env)
	if !errors.Is(err, protocol.ErrTransport) || !errors.Is(err, unix.ENOTTY) {
		t.Fatalf("expected ENOTTY transport error on a regular file, got %v", err)
	}

	if err := dev.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := dev.Close(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed on second close, got %v", err)
	}
	if err := dev.Exchange(env); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after close, got %v", err)
	}
}

func TestExchangeRejectsUnalignedEnvelope(t *testing.T) {
	dev := &Device{path: "test", fd: -1}
	if err := dev.Exchange(make([]byte, 7)); !errors.Is(err, ErrUnaligned) {
		t.Fatalf("expected ErrUnaligned, got %v", err)
	}
}

func TestPropertyIoctlNumber(t *testing.T) {
	want := uintptr(0xc0046400)
	if unsafe.Sizeof(uintptr(0)) == 8 {
		want = 0xc0086400
	}
	if ioctlMboxProperty != want {
		t.Fatalf("unexpected ioctl number: %#x want %#x", ioctlMboxProperty, want)
	}
}
