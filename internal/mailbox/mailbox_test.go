package mailbox

import (
	"bytes"
	"errors"
	"syscall"
	"testing"

	"github.com/danmuck/vcioctl/internal/observability"
	"github.com/danmuck/vcioctl/internal/protocol"
	"github.com/danmuck/vcioctl/internal/testutil/fakefw"
	"github.com/danmuck/vcioctl/internal/testutil/testlog"
)

var _ Transport = (*fakefw.Firmware)(nil)

func TestPerformEchoReturnsInput(t *testing.T) {
	testlog.Start(t)
	fw := fakefw.Echo()
	in := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	out, err := Perform(fw, protocol.TagAllocateMemory, in, 12, 12)
	if err != nil {
		t.Fatalf("perform: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("unexpected output: %v", out)
	}
	if len(fw.Calls) != 1 {
		t.Fatalf("expected exactly one exchange, got %d", len(fw.Calls))
	}
	call := fw.Calls[0]
	if call.Tag != protocol.TagAllocateMemory || call.BufSize != 12 || call.ReqRespSize != 12 || call.TotalSize != 36 {
		t.Fatalf("unexpected call: %+v", call)
	}
}

func TestPerformInvalidInputMakesNoCall(t *testing.T) {
	testlog.Start(t)
	fw := fakefw.Echo()
	_, err := Perform(fw, protocol.TagGetBoardModel, nil, 2, 4)
	if !errors.Is(err, protocol.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(fw.Calls) != 0 {
		t.Fatalf("expected no exchange, got %d", len(fw.Calls))
	}
}

func TestPerformTransportErrorAbortsExchange(t *testing.T) {
	testlog.Start(t)
	fw := fakefw.Echo()
	fw.TransportErr = syscall.EIO

	out, err := Perform(fw, protocol.TagGetBoardModel, nil, 4, 4)
	if out != nil {
		t.Fatalf("expected no output, got %v", out)
	}
	if !errors.Is(err, protocol.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if !errors.Is(err, syscall.EIO) {
		t.Fatalf("expected wrapped EIO, got %v", err)
	}
}

func TestPerformSurfacesFirmwareCode(t *testing.T) {
	testlog.Start(t)
	fw := fakefw.Echo()
	code := protocol.Status(0x80000042)
	fw.StatusOverride = &code

	_, err := Perform(fw, protocol.TagGetBoardModel, nil, 4, 4)
	var rf protocol.RequestFailedError
	if !errors.As(err, &rf) || rf.Code != code {
		t.Fatalf("expected RequestFailedError with code %#x, got %v", uint32(code), err)
	}
}

func TestPerformValidatesResponseHeader(t *testing.T) {
	testlog.Start(t)

	fw := fakefw.Echo()
	fw.DropResponseBit = true
	if _, err := Perform(fw, protocol.TagGetBoardModel, nil, 4, 4); !errors.Is(err, protocol.ErrReqRespSizeBit) {
		t.Fatalf("expected ErrReqRespSizeBit, got %v", err)
	}

	fw = fakefw.Echo()
	short := uint32(6)
	fw.RespSize = &short
	_, err := Perform(fw, protocol.TagGetBoardMACAddress, nil, 8, 8)
	var mm protocol.BufferSizeMismatchError
	if !errors.As(err, &mm) || mm.Actual != 6 || mm.Expected != 8 {
		t.Fatalf("expected BufferSizeMismatchError 6/8, got %v", err)
	}
}

func TestPerformRecordsExchangeMetrics(t *testing.T) {
	testlog.Start(t)
	fw := fakefw.Echo()
	tag := protocol.TagGetBoardRevision.String()

	okBefore := observability.ExchangeCount(tag, "ok")
	bitBefore := observability.ExchangeCount(tag, "req_resp_size_bit")

	if _, err := Perform(fw, protocol.TagGetBoardRevision, nil, 4, 4); err != nil {
		t.Fatalf("perform: %v", err)
	}
	fw.DropResponseBit = true
	_, _ = Perform(fw, protocol.TagGetBoardRevision, nil, 4, 4)

	if got := observability.ExchangeCount(tag, "ok"); got != okBefore+1 {
		t.Fatalf("unexpected ok count: %v", got)
	}
	if got := observability.ExchangeCount(tag, "req_resp_size_bit"); got != bitBefore+1 {
		t.Fatalf("unexpected req_resp_size_bit count: %v", got)
	}
}
