package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrTransport                  = errors.New("protocol: transport failed")
	ErrInvalidInput               = errors.New("protocol: buf_size < req_resp_size")
	ErrRequestFailed              = errors.New("protocol: request failed")
	ErrReqRespSizeBit             = errors.New("protocol: req_resp_size[31] was not set by firmware")
	ErrBufferSizeMismatch         = errors.New("protocol: response size differs from expected")
	ErrBufferSizeMismatchSupplied = errors.New("protocol: response size exceeds supplied buffer")
	ErrTruncated                  = errors.New("protocol: truncated envelope")
	ErrPayloadTooLarge            = errors.New("protocol: payload larger than buf_size")
	ErrUnknownTag                 = errors.New("protocol: unknown tag")
)

// TransportError reports a failed blocking exchange. Err is the OS error.
type TransportError struct {
	Op  string
	Err error
}

func (e TransportError) Error() string {
	return fmt.Sprintf("protocol: transport %s: %v", e.Op, e.Err)
}

func (e TransportError) Unwrap() error { return e.Err }

func (e TransportError) Is(target error) bool { return target == ErrTransport }

// InvalidInputError is returned before any exchange when the payload area
// cannot hold the declared response.
type InvalidInputError struct {
	BufSize     int
	ReqRespSize int
}

func (e InvalidInputError) Error() string {
	return fmt.Sprintf("protocol: buf_size < req_resp_size: %d < %d", e.BufSize, e.ReqRespSize)
}

func (e InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// RequestFailedError carries the status word exactly as the firmware wrote it.
type RequestFailedError struct {
	Code Status
}

func (e RequestFailedError) Error() string {
	return fmt.Sprintf("protocol: request failed: 0x%08x", uint32(e.Code))
}

func (e RequestFailedError) Is(target error) bool { return target == ErrRequestFailed }

// ReqRespSizeBitError means the firmware answered without marking the
// response size field.
type ReqRespSizeBitError struct {
	ReqRespSize uint32
}

func (e ReqRespSizeBitError) Error() string {
	return fmt.Sprintf("protocol: req_resp_size[31] was not set by firmware: 0x%08x", e.ReqRespSize)
}

func (e ReqRespSizeBitError) Is(target error) bool { return target == ErrReqRespSizeBit }

// BufferSizeMismatchError means the firmware wrote a different number of
// response bytes than the caller declared.
type BufferSizeMismatchError struct {
	Actual   int
	Expected int
}

func (e BufferSizeMismatchError) Error() string {
	return fmt.Sprintf("protocol: firmware requires %d bytes for response while caller expects %d", e.Actual, e.Expected)
}

func (e BufferSizeMismatchError) Is(target error) bool { return target == ErrBufferSizeMismatch }

// BufferSizeMismatchSuppliedError means the response does not fit the
// payload area that was sent.
type BufferSizeMismatchSuppliedError struct {
	Actual   int
	Supplied int
}

func (e BufferSizeMismatchSuppliedError) Error() string {
	return fmt.Sprintf("protocol: firmware requires %d bytes for response while the supplied buffer is only %d", e.Actual, e.Supplied)
}

func (e BufferSizeMismatchSuppliedError) Is(target error) bool {
	return target == ErrBufferSizeMismatchSupplied
}

// ErrorKind returns a short stable label for err, used as a metric label.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrRequestFailed):
		return "request_failed"
	case errors.Is(err, ErrReqRespSizeBit):
		return "req_resp_size_bit"
	case errors.Is(err, ErrBufferSizeMismatch):
		return "buffer_size_mismatch"
	case errors.Is(err, ErrBufferSizeMismatchSupplied):
		return "buffer_size_mismatch_supplied"
	case errors.Is(err, ErrTruncated):
		return "truncated"
	case errors.Is(err, ErrPayloadTooLarge):
		return "payload_too_large"
	case errors.Is(err, ErrUnknownTag):
		return "unknown_tag"
	default:
		return "other"
	}
}
