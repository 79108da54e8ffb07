package mailbox

import (
	"errors"
	"fmt"
	"os"

	"github.com/danmuck/vcioctl/internal/protocol"
)

// DefaultPath is the vcio character device node.
const DefaultPath = "/dev/vcio"

var (
	ErrClosed      = errors.New("mailbox: device closed")
	ErrUnaligned   = errors.New("mailbox: envelope is not a whole number of words")
	ErrUnsupported = errors.New("mailbox: vcio is only available on linux")
)

// Device is an open vcio handle. It is released by Close, exactly once.
type Device struct {
	path   string
	fd     int
	closed bool
}

var _ Transport = (*Device)(nil)

// Open opens the property device at path in non-blocking mode.
func Open(path string) (*Device, error) {
	if path == "" {
		path = DefaultPath
	}
	fd, err := openDevice(path)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return &Device{path: path, fd: fd}, nil
}

func (d *Device) Path() string {
	return d.path
}

// Exchange issues the property ioctl with envelope as its buffer.
func (d *Device) Exchange(envelope []byte) error {
	if d.closed {
		return protocol.TransportError{Op: "ioctl", Err: ErrClosed}
	}
	if len(envelope) == 0 || len(envelope)%protocol.WordSize != 0 {
		return protocol.TransportError{Op: "ioctl", Err: ErrUnaligned}
	}
	if err := propertyIoctl(d.fd, envelope); err != nil {
		return protocol.TransportError{Op: "ioctl", Err: err}
	}
	return nil
}

// Close releases the handle. A failed close is returned, not ignored; the
// handle counts as released either way. Closing twice returns ErrClosed.
func (d *Device) Close() error {
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	if err := closeDevice(d.fd); err != nil {
		return &os.PathError{Op: "close", Path: d.path, Err: err}
	}
	return nil
}

func (d *Device) String() string {
	return fmt.Sprintf("vcio(%s)", d.path)
}
