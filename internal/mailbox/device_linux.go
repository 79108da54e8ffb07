//go:build linux

package mailbox

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

func openDevice(path string) (int, error) {
	return unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
}

func closeDevice(fd int) error {
	return unix.Close(fd)
}

// propertyIoctl copies envelope into a word-aligned buffer, lets the kernel
// rewrite it, and copies the result back.
func propertyIoctl(fd int, envelope []byte) error {
	words := make([]uint32, len(envelope)/4)
	view := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(envelope))
	copy(view, envelope)

	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		uintptr(fd),
		ioctlMboxProperty,
		uintptr(unsafe.Pointer(&words[0])),
	)
	runtime.KeepAlive(words)
	if errno != 0 {
		return errno
	}
	copy(envelope, view)
	return nil
}
