//go:build linux

package mailbox

import "unsafe"

// _IOC packs nr in bits 0-7, type in bits 8-15, the argument size above
// that and the direction in the top bits. Direction values, the size width
// and the direction shift are per architecture.
const (
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocSizeMask  = 1<<iocSizeBits - 1
	iocDirShift  = iocSizeShift + iocSizeBits
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return (dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | ((size & iocSizeMask) << iocSizeShift)
}

func iowr(typ, nr, size uintptr) uintptr {
	return ioc(iocRead|iocWrite, typ, nr, size)
}

const (
	vcioIocMagic    = 100
	vcioIocProperty = 0
)

// IOCTL_MBOX_PROPERTY is _IOWR(100, 0, char *); the size is the native
// pointer width.
var ioctlMboxProperty = iowr(vcioIocMagic, vcioIocProperty, unsafe.Sizeof(uintptr(0)))
