//go:build linux

package mailbox

import "testing"

func TestIocFieldsDoNotOverlap(t *testing.T) {
	dir := ioc(iocRead|iocWrite, 0, 0, 0)
	size := ioc(0, 0, 0, iocSizeMask)
	typeNR := ioc(0, 0xff, 0xff, 0)
	if dir&size != 0 || dir&typeNR != 0 || size&typeNR != 0 {
		t.Fatalf("ioc fields overlap: dir=%#x size=%#x type|nr=%#x", dir, size, typeNR)
	}
	if dir>>iocDirShift != iocRead|iocWrite {
		t.Fatalf("direction lost: %#x", dir)
	}
}

func TestIowrLayout(t *testing.T) {
	got := iowr(vcioIocMagic, vcioIocProperty, 8)
	if got&0xff != vcioIocProperty || (got>>iocTypeShift)&0xff != vcioIocMagic {
		t.Fatalf("unexpected type/nr in %#x", got)
	}
	if (got>>iocSizeShift)&iocSizeMask != 8 {
		t.Fatalf("unexpected size in %#x", got)
	}
}
