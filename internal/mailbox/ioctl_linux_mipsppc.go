//go:build linux && (mips || mipsle || mips64 || mips64le || ppc64 || ppc64le)

package mailbox

// mips and powerpc use a 13-bit size field and a three-bit direction.
const (
	iocWrite    = 4
	iocRead     = 2
	iocSizeBits = 13
)
