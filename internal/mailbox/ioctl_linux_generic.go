//go:build linux && (386 || amd64 || arm || arm64 || loong64 || riscv64 || s390x)

package mailbox

const (
	iocWrite    = 1
	iocRead     = 2
	iocSizeBits = 14
)
