//go:build !linux

package mailbox

func openDevice(string) (int, error) {
	return -1, ErrUnsupported
}

func closeDevice(int) error {
	return nil
}

func propertyIoctl(int, []byte) error {
	return ErrUnsupported
}
