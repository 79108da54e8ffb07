// Package message holds the typed request and response structures for each
// property tag and their exact byte layouts.
package message

import (
	"errors"
	"fmt"

	"github.com/danmuck/vcioctl/internal/protocol"
)

var ErrShortPayload = errors.New("message: short payload")

func need(b []byte, n int) error {
	if len(b) < n {
		return fmt.Errorf("%w: %d < %d", ErrShortPayload, len(b), n)
	}
	return nil
}

func word(b []byte, i int) uint32 {
	return protocol.Word(b, i*protocol.WordSize)
}

func putWords(vs ...uint32) []byte {
	buf := make([]byte, len(vs)*protocol.WordSize)
	for i, v := range vs {
		protocol.PutWord(buf, i*protocol.WordSize, v)
	}
	return buf
}

// Empty is the request of tags that take no input.
type Empty struct{}

func (Empty) MarshalBinary() ([]byte, error) { return nil, nil }

// Word is a response or request made of a single u32.
type Word struct {
	Value uint32
}

func (m Word) MarshalBinary() ([]byte, error) { return putWords(m.Value), nil }

func (m *Word) UnmarshalBinary(b []byte) error {
	if err := need(b, 4); err != nil {
		return err
	}
	m.Value = word(b, 0)
	return nil
}

// MACAddressRequest pads the request to the 8-byte input the firmware reads.
type MACAddressRequest struct {
	Reserved uint64
}

func (m MACAddressRequest) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 8)
	protocol.ByteOrder.PutUint64(buf, m.Reserved)
	return buf, nil
}

// MACAddress is six bytes in wire order.
type MACAddress struct {
	Octets [6]byte
}

func (m *MACAddress) UnmarshalBinary(b []byte) error {
	if err := need(b, 6); err != nil {
		return err
	}
	copy(m.Octets[:], b[:6])
	return nil
}

// Uint64 folds the octets into a 48-bit value, first octet most significant.
func (m MACAddress) Uint64() uint64 {
	var v uint64
	for _, o := range m.Octets {
		v = v<<8 | uint64(o)
	}
	return v
}

// Serial is the 64-bit board serial.
type Serial struct {
	Value uint64
}

func (m *Serial) UnmarshalBinary(b []byte) error {
	if err := need(b, 8); err != nil {
		return err
	}
	m.Value = protocol.ByteOrder.Uint64(b[:8])
	return nil
}

// MemoryRegion is the base/size pair returned for ARM and VC memory.
type MemoryRegion struct {
	Base uint32
	Size uint32
}

func (m *MemoryRegion) UnmarshalBinary(b []byte) error {
	if err := need(b, 8); err != nil {
		return err
	}
	m.Base = word(b, 0)
	m.Size = word(b, 1)
	return nil
}

// IDRequest selects a clock or sensor by id.
type IDRequest struct {
	ID uint32
}

func (m IDRequest) MarshalBinary() ([]byte, error) { return putWords(m.ID), nil }

// IDValue is the id echoed back with its value (rate in Hz, or
// temperature in thousandths of a degree Celsius).
type IDValue struct {
	ID    uint32
	Value uint32
}

func (m *IDValue) UnmarshalBinary(b []byte) error {
	if err := need(b, 8); err != nil {
		return err
	}
	m.ID = word(b, 0)
	m.Value = word(b, 1)
	return nil
}

// AllocateMemory is the ALLOCATE_MEMORY request.
type AllocateMemory struct {
	Size  uint32
	Align uint32
	Flags uint32
}

func (m AllocateMemory) MarshalBinary() ([]byte, error) {
	return putWords(m.Size, m.Align, m.Flags), nil
}

// ThrottledRequest carries the 16-bit sticky-bit mask.
type ThrottledRequest struct {
	Mask uint16
}

func (m ThrottledRequest) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 2)
	protocol.ByteOrder.PutUint16(buf, m.Mask)
	return buf, nil
}
