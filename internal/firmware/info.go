package firmware

import (
	"github.com/danmuck/vcioctl/internal/protocol"
	"github.com/danmuck/vcioctl/internal/protocol/message"
)

// MemoryRegion is a base address and size in bytes.
type MemoryRegion struct {
	Base uint32 `json:"base"`
	Size uint32 `json:"size"`
}

func (c *Client) word(tag protocol.Tag) (uint32, error) {
	var out message.Word
	if err := c.call(tag, message.Empty{}, &out); err != nil {
		return 0, err
	}
	return out.Value, nil
}

// FirmwareRevision returns the firmware build time as unix seconds.
func (c *Client) FirmwareRevision() (uint32, error) {
	return c.word(protocol.TagGetFirmwareRevision)
}

func (c *Client) BoardModel() (uint32, error) {
	return c.word(protocol.TagGetBoardModel)
}

func (c *Client) BoardRevision() (uint32, error) {
	return c.word(protocol.TagGetBoardRevision)
}

// BoardMACAddress returns the MAC as a 48-bit value, first octet most
// significant.
func (c *Client) BoardMACAddress() (uint64, error) {
	var out message.MACAddress
	if err := c.call(protocol.TagGetBoardMACAddress, message.MACAddressRequest{}, &out); err != nil {
		return 0, err
	}
	return out.Uint64(), nil
}

func (c *Client) BoardSerial() (uint64, error) {
	var out message.Serial
	if err := c.call(protocol.TagGetBoardSerial, message.Empty{}, &out); err != nil {
		return 0, err
	}
	return out.Value, nil
}

func (c *Client) region(tag protocol.Tag) (MemoryRegion, error) {
	var out message.MemoryRegion
	if err := c.call(tag, message.Empty{}, &out); err != nil {
		return MemoryRegion{}, err
	}
	return MemoryRegion{Base: out.Base, Size: out.Size}, nil
}

// ARMMemory returns the memory region reserved for the ARM cores.
func (c *Client) ARMMemory() (MemoryRegion, error) {
	return c.region(protocol.TagGetARMMemory)
}

// VCMemory returns the memory region reserved for the VideoCore.
func (c *Client) VCMemory() (MemoryRegion, error) {
	return c.region(protocol.TagGetVCMemory)
}

// Throttled returns the throttle state. Bits of mask select which sticky
// flags the firmware clears after reporting them.
func (c *Client) Throttled(mask uint16) (ThrottleState, error) {
	var out message.Word
	if err := c.call(protocol.TagGetThrottled, message.ThrottledRequest{Mask: mask}, &out); err != nil {
		return 0, err
	}
	return ThrottleState(out.Value), nil
}

func (c *Client) idValue(tag protocol.Tag, id uint32) (uint32, error) {
	var out message.IDValue
	if err := c.call(tag, message.IDRequest{ID: id}, &out); err != nil {
		return 0, err
	}
	return out.Value, nil
}

// ClockRate returns the current rate of clock in Hz. Zero means the clock
// does not exist.
func (c *Client) ClockRate(clock ClockID) (uint32, error) {
	return c.idValue(protocol.TagGetClockRate, uint32(clock))
}

func (c *Client) MaxClockRate(clock ClockID) (uint32, error) {
	return c.idValue(protocol.TagGetMaxClockRate, uint32(clock))
}

func (c *Client) MinClockRate(clock ClockID) (uint32, error) {
	return c.idValue(protocol.TagGetMinClockRate, uint32(clock))
}

// Temperature returns the SoC temperature in thousandths of a degree C.
func (c *Client) Temperature() (uint32, error) {
	return c.idValue(protocol.TagGetTemperature, 0)
}

func (c *Client) MaxTemperature() (uint32, error) {
	return c.idValue(protocol.TagGetMaxTemperature, 0)
}
