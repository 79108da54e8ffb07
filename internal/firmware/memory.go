package firmware

import (
	"github.com/danmuck/vcioctl/internal/observability"
	"github.com/danmuck/vcioctl/internal/protocol"
	"github.com/danmuck/vcioctl/internal/protocol/message"
)

// Handle identifies a coprocessor memory allocation.
type Handle uint32

// BusAddress is the address a locked allocation is visible at.
type BusAddress uint32

// The four memory operations are independent exchanges. The library keeps
// no record of handles: callers own the sequence allocate, lock, unlock,
// release, and must call Release on every exit path after a successful
// Allocate, including when Lock or Unlock fails. Nothing is released
// automatically. Using a handle after Release is undefined.

// Allocate reserves size bytes aligned to align. A zero handle means the
// firmware could not satisfy the request.
func (c *Client) Allocate(size, align uint32, flags MemFlag) (Handle, error) {
	var out message.Word
	err := c.call(protocol.TagAllocateMemory, message.AllocateMemory{Size: size, Align: align, Flags: uint32(flags)}, &out)
	observability.RecordMemoryOp("allocate", err == nil)
	if err != nil {
		return 0, err
	}
	return Handle(out.Value), nil
}

// Lock pins the allocation and returns its bus address.
func (c *Client) Lock(h Handle) (BusAddress, error) {
	var out message.Word
	err := c.call(protocol.TagLockMemory, message.Word{Value: uint32(h)}, &out)
	observability.RecordMemoryOp("lock", err == nil)
	if err != nil {
		return 0, err
	}
	return BusAddress(out.Value), nil
}

// Unlock unpins the allocation locked at addr. The returned status is zero
// on success.
func (c *Client) Unlock(addr BusAddress) (uint32, error) {
	var out message.Word
	err := c.call(protocol.TagUnlockMemory, message.Word{Value: uint32(addr)}, &out)
	observability.RecordMemoryOp("unlock", err == nil)
	if err != nil {
		return 0, err
	}
	return out.Value, nil
}

// Release frees the allocation. The returned status is zero on success.
func (c *Client) Release(h Handle) (uint32, error) {
	var out message.Word
	err := c.call(protocol.TagReleaseMemory, message.Word{Value: uint32(h)}, &out)
	observability.RecordMemoryOp("release", err == nil)
	if err != nil {
		return 0, err
	}
	return out.Value, nil
}
