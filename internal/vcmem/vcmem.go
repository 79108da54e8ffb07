// Package vcmem is a scoped convenience layer over the firmware memory
// lifecycle. With allocates and locks a block, runs a callback, and then
// unlocks and releases it on every exit path. Code that needs a block to
// outlive a call should use firmware.Client directly and own the cleanup.
package vcmem

import (
	"errors"
	"fmt"

	"github.com/danmuck/vcioctl/internal/firmware"
	"github.com/rs/zerolog/log"
)

// Allocator is the memory lifecycle subset of firmware.Client.
type Allocator interface {
	Allocate(size, align uint32, flags firmware.MemFlag) (firmware.Handle, error)
	Lock(h firmware.Handle) (firmware.BusAddress, error)
	Unlock(addr firmware.BusAddress) (uint32, error)
	Release(h firmware.Handle) (uint32, error)
}

var _ Allocator = (*firmware.Client)(nil)

var ErrAllocationFailed = errors.New("vcmem: firmware returned a zero handle")

// StatusError is a non-zero status from unlock or release.
type StatusError struct {
	Op     string
	Status uint32
}

func (e StatusError) Error() string {
	return fmt.Sprintf("vcmem: %s returned status %d", e.Op, e.Status)
}

// Block is a locked allocation, valid only inside the With callback.
type Block struct {
	Handle firmware.Handle
	Bus    firmware.BusAddress
	Size   uint32
	Flags  firmware.MemFlag
}

// With allocates size bytes, locks them, and calls fn with the block. The
// block is unlocked and released before With returns, whatever fn or the
// lifecycle calls return. All failures are joined into the result.
func With(a Allocator, size, align uint32, flags firmware.MemFlag, fn func(Block) error) (err error) {
	h, err := a.Allocate(size, align, flags)
	if err != nil {
		return err
	}
	if h == 0 {
		return ErrAllocationFailed
	}
	defer func() {
		err = errors.Join(err, release(a, h))
	}()

	bus, err := a.Lock(h)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, unlock(a, bus))
	}()

	return fn(Block{Handle: h, Bus: bus, Size: size, Flags: flags})
}

func unlock(a Allocator, bus firmware.BusAddress) error {
	status, err := a.Unlock(bus)
	if err != nil {
		log.Warn().Err(err).Uint32("bus", uint32(bus)).Msg("unlock failed")
		return err
	}
	if status != 0 {
		return StatusError{Op: "unlock", Status: status}
	}
	return nil
}

func release(a Allocator, h firmware.Handle) error {
	status, err := a.Release(h)
	if err != nil {
		log.Warn().Err(err).Uint32("handle", uint32(h)).Msg("release failed")
		return err
	}
	if status != 0 {
		return StatusError{Op: "release", Status: status}
	}
	return nil
}
