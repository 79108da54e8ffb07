// Package fakefw is an in-memory firmware that answers property envelopes.
// It satisfies mailbox.Transport without importing it.
package fakefw

import "github.com/danmuck/vcioctl/internal/protocol"

// Handler answers one tag. The returned bytes are written at the start of
// the payload area; status is written to the envelope status word.
type Handler func(in []byte) ([]byte, protocol.Status)

// Call records one exchange as the firmware saw it.
type Call struct {
	Tag         protocol.Tag
	TotalSize   uint32
	BufSize     uint32
	ReqRespSize uint32
	Payload     []byte
}

// ClockRates holds the three rates reported for one clock id.
type ClockRates struct {
	Rate, Min, Max uint32
}

// Firmware is not safe for concurrent use, mirroring the real device.
type Firmware struct {
	FirmwareRevision uint32
	BoardModel       uint32
	BoardRevision    uint32
	MAC              [6]byte
	Serial           uint64
	ARMMemory        [2]uint32
	VCMemory         [2]uint32
	Clocks           map[uint32]ClockRates
	Temperature      uint32
	MaxTemperature   uint32
	Throttled        uint32
	LastThrottleMask uint16

	// Fault injection.
	TransportErr    error
	StatusOverride  *protocol.Status
	DropResponseBit bool
	RespSize        *uint32
	FailTag         map[protocol.Tag]protocol.Status

	Handlers map[protocol.Tag]Handler
	Calls    []Call

	echo       bool
	nextHandle uint32
	nextBus    uint32
	blocks     map[uint32]*block
}

type block struct {
	size, align, flags uint32
	bus                uint32
}

// Echo returns a firmware that copies every request payload back unchanged.
func Echo() *Firmware {
	return &Firmware{echo: true}
}

// New returns a firmware modelled on a Raspberry Pi 3 B.
func New() *Firmware {
	f := &Firmware{
		FirmwareRevision: 1652793587,
		BoardModel:       0,
		BoardRevision:    0xa02082,
		MAC:              [6]byte{0xb8, 0x27, 0xeb, 0x12, 0x34, 0x56},
		Serial:           0x00000000f1e2d3c4,
		ARMMemory:        [2]uint32{0x00000000, 0x3b400000},
		VCMemory:         [2]uint32{0x3b400000, 0x04c00000},
		Clocks: map[uint32]ClockRates{
			3: {Rate: 600000000, Min: 600000000, Max: 1200000000},
			4: {Rate: 250000000, Min: 250000000, Max: 400000000},
		},
		Temperature:    48312,
		MaxTemperature: 85000,
		nextHandle:     1,
		nextBus:        0xc0000000,
		blocks:         make(map[uint32]*block),
	}
	f.Handlers = map[protocol.Tag]Handler{
		protocol.TagGetFirmwareRevision: f.word(func() uint32 { return f.FirmwareRevision }),
		protocol.TagGetBoardModel:       f.word(func() uint32 { return f.BoardModel }),
		protocol.TagGetBoardRevision:    f.word(func() uint32 { return f.BoardRevision }),
		protocol.TagGetBoardMACAddress:  func([]byte) ([]byte, protocol.Status) { return f.MAC[:], protocol.StatusSuccess },
		protocol.TagGetBoardSerial:      f.serial,
		protocol.TagGetARMMemory:        f.pair(func() (uint32, uint32) { return f.ARMMemory[0], f.ARMMemory[1] }),
		protocol.TagGetVCMemory:         f.pair(func() (uint32, uint32) { return f.VCMemory[0], f.VCMemory[1] }),
		protocol.TagGetClockRate:        f.clock(func(c ClockRates) uint32 { return c.Rate }),
		protocol.TagGetMinClockRate:     f.clock(func(c ClockRates) uint32 { return c.Min }),
		protocol.TagGetMaxClockRate:     f.clock(func(c ClockRates) uint32 { return c.Max }),
		protocol.TagGetTemperature:      f.sensor(func() uint32 { return f.Temperature }),
		protocol.TagGetMaxTemperature:   f.sensor(func() uint32 { return f.MaxTemperature }),
		protocol.TagGetThrottled:        f.throttled,
		protocol.TagAllocateMemory:      f.allocate,
		protocol.TagLockMemory:          f.lock,
		protocol.TagUnlockMemory:        f.unlock,
		protocol.TagReleaseMemory:       f.release,
	}
	return f
}

// Exchange implements mailbox.Transport.
func (f *Firmware) Exchange(envelope []byte) error {
	if f.TransportErr != nil {
		return f.TransportErr
	}
	env, err := protocol.ParseEnvelope(envelope)
	if err != nil {
		return err
	}
	payload := make([]byte, len(env.Payload))
	copy(payload, env.Payload)
	f.Calls = append(f.Calls, Call{
		Tag:         env.Header.Tag,
		TotalSize:   env.TotalSize,
		BufSize:     env.Header.BufSize,
		ReqRespSize: env.Header.ReqRespSize,
		Payload:     payload,
	})

	status := protocol.StatusSuccess
	if !f.echo {
		var out []byte
		if code, ok := f.FailTag[env.Header.Tag]; ok {
			status = code
		} else if h, ok := f.Handlers[env.Header.Tag]; ok {
			out, status = h(payload)
		} else {
			status = protocol.StatusErrorParse
		}
		clear(env.Payload)
		copy(env.Payload, out)
	}
	if f.StatusOverride != nil {
		status = *f.StatusOverride
	}

	respSize := env.Header.ReqRespSize
	if f.RespSize != nil {
		respSize = *f.RespSize
	}
	if !f.DropResponseBit {
		respSize |= protocol.ResponseBit
	}
	protocol.PutWord(envelope, protocol.OffsetStatus, uint32(status))
	protocol.PutWord(envelope, protocol.OffsetReqRespSize, respSize)
	return nil
}

// Live reports the number of allocated, unreleased handles.
func (f *Firmware) Live() int {
	return len(f.blocks)
}

// Locked reports whether handle is currently locked.
func (f *Firmware) Locked(handle uint32) bool {
	b, ok := f.blocks[handle]
	return ok && b.bus != 0
}

// CallTags lists the tags exchanged so far, in order.
func (f *Firmware) CallTags() []protocol.Tag {
	out := make([]protocol.Tag, 0, len(f.Calls))
	for _, c := range f.Calls {
		out = append(out, c.Tag)
	}
	return out
}

func words(vs ...uint32) []byte {
	buf := make([]byte, len(vs)*protocol.WordSize)
	for i, v := range vs {
		protocol.PutWord(buf, i*protocol.WordSize, v)
	}
	return buf
}

func (f *Firmware) word(get func() uint32) Handler {
	return func([]byte) ([]byte, protocol.Status) { return words(get()), protocol.StatusSuccess }
}

func (f *Firmware) pair(get func() (uint32, uint32)) Handler {
	return func([]byte) ([]byte, protocol.Status) {
		a, b := get()
		return words(a, b), protocol.StatusSuccess
	}
}

func (f *Firmware) serial([]byte) ([]byte, protocol.Status) {
	buf := make([]byte, 8)
	protocol.ByteOrder.PutUint64(buf, f.Serial)
	return buf, protocol.StatusSuccess
}

func (f *Firmware) clock(pick func(ClockRates) uint32) Handler {
	return func(in []byte) ([]byte, protocol.Status) {
		id := protocol.Word(in, 0)
		c, ok := f.Clocks[id]
		if !ok {
			return words(id, 0), protocol.StatusSuccess
		}
		return words(id, pick(c)), protocol.StatusSuccess
	}
}

func (f *Firmware) sensor(get func() uint32) Handler {
	return func(in []byte) ([]byte, protocol.Status) {
		return words(protocol.Word(in, 0), get()), protocol.StatusSuccess
	}
}

func (f *Firmware) throttled(in []byte) ([]byte, protocol.Status) {
	f.LastThrottleMask = protocol.ByteOrder.Uint16(in[:2])
	return words(f.Throttled), protocol.StatusSuccess
}

func (f *Firmware) allocate(in []byte) ([]byte, protocol.Status) {
	size, align, flags := protocol.Word(in, 0), protocol.Word(in, 4), protocol.Word(in, 8)
	if size == 0 {
		return words(0), protocol.StatusSuccess
	}
	h := f.nextHandle
	f.nextHandle++
	f.blocks[h] = &block{size: size, align: align, flags: flags}
	return words(h), protocol.StatusSuccess
}

func (f *Firmware) lock(in []byte) ([]byte, protocol.Status) {
	b, ok := f.blocks[protocol.Word(in, 0)]
	if !ok {
		return words(0), protocol.StatusSuccess
	}
	if b.bus == 0 {
		align := max(b.align, 1)
		f.nextBus = (f.nextBus + align - 1) / align * align
		b.bus = f.nextBus
		f.nextBus += b.size
	}
	return words(b.bus), protocol.StatusSuccess
}

func (f *Firmware) unlock(in []byte) ([]byte, protocol.Status) {
	bus := protocol.Word(in, 0)
	for _, b := range f.blocks {
		if b.bus == bus && bus != 0 {
			b.bus = 0
			return words(0), protocol.StatusSuccess
		}
	}
	return words(1), protocol.StatusSuccess
}

func (f *Firmware) release(in []byte) ([]byte, protocol.Status) {
	h := protocol.Word(in, 0)
	if _, ok := f.blocks[h]; !ok {
		return words(1), protocol.StatusSuccess
	}
	delete(f.blocks, h)
	return words(0), protocol.StatusSuccess
}
