package protocol

import (
	"encoding/binary"
	"fmt"
)

// ByteOrder is the envelope word order. The firmware reads the buffer in the
// host's native order.
var ByteOrder binary.ByteOrder = binary.NativeEndian

const (
	WordSize      = 4
	TagHeaderSize = 3 * WordSize

	// Byte offsets inside an envelope.
	OffsetTotalSize   = 0
	OffsetStatus      = 4
	OffsetTag         = 8
	OffsetBufSize     = 12
	OffsetReqRespSize = 16
	PayloadOffset     = 20

	// EnvelopeOverhead is every byte of an envelope except the payload area.
	EnvelopeOverhead = 2*WordSize + TagHeaderSize + WordSize

	PropertyEnd uint32 = 0
	ResponseBit uint32 = 1 << 31
)

// Status is the second word of an envelope.
type Status uint32

const (
	StatusRequest    Status = 0x00000000
	StatusSuccess    Status = 0x80000000
	StatusErrorParse Status = 0x80000001
)

func (s Status) String() string {
	switch s {
	case StatusRequest:
		return "request"
	case StatusSuccess:
		return "success"
	case StatusErrorParse:
		return "error_parse"
	default:
		return fmt.Sprintf("0x%08x", uint32(s))
	}
}

// TagHeader is the three-word header that precedes a tag payload.
type TagHeader struct {
	Tag         Tag
	BufSize     uint32
	ReqRespSize uint32
}

// Envelope is a parsed view of an envelope buffer. Payload aliases the
// buffer it was parsed from and spans BufSize bytes.
type Envelope struct {
	TotalSize uint32
	Status    Status
	Header    TagHeader
	Payload   []byte
}

// EnvelopeSize returns the whole-word envelope length for a payload area of
// bufSize bytes.
func EnvelopeSize(bufSize int) int {
	return EnvelopeOverhead + roundWords(bufSize)
}

func roundWords(n int) int {
	return (n + WordSize - 1) &^ (WordSize - 1)
}
