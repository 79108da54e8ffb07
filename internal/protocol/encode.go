package protocol

import "fmt"

// Encode builds a request envelope for tag. The payload area is bufSize
// bytes: in is copied to its start and the rest is zero.
func Encode(tag Tag, in []byte, bufSize, reqRespSize int) ([]byte, error) {
	if reqRespSize < 0 || bufSize < reqRespSize {
		return nil, InvalidInputError{BufSize: bufSize, ReqRespSize: reqRespSize}
	}
	if len(in) > bufSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(in), bufSize)
	}

	size := EnvelopeSize(bufSize)
	buf := make([]byte, size)
	PutWord(buf, OffsetTotalSize, uint32(size))
	PutWord(buf, OffsetStatus, uint32(StatusRequest))
	PutWord(buf, OffsetTag, uint32(tag))
	PutWord(buf, OffsetBufSize, uint32(bufSize))
	PutWord(buf, OffsetReqRespSize, uint32(reqRespSize))
	copy(buf[PayloadOffset:], in)
	PutWord(buf, size-WordSize, PropertyEnd)
	return buf, nil
}
