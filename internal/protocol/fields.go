package protocol

// PutWord stores v at byte offset off of b in envelope byte order.
func PutWord(b []byte, off int, v uint32) {
	ByteOrder.PutUint32(b[off:off+WordSize], v)
}

// Word reads the word at byte offset off of b in envelope byte order.
func Word(b []byte, off int) uint32 {
	return ByteOrder.Uint32(b[off : off+WordSize])
}

// ParseEnvelope validates the framing of b and returns a view of its fields.
// It does not look at the status word or the response bit.
func ParseEnvelope(b []byte) (Envelope, error) {
	if len(b) < EnvelopeOverhead || len(b)%WordSize != 0 {
		return Envelope{}, ErrTruncated
	}
	env := Envelope{
		TotalSize: Word(b, OffsetTotalSize),
		Status:    Status(Word(b, OffsetStatus)),
		Header: TagHeader{
			Tag:         Tag(Word(b, OffsetTag)),
			BufSize:     Word(b, OffsetBufSize),
			ReqRespSize: Word(b, OffsetReqRespSize),
		},
	}
	if uint64(env.Header.BufSize) > uint64(len(b)-EnvelopeOverhead) {
		return Envelope{}, ErrTruncated
	}
	end := PayloadOffset + int(env.Header.BufSize)
	env.Payload = b[PayloadOffset:end:end]
	return env, nil
}
