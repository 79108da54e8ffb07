package protocol

// Decode validates a response envelope and returns a copy of the first
// reqRespSize payload bytes.
//
// Checks run in order: status word, response bit, response size against
// reqRespSize, response size against the payload area.
func Decode(envelope []byte, reqRespSize int) ([]byte, error) {
	env, err := ParseEnvelope(envelope)
	if err != nil {
		return nil, err
	}
	if env.Status != StatusSuccess {
		return nil, RequestFailedError{Code: env.Status}
	}

	raw := env.Header.ReqRespSize
	if raw&ResponseBit == 0 {
		return nil, ReqRespSizeBitError{ReqRespSize: raw}
	}
	actual := int(raw &^ ResponseBit)
	if actual != reqRespSize {
		return nil, BufferSizeMismatchError{Actual: actual, Expected: reqRespSize}
	}
	if actual > len(env.Payload) {
		return nil, BufferSizeMismatchSuppliedError{Actual: actual, Supplied: len(env.Payload)}
	}

	out := make([]byte, reqRespSize)
	copy(out, env.Payload[:reqRespSize])
	return out, nil
}
