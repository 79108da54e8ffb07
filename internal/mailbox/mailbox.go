package mailbox

import (
	"errors"
	"time"

	"github.com/danmuck/vcioctl/internal/observability"
	"github.com/danmuck/vcioctl/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Transport performs one blocking exchange. The firmware response is written
// over envelope in place.
type Transport interface {
	Exchange(envelope []byte) error
}

// Perform runs one property exchange for tag and returns the first
// reqRespSize bytes of the response payload. It is attempted exactly once.
func Perform(t Transport, tag protocol.Tag, in []byte, bufSize, reqRespSize int) ([]byte, error) {
	name := tag.String()
	env, err := protocol.Encode(tag, in, bufSize, reqRespSize)
	if err != nil {
		observability.RecordExchange(name, protocol.ErrorKind(err), 0)
		return nil, err
	}
	log.Trace().Str("tag", name).Hex("envelope", env).Msg("property request")

	start := time.Now()
	if err := t.Exchange(env); err != nil {
		if !errors.Is(err, protocol.ErrTransport) {
			err = protocol.TransportError{Op: "exchange", Err: err}
		}
		observability.RecordExchange(name, protocol.ErrorKind(err), time.Since(start))
		log.Debug().Str("tag", name).Err(err).Msg("property exchange failed")
		return nil, err
	}
	elapsed := time.Since(start)
	log.Trace().Str("tag", name).Hex("envelope", env).Msg("property response")

	out, err := protocol.Decode(env, reqRespSize)
	observability.RecordExchange(name, protocol.ErrorKind(err), elapsed)
	if err != nil {
		var mismatch protocol.BufferSizeMismatchError
		if errors.As(err, &mismatch) {
			log.Info().
				Str("tag", name).
				Int("actual", mismatch.Actual).
				Int("expected", mismatch.Expected).
				Msg("req_resp_size may not be used by this firmware, but callers must still declare it exactly")
		}
		log.Debug().Str("tag", name).Err(err).Msg("property response rejected")
		return nil, err
	}
	log.Debug().Str("tag", name).Dur("elapsed", elapsed).Int("bytes", len(out)).Msg("property exchange ok")
	return out, nil
}
