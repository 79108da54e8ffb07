// Package firmware exposes typed firmware property queries and the
// coprocessor memory lifecycle. Every method is exactly one property
// exchange.
package firmware

import (
	"encoding"
	"fmt"

	"github.com/danmuck/vcioctl/internal/mailbox"
	"github.com/danmuck/vcioctl/internal/protocol"
)

// Client issues property exchanges over one transport. It does no locking;
// see mailbox.
type Client struct {
	t mailbox.Transport
}

func New(t mailbox.Transport) *Client {
	return &Client{t: t}
}

// call exchanges in for tag with the tag's catalog sizes and unmarshals the
// response into out.
func (c *Client) call(tag protocol.Tag, in encoding.BinaryMarshaler, out encoding.BinaryUnmarshaler) error {
	p, ok := protocol.Lookup(tag)
	if !ok {
		return fmt.Errorf("%w: %v", protocol.ErrUnknownTag, tag)
	}
	raw, err := in.MarshalBinary()
	if err != nil {
		return err
	}
	resp, err := mailbox.Perform(c.t, tag, raw, p.BufSize(), p.ReqRespSize())
	if err != nil {
		return err
	}
	return out.UnmarshalBinary(resp)
}

// Raw exchanges in for the catalog entry p and returns the response payload
// without interpretation.
func (c *Client) Raw(p protocol.Property, in []byte) ([]byte, error) {
	return mailbox.Perform(c.t, p.Tag, in, p.BufSize(), p.ReqRespSize())
}
