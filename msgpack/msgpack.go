// Package msgpack provides an order-preserving MessagePack codec for stencil bags.
package msgpack

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
	"github.com/zoobzio/stencil"
)

// msgpackCodec implements stencil.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() stencil.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Decode parses a single MessagePack value. Maps become bags in stream order,
// arrays become []any. Map keys must be strings.
func (c *msgpackCodec) Decode(data []byte) (any, error) {
	r := bytes.NewReader(data)
	d := &decoder{Decoder: msgpack.NewDecoder(r), src: r}

	v, err := d.value()
	if err != nil {
		return nil, stencil.NewCodecError(stencil.ErrDecode, err)
	}
	if _, err := d.PeekCode(); !errors.Is(err, io.EOF) {
		return nil, stencil.NewCodecError(stencil.ErrDecode, fmt.Errorf("trailing data after top-level value"))
	}
	return v, nil
}

// Encode writes v as MessagePack, keeping bag key order.
func (c *msgpackCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encodeValue(enc, v); err != nil {
		return nil, stencil.NewCodecError(stencil.ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// decoder checks header lengths against the unread input, so a forged length
// cannot allocate more than the payload could ever fill.
type decoder struct {
	*msgpack.Decoder
	src *bytes.Reader
}

// checkLen rejects a header announcing n entries of at least size bytes each.
func (d *decoder) checkLen(kind string, n, size int) error {
	if n > d.src.Len()/size {
		return fmt.Errorf("%s length %d exceeds remaining input", kind, n)
	}
	return nil
}

func (d *decoder) value() (any, error) {
	code, err := d.PeekCode()
	if err != nil {
		return nil, err
	}

	switch {
	case msgpcode.IsFixedMap(code) || code == msgpcode.Map16 || code == msgpcode.Map32:
		n, err := d.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		if err := d.checkLen("map", n, 2); err != nil {
			return nil, err
		}
		bag := stencil.NewBag()
		for i := 0; i < n; i++ {
			key, err := d.DecodeString()
			if err != nil {
				return nil, fmt.Errorf("map key %d: %w", i, err)
			}
			v, err := d.value()
			if err != nil {
				return nil, err
			}
			bag.Set(key, v)
		}
		return bag, nil

	case msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32:
		n, err := d.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		if err := d.checkLen("array", n, 1); err != nil {
			return nil, err
		}
		items := make([]any, 0, n)
		for i := 0; i < n; i++ {
			v, err := d.value()
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	}

	return d.DecodeInterfaceLoose()
}

func encodeValue(enc *msgpack.Encoder, v any) error {
	switch tv := v.(type) {
	case *stencil.Bag:
		if tv == nil {
			return enc.EncodeNil()
		}
		if err := enc.EncodeMapLen(tv.Len()); err != nil {
			return err
		}
		var err error
		tv.Each(func(key string, value any) bool {
			if err = enc.EncodeString(key); err != nil {
				return false
			}
			err = encodeValue(enc, value)
			return err == nil
		})
		return err

	case []*stencil.Bag:
		if err := enc.EncodeArrayLen(len(tv)); err != nil {
			return err
		}
		for _, b := range tv {
			if err := encodeValue(enc, b); err != nil {
				return err
			}
		}
		return nil

	case []any:
		if err := enc.EncodeArrayLen(len(tv)); err != nil {
			return err
		}
		for _, item := range tv {
			if err := encodeValue(enc, item); err != nil {
				return err
			}
		}
		return nil
	}

	return enc.Encode(v)
}
