// Package json provides an order-preserving JSON codec for stencil bags.
package json

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/zoobzio/stencil"
)

// jsonCodec implements stencil.Codec for JSON.
type jsonCodec struct {
	indent string
}

// New returns a JSON codec.
func New() stencil.Codec {
	return &jsonCodec{}
}

// NewIndent returns a JSON codec that indents its output with indent.
func NewIndent(indent string) stencil.Codec {
	return &jsonCodec{indent: indent}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Decode parses a single JSON value. Objects become bags in source key order,
// arrays become []any. Integral numbers decode as int64, others as float64.
func (c *jsonCodec) Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, stencil.NewCodecError(stencil.ErrDecode, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, stencil.NewCodecError(stencil.ErrDecode, fmt.Errorf("trailing data after top-level value"))
	}
	return v, nil
}

// Encode writes v as JSON, keeping bag key order.
func (c *jsonCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return nil, stencil.NewCodecError(stencil.ErrEncode, err)
	}
	if c.indent == "" {
		return buf.Bytes(), nil
	}

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", c.indent); err != nil {
		return nil, stencil.NewCodecError(stencil.ErrEncode, err)
	}
	return out.Bytes(), nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		return t.Float64()
	}
	return tok, nil
}

func decodeObject(dec *json.Decoder) (*stencil.Bag, error) {
	bag := stencil.NewBag()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, want string", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		bag.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return bag, nil
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	items := []any{}
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return items, nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	switch tv := v.(type) {
	case *stencil.Bag:
		if tv == nil {
			buf.WriteString("null")
			return nil
		}
		return encodeBag(buf, tv)
	case []*stencil.Bag:
		items := make([]any, len(tv))
		for i, b := range tv {
			items[i] = b
		}
		return encodeArray(buf, items)
	case []any:
		return encodeArray(buf, tv)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

func encodeBag(buf *bytes.Buffer, b *stencil.Bag) error {
	buf.WriteByte('{')
	var err error
	i := 0
	b.Each(func(key string, value any) bool {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		var k []byte
		if k, err = json.Marshal(key); err != nil {
			return false
		}
		buf.Write(k)
		buf.WriteByte(':')
		err = encodeValue(buf, value)
		return err == nil
	})
	if err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func encodeArray(buf *bytes.Buffer, items []any) error {
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeValue(buf, item); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}
