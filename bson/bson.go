// Package bson provides an order-preserving BSON codec for stencil bags.
package bson

import (
	"fmt"

	"github.com/zoobzio/stencil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// bsonCodec implements stencil.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() stencil.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Decode parses a BSON document into a bag in document order. Embedded
// documents become bags, arrays become []any, datetimes become time.Time and
// object ids their hex form.
func (c *bsonCodec) Decode(data []byte) (any, error) {
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, stencil.NewCodecError(stencil.ErrDecode, err)
	}
	return fromBSON(doc), nil
}

// Encode writes v as a BSON document. Top-level values must be a bag or a
// value the driver can marshal as a document.
func (c *bsonCodec) Encode(v any) ([]byte, error) {
	if v == nil {
		return nil, stencil.NewCodecError(stencil.ErrEncode, fmt.Errorf("cannot encode nil as a document"))
	}
	data, err := bson.Marshal(toBSON(v))
	if err != nil {
		return nil, stencil.NewCodecError(stencil.ErrEncode, err)
	}
	return data, nil
}

func fromBSON(v any) any {
	switch tv := v.(type) {
	case bson.D:
		bag := stencil.NewBag()
		for _, e := range tv {
			bag.Set(e.Key, fromBSON(e.Value))
		}
		return bag
	case bson.A:
		items := make([]any, len(tv))
		for i, item := range tv {
			items[i] = fromBSON(item)
		}
		return items
	case primitive.DateTime:
		return tv.Time().UTC()
	case primitive.ObjectID:
		return tv.Hex()
	case primitive.Binary:
		return tv.Data
	case int32:
		return int64(tv)
	}
	return v
}

func toBSON(v any) any {
	switch tv := v.(type) {
	case *stencil.Bag:
		if tv == nil {
			return nil
		}
		doc := make(bson.D, 0, tv.Len())
		tv.Each(func(key string, value any) bool {
			doc = append(doc, bson.E{Key: key, Value: toBSON(value)})
			return true
		})
		return doc
	case []*stencil.Bag:
		arr := make(bson.A, len(tv))
		for i, b := range tv {
			arr[i] = toBSON(b)
		}
		return arr
	case []any:
		arr := make(bson.A, len(tv))
		for i, item := range tv {
			arr[i] = toBSON(item)
		}
		return arr
	}
	return v
}
