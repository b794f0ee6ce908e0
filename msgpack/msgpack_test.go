package msgpack

import (
	"errors"
	"reflect"
	"testing"

	"github.com/zoobzio/stencil"
)

func TestNew(t *testing.T) {
	c := New()
	if c == nil {
		t.Error("New() should return non-nil codec")
	}
}

func TestContentType(t *testing.T) {
	c := New()
	if c.ContentType() != "application/msgpack" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/msgpack")
	}
}

func TestRoundTrip(t *testing.T) {
	c := New()

	in := stencil.BagOf(
		"zeta", "last-alphabetically",
		"alpha", 7,
		"nested", stencil.BagOf("y", true, "x", nil),
		"list", []any{1, "two"},
	)

	data, err := c.Encode(in)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	v, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	out, ok := v.(*stencil.Bag)
	if !ok {
		t.Fatalf("Decode() = %T, want *stencil.Bag", v)
	}
	if got, want := out.Keys(), []string{"zeta", "alpha", "nested", "list"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if got, _ := out.Get("alpha"); got != int64(7) {
		t.Errorf("Get(alpha) = %#v, want int64(7)", got)
	}
	nested, _ := out.Get("nested")
	if got, want := nested.(*stencil.Bag).Keys(), []string{"y", "x"}; !reflect.DeepEqual(got, want) {
		t.Errorf("nested Keys() = %v, want %v", got, want)
	}
	if got, _ := out.Get("list"); !reflect.DeepEqual(got, []any{int64(1), "two"}) {
		t.Errorf("Get(list) = %#v, want [1 two]", got)
	}
}

func TestEncodeBagList(t *testing.T) {
	c := New()

	data, err := c.Encode([]*stencil.Bag{stencil.BagOf("a", "x"), stencil.BagOf("b", "y")})
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	v, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	items, ok := v.([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("Decode() = %#v, want two items", v)
	}
	if got, _ := items[1].(*stencil.Bag).Get("b"); got != "y" {
		t.Errorf("items[1].b = %v, want y", got)
	}
}

func TestDecodeInvalid(t *testing.T) {
	c := New()

	tests := map[string][]byte{
		"truncated map":  {0x82, 0xa1, 'a'},
		"non-string key": {0x81, 0x01, 0x02},
		"trailing data":  {0x01, 0x02},
		"forged array32": {0xdd, 0x7f, 0xff, 0xff, 0xff},
		"forged map32":   {0xdf, 0x7f, 0xff, 0xff, 0xff},
		"forged array16": {0xdc, 0xff, 0xff, 0x01},
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decode(data)
			if err == nil {
				t.Fatal("Decode(invalid) should return error")
			}
			if !errors.Is(err, stencil.ErrDecode) {
				t.Errorf("errors.Is(err, ErrDecode) = false, err = %v", err)
			}
		})
	}
}
