package stencil

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

var bytesType = reflect.TypeFor[[]byte]()

// isScalar reports whether v is a leaf value: nil, bool, a number, a string,
// a byte slice or a point in time.
func isScalar(v any) bool {
	switch v.(type) {
	case nil, json.Number, time.Time, []byte:
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// asSequence returns v as []any when it is a slice or array other than []byte.
func asSequence(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, false
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type() == bytesType {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// asBag returns v when it already is bag-shaped: a bag or a string-keyed map.
func asBag(v any) (*Bag, bool) {
	switch tv := v.(type) {
	case *Bag:
		if tv == nil {
			return NewBag(), true
		}
		return tv, true
	case Bag:
		return &tv, true
	case map[string]any:
		return FromMap(tv), true
	}
	return nil, false
}

// wellFormed reports whether v is a scalar, a bag, or a sequence of well
// formed values.
func wellFormed(v any) bool {
	if _, ok := asBag(v); ok {
		return true
	}
	if items, ok := asSequence(v); ok {
		for _, item := range items {
			if !wellFormed(item) {
				return false
			}
		}
		return true
	}
	return isScalar(v)
}

// reshape turns a field value into the bag handed to a nested mapper.
// Bags pass through, sequences are keyed by position and scalars are wrapped
// under the field's own name.
func reshape(typeName, field string, v any) (*Bag, error) {
	if b, ok := asBag(v); ok {
		return b, nil
	}
	if items, ok := asSequence(v); ok {
		for _, item := range items {
			if !wellFormed(item) {
				return nil, &ShapeError{Type: typeName, Field: field, Got: fmt.Sprintf("%T in %T", item, v)}
			}
		}
		return FromSequence(items), nil
	}
	if isScalar(v) {
		return BagOf(field, v), nil
	}
	return nil, &ShapeError{Type: typeName, Field: field, Got: fmt.Sprintf("%T", v)}
}

// listItems returns the items iterated by a list pass: the values of a bag
// in order, or the elements of a slice.
func listItems(typeName string, input any) ([]any, error) {
	switch tv := input.(type) {
	case nil:
		return nil, nil
	case *Bag:
		return tv.Values(), nil
	case Bag:
		return tv.Values(), nil
	}
	if items, ok := asSequence(input); ok {
		return items, nil
	}
	return nil, &ShapeError{Type: typeName, Got: fmt.Sprintf("%T", input)}
}
