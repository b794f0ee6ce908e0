package stencil

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Coerce converts a bag value into V.
//
// Values that already are a V are returned as-is and nil yields the zero V.
// Anything else goes through a weakly typed mapstructure decode, so float64
// JSON numbers land in int fields, RFC 3339 strings in time.Time fields and
// nested bags in structs whose fields carry `stencil` tags.
func Coerce[V any](raw any) (V, error) {
	var zero V
	if v, ok := raw.(V); ok {
		return v, nil
	}
	rv, err := coerceTo(reflect.TypeFor[V](), raw)
	if err != nil {
		return zero, err
	}
	return rv.Interface().(V), nil
}

// coerceTo returns raw as a value assignable to rt.
func coerceTo(rt reflect.Type, raw any) (reflect.Value, error) {
	if raw == nil {
		return reflect.Zero(rt), nil
	}

	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(rt) {
		return rv, nil
	}

	// T into *T
	if rt.Kind() == reflect.Pointer && rv.Type().AssignableTo(rt.Elem()) {
		ptr := reflect.New(rt.Elem())
		ptr.Elem().Set(rv)
		return ptr, nil
	}

	// *T into T
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Type().AssignableTo(rt) {
		return rv.Elem(), nil
	}

	out := reflect.New(rt)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		TagName:          "stencil",
		Result:           out.Interface(),
	})
	if err != nil {
		return reflect.Value{}, fmt.Errorf("build decoder for %s: %w", rt, err)
	}
	if err := decoder.Decode(plainValue(raw)); err != nil {
		return reflect.Value{}, fmt.Errorf("cannot use %T as %s: %w", raw, rt, err)
	}
	return out.Elem(), nil
}
