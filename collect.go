package stencil

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"time"
)

var errCycle = errors.New("reference cycle")

// Collect walks a mapped value back into a bag.
//
// target is a struct or a pointer to one. Fields are read through the same
// schema the engine uses and stored under their external keys, so a collected
// bag maps back onto an equal value when no nested mapper reshaped the data.
// Nested structs become nested bags, slices become []any, string-keyed maps
// become bags with sorted keys. Fields without a getter, and function or
// channel values, are left out. Fields with a mask have their strings masked.
func Collect(target any) (*Bag, error) {
	start := time.Now()
	w := &walker{seen: make(map[uintptr]bool)}

	bag, err := w.collect(reflect.ValueOf(target))
	emitCollectComplete(context.Background(), typeString(target), 1, time.Since(start), err)
	return bag, err
}

// CollectList collects every element of a slice of structs or struct pointers.
func CollectList(targets any) ([]*Bag, error) {
	start := time.Now()
	typeName := typeString(targets)

	items, ok := asSequence(targets)
	if !ok {
		err := &MetadataError{Type: typeName, Cause: fmt.Errorf("not a sequence")}
		emitCollectComplete(context.Background(), typeName, 0, time.Since(start), err)
		return nil, err
	}

	bags := make([]*Bag, 0, len(items))
	for _, item := range items {
		w := &walker{seen: make(map[uintptr]bool)}
		bag, err := w.collect(reflect.ValueOf(item))
		if err != nil {
			emitCollectComplete(context.Background(), typeName, len(bags), time.Since(start), err)
			return nil, err
		}
		bags = append(bags, bag)
	}

	emitCollectComplete(context.Background(), typeName, len(bags), time.Since(start), nil)
	return bags, nil
}

// walker tracks the pointers on the current path to stop on cycles.
type walker struct {
	seen map[uintptr]bool
}

// collect turns a struct value into a bag.
func (w *walker) collect(rv reflect.Value) (*Bag, error) {
	if !rv.IsValid() {
		return nil, &MetadataError{Type: "nil", Cause: fmt.Errorf("nothing to collect")}
	}

	if c, ok := collectable(rv); ok {
		return c.Collect()
	}

	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, &MetadataError{Type: rv.Type().String(), Cause: fmt.Errorf("nil pointer")}
		}
		addr := rv.Pointer()
		if w.seen[addr] {
			return nil, &MetadataError{Type: rv.Type().String(), Cause: errCycle}
		}
		w.seen[addr] = true
		defer delete(w.seen, addr)
		rv = rv.Elem()
	}

	plan, err := planFor(rv.Type())
	if err != nil {
		return nil, err
	}

	ptr := rv
	if rv.CanAddr() {
		ptr = rv.Addr()
	} else {
		ptr = reflect.New(rv.Type())
		ptr.Elem().Set(rv)
	}

	bag := NewBag()
	for _, f := range plan.fields {
		if f.get == nil {
			continue
		}
		v, ok := f.get(ptr.Interface())
		if !ok {
			continue
		}
		cv, keep, err := w.value(v)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}
		if f.spec.Mask != "" {
			cv = maskValue(builtinMaskers[f.spec.Mask], cv)
		}
		key, _ := Resolve(f.spec)
		bag.Set(key, cv)
	}
	return bag, nil
}

// value converts one field value into its bag form.
func (w *walker) value(v any) (any, bool, error) {
	if v == nil {
		return nil, true, nil
	}
	if b, ok := v.(*Bag); ok {
		return b.Clone(), true, nil
	}

	rv := reflect.ValueOf(v)
	if c, ok := collectable(rv); ok {
		b, err := c.Collect()
		return b, true, err
	}
	if isScalar(v) {
		return v, true, nil
	}

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, true, nil
		}
		if rv.Elem().Kind() == reflect.Struct && rv.Elem().Type() != reflect.TypeFor[time.Time]() {
			b, err := w.collect(rv)
			return b, true, err
		}
		return w.value(rv.Elem().Interface())

	case reflect.Struct:
		b, err := w.collect(rv)
		return b, true, err

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, true, nil
		}
		out := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, keep, err := w.value(rv.Index(i).Interface())
			if err != nil {
				return nil, false, err
			}
			if keep {
				out = append(out, item)
			}
		}
		return out, true, nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false, nil
		}
		if rv.IsNil() {
			return nil, true, nil
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		out := NewBag()
		for _, k := range keys {
			item, keep, err := w.value(rv.MapIndex(k).Interface())
			if err != nil {
				return nil, false, err
			}
			if keep {
				out.Set(k.String(), item)
			}
		}
		return out, true, nil
	}

	return nil, false, nil
}

// collectable returns rv as a Collectable, trying its address as well.
func collectable(rv reflect.Value) (Collectable, bool) {
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, false
	}
	if rv.CanInterface() {
		if c, ok := rv.Interface().(Collectable); ok {
			return c, true
		}
	}
	if rv.CanAddr() && rv.Addr().CanInterface() {
		if c, ok := rv.Addr().Interface().(Collectable); ok {
			return c, true
		}
	}
	return nil, false
}

// maskValue masks strings, including strings inside sequences.
func maskValue(m Masker, v any) any {
	switch tv := v.(type) {
	case string:
		return m.Mask(tv)
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = maskValue(m, item)
		}
		return out
	}
	return v
}
