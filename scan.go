package stencil

import (
	"fmt"
	"reflect"

	"github.com/zoobzio/sentinel"
)

// Struct tags read when deriving a schema from a type.
const (
	tagKey       = "stencil"
	tagValidator = "stencil.validate"
	tagMask      = "stencil.mask"
)

func init() {
	sentinel.Tag(tagKey)
	sentinel.Tag(tagValidator)
	sentinel.Tag(tagMask)
}

// scanPlan derives the field table of T from its struct tags.
func scanPlan[T any]() (*typePlan, error) {
	rt := reflect.TypeFor[T]()
	if rt.Kind() != reflect.Struct {
		return nil, &MetadataError{Type: rt.String(), Cause: fmt.Errorf("kind %s is not a struct", rt.Kind())}
	}
	return planFromMetadata(rt, sentinel.Scan[T]())
}

// scanType derives the field table of a type only known at runtime.
func scanType(rt reflect.Type) (*typePlan, error) {
	if rt.Kind() != reflect.Struct {
		return nil, &MetadataError{Type: rt.String(), Cause: fmt.Errorf("kind %s is not a struct", rt.Kind())}
	}
	if meta, ok := sentinel.Lookup(rt.String()); ok {
		return planFromMetadata(rt, meta)
	}
	return planFromMetadata(rt, reflectMetadata(rt))
}

// reflectMetadata builds sentinel metadata for a type sentinel has not seen.
func reflectMetadata(rt reflect.Type) sentinel.Metadata {
	meta := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		tags := make(map[string]string)
		for _, name := range []string{tagKey, tagValidator, tagMask} {
			if val, ok := sf.Tag.Lookup(name); ok {
				tags[name] = val
			}
		}

		meta.Fields = append(meta.Fields, sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        tags,
		})
	}

	return meta
}

// planFromMetadata turns scanned fields into reflective setters and getters.
// A `stencil:"-"` tag leaves the field out.
func planFromMetadata(rt reflect.Type, meta sentinel.Metadata) (*typePlan, error) {
	fields := make([]fieldPlan, 0, len(meta.Fields))

	for _, fm := range meta.Fields {
		key := fm.Tags[tagKey]
		if key == "-" {
			continue
		}
		index := append([]int{}, fm.Index...)

		fields = append(fields, fieldPlan{
			spec: FieldSpec{
				Name:      fm.Name,
				Key:       key,
				Validator: fm.Tags[tagValidator],
				Mask:      MaskType(fm.Tags[tagMask]),
			},
			set: func(target any, value any) error {
				field, err := reflect.ValueOf(target).Elem().FieldByIndexErr(index)
				if err != nil {
					return err
				}
				if !field.CanSet() {
					return nil
				}
				cv, err := coerceTo(field.Type(), value)
				if err != nil {
					return err
				}
				field.Set(cv)
				return nil
			},
			get: func(target any) (any, bool) {
				field, err := reflect.ValueOf(target).Elem().FieldByIndexErr(index)
				if err != nil || !field.CanInterface() {
					return nil, false
				}
				return field.Interface(), true
			},
		})
	}

	return newTypePlan(rt, fields)
}
