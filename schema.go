package stencil

import (
	"fmt"
	"reflect"
)

// FieldSpec is the metadata attached to one target field.
type FieldSpec struct {
	Name      string   // Go field name, also the nested-mapper key
	Key       string   // External bag key; empty means Name
	Validator string   // Optional validator identifier
	Mask      MaskType // Optional mask applied by Collect
}

// Resolve returns the external key and validator reference for a field.
// A field without an explicit key is read from the bag under its own name.
func Resolve(spec FieldSpec) (key, validator string) {
	if spec.Key != "" {
		return spec.Key, spec.Validator
	}
	return spec.Name, spec.Validator
}

// Field declares one field of an explicit schema.
//
// Set is the field's mutator; a nil Set declares metadata for a field that
// cannot be written, and the engine skips it. Get is used by Collect; a nil
// Get leaves the field out of collected bags.
type Field[T any] struct {
	Name      string
	Key       string
	Validator string
	Mask      MaskType
	Set       func(target *T, value any) error
	Get       func(target *T) any
}

// Spec returns the field's metadata.
func (f Field[T]) Spec() FieldSpec {
	return FieldSpec{Name: f.Name, Key: f.Key, Validator: f.Validator, Mask: f.Mask}
}

// Setter adapts a typed assignment to a Field mutator. The raw bag value is
// converted with Coerce before fn is called.
func Setter[T, V any](fn func(target *T, value V)) func(*T, any) error {
	return func(target *T, raw any) error {
		v, err := Coerce[V](raw)
		if err != nil {
			return err
		}
		fn(target, v)
		return nil
	}
}

// Getter adapts a typed accessor to a Field getter.
func Getter[T, V any](fn func(target *T) V) func(*T) any {
	return func(target *T) any {
		return fn(target)
	}
}

// fieldPlan is the type-erased form of a field used by the engine and the collector.
type fieldPlan struct {
	spec FieldSpec
	set  func(target any, value any) error
	get  func(target any) (any, bool)
}

// typePlan is the ordered side table for one target type.
type typePlan struct {
	typ      reflect.Type
	typeName string
	fields   []fieldPlan
	byName   map[string]int
}

func newTypePlan(rt reflect.Type, fields []fieldPlan) (*typePlan, error) {
	plan := &typePlan{
		typ:      rt,
		typeName: typeNameOf(rt),
		fields:   fields,
		byName:   make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.spec.Name == "" {
			return nil, &MetadataError{Type: plan.typeName, Cause: fmt.Errorf("field %d has no name", i)}
		}
		if _, dup := plan.byName[f.spec.Name]; dup {
			return nil, &MetadataError{Type: plan.typeName, Cause: fmt.Errorf("field %s declared twice", f.spec.Name)}
		}
		if f.spec.Mask != "" && !IsValidMaskType(f.spec.Mask) {
			return nil, &MetadataError{
				Type:  plan.typeName,
				Cause: newConfigError(ErrMissingMasker, string(f.spec.Mask), f.spec.Name),
			}
		}
		plan.byName[f.spec.Name] = i
	}
	return plan, nil
}

func typeNameOf(rt reflect.Type) string {
	if rt.Name() != "" {
		return rt.Name()
	}
	return rt.String()
}

// Schema is the per-type field table the engine walks, in declaration order.
// Schemas are immutable and safe for concurrent use.
type Schema[T any] struct {
	plan *typePlan
}

// NewSchema builds an explicit schema from an ordered list of fields.
// It panics with a *MetadataError on empty or duplicate field names and on
// unknown mask types: schemas are declared at startup, so a broken one is a
// programming error.
func NewSchema[T any](fields ...Field[T]) *Schema[T] {
	plans := make([]fieldPlan, len(fields))
	for i, f := range fields {
		plans[i] = fieldPlan{spec: f.Spec()}
		if set := f.Set; set != nil {
			plans[i].set = func(target any, value any) error {
				return set(target.(*T), value)
			}
		}
		if get := f.Get; get != nil {
			plans[i].get = func(target any) (any, bool) {
				return get(target.(*T)), true
			}
		}
	}

	plan, err := newTypePlan(reflect.TypeFor[T](), plans)
	if err != nil {
		panic(err)
	}
	return &Schema[T]{plan: plan}
}

// TypeName returns the name of T.
func (s *Schema[T]) TypeName() string {
	return s.plan.typeName
}

// Fields returns the field metadata in declaration order.
func (s *Schema[T]) Fields() []FieldSpec {
	out := make([]FieldSpec, len(s.plan.fields))
	for i, f := range s.plan.fields {
		out[i] = f.spec
	}
	return out
}

// Field returns the metadata of the named field.
func (s *Schema[T]) Field(name string) (FieldSpec, bool) {
	i, ok := s.plan.byName[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.plan.fields[i].spec, true
}
