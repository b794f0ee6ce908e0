package stencil

import (
	"context"
	"reflect"
	"time"
)

// binding is a synthetic key merged into every bag before its field pass.
type binding struct {
	key    string
	value  any
	mapper Mapper
}

// Engine maps bags onto values of type T.
//
// An Engine holds per-call state (its input, the nested mappers' inputs and
// the accumulator) and must not be used from more than one goroutine at a
// time. Build one engine per mapping operation, or per goroutine.
type Engine[T any] struct {
	ctx       context.Context
	input     any
	target    *T
	schema    *Schema[T]
	schemaErr error
	typeName  string
	factory   func() *T
	list      bool

	nested     map[string]Mapper
	bindings   []binding
	validators map[string]ValidatorFactory

	// accumulator, reset at the start of every mapping call
	mapped []*T
}

// Option configures an Engine.
type Option[T any] func(*Engine[T])

// WithSchema maps with s instead of the registered or tag-derived schema for T.
func WithSchema[T any](s *Schema[T]) Option[T] {
	return func(e *Engine[T]) {
		e.schema = s
		e.schemaErr = nil
	}
}

// WithFactory sets how MapList obtains a fresh target for each bag.
// By default each item starts as a copy of the prototype passed to New.
func WithFactory[T any](fn func() *T) Option[T] {
	return func(e *Engine[T]) {
		e.factory = fn
	}
}

// WithContext sets the context attached to emitted signals.
func WithContext[T any](ctx context.Context) Option[T] {
	return func(e *Engine[T]) {
		e.ctx = ctx
	}
}

// AsList makes Map behave like MapList. Use it when the engine itself is
// registered as a nested mapper for a sequence-valued field.
func AsList[T any]() Option[T] {
	return func(e *Engine[T]) {
		e.list = true
	}
}

// New creates an engine that maps input onto target.
//
// input is a *Bag (or map[string]any) for MapSingle, and a *Bag of bags or a
// slice of bags for MapList. target is the prototype: MapSingle mutates it in
// place, MapList starts every item from a copy of it. A nil target is
// replaced by a new zero T.
func New[T any](input any, target *T, opts ...Option[T]) *Engine[T] {
	if target == nil {
		target = new(T)
	}

	e := &Engine[T]{
		ctx:        context.Background(),
		input:      input,
		target:     target,
		nested:     make(map[string]Mapper),
		validators: make(map[string]ValidatorFactory),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.schema == nil {
		e.schema, e.schemaErr = SchemaFor[T]()
	}
	if e.schema != nil {
		e.typeName = e.schema.TypeName()
	} else {
		e.typeName = typeNameOf(reflect.TypeFor[T]())
	}

	emitEngineCreated(e.ctx, e.typeName)
	return e
}

// SetInput replaces the engine's input. Together with Map it makes an
// Engine usable as a nested Mapper.
func (e *Engine[T]) SetInput(input any) {
	e.input = input
}

// Map runs MapList when the engine was built with AsList. Otherwise it maps
// the input onto a fresh copy of the prototype, so an engine used as a nested
// mapper returns a distinct value on every call.
func (e *Engine[T]) Map() (any, error) {
	if e.list {
		return e.MapList()
	}
	return e.mapSingle(e.fresh())
}

// SetNestedMapper delegates the named target field to m: the field's value is
// reshaped into a bag, handed to m, and m's result is what gets set.
// Returns the engine for chaining.
func (e *Engine[T]) SetNestedMapper(field string, m Mapper) *Engine[T] {
	e.nested[field] = m
	return e
}

// BindProperty merges key into every bag before its field pass, overwriting
// any value the bag already holds. When value is a Mapper it is handed the
// bag being mapped and its result becomes the bound value; otherwise value is
// bound as-is. Bindings apply in registration order; binding the same key
// again replaces the earlier binding.
// Returns the engine for chaining.
func (e *Engine[T]) BindProperty(key string, value any) *Engine[T] {
	b := binding{key: key, value: value}
	if m, ok := value.(Mapper); ok {
		b.mapper = m
	}
	for i := range e.bindings {
		if e.bindings[i].key == key {
			e.bindings[i] = b
			return e
		}
	}
	e.bindings = append(e.bindings, b)
	return e
}

// SetValidator registers a validator under ref for this engine, taking
// precedence over a built-in with the same identifier.
// Returns the engine for chaining.
func (e *Engine[T]) SetValidator(ref string, f ValidatorFactory) *Engine[T] {
	e.validators[ref] = f
	return e
}

// Validate checks that the schema is usable, that every referenced validator
// is registered, and that every nested mapper targets a known field.
//
// Validation also runs at the start of every mapping call. Calling Validate
// explicitly allows catching configuration errors at startup.
func (e *Engine[T]) Validate() error {
	if e.schemaErr != nil {
		return e.schemaErr
	}
	for _, f := range e.schema.plan.fields {
		if f.spec.Validator == "" {
			continue
		}
		if _, ok := e.validator(f.spec.Validator); !ok {
			return newConfigError(ErrMissingValidator, f.spec.Validator, f.spec.Name)
		}
	}
	for name := range e.nested {
		if _, ok := e.schema.plan.byName[name]; !ok {
			return newConfigError(ErrUnknownField, "", name)
		}
	}
	return nil
}

// validator resolves ref against the engine's registrations, then the built-ins.
func (e *Engine[T]) validator(ref string) (ValidatorFactory, bool) {
	if f, ok := e.validators[ref]; ok {
		return f, true
	}
	f, ok := builtinValidators[ref]
	return f, ok
}

// MapSingle maps the input bag onto the target and returns the target.
// Fields whose key is missing from the bag are left untouched, so a bag that
// matches nothing returns the prototype unchanged.
func (e *Engine[T]) MapSingle() (*T, error) {
	return e.mapSingle(e.target)
}

func (e *Engine[T]) mapSingle(target *T) (*T, error) {
	start := time.Now()
	emitMapStart(e.ctx, e.typeName, modeSingle)

	var retErr error
	var fieldsSet int
	defer func() {
		emitMapComplete(e.ctx, e.typeName, modeSingle, len(e.mapped), fieldsSet, time.Since(start), retErr)
		e.mapped = nil
	}()

	e.mapped = e.mapped[:0]

	if err := e.Validate(); err != nil {
		retErr = err
		return nil, retErr
	}

	bag, err := e.singleBag()
	if err != nil {
		retErr = err
		return nil, retErr
	}

	fieldsSet, retErr = e.mapBag(bag, target)
	if retErr != nil {
		return nil, retErr
	}

	e.mapped = append(e.mapped, target)
	return e.mapped[0], nil
}

// MapList maps every bag of the input onto its own fresh target, in order.
//
// Each item starts from a copy of the prototype (via Clone when T implements
// Cloner[T], a shallow copy otherwise, or the WithFactory function), so no
// two results alias the same value. The call is all-or-nothing: if any item
// fails, no results are returned.
func (e *Engine[T]) MapList() ([]*T, error) {
	start := time.Now()
	emitMapStart(e.ctx, e.typeName, modeList)

	var retErr error
	var fieldsSet int
	var items int
	defer func() {
		emitMapComplete(e.ctx, e.typeName, modeList, items, fieldsSet, time.Since(start), retErr)
	}()

	e.mapped = nil

	if err := e.Validate(); err != nil {
		retErr = err
		return nil, retErr
	}

	inputs, err := listItems(e.typeName, e.input)
	if err != nil {
		retErr = err
		return nil, retErr
	}

	for i, item := range inputs {
		bag, ok := asBag(item)
		if !ok {
			e.mapped = nil
			retErr = &ShapeError{Type: e.typeName, Index: i, Got: typeString(item)}
			return nil, retErr
		}

		target := e.fresh()
		n, err := e.mapBag(bag, target)
		fieldsSet += n
		if err != nil {
			e.mapped = nil
			retErr = err
			return nil, retErr
		}
		e.mapped = append(e.mapped, target)
	}

	mapped := e.mapped
	e.mapped = nil
	items = len(mapped)
	if mapped == nil {
		mapped = []*T{}
	}
	return mapped, nil
}

// singleBag returns the input of a single pass as a bag.
func (e *Engine[T]) singleBag() (*Bag, error) {
	if e.input == nil {
		return NewBag(), nil
	}
	if b, ok := asBag(e.input); ok {
		return b, nil
	}
	if items, ok := asSequence(e.input); ok {
		return FromSequence(items), nil
	}
	return nil, &ShapeError{Type: e.typeName, Got: typeString(e.input)}
}

// fresh returns a new target for one list item or one nested Map call.
func (e *Engine[T]) fresh() *T {
	if e.factory != nil {
		return e.factory()
	}
	if c, ok := any(*e.target).(Cloner[T]); ok {
		t := c.Clone()
		return &t
	}
	t := new(T)
	*t = *e.target
	return t
}

// applyBindings returns a copy of bag with every binding merged in.
func (e *Engine[T]) applyBindings(bag *Bag) (*Bag, error) {
	if len(e.bindings) == 0 {
		return bag, nil
	}

	bound := bag.Clone()
	for _, b := range e.bindings {
		if b.mapper == nil {
			bound.Set(b.key, b.value)
			continue
		}
		b.mapper.SetInput(bound)
		v, err := b.mapper.Map()
		if err != nil {
			return nil, err
		}
		bound.Set(b.key, v)
	}
	return bound, nil
}

// mapBag runs one field pass of bag over target and returns how many
// setters were called.
func (e *Engine[T]) mapBag(bag *Bag, target *T) (int, error) {
	bound, err := e.applyBindings(bag)
	if err != nil {
		return 0, err
	}

	set := 0
	for _, f := range e.schema.plan.fields {
		key, ref := Resolve(f.spec)

		value, ok := bound.Get(key)
		if !ok {
			continue
		}

		if ref != "" {
			factory, _ := e.validator(ref)
			v := factory(value)
			if !v.Valid() {
				emitFieldRejected(e.ctx, e.typeName, f.spec.Name, ref)
				return set, &ValidationError{Type: e.typeName, Field: f.spec.Name, Validator: ref, Value: value}
			}
			value = v.Value()
		}

		if m, ok := e.nested[f.spec.Name]; ok {
			in, err := reshape(e.typeName, f.spec.Name, value)
			if err != nil {
				return set, err
			}
			m.SetInput(in)
			if value, err = m.Map(); err != nil {
				return set, err
			}
		}

		if f.set == nil {
			continue
		}
		if err := f.set(target, value); err != nil {
			return set, newFieldError(e.typeName, f.spec.Name, err)
		}
		set++
	}

	return set, nil
}

func typeString(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
