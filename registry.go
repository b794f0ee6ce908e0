package stencil

import (
	"reflect"
	"sync"
)

// Field tables are immutable for the life of the process, so entries are
// never invalidated; Reset exists for test isolation.
var (
	registry   = make(map[reflect.Type]*typePlan)
	registryMu sync.RWMutex
)

// Register makes s the schema used for T by engines and by Collect,
// replacing any schema previously registered or derived for T.
// Returns s so it can be used in a package-level declaration:
//
//	var countrySchema = stencil.Register(stencil.NewSchema[Country](...))
func Register[T any](s *Schema[T]) *Schema[T] {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s.plan.typ] = s.plan
	return s
}

// SchemaFor returns the registered schema for T, deriving and caching one
// from T's struct tags when none was registered.
func SchemaFor[T any]() (*Schema[T], error) {
	typ := reflect.TypeFor[T]()

	// Fast path: read-lock cache check
	registryMu.RLock()
	if cached, ok := registry[typ]; ok {
		registryMu.RUnlock()
		return &Schema[T]{plan: cached}, nil
	}
	registryMu.RUnlock()

	// Slow path: build and cache with write-lock
	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check pattern
	if cached, ok := registry[typ]; ok {
		return &Schema[T]{plan: cached}, nil
	}

	plan, err := scanPlan[T]()
	if err != nil {
		return nil, err
	}

	registry[typ] = plan
	return &Schema[T]{plan: plan}, nil
}

// planFor is the runtime-typed counterpart of SchemaFor, used when walking
// values whose type is only known by reflection.
func planFor(typ reflect.Type) (*typePlan, error) {
	registryMu.RLock()
	if cached, ok := registry[typ]; ok {
		registryMu.RUnlock()
		return cached, nil
	}
	registryMu.RUnlock()

	registryMu.Lock()
	defer registryMu.Unlock()

	if cached, ok := registry[typ]; ok {
		return cached, nil
	}

	plan, err := scanType(typ)
	if err != nil {
		return nil, err
	}

	registry[typ] = plan
	return plan, nil
}

// Reset clears the schema registry, including explicitly registered schemas.
// This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[reflect.Type]*typePlan)
}
