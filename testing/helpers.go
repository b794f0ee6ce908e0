// Package testing provides test utilities for stencil.
package testing

import (
	"sync"
	"testing"

	"github.com/zoobzio/stencil"
)

// AlwaysValid is a validator factory that accepts every value unchanged.
func AlwaysValid(raw any) stencil.Validator {
	return stencil.Check(true, raw)
}

// NeverValid is a validator factory that rejects every value.
func NeverValid(raw any) stencil.Validator {
	return stencil.Check(false, raw)
}

// RecordingMapper remembers every input it is handed and answers with Result,
// or with the input itself when Result is nil.
type RecordingMapper struct {
	mu     sync.Mutex
	input  any
	Inputs []any
	Result any
	Err    error
}

// SetInput implements stencil.Mapper.
func (m *RecordingMapper) SetInput(input any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.input = input
	m.Inputs = append(m.Inputs, input)
}

// Map implements stencil.Mapper.
func (m *RecordingMapper) Map() (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}
	return m.input, nil
}

// Calls returns how many inputs the mapper has seen.
func (m *RecordingMapper) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Inputs)
}

// StaticMapper returns a mapper that ignores its input and always yields v.
func StaticMapper(v any) stencil.Mapper {
	return stencil.Func(func(any) (any, error) {
		return v, nil
	})
}

// MustMapSingle runs MapSingle and fails the test on error.
func MustMapSingle[T any](tb testing.TB, e *stencil.Engine[T]) *T {
	tb.Helper()
	out, err := e.MapSingle()
	if err != nil {
		tb.Fatalf("MapSingle() error: %v", err)
	}
	return out
}

// MustMapList runs MapList and fails the test on error.
func MustMapList[T any](tb testing.TB, e *stencil.Engine[T]) []*T {
	tb.Helper()
	out, err := e.MapList()
	if err != nil {
		tb.Fatalf("MapList() error: %v", err)
	}
	return out
}

// SimpleUser is a test type with no validation or mask tags.
type SimpleUser struct {
	ID   string `stencil:"id"`
	Name string `stencil:"name"`
}

// Clone implements stencil.Cloner[SimpleUser].
func (u SimpleUser) Clone() SimpleUser { return u }

// Account is a test type exercising validators and masks.
type Account struct {
	ID     string   `stencil:"id" stencil.validate:"required"`
	Email  string   `stencil:"email" stencil.validate:"trim" stencil.mask:"email"`
	Card   string   `stencil:"card" stencil.mask:"card"`
	Tags   []string `stencil:"tags"`
	Secret string   `stencil:"-"`
}

// Clone implements stencil.Cloner[Account].
func (a Account) Clone() Account {
	tags := make([]string, len(a.Tags))
	copy(tags, a.Tags)
	return Account{ID: a.ID, Email: a.Email, Card: a.Card, Tags: tags, Secret: a.Secret}
}
