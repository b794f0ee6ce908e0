package stencil

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestIsScalar(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, true},
		{"s", true},
		{true, true},
		{int64(1), true},
		{uint8(1), true},
		{1.5, true},
		{json.Number("1"), true},
		{time.Now(), true},
		{[]byte("x"), true},
		{[]any{1}, false},
		{NewBag(), false},
		{struct{}{}, false},
		{func() {}, false},
	}

	for _, tt := range tests {
		if got := isScalar(tt.v); got != tt.want {
			t.Errorf("isScalar(%T) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestReshape(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *Bag
	}{
		{"bag passes through", BagOf("lat", 1.0), BagOf("lat", 1.0)},
		{"nil bag", (*Bag)(nil), NewBag()},
		{"plain map", map[string]any{"b": 2, "a": 1}, BagOf("a", 1, "b", 2)},
		{"sequence keyed by position", []any{49.0, 32.0}, BagOf("0", 49.0, "1", 32.0)},
		{"typed slice", []float64{49, 32}, BagOf("0", 49.0, "1", 32.0)},
		{"scalar wrapped", "UAH", BagOf("Currency", "UAH")},
		{"nil scalar wrapped", nil, BagOf("Currency", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reshape("Country", "Currency", tt.in)
			if err != nil {
				t.Fatalf("reshape() error: %v", err)
			}
			if !reflect.DeepEqual(got.Keys(), tt.want.Keys()) || !reflect.DeepEqual(got.Values(), tt.want.Values()) {
				t.Errorf("reshape() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReshape_Mismatch(t *testing.T) {
	tests := map[string]any{
		"struct":              struct{ A int }{1},
		"function":            func() {},
		"sequence of structs": []any{struct{}{}},
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := reshape("Country", "Currency", in)
			var se *ShapeError
			if !errors.As(err, &se) {
				t.Fatalf("reshape() error = %v, want ShapeError", err)
			}
			if se.Type != "Country" || se.Field != "Currency" {
				t.Errorf("ShapeError = %+v", se)
			}
		})
	}
}

func TestListItems(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []any
	}{
		{"nil", nil, nil},
		{"slice", []any{1, 2}, []any{1, 2}},
		{"typed slice", []string{"a"}, []any{"a"}},
		{"bag values", BagOf("x", 1, "y", 2), []any{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := listItems("Currency", tt.in)
			if err != nil {
				t.Fatalf("listItems() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("listItems() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := listItems("Currency", "UAH"); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("listItems(scalar) error = %v, want ErrShapeMismatch", err)
	}
}
