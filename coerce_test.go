package stencil

import (
	"testing"
	"time"
)

func TestCoerce(t *testing.T) {
	n, err := Coerce[int](float64(3))
	if err != nil || n != 3 {
		t.Errorf("Coerce[int](3.0) = (%v, %v), want 3", n, err)
	}

	s, err := Coerce[string](int64(42))
	if err != nil || s != "42" {
		t.Errorf("Coerce[string](42) = (%q, %v), want 42", s, err)
	}

	when, err := Coerce[time.Time]("2024-01-02T03:04:05Z")
	if err != nil {
		t.Fatalf("Coerce[time.Time]() error: %v", err)
	}
	if want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC); !when.Equal(want) {
		t.Errorf("Coerce[time.Time]() = %v, want %v", when, want)
	}
}

func TestCoerce_Nil(t *testing.T) {
	n, err := Coerce[int](nil)
	if err != nil || n != 0 {
		t.Errorf("Coerce[int](nil) = (%v, %v), want 0", n, err)
	}
	p, err := Coerce[*string](nil)
	if err != nil || p != nil {
		t.Errorf("Coerce[*string](nil) = (%v, %v), want nil", p, err)
	}
}

func TestCoerce_Pointers(t *testing.T) {
	p, err := Coerce[*string]("Kyiv")
	if err != nil || p == nil || *p != "Kyiv" {
		t.Errorf("Coerce[*string](Kyiv) = (%v, %v)", p, err)
	}

	v := "Lviv"
	s, err := Coerce[string](&v)
	if err != nil || s != "Lviv" {
		t.Errorf("Coerce[string](&v) = (%q, %v), want Lviv", s, err)
	}
}

func TestCoerce_BagIntoStruct(t *testing.T) {
	type point struct {
		Lat float64 `stencil:"lat"`
		Lng float64 `stencil:"lng"`
	}

	p, err := Coerce[point](BagOf("lat", int64(49), "lng", 32.5))
	if err != nil {
		t.Fatalf("Coerce[point]() error: %v", err)
	}
	if p.Lat != 49 || p.Lng != 32.5 {
		t.Errorf("Coerce[point]() = %+v", p)
	}
}

func TestCoerce_Error(t *testing.T) {
	if _, err := Coerce[int]("many"); err == nil {
		t.Error("Coerce[int](many) should return error")
	}
}
