package stencil

import (
	"reflect"
	"testing"
)

func TestBagOf_KeepsOrder(t *testing.T) {
	b := BagOf("zeta", 1, "alpha", 2, "mid", 3)

	if got, want := b.Keys(), []string{"zeta", "alpha", "mid"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if got, want := b.Values(), []any{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("Values() = %v, want %v", got, want)
	}
}

func TestBagOf_Panics(t *testing.T) {
	tests := map[string][]any{
		"odd count":      {"a"},
		"non-string key": {1, "a"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("BagOf() should panic")
				}
			}()
			BagOf(args...)
		})
	}
}

func TestBag_SetKeepsPosition(t *testing.T) {
	b := BagOf("a", 1, "b", 2)
	b.Set("a", 10)

	if got := b.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Keys() = %v, want [a b]", got)
	}
	if v, _ := b.Get("a"); v != 10 {
		t.Errorf("Get(a) = %v, want 10", v)
	}
}

func TestBag_HasNilValue(t *testing.T) {
	b := BagOf("present", nil)

	if !b.Has("present") {
		t.Error("Has(present) = false, want true")
	}
	if b.Has("absent") {
		t.Error("Has(absent) = true, want false")
	}
}

func TestBag_Delete(t *testing.T) {
	b := BagOf("a", 1, "b", 2)

	if !b.Delete("a") {
		t.Error("Delete(a) = false, want true")
	}
	if b.Delete("a") {
		t.Error("second Delete(a) = true, want false")
	}
	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}
}

func TestBag_At(t *testing.T) {
	b := BagOf("lat", 49.0, "lng", 32.0)

	tests := []struct {
		i       int
		wantKey string
		wantVal any
		wantOK  bool
	}{
		{0, "lat", 49.0, true},
		{1, "lng", 32.0, true},
		{2, "", nil, false},
		{-1, "", nil, false},
	}

	for _, tt := range tests {
		k, v, ok := b.At(tt.i)
		if k != tt.wantKey || v != tt.wantVal || ok != tt.wantOK {
			t.Errorf("At(%d) = (%q, %v, %v), want (%q, %v, %v)", tt.i, k, v, ok, tt.wantKey, tt.wantVal, tt.wantOK)
		}
	}
}

func TestBag_Each_StopsEarly(t *testing.T) {
	b := BagOf("a", 1, "b", 2, "c", 3)

	var seen []string
	b.Each(func(k string, _ any) bool {
		seen = append(seen, k)
		return k != "b"
	})
	if !reflect.DeepEqual(seen, []string{"a", "b"}) {
		t.Errorf("Each() visited %v, want [a b]", seen)
	}
}

func TestBag_NilReceiver(t *testing.T) {
	var b *Bag

	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
	if _, ok := b.Get("x"); ok {
		t.Error("Get() on nil bag should report missing")
	}
	if len(b.Keys()) != 0 {
		t.Error("Keys() on nil bag should be empty")
	}
}

func TestFromMap_SortsAndNormalizes(t *testing.T) {
	b := FromMap(map[string]any{
		"b": map[string]any{"y": 1, "x": 2},
		"a": []any{map[string]any{"k": "v"}},
	})

	if got := b.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Keys() = %v, want [a b]", got)
	}
	nested, _ := b.Get("b")
	nb, ok := nested.(*Bag)
	if !ok {
		t.Fatalf("Get(b) = %T, want *Bag", nested)
	}
	if got := nb.Keys(); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("nested Keys() = %v, want [x y]", got)
	}
	seq, _ := b.Get("a")
	if _, ok := seq.([]any)[0].(*Bag); !ok {
		t.Errorf("Get(a)[0] = %T, want *Bag", seq.([]any)[0])
	}
}

func TestFromSequence(t *testing.T) {
	b := FromSequence([]any{"x", "y"})

	if got := b.Keys(); !reflect.DeepEqual(got, []string{"0", "1"}) {
		t.Errorf("Keys() = %v, want [0 1]", got)
	}
}

func TestBag_CloneIsIndependent(t *testing.T) {
	b := BagOf("a", 1)
	c := b.Clone()
	c.Set("a", 2).Set("b", 3)

	if v, _ := b.Get("a"); v != 1 {
		t.Errorf("original Get(a) = %v, want 1", v)
	}
	if b.Has("b") {
		t.Error("original gained key b")
	}
}

func TestBag_Merge(t *testing.T) {
	b := BagOf("a", 1, "b", 2).Merge(BagOf("b", 20, "c", 30))

	want := map[string]any{"a": 1, "b": 20, "c": 30}
	if got := b.ToMap(); !reflect.DeepEqual(got, want) {
		t.Errorf("Merge() = %v, want %v", got, want)
	}
	if got := b.Keys(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Keys() = %v, want [a b c]", got)
	}
}

func TestBag_ToMap_Recursive(t *testing.T) {
	b := BagOf("n", BagOf("x", 1), "list", []any{BagOf("y", 2)})

	want := map[string]any{
		"n":    map[string]any{"x": 1},
		"list": []any{map[string]any{"y": 2}},
	}
	if got := b.ToMap(); !reflect.DeepEqual(got, want) {
		t.Errorf("ToMap() = %v, want %v", got, want)
	}
}

func TestBag_String(t *testing.T) {
	if got := BagOf("a", 1, "b", "x").String(); got != "{a: 1, b: x}" {
		t.Errorf("String() = %q, want %q", got, "{a: 1, b: x}")
	}
}
