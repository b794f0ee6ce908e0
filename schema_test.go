package stencil

import (
	"errors"
	"reflect"
	"testing"
)

type schemaPlace struct {
	Name  string  `stencil:"name"`
	Lat   float64 `stencil:"lat" stencil.validate:"required"`
	Owner string  `stencil:"owner" stencil.mask:"name"`
	Skip  string  `stencil:"-"`
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name          string
		spec          FieldSpec
		wantKey       string
		wantValidator string
	}{
		{"explicit key", FieldSpec{Name: "Coordinates", Key: "latlng"}, "latlng", ""},
		{"falls back to name", FieldSpec{Name: "Capital"}, "Capital", ""},
		{"validator kept", FieldSpec{Name: "Name", Key: "name", Validator: "country-name"}, "name", "country-name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, validator := Resolve(tt.spec)
			if key != tt.wantKey || validator != tt.wantValidator {
				t.Errorf("Resolve() = (%q, %q), want (%q, %q)", key, validator, tt.wantKey, tt.wantValidator)
			}
		})
	}
}

func TestNewSchema_Fields(t *testing.T) {
	s := NewSchema[schemaPlace](
		Field[schemaPlace]{Name: "Name", Key: "name"},
		Field[schemaPlace]{Name: "Lat", Key: "lat", Validator: "required"},
	)

	want := []FieldSpec{
		{Name: "Name", Key: "name"},
		{Name: "Lat", Key: "lat", Validator: "required"},
	}
	if got := s.Fields(); !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %v, want %v", got, want)
	}
	if s.TypeName() != "schemaPlace" {
		t.Errorf("TypeName() = %q, want schemaPlace", s.TypeName())
	}

	f, ok := s.Field("Lat")
	if !ok || f.Validator != "required" {
		t.Errorf("Field(Lat) = (%v, %v)", f, ok)
	}
	if _, ok := s.Field("Missing"); ok {
		t.Error("Field(Missing) should not be found")
	}
}

func TestNewSchema_Panics(t *testing.T) {
	tests := map[string][]Field[schemaPlace]{
		"empty name": {{Key: "x"}},
		"duplicate":  {{Name: "Name"}, {Name: "Name"}},
		"bad mask":   {{Name: "Owner", Mask: "iban"}},
	}

	for name, fields := range tests {
		t.Run(name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, ErrMetadata) {
					t.Errorf("NewSchema() panic = %v, want MetadataError", r)
				}
			}()
			NewSchema[schemaPlace](fields...)
		})
	}
}

func TestSetter_Coerces(t *testing.T) {
	set := Setter(func(p *schemaPlace, v float64) { p.Lat = v })

	var p schemaPlace
	if err := set(&p, int64(49)); err != nil {
		t.Fatalf("Setter() error: %v", err)
	}
	if p.Lat != 49 {
		t.Errorf("Lat = %v, want 49", p.Lat)
	}
	if err := set(&p, "north"); err == nil {
		t.Error("Setter() should reject a non-numeric string")
	}
}

func TestGetter(t *testing.T) {
	get := Getter(func(p *schemaPlace) string { return p.Name })
	if got := get(&schemaPlace{Name: "Kyiv"}); got != "Kyiv" {
		t.Errorf("Getter() = %v, want Kyiv", got)
	}
}

func TestSchemaFor_FromTags(t *testing.T) {
	Reset()
	defer Reset()

	s, err := SchemaFor[schemaPlace]()
	if err != nil {
		t.Fatalf("SchemaFor() error: %v", err)
	}

	lat, ok := s.Field("Lat")
	if !ok || lat.Key != "lat" || lat.Validator != "required" {
		t.Errorf("Field(Lat) = %+v", lat)
	}
	owner, _ := s.Field("Owner")
	if owner.Mask != MaskName {
		t.Errorf("Owner mask = %q, want name", owner.Mask)
	}
	if _, ok := s.Field("Skip"); ok {
		t.Error("field tagged - should be left out")
	}
}

func TestSchemaFor_Caches(t *testing.T) {
	Reset()
	defer Reset()

	a, err := SchemaFor[schemaPlace]()
	if err != nil {
		t.Fatalf("SchemaFor() error: %v", err)
	}
	b, _ := SchemaFor[schemaPlace]()
	if a.plan != b.plan {
		t.Error("SchemaFor() should return the cached plan")
	}
}

func TestSchemaFor_NotStruct(t *testing.T) {
	_, err := SchemaFor[int]()
	if !errors.Is(err, ErrMetadata) {
		t.Errorf("SchemaFor[int]() error = %v, want ErrMetadata", err)
	}
}

func TestRegister_Overrides(t *testing.T) {
	Reset()
	defer Reset()

	if _, err := SchemaFor[schemaPlace](); err != nil {
		t.Fatalf("SchemaFor() error: %v", err)
	}

	explicit := Register(NewSchema[schemaPlace](
		Field[schemaPlace]{Name: "Name", Key: "title"},
	))

	got, _ := SchemaFor[schemaPlace]()
	if got.plan != explicit.plan {
		t.Fatal("SchemaFor() should return the registered schema")
	}
	if f, _ := got.Field("Name"); f.Key != "title" {
		t.Errorf("Name key = %q, want title", f.Key)
	}

	Reset()
	again, _ := SchemaFor[schemaPlace]()
	if f, _ := again.Field("Name"); f.Key != "name" {
		t.Errorf("after Reset() Name key = %q, want name", f.Key)
	}
}
