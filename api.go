// Package stencil maps loosely typed key/value bags onto strongly typed Go values.
//
// A Bag (decoded JSON, a database row, a form payload) is stamped onto a
// target struct field by field, driven by per-field metadata declared once
// per target type: the external key to read, an optional validator, and an
// optional mask used when walking the value back out.
//
// # Schemas
//
// Field metadata lives in a side table built once per type. It can be
// declared explicitly, as an ordered list of (field, setter) pairs:
//
//	var countrySchema = stencil.NewSchema[Country](
//	    stencil.Field[Country]{Name: "Name", Validator: "country-name",
//	        Set: stencil.Setter(func(c *Country, v string) { c.Name = v })},
//	    stencil.Field[Country]{Name: "Currency", Key: "currencies",
//	        Set: stencil.Setter(func(c *Country, v []*Currency) { c.Currency = v })},
//	)
//
// or derived from struct tags the first time the type is used:
//
//	type Currency struct {
//	    Code string    `stencil:"code" stencil.validate:"required"`
//	    Date time.Time `stencil:"date"`
//	}
//
// A field without a key falls back to its own name.
//
// # Basic Usage
//
//	country, err := stencil.New(bag, &Country{}).
//	    SetNestedMapper("Currency", currencyMapper).
//	    SetNestedMapper("Coordinates", coordinatesMapper).
//	    MapSingle()
//
//	currencies, err := stencil.New(list, &Currency{}).
//	    BindProperty("date", time.Now()).
//	    MapList()
//
// # Field Pass
//
// For every field in declaration order the engine resolves the external key,
// skips the field if the bag lacks that key, runs the validator (failing the
// whole call if it rejects), hands the value to a nested mapper when one is
// registered, and finally calls the field's setter. Fields without a setter
// are skipped silently.
//
// # Validators
//
// Validators are referenced by identifier and built per value:
//
//	engine.SetValidator("iso4217", stencil.Rule("required,len=3,uppercase"))
//
// Built-in identifiers: required, trim, sha256, bcrypt.
//
// # Collecting
//
// Collect walks a mapped value back into a Bag using the same schema, applying
// masks (email, phone, card, name, uuid) to fields that declare one.
//
// # Codec Providers
//
// The following codec implementations are available as subpackages and all
// preserve key order:
//
//   - json - JSON encoding (application/json)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
//
// # Concurrency
//
// Mapping is synchronous. An Engine and the nested mappers attached to it
// carry per-call input and must not be shared between goroutines. Schemas
// and the schema registry are safe for concurrent use.
package stencil

// Mapper is implemented by every mapping unit, top-level or nested.
//
// SetInput stores the data the mapper will work on; calling it again
// replaces the previous input. Map produces either one value or a slice of
// values depending on the unit.
type Mapper interface {
	SetInput(input any)
	Map() (any, error)
}

// MapperFunc adapts a function to the Mapper interface.
// The function receives whatever was last passed to SetInput.
type MapperFunc func(input any) (any, error)

// funcMapper carries the input for a MapperFunc.
type funcMapper struct {
	fn    MapperFunc
	input any
}

// Func wraps fn as a Mapper.
func Func(fn MapperFunc) Mapper {
	return &funcMapper{fn: fn}
}

func (m *funcMapper) SetInput(input any) { m.input = input }

func (m *funcMapper) Map() (any, error) { return m.fn(m.input) }

// Validator checks a single candidate value.
//
// Valid must not have side effects beyond what the constructor already did.
// Value returns what should actually be committed, which may be a normalized
// form of the input. The engine, not the validator, raises on invalidity.
type Validator interface {
	Valid() bool
	Value() any
}

// ValidatorFactory constructs a Validator around a raw value.
type ValidatorFactory func(raw any) Validator

// Codec converts between raw payloads and bags.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Decode parses data. Objects become *Bag with source key order kept,
	// arrays become []any.
	Decode(data []byte) (any, error)

	// Encode writes v, which may hold bags, sequences and scalars.
	Encode(v any) ([]byte, error)
}
