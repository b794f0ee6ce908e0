package stencil

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Bag is an ordered, string-keyed collection of loosely typed values.
// It is the universal input of an Engine: decoded JSON, a database row
// or a form payload all become a Bag before mapping.
//
// Values are typically scalars (nil, bool, numbers, strings), nested bags,
// or sequences ([]any) of those. Keys are unique; insertion order is kept so
// tuple-like bags can be read positionally with At.
//
// A Bag is not safe for concurrent mutation.
type Bag struct {
	entries *orderedmap.OrderedMap[string, any]
}

// NewBag returns an empty bag.
func NewBag() *Bag {
	return &Bag{entries: orderedmap.New[string, any]()}
}

// BagOf builds a bag from alternating key/value arguments:
//
//	stencil.BagOf("name", "Ukraine", "capital", "Kyiv")
//
// It panics if a key is not a string or the argument count is odd.
func BagOf(kv ...any) *Bag {
	if len(kv)%2 != 0 {
		panic("stencil: BagOf requires an even number of arguments")
	}
	b := NewBag()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("stencil: BagOf key %d is %T, not string", i/2, kv[i]))
		}
		b.Set(key, kv[i+1])
	}
	return b
}

// FromMap builds a bag from a Go map. Go maps carry no order, so keys are
// inserted in sorted order to keep the result deterministic. Nested
// map[string]any values are converted recursively, as are maps inside
// []any sequences.
func FromMap(m map[string]any) *Bag {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := NewBag()
	for _, k := range keys {
		b.Set(k, normalizeValue(m[k]))
	}
	return b
}

// FromSequence builds a bag from a sequence, keyed by position ("0", "1", ...).
func FromSequence(items []any) *Bag {
	b := NewBag()
	for i, item := range items {
		b.Set(strconv.Itoa(i), normalizeValue(item))
	}
	return b
}

func normalizeValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return FromMap(tv)
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

// Len returns the number of entries.
func (b *Bag) Len() int {
	if b == nil || b.entries == nil {
		return 0
	}
	return b.entries.Len()
}

// Get returns the value stored under key.
func (b *Bag) Get(key string) (any, bool) {
	if b == nil || b.entries == nil {
		return nil, false
	}
	return b.entries.Get(key)
}

// Has reports whether key is present, even when its value is nil.
func (b *Bag) Has(key string) bool {
	_, ok := b.Get(key)
	return ok
}

// Set stores value under key. An existing key keeps its position.
// Returns the bag for chaining.
func (b *Bag) Set(key string, value any) *Bag {
	if b.entries == nil {
		b.entries = orderedmap.New[string, any]()
	}
	b.entries.Set(key, value)
	return b
}

// Delete removes key and reports whether it was present.
func (b *Bag) Delete(key string) bool {
	if b == nil || b.entries == nil {
		return false
	}
	_, ok := b.entries.Delete(key)
	return ok
}

// At returns the key and value at position i in insertion order.
func (b *Bag) At(i int) (string, any, bool) {
	if i < 0 || i >= b.Len() {
		return "", nil, false
	}
	pair := b.entries.Oldest()
	for ; i > 0; i-- {
		pair = pair.Next()
	}
	return pair.Key, pair.Value, true
}

// Keys returns the keys in insertion order.
func (b *Bag) Keys() []string {
	keys := make([]string, 0, b.Len())
	b.Each(func(k string, _ any) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Values returns the values in insertion order.
func (b *Bag) Values() []any {
	values := make([]any, 0, b.Len())
	b.Each(func(_ string, v any) bool {
		values = append(values, v)
		return true
	})
	return values
}

// Each calls fn for every entry in order until fn returns false.
func (b *Bag) Each(fn func(key string, value any) bool) {
	if b.Len() == 0 {
		return
	}
	for pair := b.entries.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns a shallow copy: entries are copied, values are shared.
func (b *Bag) Clone() *Bag {
	out := NewBag()
	b.Each(func(k string, v any) bool {
		out.Set(k, v)
		return true
	})
	return out
}

// Merge copies every entry of other into b, overwriting existing keys.
// Returns b for chaining.
func (b *Bag) Merge(other *Bag) *Bag {
	other.Each(func(k string, v any) bool {
		b.Set(k, v)
		return true
	})
	return b
}

// ToMap converts the bag into plain Go maps and slices, recursively.
// Order is lost.
func (b *Bag) ToMap() map[string]any {
	out := make(map[string]any, b.Len())
	b.Each(func(k string, v any) bool {
		out[k] = plainValue(v)
		return true
	})
	return out
}

func plainValue(v any) any {
	switch tv := v.(type) {
	case *Bag:
		return tv.ToMap()
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = plainValue(item)
		}
		return out
	case []*Bag:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = item.ToMap()
		}
		return out
	default:
		return v
	}
}

// String renders the bag in order, for debugging.
func (b *Bag) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	b.Each(func(k string, v any) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%s: %v", k, v)
		return true
	})
	sb.WriteByte('}')
	return sb.String()
}
