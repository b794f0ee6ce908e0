// Package yaml provides an order-preserving YAML codec for stencil bags.
package yaml

import (
	"fmt"

	"github.com/zoobzio/stencil"
	"gopkg.in/yaml.v3"
)

// yamlCodec implements stencil.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() stencil.Codec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Decode parses the first YAML document. Mappings become bags in document
// order, sequences become []any and aliases are expanded. Documents that
// expand mostly through aliases, or whose anchors contain themselves, are
// rejected.
func (c *yamlCodec) Decode(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, stencil.NewCodecError(stencil.ErrDecode, err)
	}
	if doc.Kind == 0 {
		return nil, nil
	}

	v, err := (&expander{active: make(map[*yaml.Node]bool)}).fromNode(&doc)
	if err != nil {
		return nil, stencil.NewCodecError(stencil.ErrDecode, err)
	}
	return v, nil
}

// Encode writes v as YAML, keeping bag key order.
func (c *yamlCodec) Encode(v any) ([]byte, error) {
	n, err := toNode(v)
	if err != nil {
		return nil, stencil.NewCodecError(stencil.ErrEncode, err)
	}
	data, err := yaml.Marshal(n)
	if err != nil {
		return nil, stencil.NewCodecError(stencil.ErrEncode, err)
	}
	return data, nil
}

// expander converts a node tree, bounding alias expansion the way yaml.v3
// bounds it when decoding into Go values.
type expander struct {
	nodes   int
	aliased int // nodes produced while expanding an alias
	depth   int
	active  map[*yaml.Node]bool
}

// allowedAliasRatio mirrors yaml.v3: small documents may be mostly aliases,
// large ones may not.
func allowedAliasRatio(nodes int) float64 {
	switch {
	case nodes <= 400_000:
		return 0.99
	case nodes >= 4_000_000:
		return 0.10
	}
	return 0.99 - 0.89*(float64(nodes-400_000)/3_600_000)
}

func (e *expander) fromNode(n *yaml.Node) (any, error) {
	e.nodes++
	if e.depth > 0 {
		e.aliased++
	}
	if e.aliased > 100 && e.nodes > 1000 && float64(e.aliased)/float64(e.nodes) > allowedAliasRatio(e.nodes) {
		return nil, fmt.Errorf("document contains excessive aliasing")
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return e.fromNode(n.Content[0])

	case yaml.MappingNode:
		bag := stencil.NewBag()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key must be a scalar", k.Line)
			}
			v, err := e.fromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			bag.Set(k.Value, v)
		}
		return bag, nil

	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := e.fromNode(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil

	case yaml.AliasNode:
		if e.active[n.Alias] {
			return nil, fmt.Errorf("line %d: anchor %q contains itself", n.Line, n.Value)
		}
		e.active[n.Alias] = true
		e.depth++
		defer func() {
			e.depth--
			delete(e.active, n.Alias)
		}()
		return e.fromNode(n.Alias)

	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		if i, ok := v.(int); ok {
			return int64(i), nil
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
}

func toNode(v any) (*yaml.Node, error) {
	switch tv := v.(type) {
	case *stencil.Bag:
		if tv == nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
		}
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		tv.Each(func(key string, value any) bool {
			var vn *yaml.Node
			if vn, err = toNode(value); err != nil {
				return false
			}
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				vn,
			)
			return true
		})
		if err != nil {
			return nil, err
		}
		return n, nil

	case []*stencil.Bag:
		items := make([]any, len(tv))
		for i, b := range tv {
			items[i] = b
		}
		return toNode(items)

	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range tv {
			in, err := toNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, in)
		}
		return n, nil
	}

	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}
