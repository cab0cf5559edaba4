package schema

import (
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/hookgen/pkg/ir"
	"github.com/blimu-dev/hookgen/pkg/openapi"
)

// shape computes the node for a schema body without assigning its identity.
// Nullability wraps whatever shape the rest of the schema describes.
func (b *builder) shape(s *openapi3.Schema, ptr string) (ir.SchemaNode, error) {
	types, nullable := splitTypes(s)
	inner, err := b.baseShape(s, types, ptr)
	if err != nil {
		return ir.SchemaNode{}, err
	}
	if !nullable || inner.Kind == ir.KindUnknown {
		return inner, nil
	}
	n := ir.NewNode("", ir.KindNullable)
	n.Inner = b.intern(inner)
	return n, nil
}

// splitTypes separates "null" from the declared types. OpenAPI 3.0
// "nullable: true" and an enum listing null mean the same thing.
func splitTypes(s *openapi3.Schema) ([]string, bool) {
	nullable := s.Nullable
	var types []string
	if s.Type != nil {
		for _, t := range s.Type.Slice() {
			if t == openapi3.TypeNull {
				nullable = true
				continue
			}
			types = append(types, t)
		}
	}
	for _, v := range s.Enum {
		if v == nil {
			nullable = true
		}
	}
	return types, nullable
}

func (b *builder) baseShape(s *openapi3.Schema, types []string, ptr string) (ir.SchemaNode, error) {
	switch {
	case s.Not != nil:
		b.warn(openapi.Pointer(ptr, "not"), "not", "negated schemas have no representation")
		return ir.NewNode("", ir.KindUnknown), nil
	case len(s.OneOf) > 0:
		return b.union(s, s.OneOf, ir.UnionOneOf, openapi.Pointer(ptr, "oneOf"))
	case len(s.AnyOf) > 0:
		return b.union(s, s.AnyOf, ir.UnionAnyOf, openapi.Pointer(ptr, "anyOf"))
	case len(s.AllOf) > 0:
		return b.intersection(s, ptr)
	case len(s.Enum) > 0:
		return enumShape(s, types), nil
	}

	switch len(types) {
	case 0:
		if len(s.Properties) > 0 || s.AdditionalProperties.Schema != nil {
			return b.object(s, ptr)
		}
		if s.Items != nil {
			return b.array(s, ptr)
		}
		return ir.NewNode("", ir.KindUnknown), nil
	case 1:
		return b.typed(s, types[0], ptr)
	}

	// Several non-null types: one variant per type, in declared order.
	n := ir.NewNode("", ir.KindUnion)
	n.UnionMode = ir.UnionOneOf
	for _, t := range types {
		v, err := b.typed(s, t, ptr)
		if err != nil {
			return ir.SchemaNode{}, err
		}
		n.Variants = append(n.Variants, b.intern(v))
	}
	return n, nil
}

func (b *builder) typed(s *openapi3.Schema, t, ptr string) (ir.SchemaNode, error) {
	switch t {
	case openapi3.TypeString, openapi3.TypeInteger, openapi3.TypeNumber, openapi3.TypeBoolean:
		n := ir.NewNode("", ir.KindScalar)
		n.Scalar = ir.ScalarType(t)
		n.Format = s.Format
		return n, nil
	case openapi3.TypeArray:
		return b.array(s, ptr)
	case openapi3.TypeObject:
		return b.object(s, ptr)
	default:
		b.warn(openapi.Pointer(ptr, "type"), "type", "unrecognized type "+strconv.Quote(t))
		return ir.NewNode("", ir.KindUnknown), nil
	}
}

func (b *builder) array(s *openapi3.Schema, ptr string) (ir.SchemaNode, error) {
	n := ir.NewNode("", ir.KindArray)
	items, err := b.resolve(s.Items, openapi.Pointer(ptr, "items"))
	if err != nil {
		return ir.SchemaNode{}, err
	}
	n.Items = items
	return n, nil
}

// object maps properties to fields in declaration order. An object without
// properties is a map unless additionalProperties is false.
func (b *builder) object(s *openapi3.Schema, ptr string) (ir.SchemaNode, error) {
	ap := s.AdditionalProperties
	closed := ap.Has != nil && !*ap.Has

	if len(s.Properties) == 0 && !closed {
		n := ir.NewNode("", ir.KindMap)
		v, err := b.resolve(ap.Schema, openapi.Pointer(ptr, "additionalProperties"))
		if err != nil {
			return ir.SchemaNode{}, err
		}
		n.MapValue = v
		return n, nil
	}

	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	n := ir.NewNode("", ir.KindObject)
	props := openapi.Pointer(ptr, "properties")
	for _, name := range openapi.OrderedKeys(b.order, props, map[string]*openapi3.SchemaRef(s.Properties)) {
		t, err := b.resolve(s.Properties[name], openapi.Pointer(props, name))
		if err != nil {
			return ir.SchemaNode{}, err
		}
		n.Fields = append(n.Fields, ir.Field{Name: name, Type: t, Required: required[name]})
	}
	if ap.Schema != nil {
		extra, err := b.resolve(ap.Schema, openapi.Pointer(ptr, "additionalProperties"))
		if err != nil {
			return ir.SchemaNode{}, err
		}
		n.Extra = extra
	}
	return n, nil
}

func (b *builder) union(s *openapi3.Schema, members openapi3.SchemaRefs, mode ir.UnionMode, ptr string) (ir.SchemaNode, error) {
	n := ir.NewNode("", ir.KindUnion)
	n.UnionMode = mode
	for i, m := range members {
		v, err := b.resolve(m, openapi.Pointer(ptr, strconv.Itoa(i)))
		if err != nil {
			return ir.SchemaNode{}, err
		}
		n.Variants = append(n.Variants, v)
	}
	if d := s.Discriminator; d != nil {
		n.Discriminator = &ir.Discriminator{PropertyName: d.PropertyName}
		if len(d.Mapping) > 0 {
			n.Discriminator.Mapping = make(map[string]string, len(d.Mapping))
			for k, v := range d.Mapping {
				n.Discriminator.Mapping[k] = v
			}
		}
	}
	return n, nil
}

// intersection collects allOf members. Properties declared next to allOf
// become one more member.
func (b *builder) intersection(s *openapi3.Schema, ptr string) (ir.SchemaNode, error) {
	n := ir.NewNode("", ir.KindIntersection)
	allOf := openapi.Pointer(ptr, "allOf")
	for i, m := range s.AllOf {
		v, err := b.resolve(m, openapi.Pointer(allOf, strconv.Itoa(i)))
		if err != nil {
			return ir.SchemaNode{}, err
		}
		n.Variants = append(n.Variants, v)
	}
	if len(s.Properties) > 0 {
		own, err := b.object(s, ptr)
		if err != nil {
			return ir.SchemaNode{}, err
		}
		n.Variants = append(n.Variants, b.intern(own))
	}
	return n, nil
}

func enumShape(s *openapi3.Schema, types []string) ir.SchemaNode {
	n := ir.NewNode("", ir.KindEnum)
	n.EnumBase = ir.ScalarString
	if len(types) == 1 {
		n.EnumBase = ir.ScalarType(types[0])
	}
	for _, v := range s.Enum {
		if v != nil {
			n.Values = append(n.Values, v)
		}
	}
	return n
}
