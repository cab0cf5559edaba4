package openapi

import (
	"sort"
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"gopkg.in/yaml.v3"
)

// Order records the declaration order of mapping keys in the source document,
// indexed by the JSON pointer of the mapping. kin-openapi models properties,
// responses and content as Go maps, so this is the only place the order the
// author wrote survives.
type Order struct {
	keys map[string][]string
}

func emptyOrder() *Order {
	return &Order{keys: map[string][]string{}}
}

// IndexOrder parses raw (YAML or JSON) and records the key order of every mapping.
func IndexOrder(raw []byte) (*Order, error) {
	o := emptyOrder()
	if len(raw) == 0 {
		return o, nil
	}
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, err
	}
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		o.index("", root.Content[0])
	}
	return o, nil
}

func (o *Order) index(ptr string, n *yaml.Node) {
	switch n.Kind {
	case yaml.MappingNode:
		keys := make([]string, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i].Value
			keys = append(keys, k)
			o.index(Pointer(ptr, k), n.Content[i+1])
		}
		o.keys[ptr] = keys
	case yaml.SequenceNode:
		for i, c := range n.Content {
			o.index(Pointer(ptr, strconv.Itoa(i)), c)
		}
	case yaml.AliasNode:
		if n.Alias != nil {
			o.index(ptr, n.Alias)
		}
	}
}

// Keys returns the declared keys of the mapping at ptr, nil when unknown.
func (o *Order) Keys(ptr string) []string {
	return o.keys[ptr]
}

// Pointer appends tokens to a JSON pointer, escaping each one.
func Pointer(base string, tokens ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(jsonpointer.Escape(t))
	}
	return b.String()
}

// OrderedKeys returns the keys of m in declaration order at ptr. Keys the
// source does not mention (or every key, for in-memory documents) follow in
// sorted order.
func OrderedKeys[V any](o *Order, ptr string, m map[string]V) []string {
	out := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	if o != nil {
		for _, k := range o.Keys(ptr) {
			if _, ok := m[k]; ok && !seen[k] {
				out = append(out, k)
				seen[k] = true
			}
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// RefPointer converts a local reference ("#/components/responses/Unauthorized")
// into the JSON pointer of its target. External references return fallback.
func RefPointer(ref, fallback string) string {
	if strings.HasPrefix(ref, "#/") {
		return ref[1:]
	}
	return fallback
}
