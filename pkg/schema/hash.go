package schema

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/blimu-dev/hookgen/pkg/ir"
)

// structuralKey renders the identity-bearing attributes of a node. Children
// contribute their ids, so the key of a parent changes whenever a child's
// shape does. Annotations and field declaration order are excluded.
func structuralKey(n ir.SchemaNode, nodes []ir.SchemaNode) string {
	var b strings.Builder
	write := func(parts ...string) {
		for _, p := range parts {
			b.WriteString(p)
			b.WriteByte('|')
		}
	}
	child := func(r ir.NodeRef) string {
		if !r.Valid() {
			return "-"
		}
		return string(nodes[r].ID)
	}

	write("kind:"+n.Kind.String(), "scalar:"+string(n.Scalar), "format:"+n.Format)

	if len(n.Fields) > 0 {
		fields := make([]ir.Field, len(n.Fields))
		copy(fields, n.Fields)
		sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
		write("fields:")
		for _, f := range fields {
			write(strconv.Quote(f.Name), strconv.FormatBool(f.Required), child(f.Type))
		}
	}
	write("extra:" + child(n.Extra))

	if len(n.Variants) > 0 {
		write("variants:" + string(n.UnionMode))
		for _, v := range n.Variants {
			write(child(v))
		}
	}
	if d := n.Discriminator; d != nil {
		write("discriminator:" + d.PropertyName)
		keys := make([]string, 0, len(d.Mapping))
		for k := range d.Mapping {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			write(k, d.Mapping[k])
		}
	}

	write("items:"+child(n.Items), "map:"+child(n.MapValue), "inner:"+child(n.Inner))

	if len(n.Values) > 0 {
		raw, err := json.Marshal(n.Values)
		if err != nil {
			raw = []byte(fmt.Sprint(n.Values))
		}
		write("enum:"+string(n.EnumBase), string(raw))
	}
	return b.String()
}

// hashKey computes the 64-bit FNV-1a hash of a structural key.
func hashKey(key string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return fmt.Sprintf("%016x", h.Sum64())
}
