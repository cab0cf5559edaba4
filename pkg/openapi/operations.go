package openapi

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// OperationRef locates one operation of the document.
type OperationRef struct {
	Path      string
	Method    string
	Item      *openapi3.PathItem
	Operation *openapi3.Operation
	// Pointer is the JSON pointer of the operation object.
	Pointer string
}

var methodOrder = []string{"GET", "HEAD", "OPTIONS", "TRACE", "POST", "PUT", "PATCH", "DELETE"}

// Operations lists every operation ordered by path, then by method rank.
// The order never depends on how the document arranged its paths.
func (d *Document) Operations() []OperationRef {
	if d.T == nil || d.Paths == nil {
		return nil
	}
	paths := d.Paths.Map()
	keys := make([]string, 0, len(paths))
	for p := range paths {
		keys = append(keys, p)
	}
	sort.Strings(keys)

	var out []OperationRef
	for _, p := range keys {
		item := paths[p]
		if item == nil {
			continue
		}
		ops := item.Operations()
		for _, m := range methodOrder {
			op := ops[m]
			if op == nil {
				continue
			}
			out = append(out, OperationRef{
				Path:      p,
				Method:    m,
				Item:      item,
				Operation: op,
				Pointer:   Pointer("/paths", p, strings.ToLower(m)),
			})
		}
	}
	return out
}

// ResponseKeys returns the status keys of responses in declaration order.
func (d *Document) ResponseKeys(ref OperationRef) []string {
	if ref.Operation.Responses == nil {
		return nil
	}
	return OrderedKeys(d.Order(), Pointer(ref.Pointer, "responses"), ref.Operation.Responses.Map())
}

// ContentTypes returns the media types of content in declaration order.
func (d *Document) ContentTypes(ptr string, content openapi3.Content) []string {
	return OrderedKeys(d.Order(), ptr, map[string]*openapi3.MediaType(content))
}

// SchemaNames returns the component schema names sorted by name.
func (d *Document) SchemaNames() []string {
	if d.T == nil || d.Components == nil {
		return nil
	}
	names := make([]string, 0, len(d.Components.Schemas))
	for n := range d.Components.Schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
