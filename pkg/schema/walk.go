package schema

import (
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/hookgen/pkg/openapi"
)

// walkOperations resolves every schema occurrence an operation can reach:
// parameters, request bodies and responses.
func (b *builder) walkOperations() error {
	for _, ref := range b.doc.Operations() {
		itemPtr := openapi.Pointer("/paths", ref.Path)
		if err := b.walkParams(ref.Item.Parameters, openapi.Pointer(itemPtr, "parameters")); err != nil {
			return err
		}
		if err := b.walkParams(ref.Operation.Parameters, openapi.Pointer(ref.Pointer, "parameters")); err != nil {
			return err
		}
		if rb := ref.Operation.RequestBody; rb != nil && rb.Value != nil {
			ptr := openapi.RefPointer(rb.Ref, openapi.Pointer(ref.Pointer, "requestBody"))
			if err := b.walkContent(rb.Value.Content, openapi.Pointer(ptr, "content")); err != nil {
				return err
			}
		}
		for _, status := range b.doc.ResponseKeys(ref) {
			resp := ref.Operation.Responses.Value(status)
			if resp == nil || resp.Value == nil {
				continue
			}
			ptr := openapi.RefPointer(resp.Ref, openapi.Pointer(ref.Pointer, "responses", status))
			if err := b.walkContent(resp.Value.Content, openapi.Pointer(ptr, "content")); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) walkParams(params openapi3.Parameters, base string) error {
	for i, p := range params {
		if p == nil || p.Value == nil {
			continue
		}
		ptr := openapi.RefPointer(p.Ref, openapi.Pointer(base, strconv.Itoa(i)))
		if p.Value.Schema != nil {
			if _, err := b.resolve(p.Value.Schema, openapi.Pointer(ptr, "schema")); err != nil {
				return err
			}
		}
		if err := b.walkContent(p.Value.Content, openapi.Pointer(ptr, "content")); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) walkContent(content openapi3.Content, ptr string) error {
	for _, ct := range b.doc.ContentTypes(ptr, content) {
		mt := content[ct]
		if mt == nil || mt.Schema == nil {
			continue
		}
		if _, err := b.resolve(mt.Schema, openapi.Pointer(ptr, ct, "schema")); err != nil {
			return err
		}
	}
	return nil
}
