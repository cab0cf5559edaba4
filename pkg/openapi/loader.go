package openapi

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/getkin/kin-openapi/openapi3"
)

// Document is a loaded OpenAPI document together with the source bytes it
// came from and the declaration order recovered from them.
type Document struct {
	*openapi3.T

	// Source is the file path or URL the document was read from.
	Source string
	// Raw holds the document bytes; nil for documents built in memory.
	Raw []byte

	order *Order
}

// Wrap adopts an in-memory document. Without source bytes, mapping keys are
// visited in sorted order.
func Wrap(doc *openapi3.T) *Document {
	return &Document{T: doc, order: emptyOrder()}
}

// Order returns the declaration order index.
func (d *Document) Order() *Order {
	if d.order == nil {
		d.order = emptyOrder()
	}
	return d.order
}

// newLoader returns the loader shared by every entry point.
func newLoader() *openapi3.Loader {
	return &openapi3.Loader{IsExternalRefsAllowed: true, Context: context.Background()}
}

// LoadDocument loads an OpenAPI document from a local file path or an HTTP(S) URL
func LoadDocument(input string) (*Document, error) {
	return LoadDocumentWithLoader(newLoader(), input)
}

// LoadDocumentWithLoader loads an OpenAPI document using a custom loader
func LoadDocumentWithLoader(loader *openapi3.Loader, input string) (*Document, error) {
	// Try to parse as URL; if it looks like http(s), fetch via URL
	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		raw, err := openapi3.DefaultReadFromURI(loader, u)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", input, err)
		}
		doc, err := loader.LoadFromDataWithPath(raw, u)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", input, err)
		}
		return newDocument(doc, input, raw)
	}
	// Fallback to reading from filesystem path
	raw, err := os.ReadFile(input)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		abs = input
	}
	doc, err := loader.LoadFromDataWithPath(raw, &url.URL{Path: filepath.ToSlash(abs)})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", input, err)
	}
	return newDocument(doc, input, raw)
}

// LoadData loads a document from bytes. Relative external references are not
// supported.
func LoadData(raw []byte) (*Document, error) {
	doc, err := newLoader().LoadFromData(raw)
	if err != nil {
		return nil, err
	}
	return newDocument(doc, "", raw)
}

func newDocument(doc *openapi3.T, source string, raw []byte) (*Document, error) {
	order, err := IndexOrder(raw)
	if err != nil {
		// kin-openapi accepted the bytes; fall back to sorted key order.
		order = emptyOrder()
	}
	return &Document{T: doc, Source: source, Raw: raw, order: order}, nil
}

// ValidateDocument validates an OpenAPI document
func ValidateDocument(input string) error {
	loader := newLoader()
	doc, err := LoadDocumentWithLoader(loader, input)
	if err != nil {
		return err
	}
	return doc.Validate(loader.Context)
}
