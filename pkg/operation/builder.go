// Package operation turns every (method, path) pair of a document into an
// ir.Operation: merged parameters, typed request bodies and one response
// variant per status and content type, all pointing into the schema graph.
package operation

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/hookgen/pkg/generrors"
	"github.com/blimu-dev/hookgen/pkg/ir"
	"github.com/blimu-dev/hookgen/pkg/openapi"
	"github.com/blimu-dev/hookgen/pkg/schema"
)

// Option configures Build.
type Option func(*builder)

// WithLogger sets the logger for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(b *builder) {
		if l != nil {
			b.log = l
		}
	}
}

type builder struct {
	doc     *openapi.Document
	schemas *schema.Result
	log     *slog.Logger
}

// Build models every operation of doc, ordered by path then method rank.
// Schema occurrences are looked up in schemas, which must come from the same
// document. A malformed path template or parameter list fails the whole build
// with a *generrors.OperationModelError.
func Build(doc *openapi.Document, schemas *schema.Result, opts ...Option) ([]ir.Operation, error) {
	b := &builder{doc: doc, schemas: schemas, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(b)
	}

	refs := doc.Operations()
	ops := make([]ir.Operation, 0, len(refs))
	for _, ref := range refs {
		op, err := b.operation(ref)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	b.log.Debug("operations modeled", "count", len(ops))
	return ops, nil
}

func (b *builder) fail(ref openapi.OperationRef, format string, args ...any) error {
	return &generrors.OperationModelError{Method: ref.Method, Path: ref.Path, Message: fmt.Sprintf(format, args...)}
}

func (b *builder) operation(ref openapi.OperationRef) (ir.Operation, error) {
	segments, err := ir.ParseTemplate(ref.Path)
	if err != nil {
		return ir.Operation{}, b.fail(ref, "%v", err)
	}
	src := ref.Operation
	op := ir.Operation{
		Method:      ref.Method,
		Path:        ref.Path,
		Segments:    segments,
		OperationID: src.OperationID,
		Summary:     src.Summary,
		Description: src.Description,
		Deprecated:  src.Deprecated,
		Tags:        append([]string(nil), src.Tags...),
		Security:    b.security(src),
	}

	if err := b.params(ref, &op); err != nil {
		return ir.Operation{}, err
	}
	if err := b.requestBodies(ref, &op); err != nil {
		return ir.Operation{}, err
	}
	if err := b.responses(ref, &op); err != nil {
		return ir.Operation{}, err
	}
	return op, nil
}

// mergeParams applies operation-level parameters over path-item ones. A
// parameter with the same name and location replaces the inherited one in
// place; new ones are appended in declaration order.
func mergeParams(item, op openapi3.Parameters) []*openapi3.Parameter {
	type key struct{ name, in string }
	var out []*openapi3.Parameter
	index := map[key]int{}
	for _, list := range []openapi3.Parameters{item, op} {
		for _, p := range list {
			if p == nil || p.Value == nil {
				continue
			}
			k := key{p.Value.Name, p.Value.In}
			if i, ok := index[k]; ok {
				out[i] = p.Value
				continue
			}
			index[k] = len(out)
			out = append(out, p.Value)
		}
	}
	return out
}

func (b *builder) params(ref openapi.OperationRef, op *ir.Operation) error {
	inTemplate := map[string]bool{}
	for _, s := range op.Segments {
		for _, name := range s.Params() {
			if inTemplate[name] {
				return b.fail(ref, "path parameter %q appears more than once in the template", name)
			}
			inTemplate[name] = true
		}
	}

	declared := map[string]bool{}
	for _, p := range mergeParams(ref.Item.Parameters, ref.Operation.Parameters) {
		if p.Name == "" {
			return b.fail(ref, "parameter in %s has no name", p.In)
		}
		param := ir.Param{
			Name:        p.Name,
			In:          ir.ParamLocation(p.In),
			Required:    p.Required,
			Schema:      b.paramSchema(p),
			Description: p.Description,
			Deprecated:  p.Deprecated,
		}
		switch param.In {
		case ir.InPath:
			if !inTemplate[p.Name] {
				return b.fail(ref, "path parameter %q is not in the path template", p.Name)
			}
			declared[p.Name] = true
			param.Required = true
			op.PathParams = append(op.PathParams, param)
		case ir.InQuery:
			op.QueryParams = append(op.QueryParams, param)
		case ir.InHeader:
			op.HeaderParams = append(op.HeaderParams, param)
		case ir.InCookie:
			op.CookieParams = append(op.CookieParams, param)
		default:
			return b.fail(ref, "parameter %q has unknown location %q", p.Name, p.In)
		}
	}

	var missing []string
	for name := range inTemplate {
		if !declared[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return b.fail(ref, "path template parameters not declared: %s", strings.Join(missing, ", "))
	}
	return nil
}

// paramSchema resolves the schema of a parameter, or the schema of its only
// content entry when the parameter is declared with content instead.
func (b *builder) paramSchema(p *openapi3.Parameter) ir.NodeRef {
	if p.Schema != nil {
		return b.node(p.Schema)
	}
	for _, ct := range sortedContent(p.Content) {
		if mt := p.Content[ct]; mt != nil && mt.Schema != nil {
			return b.node(mt.Schema)
		}
	}
	return b.node(nil)
}

func (b *builder) node(sr *openapi3.SchemaRef) ir.NodeRef {
	if ref, ok := b.schemas.NodeFor(sr); ok {
		return ref
	}
	ref, _ := b.schemas.NodeFor(nil)
	return ref
}

func (b *builder) requestBodies(ref openapi.OperationRef, op *ir.Operation) error {
	rb := ref.Operation.RequestBody
	if rb == nil || rb.Value == nil {
		return nil
	}
	ptr := openapi.Pointer(openapi.RefPointer(rb.Ref, openapi.Pointer(ref.Pointer, "requestBody")), "content")
	for _, ct := range b.doc.ContentTypes(ptr, rb.Value.Content) {
		body := ir.Body{ContentType: ct, Typed: IsJSON(ct), Schema: ir.NoNode, Required: rb.Value.Required}
		if body.Typed {
			body.Schema = b.node(rb.Value.Content[ct].Schema)
		}
		op.RequestBodies = append(op.RequestBodies, body)
	}
	return nil
}

func (b *builder) responses(ref openapi.OperationRef, op *ir.Operation) error {
	for _, status := range b.doc.ResponseKeys(ref) {
		code, err := statusCode(status)
		if err != nil {
			return b.fail(ref, "%v", err)
		}
		resp := ref.Operation.Responses.Value(status)
		if resp == nil || resp.Value == nil {
			continue
		}
		desc := ""
		if resp.Value.Description != nil {
			desc = *resp.Value.Description
		}
		ptr := openapi.Pointer(openapi.RefPointer(resp.Ref, openapi.Pointer(ref.Pointer, "responses", status)), "content")
		types := b.doc.ContentTypes(ptr, resp.Value.Content)
		if len(types) == 0 {
			op.Responses = append(op.Responses, ir.Response{Status: status, Code: code, Schema: ir.NoNode, Description: desc})
			continue
		}
		for _, ct := range types {
			r := ir.Response{Status: status, Code: code, ContentType: ct, Typed: IsJSON(ct), Schema: ir.NoNode, Description: desc}
			if r.Typed {
				r.Schema = b.node(resp.Value.Content[ct].Schema)
			}
			op.Responses = append(op.Responses, r)
		}
	}
	return nil
}

// statusCode parses a response key. Ranges ("4XX") and "default" have no code.
func statusCode(status string) (int, error) {
	if status == "default" {
		return 0, nil
	}
	if len(status) == 3 && strings.EqualFold(status[1:], "XX") && status[0] >= '1' && status[0] <= '5' {
		return 0, nil
	}
	code, err := strconv.Atoi(status)
	if err != nil || code < 100 || code > 599 {
		return 0, fmt.Errorf("invalid response status %q", status)
	}
	return code, nil
}

// security returns the scheme names required by the operation, falling back
// to the document-level requirements.
func (b *builder) security(op *openapi3.Operation) []string {
	reqs := b.doc.Security
	if op.Security != nil {
		reqs = *op.Security
	}
	var out []string
	seen := map[string]bool{}
	for _, req := range reqs {
		names := make([]string, 0, len(req))
		for name := range req {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// IsJSON reports whether a media type carries JSON: application/json,
// text/json or any "+json" structured suffix.
func IsJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt == "application/json" || mt == "text/json" || strings.HasSuffix(mt, "+json")
}

func sortedContent(c openapi3.Content) []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
