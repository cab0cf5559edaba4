// Package schema builds the schema graph: every named definition and every
// inline schema reachable from an operation, resolved into one arena of
// canonical nodes.
//
// Resolution happens in two passes. Pass 1 registers each component schema
// under its canonical reference without looking at its body, which is what
// lets self-referencing and mutually-referencing definitions terminate. Pass 2
// resolves bodies; a nested $ref becomes a lookup of the registered slot, so a
// definition referenced from N places is parsed once. Inline schemas are
// interned by structural key, so repeated inline shapes share one node.
package schema

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-openapi/jsonpointer"

	"github.com/blimu-dev/hookgen/pkg/generrors"
	"github.com/blimu-dev/hookgen/pkg/ir"
	"github.com/blimu-dev/hookgen/pkg/openapi"
)

const componentPrefix = "#/components/schemas/"

// Result is the finished schema graph plus an index from every visited
// schema occurrence to its node.
type Result struct {
	Graph    *ir.Graph
	Warnings []*generrors.UnsupportedFeatureError

	occurrences map[*openapi3.SchemaRef]ir.NodeRef
	unknown     ir.NodeRef
}

// NodeFor returns the node an occurrence resolved to. A nil occurrence maps
// to the shared unknown node.
func (r *Result) NodeFor(sr *openapi3.SchemaRef) (ir.NodeRef, bool) {
	if sr == nil {
		return r.unknown, r.unknown.Valid()
	}
	ref, ok := r.occurrences[sr]
	return ref, ok
}

// Option configures Build.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger for debug output. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

type builder struct {
	doc   *openapi.Document
	order *openapi.Order
	log   *slog.Logger

	nodes []ir.SchemaNode
	byID  map[ir.SchemaID]ir.NodeRef
	byKey map[string]ir.NodeRef

	// bodies of named slots still to resolve, drained in FIFO order
	pending []pendingBody
	// inline schemas whose shape is being computed, for loops without $ref
	inProgress map[*openapi3.Schema]bool

	occurrences map[*openapi3.SchemaRef]ir.NodeRef
	warnings    []*generrors.UnsupportedFeatureError
}

type pendingBody struct {
	slot ir.NodeRef
	sr   *openapi3.SchemaRef
	ptr  string
}

// Build resolves the document's schemas into a graph. It fails with a
// *generrors.ResolutionError when a reference points to nothing.
func Build(doc *openapi.Document, opts ...Option) (*Result, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	b := &builder{
		doc:         doc,
		order:       doc.Order(),
		log:         o.logger,
		byID:        make(map[ir.SchemaID]ir.NodeRef),
		byKey:       make(map[string]ir.NodeRef),
		inProgress:  make(map[*openapi3.Schema]bool),
		occurrences: make(map[*openapi3.SchemaRef]ir.NodeRef),
	}

	// Pass 1: register every named definition without touching its body.
	for _, name := range doc.SchemaNames() {
		sr := doc.Components.Schemas[name]
		ref := componentPrefix + jsonpointer.Escape(name)
		slot := b.register(ir.SchemaID(ref), name)
		b.pending = append(b.pending, pendingBody{slot: slot, sr: sr, ptr: openapi.Pointer("/components/schemas", name)})
		b.occurrences[sr] = slot
	}
	// Pass 2: resolve bodies by lookup.
	if err := b.drain(); err != nil {
		return nil, err
	}
	if err := b.walkOperations(); err != nil {
		return nil, err
	}
	if err := b.drain(); err != nil {
		return nil, err
	}
	unknown := b.unknown()

	g, err := ir.NewGraph(b.nodes)
	if err != nil {
		return nil, err
	}
	b.log.Debug("schema graph built", "nodes", g.Len(), "named", len(doc.SchemaNames()), "warnings", len(b.warnings))
	return &Result{Graph: g, Warnings: b.warnings, occurrences: b.occurrences, unknown: unknown}, nil
}

func (b *builder) register(id ir.SchemaID, name string) ir.NodeRef {
	n := ir.NewNode(id, ir.KindUnknown)
	n.Name = name
	b.nodes = append(b.nodes, n)
	ref := ir.NodeRef(len(b.nodes) - 1)
	b.byID[id] = ref
	return ref
}

func (b *builder) drain() error {
	for len(b.pending) > 0 {
		p := b.pending[0]
		b.pending = b.pending[1:]
		if err := b.resolveBody(p); err != nil {
			return err
		}
	}
	return nil
}

// resolveBody fills a registered slot, keeping its identity and name.
func (b *builder) resolveBody(p pendingBody) error {
	var shape ir.SchemaNode
	switch {
	case p.sr == nil || (p.sr.Ref == "" && p.sr.Value == nil):
		shape = ir.NewNode("", ir.KindUnknown)
	case p.sr.Ref != "":
		// A definition that is itself a reference aliases its target.
		target, err := b.reference(p.sr, p.ptr)
		if err != nil {
			return err
		}
		shape = ir.NewNode("", ir.KindIntersection)
		shape.Variants = []ir.NodeRef{target}
	default:
		var err error
		shape, err = b.shape(p.sr.Value, p.ptr)
		if err != nil {
			return err
		}
		shape.Annotations = annotations(p.sr.Value)
	}
	slot := &b.nodes[p.slot]
	shape.ID = slot.ID
	shape.Name = slot.Name
	*slot = shape
	return nil
}

// resolve returns the node for one schema occurrence.
func (b *builder) resolve(sr *openapi3.SchemaRef, ptr string) (ir.NodeRef, error) {
	if sr == nil {
		return b.unknown(), nil
	}
	if ref, ok := b.occurrences[sr]; ok {
		return ref, nil
	}
	var (
		ref ir.NodeRef
		err error
	)
	switch {
	case sr.Ref != "":
		ref, err = b.reference(sr, ptr)
	case sr.Value == nil:
		ref = b.unknown()
	default:
		ref, err = b.inline(sr.Value, ptr)
	}
	if err != nil {
		return ir.NoNode, err
	}
	b.occurrences[sr] = ref
	return ref, nil
}

// reference resolves a $ref by identity lookup.
func (b *builder) reference(sr *openapi3.SchemaRef, ptr string) (ir.NodeRef, error) {
	ref := sr.Ref
	if strings.HasPrefix(ref, componentPrefix) && !strings.Contains(ref[len(componentPrefix):], "/") {
		if slot, ok := b.byID[ir.SchemaID(ref)]; ok {
			return slot, nil
		}
		return ir.NoNode, &generrors.ResolutionError{Ref: ref, Pointer: ptr}
	}
	if sr.Value == nil {
		return ir.NoNode, &generrors.ResolutionError{Ref: ref, Pointer: ptr}
	}
	if strings.HasPrefix(ref, "#/") {
		// A pointer into another schema's body: it is that inline shape.
		return b.inline(sr.Value, ref[1:])
	}
	// External definition: register once under its reference, resolve later.
	if slot, ok := b.byID[ir.SchemaID(ref)]; ok {
		return slot, nil
	}
	slot := b.register(ir.SchemaID(ref), externalName(ref))
	body := &openapi3.SchemaRef{Value: sr.Value}
	b.pending = append(b.pending, pendingBody{slot: slot, sr: body, ptr: ref})
	b.log.Debug("registered external schema", "ref", ref)
	return slot, nil
}

// externalName derives a component name from an external reference:
// "common.yaml#/components/schemas/Error" -> "Error", "pet.yaml" -> "pet".
func externalName(ref string) string {
	if i := strings.LastIndex(ref, "#"); i >= 0 {
		frag := strings.TrimRight(ref[i+1:], "/")
		if j := strings.LastIndex(frag, "/"); j >= 0 && j+1 < len(frag) {
			return jsonpointer.Unescape(frag[j+1:])
		}
		ref = ref[:i]
	}
	ref = ref[strings.LastIndex(ref, "/")+1:]
	if i := strings.Index(ref, "."); i > 0 {
		ref = ref[:i]
	}
	return ref
}

// inline interns an anonymous schema by structural key.
func (b *builder) inline(s *openapi3.Schema, ptr string) (ir.NodeRef, error) {
	if b.inProgress[s] {
		b.warn(ptr, "cycle", "inline schema refers back to itself without a $ref")
		return b.unknown(), nil
	}
	b.inProgress[s] = true
	defer delete(b.inProgress, s)

	shape, err := b.shape(s, ptr)
	if err != nil {
		return ir.NoNode, err
	}
	ref := b.intern(shape)
	if a := annotations(s); b.nodes[ref].Annotations == (ir.Annotations{}) {
		b.nodes[ref].Annotations = a
	}
	return ref, nil
}

// intern returns the existing node with the same structural key or appends shape.
func (b *builder) intern(shape ir.SchemaNode) ir.NodeRef {
	key := structuralKey(shape, b.nodes)
	if ref, ok := b.byKey[key]; ok {
		return ref
	}
	id := ir.AnonID(hashKey(key))
	for n := 2; ; n++ {
		if _, taken := b.byID[id]; !taken {
			break
		}
		id = ir.AnonID(hashKey(key) + "." + strconv.Itoa(n))
	}
	shape.ID = id
	shape.Name = ""
	b.nodes = append(b.nodes, shape)
	ref := ir.NodeRef(len(b.nodes) - 1)
	b.byID[id] = ref
	b.byKey[key] = ref
	return ref
}

func (b *builder) unknown() ir.NodeRef {
	return b.intern(ir.NewNode("", ir.KindUnknown))
}

func (b *builder) warn(ptr, feature, msg string) {
	w := &generrors.UnsupportedFeatureError{Pointer: ptr, Feature: feature, Message: msg}
	b.warnings = append(b.warnings, w)
	b.log.Debug("degraded schema to unknown", "pointer", ptr, "feature", feature)
}

func annotations(s *openapi3.Schema) ir.Annotations {
	if s == nil {
		return ir.Annotations{}
	}
	return ir.Annotations{
		Title:       s.Title,
		Description: s.Description,
		Deprecated:  s.Deprecated,
		ReadOnly:    s.ReadOnly,
		WriteOnly:   s.WriteOnly,
	}
}
