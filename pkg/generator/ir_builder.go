package generator

import (
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"

	"github.com/blimu-dev/hookgen/pkg/config"
	"github.com/blimu-dev/hookgen/pkg/ir"
	"github.com/blimu-dev/hookgen/pkg/naming"
	"github.com/blimu-dev/hookgen/pkg/openapi"
	"github.com/blimu-dev/hookgen/pkg/operation"
	"github.com/blimu-dev/hookgen/pkg/routetree"
	"github.com/blimu-dev/hookgen/pkg/schema"
)

// BuildOption configures BuildIR.
type BuildOption func(*buildOptions)

type buildOptions struct {
	logger *slog.Logger
}

// WithBuildLogger sets the logger BuildIR reports warnings to.
func WithBuildLogger(l *slog.Logger) BuildOption {
	return func(o *buildOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// BuildIR runs the whole core over doc: schema graph, operation models,
// identifier table and route tree. It returns no IR when any stage fails;
// recoverable conditions end up in IR.Warnings.
func BuildIR(doc *openapi.Document, opts ...BuildOption) (*ir.IR, error) {
	o := buildOptions{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	schemas, err := schema.Build(doc, schema.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	ops, err := operation.Build(doc, schemas, operation.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	names, err := naming.Derive(schemas.Graph, ops)
	if err != nil {
		return nil, err
	}

	out := &ir.IR{
		Graph:           schemas.Graph,
		Operations:      ops,
		Names:           names.Names,
		TypeNames:       names.TypeNames,
		Identifiers:     names.Identifiers,
		Routes:          routetree.Build(ops),
		SecuritySchemes: collectSecuritySchemes(doc),
		Tags:            collectTags(ops),
		Warnings:        schemas.Warnings,
	}
	if doc.Info != nil {
		out.Title = doc.Info.Title
		out.Version = doc.Info.Version
	}
	for _, w := range out.Warnings {
		o.logger.Warn("unsupported schema feature", "pointer", w.Pointer, "feature", w.Feature, "message", w.Message)
	}
	o.logger.Debug("built IR",
		"operations", len(out.Operations),
		"schemas", out.Graph.Len(),
		"identifiers", len(out.Identifiers))
	return out, nil
}

// BuildIR builds the IR for doc, reusing a cached result when the same
// document bytes were built before. Documents without source bytes are
// never cached.
func (s *Service) BuildIR(doc *openapi.Document) (*ir.IR, error) {
	if s.cache == nil || doc.Raw == nil {
		return BuildIR(doc, WithBuildLogger(s.logger))
	}
	key := sha256.Sum256(doc.Raw)
	if cached, ok := s.cache.Get(key); ok {
		s.logger.Debug("reusing cached IR", "source", doc.Source)
		return cached, nil
	}
	built, err := BuildIR(doc, WithBuildLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, built)
	return built, nil
}

// filterIR narrows the IR to the operations selected by the client's tag
// filters. Names are unaffected by filtering.
func filterIR(fullIR *ir.IR, client config.Client) (*ir.IR, error) {
	include, exclude, err := compileTagFilters(client.IncludeTags, client.ExcludeTags)
	if err != nil {
		return nil, err
	}
	if len(include) == 0 && len(exclude) == 0 {
		return fullIR, nil
	}
	return fullIR.Filter(func(op ir.Operation) bool {
		return shouldIncludeOperation(operationTags(op), include, exclude)
	}), nil
}

// operationTags returns the tags filters match against.
func operationTags(op ir.Operation) []string {
	return op.EffectiveTags()
}

// collectTags extracts all tags used by operations, sorted
func collectTags(ops []ir.Operation) []string {
	uniq := map[string]struct{}{}
	for _, op := range ops {
		for _, t := range operationTags(op) {
			uniq[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(uniq))
	for t := range uniq {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// compileTagFilters compiles include/exclude regex patterns
func compileTagFilters(include, exclude []string) ([]*regexp.Regexp, []*regexp.Regexp, error) {
	inc := make([]*regexp.Regexp, 0, len(include))
	for _, p := range include {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid includeTags pattern %q: %w", p, err)
		}
		inc = append(inc, r)
	}
	exc := make([]*regexp.Regexp, 0, len(exclude))
	for _, p := range exclude {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid excludeTags pattern %q: %w", p, err)
		}
		exc = append(exc, r)
	}
	return inc, exc, nil
}

// shouldIncludeOperation determines if an operation should be included based on its original tags
func shouldIncludeOperation(originalTags []string, include, exclude []*regexp.Regexp) bool {
	// If no include patterns, assume all tags are initially included
	included := len(include) == 0

	// Check include patterns - operation is included if ANY of its tags match ANY include pattern
	for _, tag := range originalTags {
		if included {
			break
		}
		for _, r := range include {
			if r.MatchString(tag) {
				included = true
				break
			}
		}
	}
	if !included {
		return false
	}

	// Check exclude patterns - operation is excluded if ANY of its tags match ANY exclude pattern
	for _, tag := range originalTags {
		for _, r := range exclude {
			if r.MatchString(tag) {
				return false
			}
		}
	}
	return true
}

// collectSecuritySchemes extracts security scheme information
func collectSecuritySchemes(doc *openapi.Document) []ir.SecurityScheme {
	if doc.Components == nil || doc.Components.SecuritySchemes == nil {
		return nil
	}
	// Deterministic order
	names := make([]string, 0, len(doc.Components.SecuritySchemes))
	for name := range doc.Components.SecuritySchemes {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]ir.SecurityScheme, 0, len(names))
	for _, name := range names {
		sr := doc.Components.SecuritySchemes[name]
		if sr == nil || sr.Value == nil {
			continue
		}
		s := sr.Value
		sc := ir.SecurityScheme{Key: name, Type: s.Type}
		switch s.Type {
		case "http":
			sc.Scheme = s.Scheme
			sc.BearerFormat = s.BearerFormat
		case "apiKey":
			sc.In = s.In
			sc.Name = s.Name
		}
		out = append(out, sc)
	}
	return out
}
