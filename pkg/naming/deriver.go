// Package naming derives every identifier the emitters print: function,
// type and hook names per operation, query and mutation keys, and type names
// for named schemas. Names are a pure function of (method, path template) or
// of the schema's canonical reference, so documentation edits never rename
// anything.
package naming

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/blimu-dev/hookgen/pkg/generrors"
	"github.com/blimu-dev/hookgen/pkg/ir"
)

// RootToken names the bare "/" path.
const RootToken = "root"

// Result is the identifier table for one IR.
type Result struct {
	// Names is parallel to the operation slice passed to Derive.
	Names       []ir.OperationNames
	TypeNames   map[ir.NodeRef]ir.Identifier
	Identifiers []ir.Identifier
}

// Verb is the lower-case method word that starts a function name.
func Verb(method string) string {
	return strings.ToLower(method)
}

// PathTokens maps each segment of a template to one camelCase word:
// literal segments are normalized, parameter segments use the parameter name.
func PathTokens(segments []ir.Segment) []string {
	if len(segments) == 0 {
		return []string{RootToken}
	}
	tokens := make([]string, 0, len(segments))
	for _, s := range segments {
		var words []string
		for _, p := range s.Parts {
			if p.IsParam() {
				words = append(words, p.Param)
			} else {
				words = append(words, p.Literal)
			}
		}
		if t := ToCamelCase(strings.Join(words, " ")); t != "" {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) == 0 {
		return []string{RootToken}
	}
	return tokens
}

// FunctionTokens returns the verb followed by the path tokens.
func FunctionTokens(op ir.Operation) []string {
	return append([]string{Verb(op.Method)}, PathTokens(op.Segments)...)
}

func joinTokens(tokens []string) string {
	var b strings.Builder
	for i, t := range tokens {
		if i == 0 {
			b.WriteString(lowerFirst(t))
			continue
		}
		b.WriteString(upperFirst(t))
	}
	return b.String()
}

// shortSuffix and longSuffix disambiguate colliding candidates. Both hash the
// full identity, never the position of the operation in the document.
func shortSuffix(identity string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identity))
	return fmt.Sprintf("_%08x", h.Sum32())
}

func longSuffix(identity string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(identity))
	return fmt.Sprintf("_%016x", h.Sum64())
}

// candidate is one claim on a name before collisions are settled.
type candidate struct {
	base     string
	identity string
	// rank orders claimants of one base; the smallest keeps the bare name.
	rank []string
}

// settle assigns final values to candidates. Within a group sharing a base,
// the smallest claimant keeps the base and every other one gets a short hash
// suffix of its identity; if a value still clashes the long suffix is used,
// and a clash after that is a collision error.
func settle(kind ir.IdentifierKind, cands []candidate) ([]string, error) {
	groups := make(map[string][]int)
	for i, c := range cands {
		groups[c.base] = append(groups[c.base], i)
	}
	out := make([]string, len(cands))
	for _, members := range groups {
		sort.Slice(members, func(a, b int) bool {
			return lessRank(cands[members[a]].rank, cands[members[b]].rank)
		})
		for j, i := range members {
			if j == 0 {
				out[i] = cands[i].base
				continue
			}
			out[i] = cands[i].base + shortSuffix(cands[i].identity)
		}
	}

	taken := make(map[string][]int)
	for i, v := range out {
		taken[v] = append(taken[v], i)
	}
	for _, owners := range taken {
		if len(owners) < 2 {
			continue
		}
		for _, i := range owners {
			if out[i] != cands[i].base {
				out[i] = cands[i].base + longSuffix(cands[i].identity)
			}
		}
	}

	final := make(map[string][]string)
	for i, v := range out {
		final[v] = append(final[v], cands[i].identity)
	}
	var clashes []string
	for v, ids := range final {
		if len(ids) > 1 {
			clashes = append(clashes, v)
		}
	}
	if len(clashes) > 0 {
		sort.Strings(clashes)
		sources := final[clashes[0]]
		sort.Strings(sources)
		return nil, &generrors.IdentifierCollisionError{Kind: string(kind), Value: clashes[0], Sources: sources}
	}
	return out, nil
}

func lessRank(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// operationRank orders operations by path bytes, then canonical method rank.
func operationRank(op ir.Operation) []string {
	return []string{op.Path, fmt.Sprintf("%02d", ir.MethodRank(op.Method))}
}

// Derive builds the identifier table. The only error it returns is a
// *generrors.IdentifierCollisionError, which signals a defect in the
// tie-break rather than a problem with the document.
func Derive(g *ir.Graph, ops []ir.Operation) (*Result, error) {
	res := &Result{
		Names:     make([]ir.OperationNames, len(ops)),
		TypeNames: make(map[ir.NodeRef]ir.Identifier),
	}

	cands := make([]candidate, len(ops))
	tokens := make([][]string, len(ops))
	for i, op := range ops {
		tokens[i] = FunctionTokens(op)
		cands[i] = candidate{base: joinTokens(tokens[i]), identity: op.Key(), rank: operationRank(op)}
	}
	functions, err := settle(ir.KindFunctionName, cands)
	if err != nil {
		return nil, err
	}

	// Query and mutation keys settle like function names. Route patterns are
	// lossless for ordinary templates; the suffix covers the rest.
	var queryIdx, mutationIdx []int
	var queryCands, mutationCands []candidate
	for i, op := range ops {
		switch {
		case op.IsQuery():
			queryIdx = append(queryIdx, i)
			queryCands = append(queryCands, candidate{base: ir.RoutePattern(op.Segments), identity: op.Key(), rank: operationRank(op)})
		case op.IsMutation():
			mutationIdx = append(mutationIdx, i)
			mutationCands = append(mutationCands, candidate{base: op.Method + " " + op.Path, identity: op.Key(), rank: operationRank(op)})
		}
	}
	queryKeys, err := settle(ir.KindQueryKey, queryCands)
	if err != nil {
		return nil, err
	}
	mutationKeys, err := settle(ir.KindMutationKey, mutationCands)
	if err != nil {
		return nil, err
	}

	byKind := make(map[ir.IdentifierKind][]ir.Identifier)
	claims := newTable()
	for i, op := range ops {
		fn := functions[i]
		res.Names[i] = ir.OperationNames{
			Function:     ir.Identifier{Kind: ir.KindFunctionName, Operation: i, Schema: ir.NoNode, Value: fn, Tokens: tokens[i]},
			TypeName:     ir.Identifier{Kind: ir.KindOperationTypeName, Operation: i, Schema: ir.NoNode, Value: upperFirst(fn), Tokens: tokens[i]},
			Hook:         ir.Identifier{Kind: ir.KindHookName, Operation: i, Schema: ir.NoNode, Value: "use" + upperFirst(fn), Tokens: tokens[i]},
			RoutePattern: ir.RoutePattern(op.Segments),
			KeyArgs:      KeyArgs(op),
		}
	}
	for j, i := range queryIdx {
		res.Names[i].QueryKey = &ir.Identifier{Kind: ir.KindQueryKey, Operation: i, Schema: ir.NoNode, Value: queryKeys[j]}
	}
	for j, i := range mutationIdx {
		res.Names[i].MutationKey = &ir.Identifier{Kind: ir.KindMutationKey, Operation: i, Schema: ir.NoNode, Value: mutationKeys[j]}
	}

	typeIDs, err := deriveTypeNames(g, ops, res.Names)
	if err != nil {
		return nil, err
	}
	for _, id := range typeIDs {
		switch id.Kind {
		case ir.KindTypeName:
			res.TypeNames[id.Schema] = id
			byKind[id.Kind] = append(byKind[id.Kind], id)
		case ir.KindQueryTypeName:
			res.Names[id.Operation].QueryType = &id
		case ir.KindVariablesTypeName:
			res.Names[id.Operation].VariablesType = &id
		}
	}

	for i, op := range ops {
		names := &res.Names[i]
		head := names.RoutePattern
		if names.QueryKey != nil {
			head = names.QueryKey.Value
		}
		names.StructuredKey = ir.CacheKey{Style: ir.KeyStructured, Head: []string{head}, Args: names.KeyArgs}
		names.FlattenedKey = ir.CacheKey{Style: ir.KeyFlattened, Head: []string{op.Method}, Path: op.Segments, Args: names.KeyArgs}

		for _, id := range []*ir.Identifier{&names.Function, &names.TypeName, &names.Hook, names.QueryType, names.VariablesType, names.QueryKey, names.MutationKey} {
			if id == nil {
				continue
			}
			if err := claims.claim(id.Kind, id.Value, op.Key()); err != nil {
				return nil, err
			}
			byKind[id.Kind] = append(byKind[id.Kind], *id)
		}
	}

	for _, kind := range ir.IdentifierKinds {
		res.Identifiers = append(res.Identifiers, byKind[kind]...)
	}
	return res, nil
}

// KeyArgs lists the call arguments of an operation in signature order: path
// parameters as they appear in the template, then "query" and "body".
func KeyArgs(op ir.Operation) []string {
	var args []string
	for _, p := range op.OrderedPathParams() {
		args = append(args, ArgName(p.Name))
	}
	if len(op.QueryParams) > 0 {
		args = append(args, "query")
	}
	if op.HasBody() {
		args = append(args, "body")
	}
	return args
}

// TypeBase is the type-name candidate for a component name.
func TypeBase(name string) string {
	base := ToPascalCase(name)
	if base == "" {
		return "Schema"
	}
	if base[0] >= '0' && base[0] <= '9' {
		return "T" + base
	}
	return base
}

// deriveTypeNames settles every name that lands in the type namespace:
// component schemas first, then the query-parameter and mutation-variables
// types of each operation. Component names outrank derived ones, so a schema
// called "GetSessionsQuery" keeps its name and the derived type moves aside.
func deriveTypeNames(g *ir.Graph, ops []ir.Operation, names []ir.OperationNames) ([]ir.Identifier, error) {
	var out []ir.Identifier
	var cands []candidate
	if g != nil {
		for i, n := range g.Nodes() {
			if n.Name == "" {
				continue
			}
			out = append(out, ir.Identifier{Kind: ir.KindTypeName, Operation: -1, Schema: ir.NodeRef(i), Tokens: Words(n.Name)})
			cands = append(cands, candidate{base: TypeBase(n.Name), identity: string(n.ID), rank: []string{"0", string(n.ID)}})
		}
	}
	derived := func(i int, kind ir.IdentifierKind, word string) {
		op := ops[i]
		out = append(out, ir.Identifier{Kind: kind, Operation: i, Schema: ir.NoNode, Tokens: append(append([]string(nil), names[i].TypeName.Tokens...), lowerFirst(word))})
		cands = append(cands, candidate{
			base:     names[i].TypeName.Value + word,
			identity: string(kind) + " " + op.Key(),
			rank:     append([]string{"1"}, append(operationRank(op), string(kind))...),
		})
	}
	for i, op := range ops {
		if len(op.QueryParams) > 0 {
			derived(i, ir.KindQueryTypeName, "Query")
		}
		if op.IsMutation() {
			derived(i, ir.KindVariablesTypeName, "Variables")
		}
	}
	values, err := settle(ir.KindTypeName, cands)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Value = values[i]
	}
	return out, nil
}

// table tracks which source claimed each value, per kind.
type table struct {
	owners map[ir.IdentifierKind]map[string]string
}

func newTable() *table {
	return &table{owners: make(map[ir.IdentifierKind]map[string]string)}
}

func (t *table) claim(kind ir.IdentifierKind, value, source string) error {
	m := t.owners[kind]
	if m == nil {
		m = make(map[string]string)
		t.owners[kind] = m
	}
	if prev, ok := m[value]; ok && prev != source {
		return &generrors.IdentifierCollisionError{Kind: string(kind), Value: value, Sources: []string{prev, source}}
	}
	m[value] = source
	return nil
}
