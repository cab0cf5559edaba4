package ir

// IdentifierKind separates identifier namespaces. Uniqueness holds within a
// kind; type, query-type and variables-type names also share one namespace.
type IdentifierKind string

const (
	KindFunctionName      IdentifierKind = "function"
	KindOperationTypeName IdentifierKind = "operation-type"
	KindHookName          IdentifierKind = "hook"
	KindTypeName          IdentifierKind = "type"
	KindQueryTypeName     IdentifierKind = "query-type"
	KindVariablesTypeName IdentifierKind = "variables-type"
	KindQueryKey          IdentifierKind = "query-key"
	KindMutationKey       IdentifierKind = "mutation-key"
)

// IdentifierKinds lists every kind in table order.
var IdentifierKinds = []IdentifierKind{
	KindFunctionName,
	KindOperationTypeName,
	KindHookName,
	KindTypeName,
	KindQueryTypeName,
	KindVariablesTypeName,
	KindQueryKey,
	KindMutationKey,
}

// Identifier is one derived name or key.
type Identifier struct {
	Kind IdentifierKind
	// Operation indexes IR.Operations; -1 for schema type names.
	Operation int
	// Schema is set for schema type names.
	Schema NodeRef
	Value  string
	// Tokens are the words the value was assembled from.
	Tokens []string `json:",omitempty" yaml:",omitempty"`
}

// KeyStyle selects a cache-key convention.
type KeyStyle string

const (
	// KeyStructured is [route pattern, ...args].
	KeyStructured KeyStyle = "structured"
	// KeyFlattened is [METHOD, literal path, ...args].
	KeyFlattened KeyStyle = "flattened"
)

// CacheKey describes a key literal. Emitters render Head as string literals,
// Path (flattened only) as a path expression over call arguments, and Args
// as the call arguments themselves.
type CacheKey struct {
	Style KeyStyle
	Head  []string
	Path  []Segment `json:",omitempty" yaml:",omitempty"`
	Args  []string  `json:",omitempty" yaml:",omitempty"`
}

// OperationNames bundles every identifier derived for one operation.
type OperationNames struct {
	Function Identifier
	TypeName Identifier
	Hook     Identifier
	// QueryType names the query-parameter type when the operation has any;
	// VariablesType names the argument object of a mutation.
	QueryType     *Identifier `json:",omitempty" yaml:",omitempty"`
	VariablesType *Identifier `json:",omitempty" yaml:",omitempty"`
	// QueryKey is set for query operations, MutationKey for mutations.
	QueryKey    *Identifier `json:",omitempty" yaml:",omitempty"`
	MutationKey *Identifier `json:",omitempty" yaml:",omitempty"`

	// RoutePattern is the path with ":name" placeholders, e.g. "/sessions/:sessionId".
	RoutePattern string
	// KeyArgs are the call arguments in signature order: path params, then
	// "query" and "body" when present.
	KeyArgs []string `json:",omitempty" yaml:",omitempty"`

	StructuredKey CacheKey
	FlattenedKey  CacheKey
}
