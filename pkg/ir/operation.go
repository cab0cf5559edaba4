package ir

import "strings"

// ParamLocation is where a parameter travels.
type ParamLocation string

const (
	InPath   ParamLocation = "path"
	InQuery  ParamLocation = "query"
	InHeader ParamLocation = "header"
	InCookie ParamLocation = "cookie"
)

// Param is one declared parameter of an operation.
type Param struct {
	Name        string
	In          ParamLocation
	Required    bool
	Schema      NodeRef
	Description string `json:",omitempty" yaml:",omitempty"`
	Deprecated  bool   `json:",omitempty" yaml:",omitempty"`
}

// Body is the request body for one content type. Only JSON-class bodies are
// typed; every other content type is opaque and has no schema.
type Body struct {
	ContentType string
	Typed       bool
	Schema      NodeRef
	Required    bool
}

// Response is one discriminated response variant, keyed by status and content type.
type Response struct {
	// Status is the key as written: "200", "401", "2XX" or "default".
	Status string
	// Code is the numeric status, 0 for ranges and default.
	Code        int
	ContentType string `json:",omitempty" yaml:",omitempty"`
	Typed       bool
	Schema      NodeRef
	Description string `json:",omitempty" yaml:",omitempty"`
}

// HasBody reports whether the variant carries a payload.
func (r Response) HasBody() bool { return r.ContentType != "" }

// IsSuccess reports whether the variant is a 2xx response.
func (r Response) IsSuccess() bool {
	if r.Code != 0 {
		return r.Code >= 200 && r.Code < 300
	}
	return strings.EqualFold(r.Status, "2XX")
}

// SegmentPart is a literal run or a parameter reference inside one path segment.
type SegmentPart struct {
	Literal string `json:",omitempty" yaml:",omitempty"`
	Param   string `json:",omitempty" yaml:",omitempty"`
}

// IsParam reports whether the part is a parameter reference.
func (p SegmentPart) IsParam() bool { return p.Param != "" }

// Segment is one slash-delimited piece of a path template.
type Segment struct {
	Parts []SegmentPart
}

// IsParam reports whether the whole segment is a single parameter.
func (s Segment) IsParam() bool {
	return len(s.Parts) == 1 && s.Parts[0].IsParam()
}

// Params lists the parameter names used in the segment.
func (s Segment) Params() []string {
	var out []string
	for _, p := range s.Parts {
		if p.IsParam() {
			out = append(out, p.Param)
		}
	}
	return out
}

// Render writes the segment with each parameter formatted by param.
func (s Segment) Render(param func(name string) string) string {
	var b strings.Builder
	for _, p := range s.Parts {
		if p.IsParam() {
			b.WriteString(param(p.Param))
		} else {
			b.WriteString(p.Literal)
		}
	}
	return b.String()
}

// Operation is the canonical model of one (method, path) pair. It is built
// once per run and never mutated by emitters.
type Operation struct {
	Method string
	Path   string

	Segments []Segment

	PathParams   []Param `json:",omitempty" yaml:",omitempty"`
	QueryParams  []Param `json:",omitempty" yaml:",omitempty"`
	HeaderParams []Param `json:",omitempty" yaml:",omitempty"`
	CookieParams []Param `json:",omitempty" yaml:",omitempty"`

	RequestBodies []Body     `json:",omitempty" yaml:",omitempty"`
	Responses     []Response `json:",omitempty" yaml:",omitempty"`

	OperationID string   `json:",omitempty" yaml:",omitempty"`
	Summary     string   `json:",omitempty" yaml:",omitempty"`
	Description string   `json:",omitempty" yaml:",omitempty"`
	Deprecated  bool     `json:",omitempty" yaml:",omitempty"`
	Tags        []string `json:",omitempty" yaml:",omitempty"`
	// Security lists the security scheme keys that apply, in requirement order.
	Security []string `json:",omitempty" yaml:",omitempty"`
}

// UntaggedTag is the tag of operations that declare none.
const UntaggedTag = "misc"

// EffectiveTags returns the declared tags, or UntaggedTag when there are none.
func (o Operation) EffectiveTags() []string {
	if len(o.Tags) == 0 {
		return []string{UntaggedTag}
	}
	return o.Tags
}

// Key returns "METHOD path", the operation's identity.
func (o Operation) Key() string { return o.Method + " " + o.Path }

// RenderPath formats the template with each parameter rendered by param.
func (o Operation) RenderPath(param func(name string) string) string {
	if len(o.Segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range o.Segments {
		b.WriteByte('/')
		b.WriteString(s.Render(param))
	}
	return b.String()
}

// OrderedPathParams returns the path parameters in template order.
func (o Operation) OrderedPathParams() []Param {
	index := make(map[string]Param, len(o.PathParams))
	for _, p := range o.PathParams {
		index[p.Name] = p
	}
	out := make([]Param, 0, len(o.PathParams))
	for _, s := range o.Segments {
		for _, name := range s.Params() {
			if p, ok := index[name]; ok {
				out = append(out, p)
			}
		}
	}
	return out
}

// JSONBody returns the first typed request body, if any.
func (o Operation) JSONBody() (Body, bool) {
	for _, b := range o.RequestBodies {
		if b.Typed {
			return b, true
		}
	}
	return Body{}, false
}

// HasBody reports whether the operation accepts any request body.
func (o Operation) HasBody() bool { return len(o.RequestBodies) > 0 }

// SuccessResponses returns the 2xx variants in document order.
func (o Operation) SuccessResponses() []Response {
	var out []Response
	for _, r := range o.Responses {
		if r.IsSuccess() {
			out = append(out, r)
		}
	}
	return out
}

// ErrorResponses returns the non-2xx variants in document order.
func (o Operation) ErrorResponses() []Response {
	var out []Response
	for _, r := range o.Responses {
		if !r.IsSuccess() {
			out = append(out, r)
		}
	}
	return out
}

// IsQuery reports whether the operation reads data and gets a query key.
func (o Operation) IsQuery() bool { return o.Method == "GET" }

// IsMutation reports whether the operation changes data and gets a mutation key.
func (o Operation) IsMutation() bool {
	switch o.Method {
	case "POST", "PUT", "PATCH", "DELETE":
		return true
	}
	return false
}

// MethodRank orders HTTP methods canonically.
func MethodRank(method string) int {
	for i, m := range Methods {
		if m == method {
			return i
		}
	}
	return len(Methods)
}

// Methods lists supported HTTP methods in canonical order.
var Methods = []string{"GET", "HEAD", "OPTIONS", "TRACE", "POST", "PUT", "PATCH", "DELETE"}
