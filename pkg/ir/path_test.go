package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		path    string
		labels  []string
		pattern string
	}{
		{"/", nil, "/"},
		{"/sessions/{sessionId}", []string{"sessions", "{}"}, "/sessions/:sessionId"},
		{"/sessions/trusted-devices/", []string{"sessions", "trusted-devices", ""}, "/sessions/trusted-devices/"},
		{"/a//b", []string{"a", "", "b"}, "/a//b"},
		{"/files/{name}.{ext}", []string{"files", "{}.{}"}, "/files/:name.:ext"},
		{"/v1/users:search", []string{"v1", "users:search"}, `/v1/users\:search`},
		{"/a/:b", []string{"a", ":b"}, `/a/\:b`},
		{`/a/x\y`, []string{"a", `x\y`}, `/a/x\\y`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			segs, err := ParseTemplate(tt.path)
			require.NoError(t, err)
			var labels []string
			for _, s := range segs {
				labels = append(labels, s.RouteLabel())
			}
			assert.Equal(t, tt.labels, labels)
			assert.Equal(t, tt.pattern, RoutePattern(segs))
		})
	}
}

func TestRoutePatternIsLossless(t *testing.T) {
	paths := []string{"/sessions", "/sessions/", "/a/{b}", "/a/:b", `/a/\:b`, "/a//b", "/files/{name}.{ext}"}
	seen := map[string]string{}
	for _, p := range paths {
		segs, err := ParseTemplate(p)
		require.NoError(t, err)
		pattern := RoutePattern(segs)
		if prev, ok := seen[pattern]; ok {
			t.Fatalf("%q and %q share pattern %q", prev, p, pattern)
		}
		seen[pattern] = p

		op := Operation{Path: p, Segments: segs}
		assert.Equal(t, p, op.RenderPath(func(n string) string { return "{" + n + "}" }), "segments render back to the template")
	}
}

func TestParseTemplateErrors(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"sessions", "must start with '/'"},
		{"/a/{id", "unmatched '{'"},
		{"/a/id}", "unmatched '}'"},
		{"/a/{}", "empty parameter name"},
		{"/a/{x{y}}", "unmatched"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := ParseTemplate(tt.path)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestSegmentParams(t *testing.T) {
	segs, err := ParseTemplate("/files/{name}.{ext}")
	require.NoError(t, err)
	assert.False(t, segs[1].IsParam())
	assert.Equal(t, []string{"name", "ext"}, segs[1].Params())

	op := Operation{Method: "GET", Path: "/files/{name}.{ext}", Segments: segs,
		PathParams: []Param{{Name: "ext", In: InPath}, {Name: "name", In: InPath}}}
	assert.Equal(t, "/files/<name>.<ext>", op.RenderPath(func(n string) string { return "<" + n + ">" }))
	ordered := op.OrderedPathParams()
	require.Len(t, ordered, 2)
	assert.Equal(t, "name", ordered[0].Name)
}

func TestResponseClassification(t *testing.T) {
	op := Operation{Responses: []Response{
		{Status: "200", Code: 200},
		{Status: "2XX"},
		{Status: "401", Code: 401},
		{Status: "default"},
	}}
	assert.Len(t, op.SuccessResponses(), 2)
	assert.Len(t, op.ErrorResponses(), 2)
	assert.True(t, Operation{Method: "GET"}.IsQuery())
	assert.True(t, Operation{Method: "PATCH"}.IsMutation())
	assert.False(t, Operation{Method: "HEAD"}.IsMutation())
	assert.Less(t, MethodRank("GET"), MethodRank("DELETE"))
}
