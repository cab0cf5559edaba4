package emit

import (
	"testing"
	"testing/fstest"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilityString(t *testing.T) {
	assert.Equal(t, "none", Capability(0).String())
	assert.Equal(t, "query-hook|key-literal", (CapQueryHook | CapKeyLiteral).String())
	assert.True(t, (CapRawCall | CapKeyLiteral).Has(CapRawCall))
	assert.False(t, CapRawCall.Has(CapRawCall|CapQueryHook))
}

func TestRendererUsesSprigAndExtras(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/hello.gotmpl": {Data: []byte(`{{ shout .Name }} {{ .Name | upper }} {{ list 1 2 | len }}`)},
	}
	r := NewRenderer(fsys, "templates", Funcs(template.FuncMap{
		"shout": func(s string) string { return s + "!" },
	}))

	files, err := r.RenderAll([]Job{{Template: "hello.gotmpl", Path: "out.txt"}}, map[string]string{"Name": "hi"})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "out.txt", files[0].Path)
	assert.Equal(t, "hi! HI 2", string(files[0].Content))
}

func TestRendererMissingTemplate(t *testing.T) {
	r := NewRenderer(fstest.MapFS{}, "templates", Funcs(nil))
	_, err := r.Render("nope.gotmpl", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read template nope.gotmpl")
}
