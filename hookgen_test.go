package hookgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSpecMissingFile(t *testing.T) {
	assert.Error(t, ValidateSpec("/no/such/file.yaml"))
}

func TestBuildIRFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
openapi: 3.0.3
info: {title: pets, version: "1.0.0"}
paths:
  /pets:
    get:
      tags: [pets]
      responses:
        "200": {description: ok}
`), 0o644))

	in, err := BuildIR(path)
	require.NoError(t, err)
	require.Len(t, in.Operations, 1)
	assert.Equal(t, "getPets", in.Names[0].Function.Value)
	assert.Equal(t, "pets", in.Title)
}
