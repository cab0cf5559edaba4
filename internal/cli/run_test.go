package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const petsAPI = `
openapi: 3.0.3
info: {title: pets, version: 1.0.0}
paths:
  /pets/{petId}:
    get:
      parameters:
        - {name: petId, in: path, required: true, schema: {type: integer}}
      responses:
        "200":
          description: a pet
          content:
            application/json:
              schema:
                type: object
                properties:
                  name: {type: string}
`

func writeSpec(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(petsAPI), 0o644))
	return path
}

func quiet() *bytes.Buffer { return &bytes.Buffer{} }

func TestRunInspect(t *testing.T) {
	spec := writeSpec(t)
	logger := NewLogger(quiet(), true)

	var out bytes.Buffer
	require.NoError(t, RunInspect(logger, &out, spec, "json"))
	var dumped map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &dumped))
	assert.Equal(t, "pets", dumped["Title"])
	assert.Contains(t, out.String(), `"getPetsPetId"`)

	out.Reset()
	require.NoError(t, RunInspect(logger, &out, spec, "yaml"))
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &dumped))
	assert.Contains(t, out.String(), "value: getPetsPetId")

	assert.ErrorContains(t, RunInspect(logger, io.Discard, spec, "toml"), `unknown format "toml"`)
}

func TestRunGenerateRequiresInputs(t *testing.T) {
	err := RunGenerate(NewLogger(quiet(), false), RunGenerateParams{Fallback: FallbackParams{Spec: "x.yaml"}})
	assert.ErrorContains(t, err, "either --config or all of")
}

func TestRunGenerateFallback(t *testing.T) {
	spec := writeSpec(t)
	out := filepath.Join(t.TempDir(), "client")
	logs := quiet()

	err := RunGenerate(NewLogger(logs, false), RunGenerateParams{Fallback: FallbackParams{
		Spec:        spec,
		Type:        "typescript",
		OutDir:      out,
		PackageName: "pets",
		Name:        "PetsClient",
		Version:     "2.0.0",
	}})
	require.NoError(t, err)

	pkg, err := os.ReadFile(filepath.Join(out, "package.json"))
	require.NoError(t, err)
	assert.Contains(t, string(pkg), `"version": "2.0.0"`)
	assert.FileExists(t, filepath.Join(out, "src", "rpc.ts"))
	assert.Contains(t, logs.String(), "generated client")
}

func TestRunGenerateRejectsBadVersion(t *testing.T) {
	err := RunGenerate(NewLogger(quiet(), false), RunGenerateParams{Fallback: FallbackParams{
		Spec: writeSpec(t), Type: "go", OutDir: t.TempDir(), PackageName: "pets", Name: "Pets", Version: "latest",
	}})
	assert.ErrorContains(t, err, `invalid version "latest"`)
}
