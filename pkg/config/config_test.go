package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hookgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
spec: https://api.example.com/openapi.yaml
name: example
clients:
  - type: react-query
    outDir: ./out/web
    packageName: "@example/web"
    name: ExampleClient
    version: 1.2.3
    includeTags: ["^sessions"]
    exclude: [package.json]
    postCommand: ["npx", "prettier", "-w", "."]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/openapi.yaml", cfg.Spec, "URLs are kept as-is")
	require.Len(t, cfg.Clients, 1)
	c := cfg.Clients[0]
	assert.True(t, filepath.IsAbs(c.OutDir))
	assert.Equal(t, "1.2.3", c.ResolvedVersion())
	assert.Equal(t, []string{"^sessions"}, c.IncludeTags)
	assert.Equal(t, []string{"npx", "prettier", "-w", "."}, c.GetPostCommand())
	assert.Empty(t, c.GetPreCommand())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing spec", "clients: []", "config.spec is required"},
		{"missing client fields", "spec: a.yaml\nclients:\n  - type: go\n", "clients[0]: missing required fields"},
		{"bad version", "spec: a.yaml\nclients:\n  - {type: go, outDir: o, packageName: p, name: n, version: v1}\n", `clients[0]: invalid version "v1"`},
		{"bad yaml", "spec: [", "failed to parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResolvedVersionDefault(t *testing.T) {
	c := Client{}
	assert.Equal(t, DefaultVersion, c.ResolvedVersion())
}

func TestShouldExcludeFile(t *testing.T) {
	out := t.TempDir()
	c := Client{OutDir: out, ExcludeFiles: []string{"package.json", "src/generated"}}

	assert.True(t, c.ShouldExcludeFile(filepath.Join(out, "package.json")))
	assert.True(t, c.ShouldExcludeFile(filepath.Join(out, "src", "generated", "x.ts")))
	assert.False(t, c.ShouldExcludeFile(filepath.Join(out, "src", "client.ts")))
	assert.False(t, (&Client{OutDir: out}).ShouldExcludeFile(filepath.Join(out, "package.json")))
}
