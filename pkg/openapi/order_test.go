package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordered = `
openapi: 3.0.3
info: {title: order, version: "1"}
paths:
  /b:
    get:
      responses:
        "404": {description: missing}
        "200":
          description: ok
          content:
            text/plain: {schema: {type: string}}
            application/json: {schema: {type: object}}
  /a/{id}:
    delete:
      parameters:
        - {name: id, in: path, required: true, schema: {type: string}}
      responses:
        "204": {description: gone}
    get:
      parameters:
        - {name: id, in: path, required: true, schema: {type: string}}
      responses:
        "200": {description: ok}
components:
  schemas:
    Zeta:
      type: object
      properties:
        z: {type: string}
        "a/b": {type: string}
        a: {type: string}
    Alpha: {type: string}
`

func TestIndexOrder(t *testing.T) {
	o, err := IndexOrder([]byte(ordered))
	require.NoError(t, err)

	assert.Equal(t, []string{"/b", "/a/{id}"}, o.Keys("/paths"))
	assert.Equal(t, []string{"z", "a/b", "a"}, o.Keys("/components/schemas/Zeta/properties"))
	assert.Equal(t, []string{"404", "200"}, o.Keys("/paths/~1b/get/responses"))
	assert.Nil(t, o.Keys("/nowhere"))

	_, err = IndexOrder([]byte("a: [b"))
	assert.Error(t, err)
}

func TestOrderedKeys(t *testing.T) {
	o, err := IndexOrder([]byte(ordered))
	require.NoError(t, err)

	m := map[string]int{"a": 1, "z": 2, "a/b": 3, "extra": 4, "another": 5}
	assert.Equal(t, []string{"z", "a/b", "a", "another", "extra"},
		OrderedKeys(o, "/components/schemas/Zeta/properties", m),
		"declared keys first, unknown keys sorted after")
	assert.Equal(t, []string{"a", "a/b", "another", "extra", "z"}, OrderedKeys[int](nil, "", m))
}

func TestPointer(t *testing.T) {
	assert.Equal(t, "/paths/~1a~1{id}/get", Pointer("/paths", "/a/{id}", "get"))
	assert.Equal(t, "/x/m~0n", Pointer("/x", "m~n"))
	assert.Equal(t, "/components/responses/Unauthorized", RefPointer("#/components/responses/Unauthorized", "fallback"))
	assert.Equal(t, "fallback", RefPointer("other.yaml#/x", "fallback"))
}

func TestLoadDataOperations(t *testing.T) {
	doc, err := LoadData([]byte(ordered))
	require.NoError(t, err)
	assert.NotNil(t, doc.Raw)

	var keys []string
	for _, ref := range doc.Operations() {
		keys = append(keys, ref.Method+" "+ref.Path)
	}
	assert.Equal(t, []string{"GET /a/{id}", "DELETE /a/{id}", "GET /b"}, keys, "sorted by path, then method rank")

	ops := doc.Operations()
	assert.Equal(t, "/paths/~1b/get", ops[2].Pointer)
	assert.Equal(t, []string{"404", "200"}, doc.ResponseKeys(ops[2]))
	content := ops[2].Operation.Responses.Value("200").Value.Content
	assert.Equal(t, []string{"text/plain", "application/json"},
		doc.ContentTypes("/paths/~1b/get/responses/200/content", content))
	assert.Equal(t, []string{"Alpha", "Zeta"}, doc.SchemaNames())
}

func TestWrapFallsBackToSortedOrder(t *testing.T) {
	loaded, err := LoadData([]byte(ordered))
	require.NoError(t, err)

	doc := Wrap(loaded.T)
	assert.Nil(t, doc.Raw)
	ops := doc.Operations()
	assert.Equal(t, []string{"200", "404"}, doc.ResponseKeys(ops[2]))
}
