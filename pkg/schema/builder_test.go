package schema

import (
	"sort"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/hookgen/pkg/generrors"
	"github.com/blimu-dev/hookgen/pkg/ir"
	"github.com/blimu-dev/hookgen/pkg/openapi"
)

const multipleSameRefs = `
openapi: 3.0.3
info: {title: docs, version: 1.0.0}
paths:
  /documents:
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items: {$ref: '#/components/schemas/Document'}
  /users/{userId}/documents:
    get:
      parameters:
        - {name: userId, in: path, required: true, schema: {type: string}}
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items: {$ref: '#/components/schemas/Document'}
components:
  schemas:
    Document:
      type: object
      required: [id]
      properties:
        id: {type: string}
        attachments:
          type: array
          items: {$ref: '#/components/schemas/Attachment'}
        reviewers:
          type: array
          items: {$ref: '#/components/schemas/User'}
        owner: {$ref: '#/components/schemas/User'}
    Attachment:
      type: object
      properties:
        url: {type: string}
        uploadedBy: {$ref: '#/components/schemas/User'}
    User:
      type: object
      properties:
        id: {type: string}
        name: {type: string}
`

func load(t *testing.T, src string) *openapi.Document {
	t.Helper()
	doc, err := openapi.LoadData([]byte(src))
	require.NoError(t, err)
	return doc
}

func responseSchema(t *testing.T, doc *openapi.Document, path, method, status string) *openapi3.SchemaRef {
	t.Helper()
	op := doc.Paths.Value(path).GetOperation(method)
	require.NotNil(t, op, "%s %s", method, path)
	resp := op.Responses.Value(status)
	require.NotNil(t, resp)
	return resp.Value.Content["application/json"].Schema
}

func field(t *testing.T, g *ir.Graph, ref ir.NodeRef, name string) ir.Field {
	t.Helper()
	for _, f := range g.Node(ref).Fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("node %s has no field %q", g.Node(ref).ID, name)
	return ir.Field{}
}

func TestBuildSharesNamedSchemas(t *testing.T) {
	doc := load(t, multipleSameRefs)
	res, err := Build(doc)
	require.NoError(t, err)
	g := res.Graph

	document, ok := g.Named("Document")
	require.True(t, ok)
	user, ok := g.Named("User")
	require.True(t, ok)
	attachment, ok := g.Named("Attachment")
	require.True(t, ok)

	assert.Equal(t, ir.SchemaID("#/components/schemas/Document"), g.Node(document).ID)

	list, ok := res.NodeFor(responseSchema(t, doc, "/documents", "GET", "200"))
	require.True(t, ok)
	nested, ok := res.NodeFor(responseSchema(t, doc, "/users/{userId}/documents", "GET", "200"))
	require.True(t, ok)
	assert.Equal(t, list, nested, "identical inline arrays collapse to one node")
	assert.Equal(t, ir.KindArray, g.Node(list).Kind)
	assert.Equal(t, document, g.Node(list).Items)

	owner := field(t, g, document, "owner")
	assert.Equal(t, user, owner.Type)
	reviewers := field(t, g, document, "reviewers")
	assert.Equal(t, user, g.Node(reviewers.Type).Items)
	attachments := field(t, g, document, "attachments")
	assert.Equal(t, attachment, g.Node(attachments.Type).Items)
	assert.Equal(t, user, field(t, g, attachment, "uploadedBy").Type)

	seen := map[ir.SchemaID]int{}
	for _, n := range g.Nodes() {
		seen[n.ID]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "node %s allocated more than once", id)
	}
}

func TestBuildInternsInlineShapes(t *testing.T) {
	doc := load(t, `
openapi: 3.0.3
info: {title: people, version: 1.0.0}
paths:
  /people:
    post:
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                id: {type: string}
                name: {type: string}
                email: {type: string, format: email}
                avatar: {type: string, description: picture}
      responses:
        "201":
          description: created
          content:
            application/json:
              schema:
                type: object
                properties:
                  avatar: {type: string}
                  email: {type: string, format: email}
                  name: {type: string}
                  id: {type: string}
`)
	res, err := Build(doc)
	require.NoError(t, err)

	op := doc.Paths.Value("/people").Post
	body, ok := res.NodeFor(op.RequestBody.Value.Content["application/json"].Schema)
	require.True(t, ok)
	created, ok := res.NodeFor(responseSchema(t, doc, "/people", "POST", "201"))
	require.True(t, ok)

	assert.Equal(t, body, created)
	n := res.Graph.Node(body)
	assert.False(t, n.ID.IsNamed())
	var names []string
	for _, f := range n.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"id", "name", "email", "avatar"}, names, "first occurrence keeps its declared order")
}

func TestBuildKeepsDeclaredFieldOrder(t *testing.T) {
	doc := load(t, `
openapi: 3.0.3
info: {title: order, version: 1.0.0}
paths: {}
components:
  schemas:
    Thing:
      type: object
      properties:
        zeta: {type: string}
        alpha: {type: integer}
        mid: {type: boolean}
`)
	res, err := Build(doc)
	require.NoError(t, err)
	ref, ok := res.Graph.Named("Thing")
	require.True(t, ok)
	var names []string
	for _, f := range res.Graph.Node(ref).Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestBuildCycles(t *testing.T) {
	doc := load(t, `
openapi: 3.0.3
info: {title: tree, version: 1.0.0}
paths: {}
components:
  schemas:
    Node:
      type: object
      properties:
        parent: {$ref: '#/components/schemas/Node'}
        children:
          type: array
          items: {$ref: '#/components/schemas/Node'}
    Ping:
      type: object
      properties:
        pong: {$ref: '#/components/schemas/Pong'}
    Pong:
      type: object
      properties:
        ping: {$ref: '#/components/schemas/Ping'}
`)
	res, err := Build(doc)
	require.NoError(t, err)
	g := res.Graph

	node, _ := g.Named("Node")
	assert.Equal(t, node, field(t, g, node, "parent").Type)
	assert.Equal(t, node, g.Node(field(t, g, node, "children").Type).Items)

	ping, _ := g.Named("Ping")
	pong, _ := g.Named("Pong")
	assert.Equal(t, pong, field(t, g, ping, "pong").Type)
	assert.Equal(t, ping, field(t, g, pong, "ping").Type)
	assert.Empty(t, res.Warnings)
}

func TestBuildInlineCycleDegrades(t *testing.T) {
	loop := &openapi3.Schema{Type: &openapi3.Types{openapi3.TypeObject}, Properties: openapi3.Schemas{}}
	loop.Properties["self"] = &openapi3.SchemaRef{Value: loop}
	doc := openapi.Wrap(&openapi3.T{
		OpenAPI: "3.0.3",
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{Schemas: openapi3.Schemas{
			"Loop": {Value: loop},
		}},
	})

	res, err := Build(doc)
	require.NoError(t, err)
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, "cycle", res.Warnings[0].Feature)
	assert.ErrorIs(t, res.Warnings[0], generrors.ErrUnsupportedFeature)
}

func TestBuildNullableUnion(t *testing.T) {
	doc := load(t, `
openapi: 3.0.3
info: {title: pets, version: 1.0.0}
paths: {}
components:
  schemas:
    Cat: {type: object, properties: {meow: {type: boolean}}}
    Dog: {type: object, properties: {bark: {type: boolean}}}
    Pet:
      nullable: true
      oneOf:
        - $ref: '#/components/schemas/Cat'
        - $ref: '#/components/schemas/Dog'
      discriminator:
        propertyName: kind
`)
	res, err := Build(doc)
	require.NoError(t, err)
	g := res.Graph

	pet, _ := g.Named("Pet")
	cat, _ := g.Named("Cat")
	dog, _ := g.Named("Dog")
	n := g.Node(pet)
	require.Equal(t, ir.KindNullable, n.Kind)
	union := g.Node(n.Inner)
	require.Equal(t, ir.KindUnion, union.Kind)
	assert.Equal(t, ir.UnionOneOf, union.UnionMode)
	assert.Equal(t, []ir.NodeRef{cat, dog}, union.Variants)
	require.NotNil(t, union.Discriminator)
	assert.Equal(t, "kind", union.Discriminator.PropertyName)
}

func TestBuildShapes(t *testing.T) {
	doc := load(t, `
openapi: 3.0.3
info: {title: shapes, version: 1.0.0}
paths: {}
components:
  schemas:
    Counts:
      type: object
      additionalProperties: {type: integer}
    Status:
      type: string
      enum: [active, revoked]
    Negated:
      type: object
      properties:
        anything:
          not: {type: string}
    Alias:
      $ref: '#/components/schemas/Status'
    Merged:
      allOf:
        - $ref: '#/components/schemas/Counts'
        - type: object
          properties:
            total: {type: integer}
`)
	res, err := Build(doc)
	require.NoError(t, err)
	g := res.Graph

	counts, _ := g.Named("Counts")
	require.Equal(t, ir.KindMap, g.Node(counts).Kind)
	value := g.Node(g.Node(counts).MapValue)
	assert.Equal(t, ir.KindScalar, value.Kind)
	assert.Equal(t, ir.ScalarInteger, value.Scalar)

	status, _ := g.Named("Status")
	assert.Equal(t, ir.KindEnum, g.Node(status).Kind)
	assert.Equal(t, []any{"active", "revoked"}, g.Node(status).Values)

	negated, _ := g.Named("Negated")
	assert.Equal(t, ir.KindUnknown, g.Node(field(t, g, negated, "anything").Type).Kind)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "not", res.Warnings[0].Feature)
	assert.Equal(t, "/components/schemas/Negated/properties/anything/not", res.Warnings[0].Pointer)

	alias, _ := g.Named("Alias")
	assert.Equal(t, ir.KindIntersection, g.Node(alias).Kind)
	assert.Equal(t, []ir.NodeRef{status}, g.Node(alias).Variants)

	merged, _ := g.Named("Merged")
	require.Equal(t, ir.KindIntersection, g.Node(merged).Kind)
	require.Len(t, g.Node(merged).Variants, 2)
	assert.Equal(t, counts, g.Node(merged).Variants[0])
}

func TestBuildUnresolvableReference(t *testing.T) {
	doc := openapi.Wrap(&openapi3.T{
		OpenAPI: "3.0.3",
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{Schemas: openapi3.Schemas{
			"Holder": {Value: &openapi3.Schema{
				Type: &openapi3.Types{openapi3.TypeObject},
				Properties: openapi3.Schemas{
					"missing": {Ref: "#/components/schemas/Missing"},
				},
			}},
		}},
	})

	_, err := Build(doc)
	require.Error(t, err)
	var rerr *generrors.ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "#/components/schemas/Missing", rerr.Ref)
	assert.Equal(t, "/components/schemas/Holder/properties/missing", rerr.Pointer)
	assert.True(t, generrors.IsFatal(err))
}

func TestBuildIndependentOfDeclarationOrder(t *testing.T) {
	a := load(t, `
openapi: 3.0.3
info: {title: a, version: 1.0.0}
paths: {}
components:
  schemas:
    B: {type: object, properties: {x: {type: string}, y: {$ref: '#/components/schemas/A'}}}
    A: {type: array, items: {type: object, properties: {p: {type: integer}, q: {type: string}}}}
`)
	b := load(t, `
openapi: 3.0.3
info: {title: b, version: 1.0.0}
paths: {}
components:
  schemas:
    A: {type: array, items: {type: object, properties: {q: {type: string}, p: {type: integer}}}}
    B: {type: object, properties: {y: {$ref: '#/components/schemas/A'}, x: {type: string}}}
`)
	ra, err := Build(a)
	require.NoError(t, err)
	rb, err := Build(b)
	require.NoError(t, err)

	ids := func(g *ir.Graph) []string {
		var out []string
		for _, n := range g.Nodes() {
			out = append(out, string(n.ID))
		}
		sort.Strings(out)
		return out
	}
	assert.Equal(t, ids(ra.Graph), ids(rb.Graph))
}

func TestExternalName(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"common.yaml#/components/schemas/Error", "Error"},
		{"./models/pet.yaml", "pet"},
		{"https://example.com/defs.json#/Money", "Money"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, externalName(tt.ref))
		})
	}
}
