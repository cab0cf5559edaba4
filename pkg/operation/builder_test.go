package operation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/hookgen/pkg/generrors"
	"github.com/blimu-dev/hookgen/pkg/ir"
	"github.com/blimu-dev/hookgen/pkg/openapi"
	"github.com/blimu-dev/hookgen/pkg/schema"
)

const sessions = `
openapi: 3.0.3
info: {title: auth, version: 1.0.0}
security:
  - bearerAuth: []
paths:
  /sessions/{sessionId}:
    parameters:
      - {name: sessionId, in: path, required: true, schema: {type: string}}
      - {name: X-Trace, in: header, schema: {type: string}, description: inherited}
    get:
      operationId: getSession
      tags: [sessions]
      parameters:
        - {name: X-Trace, in: header, schema: {type: string}, description: overridden}
        - {name: expand, in: query, schema: {type: boolean}}
      responses:
        "200":
          description: the session
          content:
            application/json:
              schema: {$ref: '#/components/schemas/Session'}
        "401":
          $ref: '#/components/responses/Unauthorized'
        "204":
          description: nothing
    delete:
      security: []
      responses:
        "204": {description: gone}
  /sessions/trusted-devices:
    post:
      requestBody:
        required: true
        content:
          application/merge-patch+json:
            schema:
              type: object
              properties:
                name: {type: string}
          application/octet-stream:
            schema: {type: string, format: binary}
      responses:
        "201":
          description: created
          content:
            application/json:
              schema: {$ref: '#/components/schemas/Session'}
            text/plain:
              schema: {type: string}
        4XX: {description: client error}
components:
  securitySchemes:
    bearerAuth: {type: http, scheme: bearer}
  responses:
    Unauthorized:
      description: not signed in
      content:
        application/problem+json:
          schema: {$ref: '#/components/schemas/Problem'}
  schemas:
    Session:
      type: object
      properties:
        id: {type: string}
    Problem:
      type: object
      properties:
        title: {type: string}
`

func build(t *testing.T, src string) ([]ir.Operation, *schema.Result, error) {
	t.Helper()
	doc, err := openapi.LoadData([]byte(src))
	require.NoError(t, err)
	res, err := schema.Build(doc)
	require.NoError(t, err)
	ops, err := Build(doc, res)
	return ops, res, err
}

func TestBuildOrdersOperations(t *testing.T) {
	ops, _, err := build(t, sessions)
	require.NoError(t, err)

	var keys []string
	for _, op := range ops {
		keys = append(keys, op.Key())
	}
	assert.Equal(t, []string{
		"POST /sessions/trusted-devices",
		"GET /sessions/{sessionId}",
		"DELETE /sessions/{sessionId}",
	}, keys)
}

func TestBuildSessionOperation(t *testing.T) {
	ops, res, err := build(t, sessions)
	require.NoError(t, err)
	op := ops[1]
	session, _ := res.Graph.Named("Session")
	problem, _ := res.Graph.Named("Problem")

	require.Len(t, op.PathParams, 1)
	assert.Equal(t, "sessionId", op.PathParams[0].Name)
	assert.True(t, op.PathParams[0].Required)
	assert.Equal(t, ir.ScalarString, res.Graph.Node(op.PathParams[0].Schema).Scalar)

	require.Len(t, op.HeaderParams, 1)
	assert.Equal(t, "overridden", op.HeaderParams[0].Description)
	require.Len(t, op.QueryParams, 1)
	assert.Equal(t, "expand", op.QueryParams[0].Name)

	require.Len(t, op.Responses, 3)
	assert.Equal(t, ir.Response{Status: "200", Code: 200, ContentType: "application/json", Typed: true, Schema: session, Description: "the session"}, op.Responses[0])
	assert.Equal(t, "401", op.Responses[1].Status)
	assert.Equal(t, problem, op.Responses[1].Schema)
	assert.True(t, op.Responses[1].Typed)
	assert.Equal(t, "204", op.Responses[2].Status)
	assert.False(t, op.Responses[2].HasBody())
	assert.Equal(t, ir.NoNode, op.Responses[2].Schema)

	assert.Len(t, op.SuccessResponses(), 2)
	assert.Len(t, op.ErrorResponses(), 1)
	assert.Equal(t, []string{"bearerAuth"}, op.Security)
	assert.Equal(t, []string{"sessions"}, op.Tags)
	assert.Equal(t, "getSession", op.OperationID)
}

func TestBuildBodiesAndContentTypes(t *testing.T) {
	ops, res, err := build(t, sessions)
	require.NoError(t, err)

	del := ops[2]
	assert.Empty(t, del.Security, "an empty requirement list opts out")

	post := ops[0]
	require.Len(t, post.RequestBodies, 2)
	assert.Equal(t, "application/merge-patch+json", post.RequestBodies[0].ContentType)
	assert.True(t, post.RequestBodies[0].Typed)
	assert.True(t, post.RequestBodies[0].Required)
	assert.Equal(t, ir.KindObject, res.Graph.Node(post.RequestBodies[0].Schema).Kind)
	assert.False(t, post.RequestBodies[1].Typed)
	assert.Equal(t, ir.NoNode, post.RequestBodies[1].Schema)

	body, ok := post.JSONBody()
	require.True(t, ok)
	assert.Equal(t, "application/merge-patch+json", body.ContentType)

	require.Len(t, post.Responses, 3)
	assert.Equal(t, "application/json", post.Responses[0].ContentType)
	assert.Equal(t, "text/plain", post.Responses[1].ContentType)
	assert.False(t, post.Responses[1].Typed)
	assert.Equal(t, "4XX", post.Responses[2].Status)
	assert.Equal(t, 0, post.Responses[2].Code)
	assert.False(t, post.Responses[2].IsSuccess())
}

func TestBuildRejectsMalformedParameters(t *testing.T) {
	tests := []struct {
		name string
		path string
		spec string
		want string
	}{
		{
			name: "undeclared template parameter",
			path: "/users/{userId}",
			spec: `
paths:
  /users/{userId}:
    get:
      responses: {"200": {description: ok}}`,
			want: "path template parameters not declared: userId",
		},
		{
			name: "path parameter missing from template",
			path: "/users",
			spec: `
paths:
  /users:
    get:
      parameters:
        - {name: userId, in: path, required: true, schema: {type: string}}
      responses: {"200": {description: ok}}`,
			want: `path parameter "userId" is not in the path template`,
		},
		{
			name: "repeated template parameter",
			path: "/a/{id}/b/{id}",
			spec: `
paths:
  /a/{id}/b/{id}:
    get:
      parameters:
        - {name: id, in: path, required: true, schema: {type: string}}
      responses: {"200": {description: ok}}`,
			want: `path parameter "id" appears more than once in the template`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := build(t, "openapi: 3.0.3\ninfo: {title: t, version: 1.0.0}"+tt.spec+"\n")
			require.Error(t, err)
			var operr *generrors.OperationModelError
			require.ErrorAs(t, err, &operr)
			assert.Equal(t, "GET", operr.Method)
			assert.Equal(t, tt.path, operr.Path)
			assert.Equal(t, tt.want, operr.Message)
			assert.True(t, generrors.IsFatal(err))
		})
	}
}

func TestIsJSON(t *testing.T) {
	tests := map[string]bool{
		"application/json":                true,
		"application/json; charset=utf-8": true,
		"application/problem+json":        true,
		"text/json":                       true,
		"APPLICATION/JSON":                true,
		"text/plain":                      false,
		"application/octet-stream":        false,
		"multipart/form-data":             false,
		"application/x-ndjson":            false,
	}
	for ct, want := range tests {
		t.Run(ct, func(t *testing.T) {
			assert.Equal(t, want, IsJSON(ct))
		})
	}
}

func TestMergeParamsReplacesInPlace(t *testing.T) {
	doc, err := openapi.LoadData([]byte(sessions))
	require.NoError(t, err)
	item := doc.Paths.Value("/sessions/{sessionId}")

	merged := mergeParams(item.Parameters, item.Get.Parameters)
	var names []string
	for _, p := range merged {
		names = append(names, p.In+":"+p.Name)
	}
	assert.Equal(t, []string{"path:sessionId", "header:X-Trace", "query:expand"}, names)
}
