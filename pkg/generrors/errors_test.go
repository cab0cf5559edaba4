package generrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolutionError(t *testing.T) {
	cause := errors.New("not found")
	err := &ResolutionError{Ref: "#/components/schemas/Missing", Pointer: "/components/schemas/A/properties/b", Cause: cause}

	assert.Equal(t, "resolution error: unresolvable reference #/components/schemas/Missing at /components/schemas/A/properties/b: not found", err.Error())
	assert.ErrorIs(t, err, ErrResolution)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrOperationModel)
	assert.True(t, IsFatal(err))
}

func TestOperationModelError(t *testing.T) {
	err := &OperationModelError{Method: "GET", Path: "/a/{b", Message: "unmatched '{'"}
	wrapped := fmt.Errorf("building operations: %w", err)

	assert.Equal(t, "operation model error in GET /a/{b: unmatched '{'", err.Error())
	assert.ErrorIs(t, wrapped, ErrOperationModel)

	var target *OperationModelError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "/a/{b", target.Path)
}

func TestUnsupportedFeatureError(t *testing.T) {
	err := &UnsupportedFeatureError{Pointer: "/components/schemas/X", Feature: "not"}

	assert.Equal(t, "unsupported feature not at /components/schemas/X", err.Error())
	assert.ErrorIs(t, err, ErrUnsupportedFeature)
	assert.False(t, IsFatal(err))
	assert.False(t, IsFatal(nil))
}

func TestIdentifierCollisionError(t *testing.T) {
	err := &IdentifierCollisionError{Kind: "function", Value: "getFoo", Sources: []string{"GET /foo", "GET /f-oo"}}

	assert.Equal(t, `identifier collision: function "getFoo" claimed by GET /foo, GET /f-oo`, err.Error())
	assert.ErrorIs(t, err, ErrIdentifierCollision)
	assert.True(t, IsFatal(err))
}
