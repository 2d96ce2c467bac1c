package utils

import (
	"context"
	"testing"

	"pnregistry-dbinit/internal/shared/contextkeys"

	"github.com/stretchr/testify/assert"
)

func TestGetSetContextValues(t *testing.T) {
	ctx := context.Background()
	ctx = WithRunID(ctx, "run-1")
	ctx = WithTarget(ctx, "pn-registry", "records")
	ctx = WithComponent(ctx, "initializer")
	ctx = WithOperation(ctx, "create_index")

	runID, err := GetRunIDFromContext(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "run-1", runID)

	assert.Equal(t, "pn-registry", ctx.Value(contextkeys.DatabaseKey))
	assert.Equal(t, "records", ctx.Value(contextkeys.CollectionKey))
	assert.Equal(t, "initializer", ctx.Value(contextkeys.ComponentKey))
	assert.Equal(t, "create_index", ctx.Value(contextkeys.OperationKey))

	assert.True(t, HasRunID(ctx))
	assert.Equal(t, "run-1", GetRunIDOrDefault(ctx, "default"))
}

func TestContextUtils_MissingValues(t *testing.T) {
	ctx := context.Background()

	_, err := GetRunIDFromContext(ctx)
	assert.ErrorIs(t, err, ErrRunIDNotFound)
	assert.Equal(t, "runID not found in context", err.Error())

	assert.Equal(t, "default", GetRunIDOrDefault(ctx, "default"))
	assert.False(t, HasRunID(ctx))
	assert.False(t, HasRunID(WithRunID(ctx, "")))
}

func TestContextUtils_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), contextkeys.RunIDKey, 42)
	_, err := GetRunIDFromContext(ctx)
	assert.ErrorIs(t, err, ErrRunIDNotString)
}
