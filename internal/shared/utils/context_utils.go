package utils

import (
	"context"
	"errors"

	"pnregistry-dbinit/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrRunIDNotFound  = errors.New("runID not found in context")
	ErrRunIDNotString = errors.New("runID in context is not a string")
)

func stringFromContext(ctx context.Context, key interface{}, notFound, notString error) (string, error) {
	val := ctx.Value(key)
	if val == nil {
		return "", notFound
	}
	s, ok := val.(string)
	if !ok {
		return "", notString
	}
	return s, nil
}

// GetRunIDFromContext retrieves the run ID from the context.
// It returns an error if the run ID is not found or is not a string.
func GetRunIDFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.RunIDKey, ErrRunIDNotFound, ErrRunIDNotString)
}

// WithRunID returns a copy of ctx carrying runID
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, contextkeys.RunIDKey, runID)
}

// WithTarget returns a copy of ctx carrying the target database and collection
func WithTarget(ctx context.Context, database, collection string) context.Context {
	ctx = context.WithValue(ctx, contextkeys.DatabaseKey, database)
	return context.WithValue(ctx, contextkeys.CollectionKey, collection)
}

// WithComponent returns a copy of ctx carrying the component name
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, contextkeys.ComponentKey, component)
}

// WithOperation returns a copy of ctx carrying the current bootstrap step
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, contextkeys.OperationKey, operation)
}

// GetRunIDOrDefault retrieves the run ID or returns def
func GetRunIDOrDefault(ctx context.Context, def string) string {
	if runID, err := GetRunIDFromContext(ctx); err == nil && runID != "" {
		return runID
	}
	return def
}

// HasRunID reports whether ctx carries a non-empty run ID
func HasRunID(ctx context.Context) bool {
	runID, err := GetRunIDFromContext(ctx)
	return err == nil && runID != ""
}
