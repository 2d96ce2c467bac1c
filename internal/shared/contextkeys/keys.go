package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "pnregistry-dbinit context key " + string(c)
}

// RunIDKey is the key for the per-invocation run identifier in context.Context
const RunIDKey = contextKey("runID")

// DatabaseKey is the key for the target database name in context.Context
const DatabaseKey = contextKey("database")

// CollectionKey is the key for the target collection name in context.Context
const CollectionKey = contextKey("collection")

// ComponentKey is the key for the component emitting a log entry
const ComponentKey = contextKey("component")

// OperationKey is the key for the current bootstrap step (connect, probe, ...)
const OperationKey = contextKey("operation")
