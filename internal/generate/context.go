package generate

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// runIDContextKey is the context key for the generation run ID.
type runIDContextKey struct{}

// NewRunID returns a fresh, time-sortable run identifier.
func NewRunID() string {
	return ulid.Make().String()
}

// WithRunID returns a new context with the run ID attached.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDContextKey{}, id)
}

// RunIDFromContext extracts the run ID from the context.
// Returns "" if not present.
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDContextKey{}).(string)
	return id
}
