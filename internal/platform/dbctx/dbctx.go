package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
// Repos use Tx when set and fall back to their own handle otherwise.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// FromContext wraps ctx without a transaction.
func FromContext(ctx context.Context) Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return Context{Ctx: ctx}
}
